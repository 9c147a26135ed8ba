package biz

import (
	"math"
	"strings"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/apperrors"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/constants"
)

// Plan identifies one of the fixed subscription plans.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanStudent  Plan = "student"
	PlanPremium  Plan = "premium"
	PlanLifetime Plan = "lifetime"
)

// PlanDefinition is one entry of the fixed plan catalog. Monthly plans carry a
// single price; the lifetime plan carries two independent price tracks, a
// single upfront amount (pix) and an installment total (card, 5 installments).
type PlanDefinition struct {
	ID               Plan
	Name             string
	MonthlyPrice     float64
	LifetimeUpfront  float64
	InstallmentTotal float64
}

// CouponDefinition is one entry of the fixed coupon catalog.
type CouponDefinition struct {
	Code            string
	DiscountPercent int
	Label           string
}

// PlanCatalog holds the closed set of plans and coupons. Both are hardcoded:
// they are not configurable through any interface of this service.
type PlanCatalog struct {
	plans   map[Plan]PlanDefinition
	coupons map[string]CouponDefinition
	order   []Plan
}

// NewPlanCatalog builds the fixed catalog.
func NewPlanCatalog() *PlanCatalog {
	defs := []PlanDefinition{
		{ID: PlanFree, Name: "Gratuito"},
		{ID: PlanStudent, Name: "Estudante", MonthlyPrice: 14.90},
		{ID: PlanPremium, Name: "Premium", MonthlyPrice: 29.90},
		{ID: PlanLifetime, Name: "Vitalício", LifetimeUpfront: 299.90, InstallmentTotal: 349.90},
	}
	coupons := []CouponDefinition{
		{Code: "MEDPLANNER30", DiscountPercent: 30, Label: "30% de desconto"},
		{Code: "MEDPLANNER50", DiscountPercent: 50, Label: "50% de desconto"},
		{Code: "MEDPLANNER100", DiscountPercent: 100, Label: "100% de desconto"},
	}

	c := &PlanCatalog{
		plans:   make(map[Plan]PlanDefinition, len(defs)),
		coupons: make(map[string]CouponDefinition, len(coupons)),
		order:   make([]Plan, 0, len(defs)),
	}
	for _, d := range defs {
		c.plans[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	for _, cp := range coupons {
		c.coupons[cp.Code] = cp
	}
	return c
}

// Plans returns every plan definition in catalog order.
func (c *PlanCatalog) Plans() []PlanDefinition {
	out := make([]PlanDefinition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.plans[id])
	}
	return out
}

// GetPlan returns the definition of a plan, or InvalidPlan for an unknown id.
func (c *PlanCatalog) GetPlan(id Plan) (PlanDefinition, error) {
	d, ok := c.plans[id]
	if !ok {
		return PlanDefinition{}, apperrors.ErrorInvalidPlan("unknown plan: %s", id)
	}
	return d, nil
}

// LookupCoupon resolves a coupon code. The code is upper-cased and trimmed
// before the lookup; there is no partial or fuzzy matching.
func (c *PlanCatalog) LookupCoupon(code string) (CouponDefinition, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	d, ok := c.coupons[normalized]
	if !ok {
		return CouponDefinition{}, apperrors.ErrorCouponInvalid("unknown coupon code: %s", normalized)
	}
	return d, nil
}

// BasePrice returns the price a coupon discounts for the given plan and
// payment method. For the lifetime plan the two price tracks are independent:
// pix discounts the upfront amount, card the installment total.
func (d PlanDefinition) BasePrice(method string) float64 {
	if d.ID != PlanLifetime {
		return d.MonthlyPrice
	}
	if method == constants.PaymentMethodCard {
		return d.InstallmentTotal
	}
	return d.LifetimeUpfront
}

// ChargePrice returns the amount owed per payment for the plan and method.
// Card lifetime is billed as installments of the (possibly discounted) total.
func (d PlanDefinition) ChargePrice(method string, discountPercent int) float64 {
	total := DiscountedPrice(d.BasePrice(method), discountPercent)
	if d.ID == PlanLifetime && method == constants.PaymentMethodCard {
		// the discount applies to the total; the per-payment amount is the
		// discounted total split across the installments
		return Round2(total / constants.LifetimeInstallments)
	}
	return total
}

// Round2 rounds a currency amount to 2 decimal places. Every stored and
// compared price goes through this to keep displayed and persisted values
// from drifting.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DiscountedPrice applies a percentage discount and rounds to 2 decimals.
func DiscountedPrice(base float64, discountPercent int) float64 {
	return Round2(base * (1 - float64(discountPercent)/100))
}
