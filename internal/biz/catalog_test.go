package biz

import (
	"testing"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/apperrors"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlansReturnsCatalogOrder(t *testing.T) {
	catalog := NewPlanCatalog()

	plans := catalog.Plans()
	require.Len(t, plans, 4)
	assert.Equal(t, PlanFree, plans[0].ID)
	assert.Equal(t, PlanStudent, plans[1].ID)
	assert.Equal(t, PlanPremium, plans[2].ID)
	assert.Equal(t, PlanLifetime, plans[3].ID)

	assert.InDelta(t, 14.90, plans[1].MonthlyPrice, 0.001)
	assert.InDelta(t, 29.90, plans[2].MonthlyPrice, 0.001)
	assert.InDelta(t, 299.90, plans[3].LifetimeUpfront, 0.001)
	assert.InDelta(t, 349.90, plans[3].InstallmentTotal, 0.001)
}

func TestGetPlanUnknown(t *testing.T) {
	catalog := NewPlanCatalog()

	_, err := catalog.GetPlan(Plan("platinum"))
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidPlan(err))
}

func TestLookupCouponNormalizesCode(t *testing.T) {
	catalog := NewPlanCatalog()

	for _, raw := range []string{"MEDPLANNER50", "medplanner50", "  MedPlanner50  "} {
		coupon, err := catalog.LookupCoupon(raw)
		require.NoError(t, err, "code %q", raw)
		assert.Equal(t, "MEDPLANNER50", coupon.Code)
		assert.Equal(t, 50, coupon.DiscountPercent)
	}
}

func TestLookupCouponRejectsUnknown(t *testing.T) {
	catalog := NewPlanCatalog()

	for _, raw := range []string{"", "MEDPLANNER10", "MEDPLANNER", "MEDPLANNER500"} {
		_, err := catalog.LookupCoupon(raw)
		require.Error(t, err, "code %q", raw)
		assert.True(t, apperrors.IsCouponInvalid(err), "code %q", raw)
	}
}

func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		base     float64
		discount int
		want     float64
	}{
		{29.90, 0, 29.90},
		{29.90, 30, 20.93},
		{29.90, 50, 14.95},
		{29.90, 100, 0},
		{14.90, 50, 7.45},
		{299.90, 30, 209.93},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, DiscountedPrice(tt.base, tt.discount), 0.001,
			"base=%.2f discount=%d", tt.base, tt.discount)
	}
}

func TestBasePricePerPaymentMethod(t *testing.T) {
	catalog := NewPlanCatalog()

	premium, err := catalog.GetPlan(PlanPremium)
	require.NoError(t, err)
	assert.InDelta(t, 29.90, premium.BasePrice(constants.PaymentMethodPix), 0.001)
	assert.InDelta(t, 29.90, premium.BasePrice(constants.PaymentMethodCard), 0.001)

	lifetime, err := catalog.GetPlan(PlanLifetime)
	require.NoError(t, err)
	assert.InDelta(t, 299.90, lifetime.BasePrice(constants.PaymentMethodPix), 0.001)
	assert.InDelta(t, 349.90, lifetime.BasePrice(constants.PaymentMethodCard), 0.001)
}

func TestChargePriceLifetimeInstallments(t *testing.T) {
	catalog := NewPlanCatalog()
	lifetime, err := catalog.GetPlan(PlanLifetime)
	require.NoError(t, err)

	// pix charges the full upfront amount
	assert.InDelta(t, 299.90, lifetime.ChargePrice(constants.PaymentMethodPix, 0), 0.001)
	// card charges the discounted total split across installments
	assert.InDelta(t, 69.98, lifetime.ChargePrice(constants.PaymentMethodCard, 0), 0.001)
	assert.InDelta(t, 34.99, lifetime.ChargePrice(constants.PaymentMethodCard, 50), 0.001)
	assert.InDelta(t, 0, lifetime.ChargePrice(constants.PaymentMethodCard, 100), 0.001)
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 14.95, Round2(14.949999999), 0.0001)
	assert.InDelta(t, 20.93, Round2(29.90*0.7), 0.0001)
	assert.InDelta(t, 0, Round2(0), 0.0001)
}
