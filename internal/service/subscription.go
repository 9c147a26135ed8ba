package service

import (
	"context"
	"strconv"
	"time"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/auth"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/biz"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/constants"

	"github.com/go-kratos/kratos/v2/transport/http"
)

// SubscriptionService exposes the subscription lifecycle over HTTP/JSON.
type SubscriptionService struct {
	catalog *biz.PlanCatalog
	uc      *biz.SubscriptionUsecase
}

// NewSubscriptionService creates the subscription service.
func NewSubscriptionService(catalog *biz.PlanCatalog, uc *biz.SubscriptionUsecase) *SubscriptionService {
	return &SubscriptionService{catalog: catalog, uc: uc}
}

// PlanReply is one catalog entry.
type PlanReply struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Currency         string  `json:"currency"`
	MonthlyPrice     float64 `json:"monthly_price,omitempty"`
	LifetimeUpfront  float64 `json:"lifetime_upfront,omitempty"`
	InstallmentTotal float64 `json:"installment_total,omitempty"`
	Installments     int     `json:"installments,omitempty"`
}

// SubscriptionReply is the user-facing view of a record plus derived flags.
type SubscriptionReply struct {
	Plan            string  `json:"plan"`
	Status          string  `json:"status"`
	PaymentMethod   string  `json:"payment_method,omitempty"`
	DiscountPercent int     `json:"discount_percent"`
	Price           float64 `json:"price"`
	ProofSubmitted  bool    `json:"proof_submitted"`
	LastPaymentDate *int64  `json:"last_payment_date,omitempty"`
	NextPaymentDate *int64  `json:"next_payment_date,omitempty"`
	ExpiresAt       *int64  `json:"expires_at,omitempty"`
	IsLifetime      bool    `json:"is_lifetime"`
	AccessBlocked   bool    `json:"access_blocked"`
	PendingPayment  bool    `json:"pending_payment"`
}

// UpgradePlanRequest selects a paid plan and payment method.
type UpgradePlanRequest struct {
	Plan          string `json:"plan"`
	PaymentMethod string `json:"payment_method"`
}

// SubmitProofRequest attaches the uploaded payment proof reference.
type SubmitProofRequest struct {
	ProofURL string `json:"proof_url"`
}

// ApprovePaymentRequest names the user whose proof an administrator accepts.
type ApprovePaymentRequest struct {
	UserID string `json:"user_id"`
}

// AdminSubscriptionItem is one row of the administrative listing.
type AdminSubscriptionItem struct {
	UserID   string  `json:"user_id"`
	Email    string  `json:"email"`
	Plan     string  `json:"plan"`
	Status   string  `json:"status"`
	Price    float64 `json:"price"`
	ProofURL string  `json:"proof_url,omitempty"`
}

// ListPlans returns the fixed plan catalog.
func (s *SubscriptionService) ListPlans(ctx http.Context) error {
	plans := s.catalog.Plans()
	out := make([]*PlanReply, 0, len(plans))
	for _, p := range plans {
		reply := &PlanReply{
			ID:           string(p.ID),
			Name:         p.Name,
			Currency:     constants.Currency,
			MonthlyPrice: p.MonthlyPrice,
		}
		if p.ID == biz.PlanLifetime {
			reply.LifetimeUpfront = p.LifetimeUpfront
			reply.InstallmentTotal = p.InstallmentTotal
			reply.Installments = constants.LifetimeInstallments
		}
		out = append(out, reply)
	}
	return ctx.Result(200, map[string]interface{}{"plans": out})
}

// GetSubscription returns the caller's record with expiry applied.
func (s *SubscriptionService) GetSubscription(ctx http.Context) error {
	h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		uid, err := auth.RequireUser(c)
		if err != nil {
			return nil, err
		}
		email, _ := auth.GetEmailFromContext(c)
		rec, err := s.uc.GetSubscription(c, uid, email)
		if err != nil {
			return nil, err
		}
		return toSubscriptionReply(rec), nil
	})
	out, err := h(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// UpgradePlan enters the payment flow of a paid plan.
func (s *SubscriptionService) UpgradePlan(ctx http.Context) error {
	var in UpgradePlanRequest
	if err := ctx.Bind(&in); err != nil {
		return err
	}
	h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		uid, err := auth.RequireUser(c)
		if err != nil {
			return nil, err
		}
		email, _ := auth.GetEmailFromContext(c)
		r := req.(*UpgradePlanRequest)
		rec, err := s.uc.UpgradePlan(c, uid, email, biz.Plan(r.Plan), r.PaymentMethod)
		if err != nil {
			return nil, err
		}
		return toSubscriptionReply(rec), nil
	})
	out, err := h(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// SubmitProof attaches the payment proof and requests approval.
func (s *SubscriptionService) SubmitProof(ctx http.Context) error {
	var in SubmitProofRequest
	if err := ctx.Bind(&in); err != nil {
		return err
	}
	h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		uid, err := auth.RequireUser(c)
		if err != nil {
			return nil, err
		}
		rec, err := s.uc.SubmitPaymentProof(c, uid, req.(*SubmitProofRequest).ProofURL)
		if err != nil {
			return nil, err
		}
		return toSubscriptionReply(rec), nil
	})
	out, err := h(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// ApprovePayment records an administrator's acceptance of a payment proof.
func (s *SubscriptionService) ApprovePayment(ctx http.Context) error {
	var in ApprovePaymentRequest
	if err := ctx.Bind(&in); err != nil {
		return err
	}
	h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		if err := auth.RequireAdmin(c); err != nil {
			return nil, err
		}
		rec, err := s.uc.ApprovePayment(c, req.(*ApprovePaymentRequest).UserID)
		if err != nil {
			return nil, err
		}
		return toSubscriptionReply(rec), nil
	})
	out, err := h(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// ListByStatus is the administrative listing filtered by status.
func (s *SubscriptionService) ListByStatus(ctx http.Context) error {
	status := biz.Status(ctx.Query().Get("status"))
	page := parseIntDefault(ctx.Query().Get("page"), 1)
	pageSize := parseIntDefault(ctx.Query().Get("page_size"), constants.DefaultPageSize)

	h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		if err := auth.RequireAdmin(c); err != nil {
			return nil, err
		}
		records, total, err := s.uc.ListByStatus(c, status, page, pageSize)
		if err != nil {
			return nil, err
		}
		items := make([]*AdminSubscriptionItem, len(records))
		for i, rec := range records {
			items[i] = &AdminSubscriptionItem{
				UserID:   rec.UserID,
				Email:    rec.Email,
				Plan:     string(rec.Plan),
				Status:   string(rec.Status),
				Price:    rec.Price,
				ProofURL: rec.ProofURL,
			}
		}
		return map[string]interface{}{
			"items":     items,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		}, nil
	})
	out, err := h(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func toSubscriptionReply(rec *biz.SubscriptionRecord) *SubscriptionReply {
	return &SubscriptionReply{
		Plan:            string(rec.Plan),
		Status:          string(rec.Status),
		PaymentMethod:   rec.PaymentMethod,
		DiscountPercent: rec.DiscountPercent,
		Price:           rec.Price,
		ProofSubmitted:  rec.ProofSubmitted,
		LastPaymentDate: unixOrNil(rec.LastPaymentDate),
		NextPaymentDate: unixOrNil(rec.NextPaymentDate),
		ExpiresAt:       unixOrNil(rec.ExpiresAt),
		IsLifetime:      rec.IsLifetime,
		AccessBlocked:   biz.IsAccessBlocked(rec),
		PendingPayment:  biz.IsPendingPayment(rec),
	}
}

func unixOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := t.Unix()
	return &v
}

func parseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
