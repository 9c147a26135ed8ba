package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/apperrors"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/conf"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
)

// CouponRequest is one coupon-application attempt. Created by the requesting
// user, resolved exactly once through an approval link, never deleted.
type CouponRequest struct {
	Token             string // opaque, unguessable; doubles as the approval credential
	OwnerUserID       string
	OwnerEmail        string
	Code              string
	RequestedPlan     Plan
	RequestedDiscount int
	RequestedPrice    float64
	ApprovalStatus    string // waiting, approved, rejected
	CreatedAt         time.Time
	ResolvedAt        *time.Time
}

// CouponRequestRepo is the store contract for coupon requests.
type CouponRequestRepo interface {
	CreateRequest(ctx context.Context, req *CouponRequest) error
	// GetRequest returns (nil, nil) when the token matches no request.
	GetRequest(ctx context.Context, token string) (*CouponRequest, error)
	UpdateRequest(ctx context.Context, req *CouponRequest) error
}

// CouponResolution is the outcome of activating an approval link, rendered on
// the human-readable result page.
type CouponResolution struct {
	Action          string
	Code            string
	DiscountPercent int
	Plan            Plan
	Price           float64
	OwnerEmail      string
	Status          Status
}

// CouponUsecase moves a CouponRequest from waiting to a resolved state and
// fans the effect out into the owner's SubscriptionRecord.
type CouponUsecase struct {
	catalog    *PlanCatalog
	subRepo    SubscriptionRepo
	couponRepo CouponRequestRepo
	dispatcher NotificationDispatcher
	tm         Transaction
	rs         *redsync.Redsync
	config     *conf.Bootstrap
	log        *log.Helper
}

// NewCouponUsecase creates the coupon approval usecase.
func NewCouponUsecase(
	catalog *PlanCatalog,
	subRepo SubscriptionRepo,
	couponRepo CouponRequestRepo,
	dispatcher NotificationDispatcher,
	tm Transaction,
	rs *redsync.Redsync,
	config *conf.Bootstrap,
	logger log.Logger,
) *CouponUsecase {
	return &CouponUsecase{
		catalog:    catalog,
		subRepo:    subRepo,
		couponRepo: couponRepo,
		dispatcher: dispatcher,
		tm:         tm,
		rs:         rs,
		config:     config,
		log:        log.NewHelper(logger),
	}
}

func (uc *CouponUsecase) lockUser(ctx context.Context, userID string) (func(), error) {
	if uc.rs == nil {
		return func() {}, nil
	}
	mutex := uc.rs.NewMutex(
		fmt.Sprintf("subscription:lock:user:%s", userID),
		redsync.WithExpiry(constants.SubscriptionLockExpiration),
		redsync.WithTries(constants.SubscriptionLockRetries),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, apperrors.ErrorStorageUnavailable("failed to acquire subscription lock for user %s: %v", userID, err)
	}
	return func() {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			uc.log.Warnf("Failed to unlock subscription for user %s: %v", userID, err)
		}
	}, nil
}

func (uc *CouponUsecase) withTransaction(ctx context.Context, fn func(context.Context) error) error {
	if uc.tm == nil {
		return fn(ctx)
	}
	return uc.tm.InTx(ctx, fn)
}

// ApplyCoupon validates the code against the catalog, records the request and
// parks the user's subscription in pending_approval for the chosen plan. The
// approval notice goes out fire-and-forget after the store write committed:
// a delivery failure never rolls the request back, and the transition never
// waits for the message to be seen.
func (uc *CouponUsecase) ApplyCoupon(ctx context.Context, userID, email, code string, planID Plan) (*CouponRequest, string, error) {
	uc.log.Infof("ApplyCoupon: userID=%s, code=%s, plan=%s", userID, code, planID)

	coupon, err := uc.catalog.LookupCoupon(code)
	if err != nil {
		return nil, "", err
	}
	plan, err := uc.catalog.GetPlan(planID)
	if err != nil {
		return nil, "", err
	}
	if planID == PlanFree {
		return nil, "", apperrors.ErrorInvalidPlan("coupons do not apply to the free plan")
	}

	unlock, err := uc.lockUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	defer unlock()

	now := time.Now().UTC()
	request := &CouponRequest{
		Token:             uuid.New().String(),
		OwnerUserID:       userID,
		OwnerEmail:        email,
		Code:              coupon.Code,
		RequestedPlan:     planID,
		RequestedDiscount: coupon.DiscountPercent,
		RequestedPrice:    DiscountedPrice(plan.BasePrice(constants.PaymentMethodPix), coupon.DiscountPercent),
		ApprovalStatus:    constants.ApprovalWaiting,
		CreatedAt:         now,
	}

	err = uc.withTransaction(ctx, func(ctx context.Context) error {
		if err := uc.couponRepo.CreateRequest(ctx, request); err != nil {
			return err
		}

		rec, err := uc.subRepo.GetSubscription(ctx, userID)
		if err != nil {
			return err
		}
		if rec == nil {
			rec = NewFreeSubscription(userID, email, now)
		}
		rec.Plan = planID
		rec.Status = StatusPendingApproval
		rec.ProofSubmitted = false
		rec.ProofURL = ""
		rec.UpdatedAt = now
		return uc.subRepo.SaveSubscription(ctx, rec)
	})
	if err != nil {
		uc.log.Errorf("Failed to record coupon request: %v", err)
		return nil, "", err
	}

	notice := &DiscountApprovalNotice{
		UserID:          userID,
		UserEmail:       email,
		CouponCode:      coupon.Code,
		DiscountPercent: coupon.DiscountPercent,
		Plan:            planID,
		PlanName:        plan.Name,
		RequestedPrice:  request.RequestedPrice,
		ApproveURL:      uc.approvalURL(request.Token, constants.ActionApprove),
		RejectURL:       uc.approvalURL(request.Token, constants.ActionReject),
	}
	link, err := uc.dispatcher.DispatchDiscountApproval(ctx, notice)
	if err != nil {
		// fire-and-forget: the request stands, resolution just needs the link
		// to reach the administrator through some channel
		uc.log.Warnf("Failed to dispatch approval notice for token %s: %v", request.Token, err)
	}

	uc.log.Infof("Coupon request %s created for user %s (%s, %d%%)", request.Token, userID, coupon.Code, coupon.DiscountPercent)
	return request, link, nil
}

func (uc *CouponUsecase) approvalURL(token, action string) string {
	base := ""
	if uc.config != nil && uc.config.App != nil {
		base = uc.config.App.BaseURL
	}
	return fmt.Sprintf("%s/approve-discount?token=%s&action=%s", base, token, action)
}

// Resolve settles a coupon request through its approval link. Idempotent-safe:
// the first activation transitions waiting to approved or rejected, the second
// reports AlreadyResolved and leaves every record untouched.
func (uc *CouponUsecase) Resolve(ctx context.Context, token, action string) (*CouponResolution, error) {
	uc.log.Infof("Resolve coupon request: token=%s, action=%s", token, action)

	if action != constants.ActionApprove && action != constants.ActionReject {
		return nil, apperrors.ErrorInvalidAction("unknown action: %s", action)
	}
	if token == "" {
		return nil, apperrors.ErrorInvalidToken("a token is required")
	}

	request, err := uc.couponRepo.GetRequest(ctx, token)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, apperrors.ErrorInvalidToken("token does not match any discount request")
	}
	if request.ApprovalStatus != constants.ApprovalWaiting {
		return nil, apperrors.ErrorAlreadyResolved("this discount request was already %s", request.ApprovalStatus)
	}

	// the catalog is fixed, but re-validate so a link minted for a code that
	// has since been retired cannot resolve
	coupon, err := uc.catalog.LookupCoupon(request.Code)
	if err != nil {
		return nil, err
	}
	if _, err := uc.catalog.GetPlan(request.RequestedPlan); err != nil {
		return nil, err
	}

	unlock, err := uc.lockUser(ctx, request.OwnerUserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := time.Now().UTC()
	var result *CouponResolution

	err = uc.withTransaction(ctx, func(ctx context.Context) error {
		// re-read inside the transaction so two racing link activations
		// cannot both observe waiting
		current, err := uc.couponRepo.GetRequest(ctx, token)
		if err != nil {
			return err
		}
		if current == nil {
			return apperrors.ErrorInvalidToken("token does not match any discount request")
		}
		if current.ApprovalStatus != constants.ApprovalWaiting {
			return apperrors.ErrorAlreadyResolved("this discount request was already %s", current.ApprovalStatus)
		}

		rec, err := uc.subRepo.GetSubscription(ctx, current.OwnerUserID)
		if err != nil {
			return err
		}
		if rec == nil {
			rec = NewFreeSubscription(current.OwnerUserID, current.OwnerEmail, now)
		}

		if action == constants.ActionReject {
			current.ApprovalStatus = constants.ApprovalRejected
			rec.Status = StatusRejected
		} else {
			current.ApprovalStatus = constants.ApprovalApproved
			rec.Plan = current.RequestedPlan
			rec.DiscountPercent = coupon.DiscountPercent

			if coupon.DiscountPercent >= 100 {
				// fully discounted: active immediately, no proof collection
				rec.Status = StatusActive
				rec.Price = 0
				rec.ProofSubmitted = false
				rec.ProofURL = ""
				rec.LastPaymentDate = &now
				if current.RequestedPlan == PlanLifetime {
					rec.IsLifetime = true
					rec.NextPaymentDate = nil
					rec.ExpiresAt = nil
				} else {
					// the grant covers the current period; a new request is
					// needed for the next one
					next := now.AddDate(0, 0, constants.BillingCycleDays)
					rec.NextPaymentDate = &next
					rec.ExpiresAt = &next
				}
			} else {
				// discount locked in, only the proof is still pending
				rec.Status = StatusAwaitingPayment
				rec.Price = current.RequestedPrice
			}
		}

		current.ResolvedAt = &now
		rec.UpdatedAt = now

		if err := uc.couponRepo.UpdateRequest(ctx, current); err != nil {
			return err
		}
		if err := uc.subRepo.SaveSubscription(ctx, rec); err != nil {
			return err
		}

		result = &CouponResolution{
			Action:          action,
			Code:            current.Code,
			DiscountPercent: coupon.DiscountPercent,
			Plan:            current.RequestedPlan,
			Price:           rec.Price,
			OwnerEmail:      current.OwnerEmail,
			Status:          rec.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Coupon request %s resolved: action=%s, status=%s", token, action, result.Status)
	return result, nil
}

// GetRequest exposes a coupon request for administrative views.
func (uc *CouponUsecase) GetRequest(ctx context.Context, token string) (*CouponRequest, error) {
	request, err := uc.couponRepo.GetRequest(ctx, token)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, apperrors.ErrorInvalidToken("token does not match any discount request")
	}
	return request, nil
}
