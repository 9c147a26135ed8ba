package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/apperrors"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
)

// SubscriptionUsecase owns every transition on a SubscriptionRecord. Mutating
// operations serialize on a per-user distributed lock and persist before
// reflecting the new state back to the caller, so the derived access decision
// never runs ahead of the stored record.
type SubscriptionUsecase struct {
	catalog *PlanCatalog
	subRepo SubscriptionRepo
	tm      Transaction
	rs      *redsync.Redsync
	log     *log.Helper
}

// NewSubscriptionUsecase creates the subscription lifecycle usecase.
func NewSubscriptionUsecase(
	catalog *PlanCatalog,
	subRepo SubscriptionRepo,
	tm Transaction,
	rs *redsync.Redsync,
	logger log.Logger,
) *SubscriptionUsecase {
	return &SubscriptionUsecase{
		catalog: catalog,
		subRepo: subRepo,
		tm:      tm,
		rs:      rs,
		log:     log.NewHelper(logger),
	}
}

// lockUser serializes mutations of one user's record. The store has no
// compare-and-swap, so without this two sessions of the same user could
// interleave read-modify-write cycles. Returns an unlock func.
func (uc *SubscriptionUsecase) lockUser(ctx context.Context, userID string) (func(), error) {
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

// loadOrDefault reads the user's record, falling back to the default free
// record when none exists yet.
func (uc *SubscriptionUsecase) loadOrDefault(ctx context.Context, userID, email string, now time.Time) (*SubscriptionRecord, error) {
	rec, err := uc.subRepo.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = NewFreeSubscription(userID, email, now)
	}
	if email != "" {
		rec.Email = email
	}
	return rec, nil
}

// UpgradePlan moves the user into the payment flow of a paid plan. The caller
// is expected to present the payment-proof collection flow next. The only
// rejected input is an unknown (or free) plan id.
func (uc *SubscriptionUsecase) UpgradePlan(ctx context.Context, userID, email string, planID Plan, paymentMethod string) (*SubscriptionRecord, error) {
	uc.log.Infof("UpgradePlan: userID=%s, plan=%s, method=%s", userID, planID, paymentMethod)

	plan, err := uc.catalog.GetPlan(planID)
	if err != nil {
		return nil, err
	}
	if planID == PlanFree {
		return nil, apperrors.ErrorInvalidPlan("cannot upgrade to the free plan")
	}
	if paymentMethod != constants.PaymentMethodPix && paymentMethod != constants.PaymentMethodCard {
		paymentMethod = constants.PaymentMethodPix
	}

	unlock, err := uc.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := time.Now().UTC()
	rec, err := uc.loadOrDefault(ctx, userID, email, now)
	if err != nil {
		return nil, err
	}

	rec.Plan = planID
	rec.Status = StatusPendingPayment
	rec.PaymentMethod = paymentMethod
	rec.DiscountPercent = 0
	rec.Price = plan.ChargePrice(paymentMethod, 0)
	rec.ProofSubmitted = false
	rec.ProofURL = ""
	rec.LastPaymentDate = &now
	if planID == PlanLifetime {
		rec.IsLifetime = true
		rec.NextPaymentDate = nil
		rec.ExpiresAt = nil
	} else {
		rec.IsLifetime = false
		next := now.AddDate(0, 0, constants.BillingCycleDays)
		rec.NextPaymentDate = &next
		rec.ExpiresAt = &next
	}
	rec.UpdatedAt = now

	if err := uc.subRepo.SaveSubscription(ctx, rec); err != nil {
		uc.log.Errorf("Failed to save subscription: %v", err)
		return nil, err
	}

	uc.log.Infof("Subscription moved to pending_payment for user %s (plan=%s, price=%.2f)", userID, planID, rec.Price)
	return rec, nil
}

// SubmitPaymentProof attaches the uploaded proof reference and hands the
// record over for administrator review. This is the terminal user-side action
// of the payment flow.
func (uc *SubscriptionUsecase) SubmitPaymentProof(ctx context.Context, userID, proofRef string) (*SubscriptionRecord, error) {
	uc.log.Infof("SubmitPaymentProof: userID=%s", userID)

	if proofRef == "" {
		return nil, apperrors.ErrorMissingProof("a payment proof reference is required")
	}

	unlock, err := uc.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	rec, err := uc.subRepo.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil || !IsPendingPayment(rec) {
		status := Status("none")
		if rec != nil {
			status = rec.Status
		}
		return nil, apperrors.ErrorProofNotExpected("no payment is waiting for a proof (status=%s)", status)
	}

	now := time.Now().UTC()
	rec.ProofSubmitted = true
	rec.ProofURL = proofRef
	rec.Status = StatusPendingApproval
	rec.UpdatedAt = now

	if err := uc.subRepo.SaveSubscription(ctx, rec); err != nil {
		uc.log.Errorf("Failed to save subscription: %v", err)
		return nil, err
	}

	uc.log.Infof("Payment proof submitted for user %s, awaiting approval", userID)
	return rec, nil
}

// ApprovePayment activates a subscription after an administrator reviewed the
// submitted proof. The proof contents are a human judgment call; this only
// records the outcome.
func (uc *SubscriptionUsecase) ApprovePayment(ctx context.Context, userID string) (*SubscriptionRecord, error) {
	uc.log.Infof("ApprovePayment: userID=%s", userID)

	unlock, err := uc.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	rec, err := uc.subRepo.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.ErrorProofNotExpected("user %s has no subscription awaiting approval", userID)
	}
	if !CanTransition(rec.Status, StatusActive) {
		return nil, apperrors.ErrorProofNotExpected("subscription in status %s cannot be approved", rec.Status)
	}

	// activation starts the billing period: the paid period runs from the
	// approval, not from when the user entered the payment flow
	now := time.Now().UTC()
	rec.Status = StatusActive
	rec.ProofSubmitted = false
	rec.ProofURL = ""
	rec.LastPaymentDate = &now
	if rec.IsLifetime {
		rec.NextPaymentDate = nil
		rec.ExpiresAt = nil
	} else {
		next := now.AddDate(0, 0, constants.BillingCycleDays)
		rec.NextPaymentDate = &next
		rec.ExpiresAt = &next
	}
	rec.UpdatedAt = now

	if err := uc.subRepo.SaveSubscription(ctx, rec); err != nil {
		uc.log.Errorf("Failed to save subscription: %v", err)
		return nil, err
	}

	uc.log.Infof("Payment approved for user %s, subscription active", userID)
	return rec, nil
}

// GetSubscription reads the user's record with the expiry rule applied. When
// the rule changes the status, the store is updated before the result is
// returned, so callers never see a state the store does not hold.
func (uc *SubscriptionUsecase) GetSubscription(ctx context.Context, userID, email string) (*SubscriptionRecord, error) {
	now := time.Now().UTC()
	rec, err := uc.loadOrDefault(ctx, userID, email, now)
	if err != nil {
		return nil, err
	}

	if next := CheckExpiry(rec, now); next != rec.Status {
		rec.Status = next
		rec.UpdatedAt = now
		if err := uc.subRepo.SaveSubscription(ctx, rec); err != nil {
			uc.log.Errorf("Failed to persist expiry for user %s: %v", userID, err)
			return nil, err
		}
		uc.log.Infof("Subscription for user %s expired (next payment was %v)", userID, rec.NextPaymentDate)
	}

	return rec, nil
}

// SweepExpired is the batch form of the expiry rule, run periodically by the
// cron worker. Safe to run repeatedly.
func (uc *SubscriptionUsecase) SweepExpired(ctx context.Context) (int, []string, error) {
	uc.log.Info("Starting expiry sweep")

	count, uids, err := uc.subRepo.UpdateExpired(ctx, time.Now().UTC())
	if err != nil {
		uc.log.Errorf("Failed to sweep expired subscriptions: %v", err)
		return 0, nil, err
	}

	uc.log.Infof("Expiry sweep marked %d subscriptions expired", count)
	return count, uids, nil
}

// ListByStatus lists subscription records by status for administrative views.
func (uc *SubscriptionUsecase) ListByStatus(ctx context.Context, status Status, page, pageSize int) ([]*SubscriptionRecord, int, error) {
	if !ValidStatus(status) {
		return nil, 0, apperrors.ErrorInvalidStatus("unknown status: %s", status)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > constants.MaxPageSize {
		pageSize = constants.DefaultPageSize
	}
	return uc.subRepo.ListByStatus(ctx, status, page, pageSize)
}
