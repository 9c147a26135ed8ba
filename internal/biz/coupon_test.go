package biz

import (
	"context"
	"strings"
	"testing"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/apperrors"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCouponCreatesWaitingRequest(t *testing.T) {
	subRepo := newMemSubscriptionRepo()
	couponRepo := newMemCouponRepo()
	dispatcher := &memDispatcher{}
	uc := newTestCouponUsecase(subRepo, couponRepo, dispatcher)
	ctx := context.Background()

	request, link, err := uc.ApplyCoupon(ctx, "user-1", "u1@medplanner.com.br", "medplanner50", PlanPremium)
	require.NoError(t, err)

	assert.NotEmpty(t, request.Token)
	assert.Equal(t, "MEDPLANNER50", request.Code)
	assert.Equal(t, PlanPremium, request.RequestedPlan)
	assert.Equal(t, 50, request.RequestedDiscount)
	assert.InDelta(t, 14.95, request.RequestedPrice, 0.001)
	assert.Equal(t, constants.ApprovalWaiting, request.ApprovalStatus)
	assert.NotEmpty(t, link)

	// the subscription parks in pending_approval for the requested plan
	rec, err := subRepo.GetSubscription(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, PlanPremium, rec.Plan)
	assert.Equal(t, StatusPendingApproval, rec.Status)

	// the notice carries both resolution links for the admin
	require.Len(t, dispatcher.notices, 1)
	notice := dispatcher.notices[0]
	assert.Contains(t, notice.ApproveURL, "token="+request.Token)
	assert.Contains(t, notice.ApproveURL, "action=approve")
	assert.Contains(t, notice.RejectURL, "action=reject")
	assert.True(t, strings.HasPrefix(notice.ApproveURL, "https://app.medplanner.test/approve-discount"))
}

func TestApplyCouponRejectsBadInput(t *testing.T) {
	uc := newTestCouponUsecase(newMemSubscriptionRepo(), newMemCouponRepo(), &memDispatcher{})
	ctx := context.Background()

	_, _, err := uc.ApplyCoupon(ctx, "user-1", "", "MEDPLANNER99", PlanPremium)
	require.Error(t, err)
	assert.True(t, apperrors.IsCouponInvalid(err))

	_, _, err = uc.ApplyCoupon(ctx, "user-1", "", "MEDPLANNER50", Plan("platinum"))
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidPlan(err))

	_, _, err = uc.ApplyCoupon(ctx, "user-1", "", "MEDPLANNER50", PlanFree)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidPlan(err))
}

func TestApplyCouponSurvivesDispatchFailure(t *testing.T) {
	subRepo := newMemSubscriptionRepo()
	couponRepo := newMemCouponRepo()
	uc := newTestCouponUsecase(subRepo, couponRepo, &memDispatcher{fail: true})
	ctx := context.Background()

	request, link, err := uc.ApplyCoupon(ctx, "user-1", "u1@medplanner.com.br", "MEDPLANNER30", PlanStudent)
	require.NoError(t, err)
	assert.Empty(t, link)

	// the request stands and can still be resolved out-of-band
	stored, err := couponRepo.GetRequest(ctx, request.Token)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, constants.ApprovalWaiting, stored.ApprovalStatus)
}

func TestResolveApprovePartialDiscount(t *testing.T) {
	subRepo := newMemSubscriptionRepo()
	couponRepo := newMemCouponRepo()
	uc := newTestCouponUsecase(subRepo, couponRepo, &memDispatcher{})
	ctx := context.Background()

	request, _, err := uc.ApplyCoupon(ctx, "user-1", "u1@medplanner.com.br", "MEDPLANNER50", PlanPremium)
	require.NoError(t, err)

	res, err := uc.Resolve(ctx, request.Token, constants.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingPayment, res.Status)
	assert.InDelta(t, 14.95, res.Price, 0.001)

	rec, err := subRepo.GetSubscription(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingPayment, rec.Status)
	assert.Equal(t, 50, rec.DiscountPercent)
	assert.InDelta(t, 14.95, rec.Price, 0.001)

	stored, err := couponRepo.GetRequest(ctx, request.Token)
	require.NoError(t, err)
	assert.Equal(t, constants.ApprovalApproved, stored.ApprovalStatus)
	require.NotNil(t, stored.ResolvedAt)
}

func TestResolveApproveFullDiscount(t *testing.T) {
	subRepo := newMemSubscriptionRepo()
	uc := newTestCouponUsecase(subRepo, newMemCouponRepo(), &memDispatcher{})
	ctx := context.Background()

	request, _, err := uc.ApplyCoupon(ctx, "user-1", "u1@medplanner.com.br", "MEDPLANNER100", PlanPremium)
	require.NoError(t, err)

	res, err := uc.Resolve(ctx, request.Token, constants.ActionApprove)
	require.NoError(t, err)

	// 100% skips the payment flow entirely
	assert.Equal(t, StatusActive, res.Status)
	assert.InDelta(t, 0, res.Price, 0.001)

	rec, err := subRepo.GetSubscription(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, rec.Status)
	assert.Equal(t, 100, rec.DiscountPercent)
	require.NotNil(t, rec.NextPaymentDate)
	assert.False(t, IsAccessBlocked(rec))
}

func TestResolveApproveFullDiscountLifetime(t *testing.T) {
	subRepo := newMemSubscriptionRepo()
	uc := newTestCouponUsecase(subRepo, newMemCouponRepo(), &memDispatcher{})
	ctx := context.Background()

	request, _, err := uc.ApplyCoupon(ctx, "user-1", "u1@medplanner.com.br", "MEDPLANNER100", PlanLifetime)
	require.NoError(t, err)

	res, err := uc.Resolve(ctx, request.Token, constants.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, res.Status)

	rec, err := subRepo.GetSubscription(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, rec.IsLifetime)
	assert.Nil(t, rec.NextPaymentDate)
}

func TestResolveReject(t *testing.T) {
	subRepo := newMemSubscriptionRepo()
	couponRepo := newMemCouponRepo()
	uc := newTestCouponUsecase(subRepo, couponRepo, &memDispatcher{})
	ctx := context.Background()

	request, _, err := uc.ApplyCoupon(ctx, "user-1", "u1@medplanner.com.br", "MEDPLANNER30", PlanStudent)
	require.NoError(t, err)

	res, err := uc.Resolve(ctx, request.Token, constants.ActionReject)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, res.Status)

	rec, err := subRepo.GetSubscription(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rec.Status)

	stored, err := couponRepo.GetRequest(ctx, request.Token)
	require.NoError(t, err)
	assert.Equal(t, constants.ApprovalRejected, stored.ApprovalStatus)
}

func TestResolveSecondActivationIsRejected(t *testing.T) {
	subRepo := newMemSubscriptionRepo()
	couponRepo := newMemCouponRepo()
	uc := newTestCouponUsecase(subRepo, couponRepo, &memDispatcher{})
	ctx := context.Background()

	request, _, err := uc.ApplyCoupon(ctx, "user-1", "u1@medplanner.com.br", "MEDPLANNER50", PlanPremium)
	require.NoError(t, err)

	_, err = uc.Resolve(ctx, request.Token, constants.ActionApprove)
	require.NoError(t, err)

	before, err := subRepo.GetSubscription(ctx, "user-1")
	require.NoError(t, err)

	// the second activation reports the conflict and mutates nothing,
	// whichever action it carries
	for _, action := range []string{constants.ActionApprove, constants.ActionReject} {
		_, err = uc.Resolve(ctx, request.Token, action)
		require.Error(t, err)
		assert.True(t, apperrors.IsAlreadyResolved(err))
	}

	after, err := subRepo.GetSubscription(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.Price, after.Price)
	assert.Equal(t, before.DiscountPercent, after.DiscountPercent)

	stored, err := couponRepo.GetRequest(ctx, request.Token)
	require.NoError(t, err)
	assert.Equal(t, constants.ApprovalApproved, stored.ApprovalStatus)
}

func TestResolveValidatesTokenAndAction(t *testing.T) {
	uc := newTestCouponUsecase(newMemSubscriptionRepo(), newMemCouponRepo(), &memDispatcher{})
	ctx := context.Background()

	_, err := uc.Resolve(ctx, "deadbeef", "activate")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidAction(err))

	_, err = uc.Resolve(ctx, "", constants.ActionApprove)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidToken(err))

	_, err = uc.Resolve(ctx, "no-such-token", constants.ActionApprove)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidToken(err))
}

func TestFullCouponFlowPartialDiscountThenProof(t *testing.T) {
	subRepo := newMemSubscriptionRepo()
	couponRepo := newMemCouponRepo()
	couponUC := newTestCouponUsecase(subRepo, couponRepo, &memDispatcher{})
	subUC := newTestSubscriptionUsecase(subRepo)
	ctx := context.Background()

	request, _, err := couponUC.ApplyCoupon(ctx, "user-1", "u1@medplanner.com.br", "MEDPLANNER50", PlanPremium)
	require.NoError(t, err)

	_, err = couponUC.Resolve(ctx, request.Token, constants.ActionApprove)
	require.NoError(t, err)

	// awaiting_payment accepts a proof like pending_payment does
	rec, err := subUC.SubmitPaymentProof(ctx, "user-1", "uploads/pix-receipt.png")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingApproval, rec.Status)

	rec, err = subUC.ApprovePayment(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, rec.Status)
	assert.Equal(t, 50, rec.DiscountPercent)
	assert.InDelta(t, 14.95, rec.Price, 0.001)
	assert.False(t, IsAccessBlocked(rec))

	// a discounted monthly plan is still a monthly plan: the activation
	// stamps the billing dates, so it expires like any other
	require.NotNil(t, rec.NextPaymentDate)
	assert.Equal(t, StatusExpired, CheckExpiry(rec, rec.NextPaymentDate.AddDate(0, 0, 4)))
}

func TestGetRequest(t *testing.T) {
	couponRepo := newMemCouponRepo()
	uc := newTestCouponUsecase(newMemSubscriptionRepo(), couponRepo, &memDispatcher{})
	ctx := context.Background()

	request, _, err := uc.ApplyCoupon(ctx, "user-1", "u1@medplanner.com.br", "MEDPLANNER30", PlanPremium)
	require.NoError(t, err)

	got, err := uc.GetRequest(ctx, request.Token)
	require.NoError(t, err)
	assert.Equal(t, request.Token, got.Token)

	_, err = uc.GetRequest(ctx, "no-such-token")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidToken(err))
}
