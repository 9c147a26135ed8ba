package biz

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/apperrors"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/conf"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
)

// memSubscriptionRepo is an in-memory SubscriptionRepo for usecase tests.
type memSubscriptionRepo struct {
	mu      sync.Mutex
	records map[string]*SubscriptionRecord
	// failSave makes every SaveSubscription fail, for write-path tests
	failSave bool
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{records: make(map[string]*SubscriptionRecord)}
}

func (r *memSubscriptionRepo) GetSubscription(_ context.Context, userID string) (*SubscriptionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *memSubscriptionRepo) SaveSubscription(_ context.Context, rec *SubscriptionRecord) error {
	if r.failSave {
		return apperrors.ErrorStorageUnavailable("save failed")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.records[rec.UserID] = &cp
	return nil
}

func (r *memSubscriptionRepo) ListByStatus(_ context.Context, status Status, page, pageSize int) ([]*SubscriptionRecord, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*SubscriptionRecord
	for _, rec := range r.records {
		if rec.Status == status {
			cp := *rec
			matched = append(matched, &cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].UserID < matched[j].UserID })
	total := len(matched)
	start := (page - 1) * pageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *memSubscriptionRepo) UpdateExpired(_ context.Context, now time.Time) (int, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var uids []string
	for uid, rec := range r.records {
		if rec.Status != StatusActive || rec.IsLifetime || rec.NextPaymentDate == nil {
			continue
		}
		if now.After(rec.NextPaymentDate.AddDate(0, 0, constants.ExpiryGraceDays)) {
			rec.Status = StatusExpired
			rec.UpdatedAt = now
			uids = append(uids, uid)
		}
	}
	sort.Strings(uids)
	return len(uids), uids, nil
}

// memCouponRepo is an in-memory CouponRequestRepo.
type memCouponRepo struct {
	mu       sync.Mutex
	requests map[string]*CouponRequest
}

func newMemCouponRepo() *memCouponRepo {
	return &memCouponRepo{requests: make(map[string]*CouponRequest)}
}

func (r *memCouponRepo) CreateRequest(_ context.Context, req *CouponRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.requests[req.Token]; exists {
		return errors.New("duplicate token")
	}
	cp := *req
	r.requests[req.Token] = &cp
	return nil
}

func (r *memCouponRepo) GetRequest(_ context.Context, token string) (*CouponRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[token]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *memCouponRepo) UpdateRequest(_ context.Context, req *CouponRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[req.Token]
	if !ok {
		return errors.New("request not found")
	}
	stored.ApprovalStatus = req.ApprovalStatus
	stored.ResolvedAt = req.ResolvedAt
	return nil
}

// memDispatcher records every notice instead of sending it.
type memDispatcher struct {
	mu      sync.Mutex
	notices []*DiscountApprovalNotice
	fail    bool
}

func (d *memDispatcher) DispatchDiscountApproval(_ context.Context, notice *DiscountApprovalNotice) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return "", errors.New("dispatch failed")
	}
	d.notices = append(d.notices, notice)
	return "https://wa.me/5511999990000?text=test", nil
}

// passthroughTx runs the fn directly; the in-memory repos have no
// transactional semantics to provide.
type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testConfig() *conf.Bootstrap {
	return &conf.Bootstrap{
		App: &conf.App{
			BaseURL:  "https://app.medplanner.test",
			WhatsApp: &conf.WhatsApp{AdminPhone: "5511999990000"},
		},
	}
}

func testLogger() log.Logger {
	return log.NewStdLogger(io.Discard)
}

func newTestSubscriptionUsecase(repo SubscriptionRepo) *SubscriptionUsecase {
	return NewSubscriptionUsecase(NewPlanCatalog(), repo, passthroughTx{}, nil, testLogger())
}

func newTestCouponUsecase(subRepo SubscriptionRepo, couponRepo CouponRequestRepo, dispatcher NotificationDispatcher) *CouponUsecase {
	return NewCouponUsecase(NewPlanCatalog(), subRepo, couponRepo, dispatcher, passthroughTx{}, nil, testConfig(), testLogger())
}
