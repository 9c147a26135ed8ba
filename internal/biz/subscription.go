package biz

import (
	"context"
	"time"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/constants"
)

// Status is the lifecycle status of a subscription record.
type Status string

const (
	StatusActive          Status = "active"
	StatusPendingPayment  Status = "pending_payment"
	StatusPendingApproval Status = "pending_approval"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusExpired         Status = "expired"
	StatusCancelled       Status = "cancelled"
	StatusRejected        Status = "rejected"
	StatusInactive        Status = "inactive"
)

// SubscriptionRecord is the single subscription document of a user. It is
// mutated only by the user's own actions and by administrator approvals.
type SubscriptionRecord struct {
	ID              uint64
	UserID          string
	Email           string
	Plan            Plan
	Status          Status
	PaymentMethod   string // pix, card or empty
	DiscountPercent int
	Price           float64
	ProofSubmitted  bool
	ProofURL        string
	LastPaymentDate *time.Time
	NextPaymentDate *time.Time
	ExpiresAt       *time.Time
	IsLifetime      bool
	SchemaVersion   int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SubscriptionRepo is the document store contract for subscription records.
// Reads return (nil, nil) when no record exists for the user. Any store I/O
// failure surfaces as a StorageUnavailable error, never as silent success.
type SubscriptionRepo interface {
	GetSubscription(ctx context.Context, userID string) (*SubscriptionRecord, error)
	SaveSubscription(ctx context.Context, rec *SubscriptionRecord) error
	ListByStatus(ctx context.Context, status Status, page, pageSize int) ([]*SubscriptionRecord, int, error)
	// UpdateExpired flips every active, non-lifetime record whose payment date
	// plus grace window lies before now to expired and returns the user ids.
	UpdateExpired(ctx context.Context, now time.Time) (int, []string, error)
}

// Transaction runs fn atomically against the store.
type Transaction interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NewFreeSubscription is the record a user has before ever upgrading.
func NewFreeSubscription(userID, email string, now time.Time) *SubscriptionRecord {
	return &SubscriptionRecord{
		UserID:        userID,
		Email:         email,
		Plan:          PlanFree,
		Status:        StatusActive,
		SchemaVersion: SchemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// SchemaVersion is the current shape of SubscriptionRecord. Bump it together
// with a migration when fields are added or change meaning.
const SchemaVersion = 1

// CheckExpiry returns the status the record should have at the given instant.
// Pure and idempotent: applying it twice with the same now yields the same
// result. Only active, non-lifetime records with a payment date can expire,
// and only after the grace window has fully elapsed.
func CheckExpiry(rec *SubscriptionRecord, now time.Time) Status {
	if rec.Status != StatusActive || rec.IsLifetime || rec.NextPaymentDate == nil {
		return rec.Status
	}
	deadline := rec.NextPaymentDate.AddDate(0, 0, constants.ExpiryGraceDays)
	if now.After(deadline) {
		return StatusExpired
	}
	return rec.Status
}

// IsAccessBlocked derives whether the user is locked out of paid features.
// Free-plan users are never blocked, whatever status was written onto the
// record, and an active lifetime record is exempt from every expiry rule.
func IsAccessBlocked(rec *SubscriptionRecord) bool {
	if rec.IsLifetime && rec.Status == StatusActive {
		return false
	}
	if rec.Plan == PlanFree {
		return false
	}
	return rec.Status == StatusExpired || rec.Status == StatusCancelled
}

// IsPendingPayment reports whether the record is waiting on the user to pay
// and submit a proof.
func IsPendingPayment(rec *SubscriptionRecord) bool {
	return rec.Status == StatusPendingPayment || rec.Status == StatusAwaitingPayment
}

// Transition is one edge of the subscription status machine.
type Transition struct {
	From Status
	To   Status
}

// validTransitions defines all allowed status transitions.
var validTransitions = map[Transition]bool{
	{StatusActive, StatusPendingPayment}:           true, // fresh upgrade from a running plan
	{StatusExpired, StatusPendingPayment}:          true, // re-subscription after expiry
	{StatusCancelled, StatusPendingPayment}:        true,
	{StatusRejected, StatusPendingPayment}:         true,
	{StatusInactive, StatusPendingPayment}:         true,
	{StatusActive, StatusPendingApproval}:          true, // coupon applied
	{StatusPendingPayment, StatusPendingApproval}:  true, // coupon applied or proof submitted
	{StatusExpired, StatusPendingApproval}:         true,
	{StatusCancelled, StatusPendingApproval}:       true,
	{StatusRejected, StatusPendingApproval}:        true,
	{StatusInactive, StatusPendingApproval}:        true,
	{StatusAwaitingPayment, StatusPendingApproval}: true, // proof submitted on a locked-in discount
	{StatusPendingApproval, StatusActive}:          true, // payment or 100% coupon approved
	{StatusPendingApproval, StatusAwaitingPayment}: true, // partial coupon approved
	{StatusPendingApproval, StatusRejected}:        true, // coupon rejected
	{StatusAwaitingPayment, StatusActive}:          true,
	{StatusActive, StatusExpired}:                  true, // via CheckExpiry only
	{StatusActive, StatusCancelled}:                true,
}

// CanTransition checks whether moving from one status to another is allowed.
func CanTransition(from, to Status) bool {
	return validTransitions[Transition{from, to}]
}

// ValidPlan reports whether the id names a catalog plan.
func ValidPlan(p Plan) bool {
	switch p {
	case PlanFree, PlanStudent, PlanPremium, PlanLifetime:
		return true
	}
	return false
}

// ValidStatus reports whether the value is a known status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusPendingPayment, StatusPendingApproval, StatusAwaitingPayment,
		StatusExpired, StatusCancelled, StatusRejected, StatusInactive:
		return true
	}
	return false
}
