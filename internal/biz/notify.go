package biz

import "context"

// DiscountApprovalNotice is the payload sent to the administrator when a user
// requests a discount. It carries both resolution links, each parameterized by
// the same unguessable token plus an explicit action discriminator.
type DiscountApprovalNotice struct {
	UserID          string
	UserEmail       string
	CouponCode      string
	DiscountPercent int
	Plan            Plan
	PlanName        string
	RequestedPrice  float64
	ApproveURL      string
	RejectURL       string
}

// NotificationDispatcher delivers an approval notice out-of-band (anti-
// corruption layer over the messaging channel). The contract is at-least-once
// with no delivery or read confirmation: callers must not block a state
// transition on it nor assume the message was seen.
type NotificationDispatcher interface {
	// DispatchDiscountApproval sends the notice and returns the prefilled chat
	// link so the caller can also surface it directly to the requesting user.
	DispatchDiscountApproval(ctx context.Context, notice *DiscountApprovalNotice) (link string, err error)
}
