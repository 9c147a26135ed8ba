package constants

import "time"

// Billing cycle constants
const (
	// BillingCycleDays is the length of one paid period
	BillingCycleDays = 30
	// ExpiryGraceDays is the grace window after next_payment_date before an
	// active subscription is marked expired
	ExpiryGraceDays = 3
)

// Expiry sweep constants
const (
	// ExpirySweepSpec runs the sweep at the top of every hour (cron with seconds)
	ExpirySweepSpec = "0 0 * * * *"
	// ExpirySweepTimeout bounds a single sweep run
	ExpirySweepTimeout = 5 * time.Minute
)

// Distributed lock constants
const (
	// SubscriptionLockExpiration is the per-user mutation lock TTL
	SubscriptionLockExpiration = 30 * time.Second
	// SubscriptionLockRetries is how many times to retry acquiring the lock
	SubscriptionLockRetries = 8
)

// Pagination constants
const (
	// DefaultPageSize is the default page size for admin listings
	DefaultPageSize = 20
	// MaxPageSize is the maximum page size for admin listings
	MaxPageSize = 100
)

// Approval link actions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Payment methods
const (
	PaymentMethodPix  = "pix"
	PaymentMethodCard = "card"
)

// Approval status of a coupon request
const (
	ApprovalWaiting  = "waiting"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Currency for every price in the catalog
const Currency = "BRL"

// LifetimeInstallments is the number of card installments for the lifetime plan
const LifetimeInstallments = 5
