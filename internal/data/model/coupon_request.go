package model

import "time"

// CouponRequest is one coupon-application attempt, keyed by its approval
// token. Rows are immutable once resolved and are never deleted.
type CouponRequest struct {
	Token             string     `gorm:"primaryKey;column:token;type:char(36)"`
	OwnerUserID       string     `gorm:"column:owner_user_id;type:varchar(36);not null;index:idx_owner"`
	OwnerEmail        string     `gorm:"column:owner_email;type:varchar(255)"`
	Code              string     `gorm:"column:code;type:varchar(30);not null"`
	RequestedPlan     string     `gorm:"column:requested_plan;type:varchar(20);not null"`
	RequestedDiscount int        `gorm:"column:requested_discount;not null"`
	RequestedPrice    float64    `gorm:"column:requested_price;type:decimal(10,2);not null"`
	ApprovalStatus    string     `gorm:"column:approval_status;type:enum('waiting','approved','rejected');default:'waiting';index:idx_approval_status"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	ResolvedAt        *time.Time `gorm:"column:resolved_at"`
}

func (CouponRequest) TableName() string { return "coupon_request" }
