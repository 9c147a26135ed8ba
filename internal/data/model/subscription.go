package model

import "time"

// Subscription is the per-user subscription row.
type Subscription struct {
	ID              uint64     `gorm:"primaryKey;column:subscription_id;autoIncrement"`
	UserID          string     `gorm:"column:user_id;type:varchar(36);uniqueIndex"`
	Email           string     `gorm:"column:email;type:varchar(255)"`
	Plan            string     `gorm:"column:plan;type:varchar(20);not null"`
	Status          string     `gorm:"column:status;type:varchar(20);not null;index:idx_status"`
	PaymentMethod   string     `gorm:"column:payment_method;type:varchar(10)"`
	DiscountPercent int        `gorm:"column:discount_percent;default:0"`
	Price           float64    `gorm:"column:price;type:decimal(10,2);default:0"`
	ProofSubmitted  bool       `gorm:"column:proof_submitted;default:false"`
	ProofURL        string     `gorm:"column:proof_url;type:varchar(500)"`
	LastPaymentDate *time.Time `gorm:"column:last_payment_date"`
	NextPaymentDate *time.Time `gorm:"column:next_payment_date;index:idx_next_payment"`
	ExpiresAt       *time.Time `gorm:"column:expires_at"`
	IsLifetime      bool       `gorm:"column:is_lifetime;default:false"`
	SchemaVersion   int        `gorm:"column:schema_version;default:1"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Subscription) TableName() string { return "subscription" }
