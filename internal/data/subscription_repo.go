package data

import (
	"context"
	"errors"
	"time"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/apperrors"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/biz"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/constants"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// subscriptionRepo implements biz.SubscriptionRepo on MySQL.
type subscriptionRepo struct {
	data *Data
	log  *log.Helper
}

// NewSubscriptionRepo creates the subscription repository.
func NewSubscriptionRepo(data *Data, logger log.Logger) biz.SubscriptionRepo {
	return &subscriptionRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetSubscription returns the user's record, or (nil, nil) when absent.
func (r *subscriptionRepo) GetSubscription(ctx context.Context, userID string) (*biz.SubscriptionRecord, error) {
	var m model.Subscription
	err := r.data.conn(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get subscription for user %s: %v", userID, err)
		return nil, apperrors.ErrorStorageUnavailable("failed to read subscription: %v", err)
	}
	return toBizSubscription(&m), nil
}

// SaveSubscription persists the record, creating the row on first write.
func (r *subscriptionRepo) SaveSubscription(ctx context.Context, rec *biz.SubscriptionRecord) error {
	m := toModelSubscription(rec)
	if err := r.data.conn(ctx).Save(m).Error; err != nil {
		r.log.Errorf("Failed to save subscription for user %s: %v", rec.UserID, err)
		return apperrors.ErrorStorageUnavailable("failed to save subscription: %v", err)
	}
	rec.ID = m.ID
	return nil
}

// ListByStatus lists records with the given status for administrative views.
func (r *subscriptionRepo) ListByStatus(ctx context.Context, status biz.Status, page, pageSize int) ([]*biz.SubscriptionRecord, int, error) {
	var models []model.Subscription
	var total int64

	db := r.data.conn(ctx)
	if err := db.Model(&model.Subscription{}).
		Where("status = ?", string(status)).
		Count(&total).Error; err != nil {
		r.log.Errorf("Failed to count subscriptions by status %s: %v", status, err)
		return nil, 0, apperrors.ErrorStorageUnavailable("failed to count subscriptions: %v", err)
	}

	offset := (page - 1) * pageSize
	if err := db.
		Where("status = ?", string(status)).
		Order("updated_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error; err != nil {
		r.log.Errorf("Failed to list subscriptions by status %s: %v", status, err)
		return nil, 0, apperrors.ErrorStorageUnavailable("failed to list subscriptions: %v", err)
	}

	records := make([]*biz.SubscriptionRecord, len(models))
	for i := range models {
		records[i] = toBizSubscription(&models[i])
	}
	return records, int(total), nil
}

// UpdateExpired marks every active non-lifetime record past its grace window
// as expired and returns the affected user ids.
func (r *subscriptionRepo) UpdateExpired(ctx context.Context, now time.Time) (int, []string, error) {
	cutoff := now.AddDate(0, 0, -constants.ExpiryGraceDays)
	db := r.data.conn(ctx)

	var candidates []model.Subscription
	if err := db.
		Where("status = ? AND is_lifetime = ? AND next_payment_date IS NOT NULL AND next_payment_date < ?",
			string(biz.StatusActive), false, cutoff).
		Find(&candidates).Error; err != nil {
		r.log.Errorf("Failed to query expired subscriptions: %v", err)
		return 0, nil, apperrors.ErrorStorageUnavailable("failed to query expired subscriptions: %v", err)
	}

	if len(candidates) == 0 {
		return 0, []string{}, nil
	}

	uids := make([]string, len(candidates))
	for i, m := range candidates {
		uids[i] = m.UserID
	}

	result := db.Model(&model.Subscription{}).
		Where("status = ? AND is_lifetime = ? AND next_payment_date IS NOT NULL AND next_payment_date < ?",
			string(biz.StatusActive), false, cutoff).
		Update("status", string(biz.StatusExpired))
	if result.Error != nil {
		r.log.Errorf("Failed to update expired subscriptions: %v", result.Error)
		return 0, nil, apperrors.ErrorStorageUnavailable("failed to update expired subscriptions: %v", result.Error)
	}

	r.log.Infof("Marked %d subscriptions expired", result.RowsAffected)
	return int(result.RowsAffected), uids, nil
}

func toBizSubscription(m *model.Subscription) *biz.SubscriptionRecord {
	// rows written before versioning carry schema_version 0 and are shaped
	// like v1; later shape changes migrate here
	if m.SchemaVersion == 0 {
		m.SchemaVersion = biz.SchemaVersion
	}
	return &biz.SubscriptionRecord{
		ID:              m.ID,
		UserID:          m.UserID,
		Email:           m.Email,
		Plan:            biz.Plan(m.Plan),
		Status:          biz.Status(m.Status),
		PaymentMethod:   m.PaymentMethod,
		DiscountPercent: m.DiscountPercent,
		Price:           m.Price,
		ProofSubmitted:  m.ProofSubmitted,
		ProofURL:        m.ProofURL,
		LastPaymentDate: m.LastPaymentDate,
		NextPaymentDate: m.NextPaymentDate,
		ExpiresAt:       m.ExpiresAt,
		IsLifetime:      m.IsLifetime,
		SchemaVersion:   m.SchemaVersion,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toModelSubscription(rec *biz.SubscriptionRecord) *model.Subscription {
	return &model.Subscription{
		ID:              rec.ID,
		UserID:          rec.UserID,
		Email:           rec.Email,
		Plan:            string(rec.Plan),
		Status:          string(rec.Status),
		PaymentMethod:   rec.PaymentMethod,
		DiscountPercent: rec.DiscountPercent,
		Price:           rec.Price,
		ProofSubmitted:  rec.ProofSubmitted,
		ProofURL:        rec.ProofURL,
		LastPaymentDate: rec.LastPaymentDate,
		NextPaymentDate: rec.NextPaymentDate,
		ExpiresAt:       rec.ExpiresAt,
		IsLifetime:      rec.IsLifetime,
		SchemaVersion:   rec.SchemaVersion,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}
