package data

import (
	"context"
	"errors"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/apperrors"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/biz"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// couponRequestRepo implements biz.CouponRequestRepo on MySQL.
type couponRequestRepo struct {
	data *Data
	log  *log.Helper
}

// NewCouponRequestRepo creates the coupon request repository.
func NewCouponRequestRepo(data *Data, logger log.Logger) biz.CouponRequestRepo {
	return &couponRequestRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// CreateRequest inserts a new waiting request.
func (r *couponRequestRepo) CreateRequest(ctx context.Context, req *biz.CouponRequest) error {
	m := toModelCouponRequest(req)
	if err := r.data.conn(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to create coupon request %s: %v", req.Token, err)
		return apperrors.ErrorStorageUnavailable("failed to create coupon request: %v", err)
	}
	return nil
}

// GetRequest returns the request for a token, or (nil, nil) when unknown.
func (r *couponRequestRepo) GetRequest(ctx context.Context, token string) (*biz.CouponRequest, error) {
	var m model.CouponRequest
	err := r.data.conn(ctx).Where("token = ?", token).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get coupon request %s: %v", token, err)
		return nil, apperrors.ErrorStorageUnavailable("failed to read coupon request: %v", err)
	}
	return toBizCouponRequest(&m), nil
}

// UpdateRequest persists the resolution of a request.
func (r *couponRequestRepo) UpdateRequest(ctx context.Context, req *biz.CouponRequest) error {
	m := toModelCouponRequest(req)
	if err := r.data.conn(ctx).Model(&model.CouponRequest{}).
		Where("token = ?", req.Token).
		Updates(map[string]interface{}{
			"approval_status": m.ApprovalStatus,
			"resolved_at":     m.ResolvedAt,
		}).Error; err != nil {
		r.log.Errorf("Failed to update coupon request %s: %v", req.Token, err)
		return apperrors.ErrorStorageUnavailable("failed to update coupon request: %v", err)
	}
	return nil
}

func toBizCouponRequest(m *model.CouponRequest) *biz.CouponRequest {
	return &biz.CouponRequest{
		Token:             m.Token,
		OwnerUserID:       m.OwnerUserID,
		OwnerEmail:        m.OwnerEmail,
		Code:              m.Code,
		RequestedPlan:     biz.Plan(m.RequestedPlan),
		RequestedDiscount: m.RequestedDiscount,
		RequestedPrice:    m.RequestedPrice,
		ApprovalStatus:    m.ApprovalStatus,
		CreatedAt:         m.CreatedAt,
		ResolvedAt:        m.ResolvedAt,
	}
}

func toModelCouponRequest(req *biz.CouponRequest) *model.CouponRequest {
	return &model.CouponRequest{
		Token:             req.Token,
		OwnerUserID:       req.OwnerUserID,
		OwnerEmail:        req.OwnerEmail,
		Code:              req.Code,
		RequestedPlan:     string(req.RequestedPlan),
		RequestedDiscount: req.RequestedDiscount,
		RequestedPrice:    req.RequestedPrice,
		ApprovalStatus:    req.ApprovalStatus,
		CreatedAt:         req.CreatedAt,
		ResolvedAt:        req.ResolvedAt,
	}
}
