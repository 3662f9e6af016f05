package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tidewater/service-booking/internal/domain"
	"github.com/tidewater/service-booking/internal/domain/coupon"
)

// CouponModel is the GORM model for the coupons table.
type CouponModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code             string    `gorm:"uniqueIndex;not null;size:50"`
	DiscountType     string    `gorm:"not null;size:20"`
	DiscountValue    float64   `gorm:"not null"`
	MinOrderCents    int64     `gorm:"not null;default:0"`
	MaxDiscountCents int64     `gorm:"not null;default:0"`
	ValidFrom        time.Time `gorm:"not null"`
	ValidTo          time.Time `gorm:"not null"`
	UsageLimit       int64     `gorm:"not null;default:0"`
	UsageCount       int64     `gorm:"not null;default:0"`
	AppliesTo        string    `gorm:"not null;size:20;default:'ALL'"`
	IsActive         bool      `gorm:"not null;default:true"`
	IsDeleted        bool      `gorm:"not null;default:false"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CouponModel) TableName() string {
	return "coupons"
}

// GormCouponRepository implements coupon.Repository and coupon.UsageStore.
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository.
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindByCode retrieves the coupon for the normalized code, or nil when no
// such coupon exists. Soft-deleted coupons never reach the engine.
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	var model CouponModel
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_deleted = ?", coupon.NormalizeCode(code), false).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find coupon by code: %w", err)
	}
	return toDomainCoupon(&model), nil
}

// ClaimUsage performs a compare-and-increment on the coupon's usage count.
// The guard lives in the WHERE clause so two confirmations racing for the
// last unit resolve inside the database: exactly one row update wins.
func (r *GormCouponRepository) ClaimUsage(ctx context.Context, code string) error {
	normalized := coupon.NormalizeCode(code)
	result := r.db.WithContext(ctx).
		Model(&CouponModel{}).
		Where("code = ? AND is_deleted = ? AND (usage_limit = 0 OR usage_count < usage_limit)",
			normalized, false).
		Updates(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return domain.Wrap(domain.CodeUnavailable, "failed to claim coupon usage", result.Error)
	}
	if result.RowsAffected == 0 {
		existing, err := r.FindByCode(ctx, normalized)
		if err != nil {
			return domain.Wrap(domain.CodeUnavailable, "failed to claim coupon usage", err)
		}
		if existing == nil {
			return domain.Newf(domain.CodeCouponNotFound, "coupon %s not found", normalized)
		}
		return domain.Newf(domain.CodeCouponExhausted, "coupon %s has reached its usage limit", normalized)
	}
	return nil
}

// ReleaseUsage undoes a prior successful claim.
func (r *GormCouponRepository) ReleaseUsage(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).
		Model(&CouponModel{}).
		Where("code = ? AND usage_count > 0", coupon.NormalizeCode(code)).
		Updates(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count - 1"),
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return domain.Wrap(domain.CodeUnavailable, "failed to release coupon usage", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("no coupon usage to release")
	}
	return nil
}

func toDomainCoupon(m *CouponModel) *coupon.Coupon {
	return &coupon.Coupon{
		ID:               m.ID,
		Code:             m.Code,
		DiscountType:     coupon.DiscountType(m.DiscountType),
		DiscountValue:    m.DiscountValue,
		MinOrderCents:    m.MinOrderCents,
		MaxDiscountCents: m.MaxDiscountCents,
		ValidFrom:        m.ValidFrom,
		ValidTo:          m.ValidTo,
		UsageLimit:       m.UsageLimit,
		UsageCount:       m.UsageCount,
		AppliesTo:        coupon.Applicability(m.AppliesTo),
		IsActive:         m.IsActive,
		IsDeleted:        m.IsDeleted,
		UpdatedAt:        m.UpdatedAt,
	}
}
