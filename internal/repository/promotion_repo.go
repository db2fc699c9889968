package repository

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/model"
)

// PromotionRepository 促销仓储接口
type PromotionRepository interface {
	Create(ctx context.Context, promotion *model.Promotion) error
	List(ctx context.Context) ([]model.Promotion, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Promotion, error)
}

type promotionRepo struct {
	db *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) PromotionRepository {
	return &promotionRepo{db: db}
}

func (r *promotionRepo) Create(ctx context.Context, promotion *model.Promotion) error {
	return r.db.WithContext(ctx).Create(promotion).Error
}

func (r *promotionRepo) List(ctx context.Context) ([]model.Promotion, error) {
	var promotions []model.Promotion
	err := r.db.WithContext(ctx).Order("id ASC").Find(&promotions).Error
	return promotions, err
}

func (r *promotionRepo) FindByIDs(ctx context.Context, ids []int64) ([]model.Promotion, error) {
	var promotions []model.Promotion
	if len(ids) == 0 {
		return promotions, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&promotions).Error
	return promotions, err
}
