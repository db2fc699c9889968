package repository

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/model"
)

// ReviewRepository 评价仓储接口，所有操作都限定在某个商品下
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	Get(ctx context.Context, productID, id int64) (*model.Review, error)
	ListByProduct(ctx context.Context, productID int64) ([]model.Review, error)
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, productID, id int64) (int64, error)
}

type reviewRepo struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Omit("Product").Create(review).Error
}

func (r *reviewRepo) Get(ctx context.Context, productID, id int64) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", id, productID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID int64) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepo) Update(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).
		Model(review).
		Select("Name", "Description").
		Updates(review).Error
}

func (r *reviewRepo) Delete(ctx context.Context, productID, id int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", id, productID).
		Delete(&model.Review{})
	return result.RowsAffected, result.Error
}
