package repository

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/model"
)

// ==================== 接口定义 ====================

// CollectionRepository 商品集合仓储接口
type CollectionRepository interface {
	Create(ctx context.Context, collection *model.Collection) error
	GetByID(ctx context.Context, id int64) (*model.Collection, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, p Pagination) ([]model.Collection, int64, error)
	Update(ctx context.Context, collection *model.Collection) error
	Delete(ctx context.Context, id int64) (int64, error)

	CountProducts(ctx context.Context, id int64) (int64, error)
	// ClearFeaturedProduct 商品删除时把引用它的集合推荐位置空
	ClearFeaturedProduct(ctx context.Context, productID int64) error

	WithTx(tx *gorm.DB) CollectionRepository
	Transaction(ctx context.Context, fn func(txRepo CollectionRepository) error) error
}

// ==================== 仓储实现 ====================

type collectionRepo struct {
	db *gorm.DB
}

// NewCollectionRepository 创建集合仓储
func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepo{db: db}
}

// withProductsCount 附带实时商品数
func withProductsCount(db *gorm.DB) *gorm.DB {
	return db.Select("collections.*, (SELECT COUNT(*) FROM products WHERE products.collection_id = collections.id) AS products_count")
}

func (r *collectionRepo) Create(ctx context.Context, collection *model.Collection) error {
	return r.db.WithContext(ctx).Create(collection).Error
}

func (r *collectionRepo) GetByID(ctx context.Context, id int64) (*model.Collection, error) {
	var collection model.Collection
	err := r.db.WithContext(ctx).
		Scopes(withProductsCount).
		Where("collections.id = ?", id).
		First(&collection).Error
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *collectionRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Collection{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *collectionRepo) List(ctx context.Context, p Pagination) ([]model.Collection, int64, error) {
	var collections []model.Collection
	var total int64

	if err := r.db.WithContext(ctx).Model(&model.Collection{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	p = p.Normalize()
	err := r.db.WithContext(ctx).
		Scopes(withProductsCount).
		Order("collections.title ASC, collections.id ASC").
		Limit(p.PageSize).
		Offset(p.Offset()).
		Find(&collections).Error

	return collections, total, err
}

func (r *collectionRepo) Update(ctx context.Context, collection *model.Collection) error {
	return r.db.WithContext(ctx).
		Model(collection).
		Select("Title", "FeaturedProductID", "UpdatedBy").
		Updates(collection).Error
}

func (r *collectionRepo) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.Collection{}, id)
	return result.RowsAffected, result.Error
}

func (r *collectionRepo) CountProducts(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("collection_id = ?", id).Count(&count).Error
	return count, err
}

func (r *collectionRepo) ClearFeaturedProduct(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Collection{}).
		Where("featured_product_id = ?", productID).
		Update("featured_product_id", nil).Error
}

// ==================== 事务支持 ====================

func (r *collectionRepo) WithTx(tx *gorm.DB) CollectionRepository {
	return &collectionRepo{db: tx}
}

func (r *collectionRepo) Transaction(ctx context.Context, fn func(txRepo CollectionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
