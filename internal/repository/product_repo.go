package repository

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)

	// 关联
	CountOrderItems(ctx context.Context, id int64) (int64, error)
	ReplacePromotions(ctx context.Context, product *model.Product, promotions []model.Promotion) error

	// 事务
	WithTx(tx *gorm.DB) ProductRepository
	Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error
}

// ==================== 过滤条件 ====================

// ProductFilter 商品过滤条件
type ProductFilter struct {
	CollectionID *int64
	Search       string
	PriceGT      *decimal.Decimal
	PriceLT      *decimal.Decimal
	Ordering     string
	Pagination
}

// productOrderings 允许的排序字段
var productOrderings = map[string]string{
	"unit_price":   "unit_price ASC",
	"-unit_price":  "unit_price DESC",
	"last_update":  "last_update ASC",
	"-last_update": "last_update DESC",
}

// IsValidProductOrdering 校验排序参数
func IsValidProductOrdering(ordering string) bool {
	if ordering == "" {
		return true
	}
	_, ok := productOrderings[ordering]
	return ok
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Promotions").
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

func (r *productRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Product{ID: id}).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) (int64, error) {
	var rows int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 多对多中间表没有级联，先解除
		if err := tx.Model(&model.Product{ID: id}).Association("Promotions").Clear(); err != nil {
			return err
		}
		if err := NewCollectionRepository(tx).ClearFeaturedProduct(ctx, id); err != nil {
			return err
		}
		result := tx.Delete(&model.Product{}, id)
		rows = result.RowsAffected
		return result.Error
	})
	return rows, err
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.CollectionID != nil {
		query = query.Where("collection_id = ?", *filter.CollectionID)
	}
	if filter.Search != "" {
		kw := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?", kw, kw)
	}
	if filter.PriceGT != nil {
		query = query.Where("unit_price > ?", *filter.PriceGT)
	}
	if filter.PriceLT != nil {
		query = query.Where("unit_price < ?", *filter.PriceLT)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "title ASC"
	if o, ok := productOrderings[filter.Ordering]; ok {
		order = o
	}

	p := filter.Pagination.Normalize()
	err := query.
		Order(order).
		Order("id ASC").
		Limit(p.PageSize).
		Offset(p.Offset()).
		Find(&products).Error

	return products, total, err
}

func (r *productRepo) CountOrderItems(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.OrderItem{}).Where("product_id = ?", id).Count(&count).Error
	return count, err
}

func (r *productRepo) ReplacePromotions(ctx context.Context, product *model.Product, promotions []model.Promotion) error {
	assoc := r.db.WithContext(ctx).Model(product).Association("Promotions")
	if len(promotions) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(promotions)
}

// ==================== 事务支持 ====================

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{db: tx}
}

func (r *productRepo) Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
