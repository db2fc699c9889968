package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/model"
	"storefront/pkg/database"
)

// ==================== 接口定义 ====================

// CartRepository 购物车仓储接口
type CartRepository interface {
	Create(ctx context.Context, cart *model.Cart) error
	GetByID(ctx context.Context, id string) (*model.Cart, error)
	Exists(ctx context.Context, id string) (bool, error)
	// Lock 锁定购物车行 (SELECT ... FOR UPDATE)，不支持行锁的方言退化为普通查询
	Lock(ctx context.Context, id string) (*model.Cart, error)
	Delete(ctx context.Context, id string) (int64, error)
	DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error)

	// 明细
	ListItems(ctx context.Context, cartID string) ([]model.CartItem, error)
	// LockItems 同 ListItems，并锁定明细行，改数量/删明细需等待事务结束
	LockItems(ctx context.Context, cartID string) ([]model.CartItem, error)
	GetItem(ctx context.Context, cartID string, itemID int64) (*model.CartItem, error)
	FindItemByProduct(ctx context.Context, cartID string, productID int64) (*model.CartItem, error)
	CountItems(ctx context.Context, cartID string) (int64, error)
	CreateItem(ctx context.Context, item *model.CartItem) error
	IncrementItem(ctx context.Context, cartID string, productID int64, quantity int) (int64, error)
	UpdateItemQuantity(ctx context.Context, cartID string, itemID int64, quantity int) (int64, error)
	DeleteItem(ctx context.Context, cartID string, itemID int64) (int64, error)

	WithTx(tx *gorm.DB) CartRepository
}

// ==================== 仓储实现 ====================

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) Create(ctx context.Context, cart *model.Cart) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(cart).Error
}

func (r *cartRepo) GetByID(ctx context.Context, id string) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepo) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Cart{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *cartRepo) Lock(ctx context.Context, id string) (*model.Cart, error) {
	var cart model.Cart
	query := r.db.WithContext(ctx)
	if database.SupportsRowLocking(query) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.Where("id = ?", id).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepo) Delete(ctx context.Context, id string) (int64, error) {
	var rows int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Cart{})
		rows = result.RowsAffected
		return result.Error
	})
	return rows, err
}

func (r *cartRepo) DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	var rows int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Model(&model.Cart{}).Select("id").Where("created_at < ?", before)
		if err := tx.Where("cart_id IN (?)", stale).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("created_at < ?", before).Delete(&model.Cart{})
		rows = result.RowsAffected
		return result.Error
	})
	return rows, err
}

// ==================== 明细 ====================

func (r *cartRepo) ListItems(ctx context.Context, cartID string) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *cartRepo) LockItems(ctx context.Context, cartID string) ([]model.CartItem, error) {
	var items []model.CartItem
	query := r.db.WithContext(ctx)
	if database.SupportsRowLocking(query) {
		// 只锁 cart_items，Preload 的商品查询是独立语句
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *cartRepo) GetItem(ctx context.Context, cartID string, itemID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) FindItemByProduct(ctx context.Context, cartID string, productID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) CountItems(ctx context.Context, cartID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CartItem{}).Where("cart_id = ?", cartID).Count(&count).Error
	return count, err
}

func (r *cartRepo) CreateItem(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

// IncrementItem 原子累加数量，返回受影响行数 (0 表示该商品尚不在购物车中)
func (r *cartRepo) IncrementItem(ctx context.Context, cartID string, productID int64, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
	return result.RowsAffected, result.Error
}

func (r *cartRepo) UpdateItemQuantity(ctx context.Context, cartID string, itemID int64, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		UpdateColumn("quantity", quantity)
	return result.RowsAffected, result.Error
}

func (r *cartRepo) DeleteItem(ctx context.Context, cartID string, itemID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&model.CartItem{})
	return result.RowsAffected, result.Error
}

// ==================== 事务支持 ====================

func (r *cartRepo) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepo{db: tx}
}
