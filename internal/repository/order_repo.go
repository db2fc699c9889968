package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/model"
)

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件，CustomerID 为空表示不限顾客
type OrderFilter struct {
	CustomerID *int64
	Pagination
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	CreateItems(ctx context.Context, items []model.OrderItem) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status string) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)

	WithTx(tx *gorm.DB) OrderRepository
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

// CreateItems 批量写入订单明细
func (r *orderRepository) CreateItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(items, 100).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Product").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	p := filter.Pagination.Normalize()
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Product").
		Order("placed_at DESC, id DESC").
		Limit(p.PageSize).
		Offset(p.Offset()).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id int64, status string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Update("payment_status", status)
	return result.RowsAffected, result.Error
}

// Delete 删除订单及其明细
func (r *orderRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var rows int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Order{}, id)
		rows = result.RowsAffected
		return result.Error
	})
	return rows, err
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

// ==================== 工作单元 ====================

// CheckoutUnitOfWork 下单工作单元（事务）
type CheckoutUnitOfWork struct {
	db        *gorm.DB
	Carts     CartRepository
	Customers CustomerRepository
	Orders    OrderRepository
	Users     UserRepository
}

// NewCheckoutUnitOfWork 创建工作单元
func NewCheckoutUnitOfWork(db *gorm.DB) *CheckoutUnitOfWork {
	return &CheckoutUnitOfWork{
		db:        db,
		Carts:     NewCartRepository(db),
		Customers: NewCustomerRepository(db),
		Orders:    NewOrderRepository(db),
		Users:     NewUserRepository(db),
	}
}

// Transaction 执行事务，fn 返回错误时整体回滚
func (u *CheckoutUnitOfWork) Transaction(ctx context.Context, fn func(uow *CheckoutUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CheckoutUnitOfWork{
			db:        tx,
			Carts:     NewCartRepository(tx),
			Customers: NewCustomerRepository(tx),
			Orders:    NewOrderRepository(tx),
			Users:     NewUserRepository(tx),
		})
	})
}
