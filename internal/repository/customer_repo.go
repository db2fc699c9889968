package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/model"
)

// ==================== 接口定义 ====================

// CustomerRepository 顾客仓储接口
type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Customer, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, p Pagination) ([]model.Customer, int64, error)
	Update(ctx context.Context, customer *model.Customer) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	CountOrders(ctx context.Context, id int64) (int64, error)

	// 地址
	GetAddress(ctx context.Context, customerID int64) (*model.Address, error)
	UpsertAddress(ctx context.Context, address *model.Address) error

	WithTx(tx *gorm.DB) CustomerRepository
	Transaction(ctx context.Context, fn func(txRepo CustomerRepository) error) error
}

// ==================== 仓储实现 ====================

type customerRepo struct {
	db *gorm.DB
}

// NewCustomerRepository 创建顾客仓储
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(customer).Error
}

func (r *customerRepo) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).Preload("Address").First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) GetByUserID(ctx context.Context, userID int64) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).
		Preload("Address").
		Where("user_id = ?", userID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Customer{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *customerRepo) List(ctx context.Context, p Pagination) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Customer{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	p = p.Normalize()
	err := query.
		Order("first_name ASC, last_name ASC, id ASC").
		Limit(p.PageSize).
		Offset(p.Offset()).
		Find(&customers).Error

	return customers, total, err
}

func (r *customerRepo) Update(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(customer).Error
}

func (r *customerRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ?", id).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *customerRepo) Delete(ctx context.Context, id int64) (int64, error) {
	var rows int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&model.Address{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Customer{}, id)
		rows = result.RowsAffected
		return result.Error
	})
	return rows, err
}

func (r *customerRepo) CountOrders(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Where("customer_id = ?", id).Count(&count).Error
	return count, err
}

func (r *customerRepo) GetAddress(ctx context.Context, customerID int64) (*model.Address, error) {
	var address model.Address
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&address).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *customerRepo) UpsertAddress(ctx context.Context, address *model.Address) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"street", "city", "zip"}),
		}).
		Create(address).Error
}

// ==================== 事务支持 ====================

func (r *customerRepo) WithTx(tx *gorm.DB) CustomerRepository {
	return &customerRepo{db: tx}
}

func (r *customerRepo) Transaction(ctx context.Context, fn func(txRepo CustomerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
