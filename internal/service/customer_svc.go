package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/api/dto"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// CustomerService 顾客档案
type CustomerService struct {
	customerRepo repository.CustomerRepository
	userRepo     repository.UserRepository
	log          *zap.Logger
}

func NewCustomerService(customerRepo repository.CustomerRepository, userRepo repository.UserRepository, log *zap.Logger) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, userRepo: userRepo, log: log.Named("customer")}
}

// resolveCustomer 按账号查找顾客档案，不存在则用账号信息创建
// 下单事务内也会调用，传入的仓储需绑定同一事务
func resolveCustomer(ctx context.Context, customers repository.CustomerRepository, users repository.UserRepository, userID int64) (*model.Customer, bool, error) {
	customer, err := customers.GetByUserID(ctx, userID)
	if err == nil {
		return customer, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		return nil, false, ErrNotFound
	}

	// 邮箱已被其他顾客档案占用时无法自动创建，交给管理员处理
	taken, err := customers.EmailTaken(ctx, user.Email)
	if err != nil {
		return nil, false, err
	}
	if taken {
		return nil, false, fieldSentinel("email", ErrCustomerEmailTaken)
	}

	customer = &model.Customer{
		UserID:     user.ID,
		FirstName:  truncate(user.FirstName, 30),
		LastName:   truncate(user.LastName, 30),
		Email:      user.Email,
		Membership: model.MembershipBronze,
	}
	if err := customers.Create(ctx, customer); err != nil {
		return nil, false, err
	}
	return customer, true, nil
}

// truncate 按字符截断，varchar 长度按字符计
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ==================== 当前用户 ====================

// Me 当前账号的顾客档案，首次访问时创建
func (s *CustomerService) Me(ctx context.Context, userID int64) (*model.Customer, error) {
	customer, created, err := resolveCustomer(ctx, s.customerRepo, s.userRepo, userID)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发首次访问，另一请求已经创建
		existing, getErr := s.customerRepo.GetByUserID(ctx, userID)
		if getErr != nil {
			return nil, s.translateUnique(err)
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("customer profile created", zap.Int64("user_id", userID), zap.Int64("customer_id", customer.ID))
	}
	return customer, nil
}

func (s *CustomerService) UpdateMe(ctx context.Context, userID int64, req *dto.MeUpdateRequest) (*model.Customer, error) {
	customer, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		customer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		customer.LastName = *req.LastName
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.BirthDate != nil {
		t := req.BirthDate.Time
		customer.BirthDate = &t
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, s.translateUnique(err)
	}
	return s.customerRepo.GetByID(ctx, customer.ID)
}

func (s *CustomerService) MyAddress(ctx context.Context, userID int64) (*model.Address, error) {
	customer, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if customer.Address == nil {
		return nil, ErrNotFound
	}
	return customer.Address, nil
}

func (s *CustomerService) SaveMyAddress(ctx context.Context, userID int64, req *dto.AddressRequest) (*model.Address, error) {
	customer, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	address := &model.Address{
		CustomerID: customer.ID,
		Street:     strings.TrimSpace(req.Street),
		City:       strings.TrimSpace(req.City),
		Zip:        req.Zip,
	}
	if err := s.customerRepo.UpsertAddress(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

// ==================== 后台管理 ====================

func (s *CustomerService) List(ctx context.Context, p repository.Pagination) ([]model.Customer, int64, error) {
	return s.customerRepo.List(ctx, p)
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*model.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return customer, nil
}

func (s *CustomerService) Create(ctx context.Context, req *dto.CustomerRequest) (*model.Customer, error) {
	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, doesNotExist("user_id", req.UserID)
	}
	if _, err := s.customerRepo.GetByUserID(ctx, req.UserID); err == nil {
		return nil, fieldError("user_id", "customer with this user already exists.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer := &model.Customer{UserID: req.UserID}
	applyCustomer(customer, req)
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, s.translateUnique(err)
	}
	return s.Get(ctx, customer.ID)
}

// Update PUT 整体替换，user_id 不可修改
func (s *CustomerService) Update(ctx context.Context, id int64, req *dto.CustomerRequest) (*model.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCustomer(customer, req)
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, s.translateUnique(err)
	}
	return s.Get(ctx, id)
}

func applyCustomer(customer *model.Customer, req *dto.CustomerRequest) {
	customer.FirstName = req.FirstName
	customer.LastName = req.LastName
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.BirthDate = nil
	if req.BirthDate != nil {
		t := req.BirthDate.Time
		customer.BirthDate = &t
	}
	customer.Membership = req.Membership
	if customer.Membership == "" {
		customer.Membership = model.MembershipBronze
	}
}

func (s *CustomerService) Patch(ctx context.Context, id int64, req *dto.CustomerPatchRequest) (*model.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FirstName != nil {
		customer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		customer.LastName = *req.LastName
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.BirthDate != nil {
		t := req.BirthDate.Time
		customer.BirthDate = &t
	}
	if req.Membership != nil {
		customer.Membership = *req.Membership
	}
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, s.translateUnique(err)
	}
	return s.Get(ctx, id)
}

// SetMembership 后台列表直接改会员等级
func (s *CustomerService) SetMembership(ctx context.Context, id int64, membership string) (*model.Customer, error) {
	if _, ok := model.Memberships[membership]; !ok {
		return nil, fieldError("membership", "\""+membership+"\" is not a valid choice.")
	}
	if _, err := s.customerRepo.UpdateFields(ctx, id, map[string]interface{}{"membership": membership}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete 有订单的顾客不可删除，地址随之删除
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	err := s.customerRepo.Transaction(ctx, func(txRepo repository.CustomerRepository) error {
		if _, err := txRepo.GetByID(ctx, id); err != nil {
			return notFound(err)
		}
		count, err := txRepo.CountOrders(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrCustomerProtected
		}
		_, err = txRepo.Delete(ctx, id)
		return err
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrCustomerProtected
	}
	return err
}

func (s *CustomerService) translateUnique(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fieldSentinel("email", ErrCustomerEmailTaken)
	}
	return err
}
