package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/repository"
)

// Notifier 下单事务提交后的通知出口
type Notifier interface {
	Dispatch(ctx context.Context, evt notify.OrderCreatedEvent) []notify.Delivery
}

// Actor 当前请求身份
type Actor struct {
	UserID  int64
	IsAdmin bool
}

// OrderService 下单与订单管理
type OrderService struct {
	uow          *repository.CheckoutUnitOfWork
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	notifier     Notifier
	log          *zap.Logger
	now          func() time.Time
}

func NewOrderService(
	uow *repository.CheckoutUnitOfWork,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	notifier Notifier,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		uow:          uow,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		notifier:     notifier,
		log:          log.Named("order"),
		now:          time.Now,
	}
}

// ==================== 下单 ====================

// PlaceOrder 把购物车转换为订单
//  1. 事务外预检：购物车存在且非空
//  2. 事务内锁定购物车后复检，解析/创建顾客，写订单与明细 (冻结单价)，删除购物车
//  3. 提交后广播 order.created，通知失败不影响下单结果
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64, cartID string) (*model.Order, error) {
	cartID, ok := normalizeCartID(cartID)
	if !ok {
		return nil, fieldSentinel("cart_id", ErrCartNotFound)
	}
	if err := s.checkCart(ctx, s.uow.Carts, cartID); err != nil {
		return nil, err
	}

	var orderID int64
	err := s.uow.Transaction(ctx, func(tx *repository.CheckoutUnitOfWork) error {
		if _, err := tx.Carts.Lock(ctx, cartID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fieldSentinel("cart_id", ErrCartNotFound)
			}
			return err
		}

		// 锁住明细，避免并发改数量在冻结后被删除
		cartItems, err := tx.Carts.LockItems(ctx, cartID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return fieldSentinel("cart_id", ErrCartEmpty)
		}

		customer, _, err := resolveCustomer(ctx, tx.Customers, tx.Users, userID)
		if err != nil {
			return err
		}

		order := &model.Order{
			CustomerID:    customer.ID,
			PaymentStatus: model.PaymentStatusPending,
			PlacedAt:      s.now(),
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}

		orderItems := make([]model.OrderItem, 0, len(cartItems))
		for _, item := range cartItems {
			if item.Product == nil {
				return fieldSentinel("cart_id", ErrProductNotFound)
			}
			orderItems = append(orderItems, model.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.Product.UnitPrice,
			})
		}
		if err := tx.Orders.CreateItems(ctx, orderItems); err != nil {
			return err
		}

		if _, err := tx.Carts.Delete(ctx, cartID); err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.log.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", order.CustomerID),
		zap.Int("items", len(order.Items)),
	)

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, notify.NewOrderCreatedEvent(order, userID))
	}
	return order, nil
}

func (s *OrderService) checkCart(ctx context.Context, carts repository.CartRepository, cartID string) error {
	exists, err := carts.Exists(ctx, cartID)
	if err != nil {
		return err
	}
	if !exists {
		return fieldSentinel("cart_id", ErrCartNotFound)
	}
	count, err := carts.CountItems(ctx, cartID)
	if err != nil {
		return err
	}
	if count == 0 {
		return fieldSentinel("cart_id", ErrCartEmpty)
	}
	return nil
}

// ==================== 查询 ====================

// List 管理员看全部，其他人只看自己的订单
func (s *OrderService) List(ctx context.Context, actor Actor, p repository.Pagination) ([]model.Order, int64, error) {
	filter := repository.OrderFilter{Pagination: p}
	if !actor.IsAdmin {
		customer, err := s.customerRepo.GetByUserID(ctx, actor.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []model.Order{}, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		filter.CustomerID = &customer.ID
	}
	return s.orderRepo.List(ctx, filter)
}

// Get 非本人订单对普通用户表现为不存在
func (s *OrderService) Get(ctx context.Context, actor Actor, id int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if actor.IsAdmin {
		return order, nil
	}

	customer, err := s.customerRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, notFound(err)
	}
	if customer.ID != order.CustomerID {
		return nil, ErrNotFound
	}
	return order, nil
}

// ==================== 管理 ====================

// UpdatePaymentStatus 任意状态之间均可切换
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id int64, status string) (*model.Order, error) {
	if _, ok := model.PaymentStatuses[status]; !ok {
		return nil, fieldError("payment_status", "\""+status+"\" is not a valid choice.")
	}
	if _, err := s.orderRepo.UpdatePaymentStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.Get(ctx, Actor{IsAdmin: true}, id)
}

func (s *OrderService) Delete(ctx context.Context, id int64) error {
	rows, err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
