package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/repository"
)

// recordingHandler 记录收到的事件，可配置返回错误或 panic
type recordingHandler struct {
	name   string
	err    error
	panics bool

	mu     sync.Mutex
	events []notify.OrderCreatedEvent
}

func (h *recordingHandler) Name() string { return h.name }

func (h *recordingHandler) HandleOrderCreated(_ context.Context, evt notify.OrderCreatedEvent) error {
	h.mu.Lock()
	h.events = append(h.events, evt)
	h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandler) received() []notify.OrderCreatedEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]notify.OrderCreatedEvent(nil), h.events...)
}

func TestOrderService_PlaceOrder(t *testing.T) {
	handler := &recordingHandler{name: "recording"}
	svc := newServices(t, nil)
	svc.orders.notifier = notify.NewDispatcher(zap.NewNop(), repository.NewNotificationLogRepository(svc.db), handler)
	ctx := context.Background()

	col := svc.seedCollection(t, "Kitchen")
	mug := svc.seedProduct(t, col.ID, "Mug", "5.00")
	bowl := svc.seedProduct(t, col.ID, "Bowl", "2.50")
	user := svc.seedUser(t, "alice", false)
	cartID := svc.cartWith(t, map[int64]int{mug.ID: 2, bowl.ID: 1})

	order, err := svc.orders.PlaceOrder(ctx, user.ID, cartID)
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
	assert.False(t, order.PlacedAt.IsZero())
	require.Len(t, order.Items, 2)
	assert.Equal(t, "12.50", order.TotalPrice().StringFixed(2))

	// 下单时自动创建顾客档案
	customer, err := svc.customers.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, order.CustomerID)

	// 购物车连同明细被删除
	_, err = svc.carts.Get(ctx, cartID)
	assert.ErrorIs(t, err, ErrNotFound)
	var leftover int64
	svc.db.Model(&model.CartItem{}).Where("cart_id = ?", cartID).Count(&leftover)
	assert.Zero(t, leftover)

	events := handler.received()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventOrderCreated, events[0].Event)
	assert.Equal(t, order.ID, events[0].OrderID)
	assert.Equal(t, user.ID, events[0].UserID)

	logs, err := repository.NewNotificationLogRepository(svc.db).ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.NotificationDelivered, logs[0].Status)
}

func TestOrderService_PlaceOrderFreezesPrice(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	col := svc.seedCollection(t, "Kitchen")
	mug := svc.seedProduct(t, col.ID, "Mug", "5.00")
	user := svc.seedUser(t, "alice", false)

	order, err := svc.orders.PlaceOrder(ctx, user.ID, svc.cartWith(t, map[int64]int{mug.ID: 3}))
	require.NoError(t, err)

	_, err = svc.products.SetPrice(ctx, mug.ID, mustDecimal("9.00"))
	require.NoError(t, err)

	got, err := svc.orders.Get(ctx, Actor{UserID: user.ID}, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "5.00", got.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "15.00", got.TotalPrice().StringFixed(2))
}

func TestOrderService_PlaceOrderPreconditions(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	user := svc.seedUser(t, "alice", false)
	empty := svc.cartWith(t, map[int64]int{})

	tests := []struct {
		name    string
		cartID  string
		wantErr error
	}{
		{"非法 UUID", "abc", ErrCartNotFound},
		{"购物车不存在", uuid.NewString(), ErrCartNotFound},
		{"空购物车", empty, ErrCartEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.orders.PlaceOrder(ctx, user.ID, tt.cartID)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantErr.Error(), ve.Fields["cart_id"])
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	var orders, customers int64
	svc.db.Model(&model.Order{}).Count(&orders)
	svc.db.Model(&model.Customer{}).Count(&customers)
	assert.Zero(t, orders)
	assert.Zero(t, customers, "失败的下单不应创建顾客")

	// 空购物车保持原样
	_, err := svc.carts.Get(ctx, empty)
	assert.NoError(t, err)
}

// changedAfterCheck 预检最后一步之后修改购物车，模拟预检与事务之间的并发请求
type changedAfterCheck struct {
	repository.CartRepository
	change func()
}

func (r *changedAfterCheck) CountItems(ctx context.Context, cartID string) (int64, error) {
	n, err := r.CartRepository.CountItems(ctx, cartID)
	if r.change != nil {
		r.change()
		r.change = nil
	}
	return n, err
}

func TestOrderService_PlaceOrderRechecksInsideTransaction(t *testing.T) {
	tests := []struct {
		name    string
		change  func(db *gorm.DB, cartID string) error
		wantErr error
		wantQty int
	}{
		{
			name:    "购物车被删除",
			change:  func(db *gorm.DB, cartID string) error { return db.Delete(&model.Cart{}, "id = ?", cartID).Error },
			wantErr: ErrCartNotFound,
		},
		{
			name: "明细被清空",
			change: func(db *gorm.DB, cartID string) error {
				return db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
			},
			wantErr: ErrCartEmpty,
		},
		{
			name: "数量被修改",
			change: func(db *gorm.DB, cartID string) error {
				return db.Model(&model.CartItem{}).Where("cart_id = ?", cartID).Update("quantity", 5).Error
			},
			wantQty: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newServices(t, nil)
			ctx := context.Background()
			col := svc.seedCollection(t, "Kitchen")
			mug := svc.seedProduct(t, col.ID, "Mug", "10")
			user := svc.seedUser(t, "alice", false)
			cartID := svc.cartWith(t, map[int64]int{mug.ID: 2})

			uow := repository.NewCheckoutUnitOfWork(svc.db)
			uow.Carts = &changedAfterCheck{
				CartRepository: uow.Carts,
				change:         func() { require.NoError(t, tt.change(svc.db, cartID)) },
			}
			orders := NewOrderService(uow, repository.NewOrderRepository(svc.db), repository.NewCustomerRepository(svc.db), nil, zap.NewNop())

			order, err := orders.PlaceOrder(ctx, user.ID, cartID)

			var count int64
			require.NoError(t, svc.db.Model(&model.Order{}).Count(&count).Error)

			if tt.wantErr != nil {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.wantErr.Error(), ve.Fields["cart_id"])
				assert.Zero(t, count)
				require.NoError(t, svc.db.Model(&model.Customer{}).Count(&count).Error)
				assert.Zero(t, count, "回滚后不应留下顾客")
				return
			}

			require.NoError(t, err)
			assert.EqualValues(t, 1, count)
			require.Len(t, order.Items, 1)
			assert.Equal(t, tt.wantQty, order.Items[0].Quantity)
		})
	}
}

func TestOrderService_FailingHandlerDoesNotRollback(t *testing.T) {
	failing := &recordingHandler{name: "failing", err: errors.New("downstream unavailable")}
	panicking := &recordingHandler{name: "panicking", panics: true}
	healthy := &recordingHandler{name: "healthy"}

	svc := newServices(t, nil)
	logs := repository.NewNotificationLogRepository(svc.db)
	svc.orders.notifier = notify.NewDispatcher(zap.NewNop(), logs, failing, panicking, healthy)
	ctx := context.Background()

	col := svc.seedCollection(t, "Kitchen")
	mug := svc.seedProduct(t, col.ID, "Mug", "5.00")
	user := svc.seedUser(t, "alice", false)

	order, err := svc.orders.PlaceOrder(ctx, user.ID, svc.cartWith(t, map[int64]int{mug.ID: 1}))
	require.NoError(t, err)

	_, err = svc.orders.Get(ctx, Actor{IsAdmin: true}, order.ID)
	require.NoError(t, err, "通知失败不影响已提交的订单")
	assert.Len(t, healthy.received(), 1)
	assert.Len(t, failing.received(), 1)
	assert.Len(t, panicking.received(), 1)

	entries, err := logs.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	status := make(map[string]string, len(entries))
	for _, e := range entries {
		status[e.Handler] = e.Status
	}
	assert.Equal(t, map[string]string{
		"failing":   model.NotificationFailed,
		"panicking": model.NotificationFailed,
		"healthy":   model.NotificationDelivered,
	}, status)
}

func TestOrderService_Visibility(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	col := svc.seedCollection(t, "Kitchen")
	mug := svc.seedProduct(t, col.ID, "Mug", "5.00")
	alice := svc.seedUser(t, "alice", false)
	bob := svc.seedUser(t, "bob", false)
	carol := svc.seedUser(t, "carol", false)

	aliceOrder, err := svc.orders.PlaceOrder(ctx, alice.ID, svc.cartWith(t, map[int64]int{mug.ID: 1}))
	require.NoError(t, err)
	_, err = svc.orders.PlaceOrder(ctx, bob.ID, svc.cartWith(t, map[int64]int{mug.ID: 1}))
	require.NoError(t, err)

	all, total, err := svc.orders.List(ctx, Actor{IsAdmin: true}, repository.Pagination{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	mine, total, err := svc.orders.List(ctx, Actor{UserID: alice.ID}, repository.Pagination{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, mine, 1)
	assert.Equal(t, aliceOrder.ID, mine[0].ID)

	// 没有顾客档案的账号看到空列表
	none, total, err := svc.orders.List(ctx, Actor{UserID: carol.ID}, repository.Pagination{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)

	_, err = svc.orders.Get(ctx, Actor{UserID: bob.ID}, aliceOrder.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.orders.Get(ctx, Actor{UserID: carol.ID}, aliceOrder.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderService_UpdateAndDelete(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	col := svc.seedCollection(t, "Kitchen")
	mug := svc.seedProduct(t, col.ID, "Mug", "5.00")
	user := svc.seedUser(t, "alice", false)

	order, err := svc.orders.PlaceOrder(ctx, user.ID, svc.cartWith(t, map[int64]int{mug.ID: 1}))
	require.NoError(t, err)

	got, err := svc.orders.UpdatePaymentStatus(ctx, order.ID, model.PaymentStatusComplete)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusComplete, got.PaymentStatus)

	// 状态之间可以任意切换
	got, err = svc.orders.UpdatePaymentStatus(ctx, order.ID, model.PaymentStatusPending)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, got.PaymentStatus)

	_, err = svc.orders.UpdatePaymentStatus(ctx, order.ID, "X")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "payment_status")

	_, err = svc.orders.UpdatePaymentStatus(ctx, 999, model.PaymentStatusFailed)
	assert.ErrorIs(t, err, ErrNotFound)

	// 顾客有订单时不可删除
	assert.ErrorIs(t, svc.customers.Delete(ctx, order.CustomerID), ErrCustomerProtected)

	require.NoError(t, svc.orders.Delete(ctx, order.ID))
	assert.ErrorIs(t, svc.orders.Delete(ctx, order.ID), ErrNotFound)

	var items int64
	svc.db.Model(&model.OrderItem{}).Where("order_id = ?", order.ID).Count(&items)
	assert.Zero(t, items)

	// 订单删除后商品可以删除
	require.NoError(t, svc.products.Delete(ctx, mug.ID))
}
