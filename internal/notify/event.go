package notify

import (
	"context"
	"time"

	"storefront/internal/api/dto"
	"storefront/internal/model"
)

// EventOrderCreated 下单成功事件名
const EventOrderCreated = "order.created"

// OrderCreatedEvent 下单事务提交后广播的事件
type OrderCreatedEvent struct {
	Event         string      `json:"event"`
	OrderID       int64       `json:"order_id"`
	CustomerID    int64       `json:"customer_id"`
	UserID        int64       `json:"user_id"`
	PlacedAt      time.Time   `json:"placed_at"`
	PaymentStatus string      `json:"payment_status"`
	Items         []EventItem `json:"items"`
	TotalPrice    string      `json:"total_price"`
}

type EventItem struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// NewOrderCreatedEvent 由已提交的订单构造事件
func NewOrderCreatedEvent(order *model.Order, userID int64) OrderCreatedEvent {
	items := make([]EventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, EventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: dto.Money(item.UnitPrice),
		})
	}
	return OrderCreatedEvent{
		Event:         EventOrderCreated,
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		UserID:        userID,
		PlacedAt:      order.PlacedAt,
		PaymentStatus: order.PaymentStatus,
		Items:         items,
		TotalPrice:    dto.Money(order.TotalPrice()),
	}
}

// Handler 下单事件订阅者
//
//go:generate mockgen -source=event.go -destination=mock_handler_test.go -package=notify
type Handler interface {
	Name() string
	HandleOrderCreated(ctx context.Context, evt OrderCreatedEvent) error
}
