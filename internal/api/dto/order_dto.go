package dto

import (
	"time"

	"storefront/internal/model"
)

// CreateOrderRequest 由购物车下单
type CreateOrderRequest struct {
	CartID string `json:"cart_id" binding:"required,uuid"`
}

// UpdateOrderRequest 修改支付状态 (管理员)
type UpdateOrderRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required,oneof=P C F"`
}

type OrderItemResponse struct {
	ID         int64         `json:"id"`
	Product    SimpleProduct `json:"product"`
	Quantity   int           `json:"quantity"`
	UnitPrice  string        `json:"unit_price"`
	TotalPrice string        `json:"total_price"`
}

type OrderResponse struct {
	ID            int64               `json:"id"`
	Customer      int64               `json:"customer"`
	PlacedAt      time.Time           `json:"placed_at"`
	PaymentStatus string              `json:"payment_status"`
	Items         []OrderItemResponse `json:"items"`
	TotalPrice    string              `json:"total_price"`
}

func NewOrderResponse(o *model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items = append(items, OrderItemResponse{
			ID:         item.ID,
			Product:    NewSimpleProduct(item.Product),
			Quantity:   item.Quantity,
			UnitPrice:  Money(item.UnitPrice),
			TotalPrice: Money(item.TotalPrice()),
		})
	}
	return OrderResponse{
		ID:            o.ID,
		Customer:      o.CustomerID,
		PlacedAt:      o.PlacedAt,
		PaymentStatus: o.PaymentStatus,
		Items:         items,
		TotalPrice:    Money(o.TotalPrice()),
	}
}
