package dto

import (
	"time"

	"storefront/internal/model"
)

type CartResponse struct {
	ID         string             `json:"id"`
	Items      []CartItemResponse `json:"items"`
	TotalPrice string             `json:"total_price"`
	CreatedAt  time.Time          `json:"created_at"`
}

type CartItemResponse struct {
	ID         int64         `json:"id"`
	Product    SimpleProduct `json:"product"`
	Quantity   int           `json:"quantity"`
	TotalPrice string        `json:"total_price"`
}

func NewCartResponse(c *model.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items))
	for i := range c.Items {
		items = append(items, NewCartItemResponse(&c.Items[i]))
	}
	return CartResponse{
		ID:         c.ID,
		Items:      items,
		TotalPrice: Money(c.TotalPrice()),
		CreatedAt:  c.CreatedAt,
	}
}

func NewCartItemResponse(item *model.CartItem) CartItemResponse {
	return CartItemResponse{
		ID:         item.ID,
		Product:    NewSimpleProduct(item.Product),
		Quantity:   item.Quantity,
		TotalPrice: Money(item.TotalPrice()),
	}
}

// AddCartItemRequest 加入购物车，已存在则数量累加
type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gte=1"`
	Quantity  int   `json:"quantity" binding:"required,gte=1,lte=32767"`
}

type AddCartItemResponse struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// UpdateCartItemRequest 覆盖数量
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gte=1,lte=32767"`
}
