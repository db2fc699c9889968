package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart 匿名购物车，ID 为随机 UUID，创建后不可变
type Cart struct {
	ID        string    `gorm:"size:36;primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

func (Cart) TableName() string {
	return "carts"
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// TotalPrice 按当前商品价格实时计算
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].TotalPrice())
	}
	return total
}

// CartItem 同一购物车内同一商品只有一行
type CartItem struct {
	ID        int64    `gorm:"primaryKey;autoIncrement"`
	CartID    string   `gorm:"size:36;not null;uniqueIndex:idx_cart_product"`
	ProductID int64    `gorm:"not null;uniqueIndex:idx_cart_product;index"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE"`
	Quantity  int      `gorm:"not null"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func (i *CartItem) TotalPrice() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
