package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 支付状态常量 ====================

const (
	PaymentStatusPending  = "P"
	PaymentStatusComplete = "C"
	PaymentStatusFailed   = "F"
)

// PaymentStatuses 合法状态及展示名
var PaymentStatuses = map[string]string{
	PaymentStatusPending:  "Pending",
	PaymentStatusComplete: "Complete",
	PaymentStatusFailed:   "Failed",
}

// ==================== Order 订单主表 ====================

type Order struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	PlacedAt      time.Time `gorm:"autoCreateTime;index"`
	PaymentStatus string    `gorm:"size:1;not null;default:P"`

	CustomerID int64     `gorm:"index;not null"`
	Customer   *Customer `gorm:"constraint:OnDelete:RESTRICT"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].TotalPrice())
	}
	return total
}

// ==================== OrderItem 订单明细 ====================

// OrderItem 单价为下单时快照，之后商品改价不影响
type OrderItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"index;not null"`
	ProductID int64           `gorm:"index;not null"`
	Product   *Product        `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(6,2);not null"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
