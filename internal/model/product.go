package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate 含税价系数
var TaxRate = decimal.RequireFromString("1.18")

// ==================== Collection 商品集合 ====================

type Collection struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Title string `gorm:"size:255;not null"`

	// 推荐商品，商品被删除时置空 (由 service 在同一事务内处理)
	FeaturedProductID *int64 `gorm:"index"`

	AuditMixin

	// 查询时通过子查询聚合，不落库
	ProductsCount int64 `gorm:"->;-:migration"`
}

func (Collection) TableName() string {
	return "collections"
}

// ==================== Product 商品 ====================

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	Title       string          `gorm:"size:255;not null"`
	Slug        string          `gorm:"size:255;index;not null"`
	Description *string         `gorm:"type:text"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	Inventory   int             `gorm:"not null;default:0"`
	LastUpdate  time.Time       `gorm:"autoUpdateTime;index"`

	CollectionID int64       `gorm:"index;not null"`
	Collection   *Collection `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`

	Promotions []Promotion `gorm:"many2many:product_promotions;"`

	AuditMixin
}

func (Product) TableName() string {
	return "products"
}

// PriceWithTax 含税价，四舍五入保留两位
func (p *Product) PriceWithTax() decimal.Decimal {
	return p.UnitPrice.Mul(TaxRate).Round(2)
}

// ==================== Promotion 促销 ====================

type Promotion struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Description string  `gorm:"size:255;not null"`
	Discount    float64 `gorm:"not null;default:0"`
}

func (Promotion) TableName() string {
	return "promotions"
}

// ==================== Review 商品评价 ====================

type Review struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	ProductID   int64     `gorm:"index;not null"`
	Product     *Product  `gorm:"constraint:OnDelete:CASCADE"`
	Name        string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text"`
	Date        time.Time `gorm:"type:date;not null"`
}

func (Review) TableName() string {
	return "reviews"
}
