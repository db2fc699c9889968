package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/model"
)

// ==================== Collection ====================

// CollectionRequest 创建/整体更新集合
type CollectionRequest struct {
	Title           string `json:"title" binding:"required,max=255"`
	FeaturedProduct *int64 `json:"featured_product"`
}

type CollectionResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	FeaturedProduct *int64 `json:"featured_product"`
	ProductsCount   int64  `json:"products_count"`
}

func NewCollectionResponse(c *model.Collection) CollectionResponse {
	return CollectionResponse{
		ID:              c.ID,
		Title:           c.Title,
		FeaturedProduct: c.FeaturedProductID,
		ProductsCount:   c.ProductsCount,
	}
}

// ==================== Product ====================

// ProductRequest 创建/整体更新商品 (PUT)
type ProductRequest struct {
	Title       string           `json:"title" binding:"required,max=255"`
	Slug        string           `json:"slug" binding:"omitempty,max=255"`
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price" binding:"required,dmin=1,dmax=9999.99"`
	Inventory   *int             `json:"inventory" binding:"required,gte=0"`
	Collection  *int64           `json:"collection" binding:"required"`
}

// ProductPatchRequest 部分更新商品 (PATCH)，未出现的字段保持不变
type ProductPatchRequest struct {
	Title       *string          `json:"title" binding:"omitempty,min=1,max=255"`
	Slug        *string          `json:"slug" binding:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price" binding:"omitempty,dmin=1,dmax=9999.99"`
	Inventory   *int             `json:"inventory" binding:"omitempty,gte=0"`
	Collection  *int64           `json:"collection"`
}

type ProductResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description"`
	Inventory    int       `json:"inventory"`
	UnitPrice    string    `json:"unit_price"`
	PriceWithTax string    `json:"price_with_tax"`
	Collection   int64     `json:"collection"`
	Promotions   []int64   `json:"promotions"`
	LastUpdate   time.Time `json:"last_update"`
}

func NewProductResponse(p *model.Product) ProductResponse {
	promotions := make([]int64, 0, len(p.Promotions))
	for _, promo := range p.Promotions {
		promotions = append(promotions, promo.ID)
	}
	return ProductResponse{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Description:  p.Description,
		Inventory:    p.Inventory,
		UnitPrice:    Money(p.UnitPrice),
		PriceWithTax: Money(p.PriceWithTax()),
		Collection:   p.CollectionID,
		Promotions:   promotions,
		LastUpdate:   p.LastUpdate,
	}
}

// SimpleProduct 购物车/订单中嵌套的商品
type SimpleProduct struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	UnitPrice string `json:"unit_price"`
}

func NewSimpleProduct(p *model.Product) SimpleProduct {
	if p == nil {
		return SimpleProduct{}
	}
	return SimpleProduct{ID: p.ID, Title: p.Title, UnitPrice: Money(p.UnitPrice)}
}

// ==================== Review ====================

type ReviewRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
}

type ReviewPatchRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,min=1"`
}

type ReviewResponse struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        Date   `json:"date"`
}

func NewReviewResponse(r *model.Review) ReviewResponse {
	return ReviewResponse{
		ID:          r.ID,
		ProductID:   r.ProductID,
		Name:        r.Name,
		Description: r.Description,
		Date:        NewDate(r.Date),
	}
}

// ==================== Promotion ====================

type PromotionRequest struct {
	Description string   `json:"description" binding:"required,max=255"`
	Discount    *float64 `json:"discount" binding:"required,gte=0"`
}

type PromotionResponse struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Discount    float64 `json:"discount"`
}

func NewPromotionResponse(p *model.Promotion) PromotionResponse {
	return PromotionResponse{ID: p.ID, Description: p.Description, Discount: p.Discount}
}

// AssignPromotionsRequest 覆盖商品的促销列表
type AssignPromotionsRequest struct {
	PromotionIDs []int64 `json:"promotion_ids" binding:"required"`
}

// ==================== Admin ====================

// AdminProductRow 后台商品列表行
type AdminProductRow struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	UnitPrice string `json:"unit_price"`
}

type PriceRequest struct {
	UnitPrice *decimal.Decimal `json:"unit_price" binding:"required,dmin=1,dmax=9999.99"`
}
