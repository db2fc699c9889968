package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/api/dto"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// ProductService 商品与促销
type ProductService struct {
	productRepo    repository.ProductRepository
	collectionRepo repository.CollectionRepository
	promotionRepo  repository.PromotionRepository
}

func NewProductService(
	productRepo repository.ProductRepository,
	collectionRepo repository.CollectionRepository,
	promotionRepo repository.PromotionRepository,
) *ProductService {
	return &ProductService{
		productRepo:    productRepo,
		collectionRepo: collectionRepo,
		promotionRepo:  promotionRepo,
	}
}

// ==================== 查询 ====================

func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	if !repository.IsValidProductOrdering(filter.Ordering) {
		return nil, 0, fieldError("ordering", "Select a valid choice. "+filter.Ordering+" is not one of the available choices.")
	}
	return s.productRepo.List(ctx, filter)
}

func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// ==================== 写入 ====================

func (s *ProductService) Create(ctx context.Context, req *dto.ProductRequest) (*model.Product, error) {
	product := &model.Product{}
	if err := s.applyFull(ctx, product, req); err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return s.Get(ctx, product.ID)
}

// Update PUT 整体替换
func (s *ProductService) Update(ctx context.Context, id int64, req *dto.ProductRequest) (*model.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyFull(ctx, product, req); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Patch PATCH 只改出现的字段
func (s *ProductService) Patch(ctx context.Context, id int64, req *dto.ProductPatchRequest) (*model.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fieldError("title", "This field may not be blank.")
		}
		product.Title = title
	}
	if req.Slug != nil {
		product.Slug = *req.Slug
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.UnitPrice != nil {
		product.UnitPrice = *req.UnitPrice
	}
	if req.Inventory != nil {
		product.Inventory = *req.Inventory
	}
	if req.Collection != nil {
		if err := s.checkCollection(ctx, *req.Collection); err != nil {
			return nil, err
		}
		product.CollectionID = *req.Collection
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ProductService) applyFull(ctx context.Context, product *model.Product, req *dto.ProductRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fieldError("title", "This field may not be blank.")
	}
	if err := s.checkCollection(ctx, *req.Collection); err != nil {
		return err
	}

	product.Title = title
	product.Slug = req.Slug
	if product.Slug == "" {
		product.Slug = Slugify(title)
	}
	product.Description = req.Description
	product.UnitPrice = *req.UnitPrice
	product.Inventory = *req.Inventory
	product.CollectionID = *req.Collection
	return nil
}

func (s *ProductService) checkCollection(ctx context.Context, id int64) error {
	ok, err := s.collectionRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return doesNotExist("collection", id)
	}
	return nil
}

// Delete 已被订单引用的商品不可删除
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	err := s.productRepo.Transaction(ctx, func(txRepo repository.ProductRepository) error {
		exists, err := txRepo.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}

		count, err := txRepo.CountOrderItems(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrProductProtected
		}

		_, err = txRepo.Delete(ctx, id)
		return err
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrProductProtected
	}
	return err
}

// SetPrice 后台列表直接改价
func (s *ProductService) SetPrice(ctx context.Context, id int64, price decimal.Decimal) (*model.Product, error) {
	if _, err := s.productRepo.UpdateFields(ctx, id, map[string]interface{}{"unit_price": price}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// ==================== 促销 ====================

func (s *ProductService) ListPromotions(ctx context.Context) ([]model.Promotion, error) {
	return s.promotionRepo.List(ctx)
}

func (s *ProductService) CreatePromotion(ctx context.Context, req *dto.PromotionRequest) (*model.Promotion, error) {
	promotion := &model.Promotion{Description: strings.TrimSpace(req.Description), Discount: *req.Discount}
	if promotion.Description == "" {
		return nil, fieldError("description", "This field may not be blank.")
	}
	if err := s.promotionRepo.Create(ctx, promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}

// AssignPromotions 用给定列表覆盖商品的促销
func (s *ProductService) AssignPromotions(ctx context.Context, id int64, promotionIDs []int64) (*model.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	promotions, err := s.promotionRepo.FindByIDs(ctx, promotionIDs)
	if err != nil {
		return nil, err
	}
	found := make(map[int64]bool, len(promotions))
	for _, p := range promotions {
		found[p.ID] = true
	}
	for _, pid := range promotionIDs {
		if !found[pid] {
			return nil, doesNotExist("promotion_ids", pid)
		}
	}

	if err := s.productRepo.ReplacePromotions(ctx, product, promotions); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 由标题生成 slug
func Slugify(title string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
