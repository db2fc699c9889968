package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/api/dto"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// CartService 匿名购物车
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	log         *zap.Logger
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, log *zap.Logger) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo, log: log.Named("cart")}
}

// normalizeCartID 非法 UUID 视同不存在
func normalizeCartID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func (s *CartService) Create(ctx context.Context) (*model.Cart, error) {
	cart := &model.Cart{}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, err
	}
	cart.Items = []model.CartItem{}
	return cart, nil
}

// Get 购物车及明细，金额按当前商品价格计算
func (s *CartService) Get(ctx context.Context, id string) (*model.Cart, error) {
	id, ok := normalizeCartID(id)
	if !ok {
		return nil, ErrNotFound
	}
	cart, err := s.cartRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return cart, nil
}

func (s *CartService) Delete(ctx context.Context, id string) error {
	id, ok := normalizeCartID(id)
	if !ok {
		return ErrNotFound
	}
	rows, err := s.cartRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CartService) ensureCart(ctx context.Context, id string) (string, error) {
	id, ok := normalizeCartID(id)
	if !ok {
		return "", ErrNotFound
	}
	exists, err := s.cartRepo.Exists(ctx, id)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrNotFound
	}
	return id, nil
}

// ==================== 明细 ====================

func (s *CartService) ListItems(ctx context.Context, cartID string) ([]model.CartItem, error) {
	cartID, err := s.ensureCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return s.cartRepo.ListItems(ctx, cartID)
}

func (s *CartService) GetItem(ctx context.Context, cartID string, itemID int64) (*model.CartItem, error) {
	cartID, ok := normalizeCartID(cartID)
	if !ok {
		return nil, ErrNotFound
	}
	item, err := s.cartRepo.GetItem(ctx, cartID, itemID)
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

// AddItem 商品已在购物车中则数量累加，否则新增一行
func (s *CartService) AddItem(ctx context.Context, cartID string, req *dto.AddCartItemRequest) (*model.CartItem, error) {
	cartID, err := s.ensureCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	ok, err := s.productRepo.Exists(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fieldSentinel("product_id", ErrProductNotFound)
	}

	// 先尝试原子累加；并发插入撞唯一索引时再累加一次
	for attempt := 0; attempt < 2; attempt++ {
		rows, err := s.cartRepo.IncrementItem(ctx, cartID, req.ProductID, req.Quantity)
		if err != nil {
			return nil, err
		}
		if rows > 0 {
			return s.cartRepo.FindItemByProduct(ctx, cartID, req.ProductID)
		}

		item := &model.CartItem{CartID: cartID, ProductID: req.ProductID, Quantity: req.Quantity}
		err = s.cartRepo.CreateItem(ctx, item)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		s.log.Debug("cart item insert raced, retrying as increment",
			zap.String("cart_id", cartID), zap.Int64("product_id", req.ProductID))
	}
	return nil, errors.New("add cart item: concurrent modification")
}

// UpdateItem 覆盖数量
func (s *CartService) UpdateItem(ctx context.Context, cartID string, itemID int64, quantity int) (*model.CartItem, error) {
	cartID, ok := normalizeCartID(cartID)
	if !ok {
		return nil, ErrNotFound
	}
	// MySQL 在值未变化时 RowsAffected 为 0，以回查结果为准
	if _, err := s.cartRepo.UpdateItemQuantity(ctx, cartID, itemID, quantity); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, cartID, itemID)
}

func (s *CartService) DeleteItem(ctx context.Context, cartID string, itemID int64) error {
	cartID, ok := normalizeCartID(cartID)
	if !ok {
		return ErrNotFound
	}
	rows, err := s.cartRepo.DeleteItem(ctx, cartID, itemID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// CleanupStale 删除创建超过 maxAge 的购物车
func (s *CartService) CleanupStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.cartRepo.DeleteCreatedBefore(ctx, time.Now().Add(-maxAge))
}
