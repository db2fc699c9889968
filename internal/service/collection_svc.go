package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"storefront/internal/api/dto"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// CollectionService 商品集合
type CollectionService struct {
	collectionRepo repository.CollectionRepository
	productRepo    repository.ProductRepository
}

func NewCollectionService(collectionRepo repository.CollectionRepository, productRepo repository.ProductRepository) *CollectionService {
	return &CollectionService{collectionRepo: collectionRepo, productRepo: productRepo}
}

// List 分页列表，附带实时商品数
func (s *CollectionService) List(ctx context.Context, p repository.Pagination) ([]model.Collection, int64, error) {
	return s.collectionRepo.List(ctx, p)
}

func (s *CollectionService) Get(ctx context.Context, id int64) (*model.Collection, error) {
	c, err := s.collectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (s *CollectionService) Create(ctx context.Context, req *dto.CollectionRequest) (*model.Collection, error) {
	collection := &model.Collection{}
	if err := s.apply(ctx, collection, req); err != nil {
		return nil, err
	}
	if err := s.collectionRepo.Create(ctx, collection); err != nil {
		return nil, err
	}
	return s.Get(ctx, collection.ID)
}

// Update 整体替换可写字段
func (s *CollectionService) Update(ctx context.Context, id int64, req *dto.CollectionRequest) (*model.Collection, error) {
	collection, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, collection, req); err != nil {
		return nil, err
	}
	if err := s.collectionRepo.Update(ctx, collection); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *CollectionService) apply(ctx context.Context, collection *model.Collection, req *dto.CollectionRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fieldError("title", "This field may not be blank.")
	}
	if req.FeaturedProduct != nil {
		ok, err := s.productRepo.Exists(ctx, *req.FeaturedProduct)
		if err != nil {
			return err
		}
		if !ok {
			return doesNotExist("featured_product", *req.FeaturedProduct)
		}
	}
	collection.Title = title
	collection.FeaturedProductID = req.FeaturedProduct
	return nil
}

// Delete 集合下还有商品时拒绝删除
func (s *CollectionService) Delete(ctx context.Context, id int64) error {
	err := s.collectionRepo.Transaction(ctx, func(txRepo repository.CollectionRepository) error {
		exists, err := txRepo.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}

		count, err := txRepo.CountProducts(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrCollectionProtected
		}

		_, err = txRepo.Delete(ctx, id)
		return err
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrCollectionProtected
	}
	return err
}
