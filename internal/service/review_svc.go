package service

import (
	"context"
	"strings"
	"time"

	"storefront/internal/api/dto"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// ReviewService 商品评价，商品 ID 一律取自路径
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	now         func() time.Time
}

func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, productRepo: productRepo, now: time.Now}
}

func (s *ReviewService) ensureProduct(ctx context.Context, productID int64) error {
	ok, err := s.productRepo.Exists(ctx, productID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *ReviewService) List(ctx context.Context, productID int64) ([]model.Review, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByProduct(ctx, productID)
}

func (s *ReviewService) Get(ctx context.Context, productID, id int64) (*model.Review, error) {
	review, err := s.reviewRepo.Get(ctx, productID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return review, nil
}

func (s *ReviewService) Create(ctx context.Context, productID int64, req *dto.ReviewRequest) (*model.Review, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fieldError("name", "This field may not be blank.")
	}

	now := s.now().UTC()
	review := &model.Review{
		ProductID:   productID,
		Name:        name,
		Description: req.Description,
		Date:        time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// Update PUT 整体替换 name/description
func (s *ReviewService) Update(ctx context.Context, productID, id int64, req *dto.ReviewRequest) (*model.Review, error) {
	return s.Patch(ctx, productID, id, &dto.ReviewPatchRequest{Name: &req.Name, Description: &req.Description})
}

func (s *ReviewService) Patch(ctx context.Context, productID, id int64, req *dto.ReviewPatchRequest) (*model.Review, error) {
	review, err := s.Get(ctx, productID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fieldError("name", "This field may not be blank.")
		}
		review.Name = name
	}
	if req.Description != nil {
		review.Description = *req.Description
	}
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, productID, id int64) error {
	rows, err := s.reviewRepo.Delete(ctx, productID, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
