package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api/dto"
	"storefront/internal/service"
)

// ReviewController 商品评价，挂在 /products/{id}/reviews 下
type ReviewController struct {
	reviewService *service.ReviewService
}

func NewReviewController(s *service.ReviewService) *ReviewController {
	return &ReviewController{reviewService: s}
}

// List
// @Summary 商品评价列表
// @Tags Review
// @Produce json
// @Param id path int true "商品ID"
// @Success 200 {array} dto.ReviewResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/products/{id}/reviews [get]
func (ctrl *ReviewController) List(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	reviews, err := ctrl.reviewService.List(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		results = append(results, dto.NewReviewResponse(&reviews[i]))
	}
	c.JSON(http.StatusOK, results)
}

// Get
// @Summary 评价详情
// @Tags Review
// @Produce json
// @Param id path int true "商品ID"
// @Param review_id path int true "评价ID"
// @Success 200 {object} dto.ReviewResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/products/{id}/reviews/{review_id} [get]
func (ctrl *ReviewController) Get(c *gin.Context) {
	productID, reviewID, ok := reviewIDs(c)
	if !ok {
		return
	}

	review, err := ctrl.reviewService.Get(c.Request.Context(), productID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewReviewResponse(review))
}

// Create
// @Summary 发表评价
// @Description 商品 ID 取自路径，日期由服务端生成
// @Tags Review
// @Accept json
// @Produce json
// @Param id path int true "商品ID"
// @Param body body dto.ReviewRequest true "评价"
// @Success 201 {object} dto.ReviewResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/products/{id}/reviews [post]
func (ctrl *ReviewController) Create(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := ctrl.reviewService.Create(c.Request.Context(), productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewReviewResponse(review))
}

// Update
// @Summary 修改评价
// @Tags Review
// @Accept json
// @Produce json
// @Param id path int true "商品ID"
// @Param review_id path int true "评价ID"
// @Param body body dto.ReviewRequest true "评价"
// @Success 200 {object} dto.ReviewResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/products/{id}/reviews/{review_id} [put]
func (ctrl *ReviewController) Update(c *gin.Context) {
	productID, reviewID, ok := reviewIDs(c)
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := ctrl.reviewService.Update(c.Request.Context(), productID, reviewID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewReviewResponse(review))
}

// Patch
// @Summary 部分修改评价
// @Tags Review
// @Accept json
// @Produce json
// @Param id path int true "商品ID"
// @Param review_id path int true "评价ID"
// @Param body body dto.ReviewPatchRequest true "需要修改的字段"
// @Success 200 {object} dto.ReviewResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/products/{id}/reviews/{review_id} [patch]
func (ctrl *ReviewController) Patch(c *gin.Context) {
	productID, reviewID, ok := reviewIDs(c)
	if !ok {
		return
	}
	var req dto.ReviewPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := ctrl.reviewService.Patch(c.Request.Context(), productID, reviewID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewReviewResponse(review))
}

// Delete
// @Summary 删除评价
// @Tags Review
// @Param id path int true "商品ID"
// @Param review_id path int true "评价ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/products/{id}/reviews/{review_id} [delete]
func (ctrl *ReviewController) Delete(c *gin.Context) {
	productID, reviewID, ok := reviewIDs(c)
	if !ok {
		return
	}

	if err := ctrl.reviewService.Delete(c.Request.Context(), productID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func reviewIDs(c *gin.Context) (int64, int64, bool) {
	productID, ok := parseID(c, "id")
	if !ok {
		return 0, 0, false
	}
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		return 0, 0, false
	}
	return productID, reviewID, true
}
