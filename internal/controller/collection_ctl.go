package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api/dto"
	"storefront/internal/repository"
	"storefront/internal/service"
)

type CollectionController struct {
	collectionService *service.CollectionService
}

func NewCollectionController(s *service.CollectionService) *CollectionController {
	return &CollectionController{collectionService: s}
}

// List
// @Summary 集合列表
// @Description 按标题排序，附带实时商品数
// @Tags Collection
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} dto.Page[dto.CollectionResponse]
// @Router /api/collections [get]
func (ctrl *CollectionController) List(c *gin.Context) {
	p, ok := parsePagination(c, repository.DefaultPageSize)
	if !ok {
		return
	}

	collections, total, err := ctrl.collectionService.List(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]dto.CollectionResponse, 0, len(collections))
	for i := range collections {
		results = append(results, dto.NewCollectionResponse(&collections[i]))
	}
	c.JSON(http.StatusOK, newPage(c, p, total, results))
}

// Get
// @Summary 集合详情
// @Tags Collection
// @Produce json
// @Param id path int true "集合ID"
// @Success 200 {object} dto.CollectionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/collections/{id} [get]
func (ctrl *CollectionController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	collection, err := ctrl.collectionService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCollectionResponse(collection))
}

// Create
// @Summary 创建集合
// @Tags Collection
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CollectionRequest true "集合"
// @Success 201 {object} dto.CollectionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/collections [post]
func (ctrl *CollectionController) Create(c *gin.Context) {
	var req dto.CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	collection, err := ctrl.collectionService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCollectionResponse(collection))
}

// Update
// @Summary 修改集合
// @Tags Collection
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "集合ID"
// @Param body body dto.CollectionRequest true "集合"
// @Success 200 {object} dto.CollectionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/collections/{id} [put]
func (ctrl *CollectionController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	collection, err := ctrl.collectionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCollectionResponse(collection))
}

// Delete
// @Summary 删除集合
// @Description 集合下还有商品时返回 405
// @Tags Collection
// @Security BearerAuth
// @Param id path int true "集合ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Failure 405 {object} dto.ErrorResponse
// @Router /api/collections/{id} [delete]
func (ctrl *CollectionController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.collectionService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
