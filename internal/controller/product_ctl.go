package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/api/dto"
	"storefront/internal/repository"
	"storefront/internal/service"
)

type ProductController struct {
	productService *service.ProductService
}

func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ==================== 查询接口 ====================

// List 商品列表
// @Summary 商品列表
// @Description 支持按集合、关键字、价格区间过滤，默认按标题排序
// @Tags Product
// @Produce json
// @Param collection_id query int false "集合ID"
// @Param search query string false "标题或描述关键字"
// @Param unit_price__gt query number false "价格下限 (不含)"
// @Param unit_price__lt query number false "价格上限 (不含)"
// @Param ordering query string false "unit_price | -unit_price | last_update | -last_update"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} dto.Page[dto.ProductResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/products [get]
func (ctrl *ProductController) List(c *gin.Context) {
	filter, ok := parseProductFilter(c)
	if !ok {
		return
	}

	products, total, err := ctrl.productService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		results = append(results, dto.NewProductResponse(&products[i]))
	}
	c.JSON(http.StatusOK, newPage(c, filter.Pagination, total, results))
}

// parseProductFilter 查询参数中的金额用 decimal 解析，不走 form 绑定
func parseProductFilter(c *gin.Context) (repository.ProductFilter, bool) {
	var filter repository.ProductFilter
	fields := map[string]string{}

	if v := c.Query("collection_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fields["collection_id"] = "Enter a number."
		} else {
			filter.CollectionID = &id
		}
	}
	for key, dst := range map[string]**decimal.Decimal{
		"unit_price__gt": &filter.PriceGT,
		"unit_price__lt": &filter.PriceLT,
	} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			fields[key] = "Enter a number."
			continue
		}
		*dst = &d
	}
	if len(fields) > 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Fields: fields})
		return filter, false
	}

	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Ordering = c.Query("ordering")

	p, ok := parsePagination(c, repository.DefaultPageSize)
	if !ok {
		return filter, false
	}
	filter.Pagination = p
	return filter, true
}

// Get 商品详情
// @Summary 商品详情
// @Tags Product
// @Produce json
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/products/{id} [get]
func (ctrl *ProductController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(product))
}

// ==================== 写入接口 ====================

// Create 创建商品
// @Summary 创建商品
// @Tags Product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ProductRequest true "商品"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/products [post]
func (ctrl *ProductController) Create(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := ctrl.productService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewProductResponse(product))
}

// Update 整体更新商品
// @Summary 整体更新商品
// @Tags Product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param body body dto.ProductRequest true "商品"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/products/{id} [put]
func (ctrl *ProductController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := ctrl.productService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(product))
}

// Patch 部分更新商品
// @Summary 部分更新商品
// @Tags Product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param body body dto.ProductPatchRequest true "需要修改的字段"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/products/{id} [patch]
func (ctrl *ProductController) Patch(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ProductPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := ctrl.productService.Patch(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(product))
}

// Delete 删除商品
// @Summary 删除商品
// @Description 已被订单引用的商品返回 405
// @Tags Product
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Failure 405 {object} dto.ErrorResponse
// @Router /api/products/{id} [delete]
func (ctrl *ProductController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
