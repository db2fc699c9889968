package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api/dto"
	"storefront/internal/repository"
	"storefront/internal/service"
)

// adminPageSize 后台列表固定每页条数
const adminPageSize = 10

// AdminController 后台列表与行内编辑
type AdminController struct {
	productService  *service.ProductService
	customerService *service.CustomerService
}

func NewAdminController(productService *service.ProductService, customerService *service.CustomerService) *AdminController {
	return &AdminController{productService: productService, customerService: customerService}
}

func adminPagination(c *gin.Context) (repository.Pagination, bool) {
	p, ok := parsePagination(c, adminPageSize)
	p.PageSize = adminPageSize
	return p, ok
}

// ==================== 商品 ====================

// ListProducts
// @Summary 后台商品列表
// @Description 按标题排序，每页 10 条
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Success 200 {object} dto.Page[dto.AdminProductRow]
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/admin/products [get]
func (ctrl *AdminController) ListProducts(c *gin.Context) {
	p, ok := adminPagination(c)
	if !ok {
		return
	}

	products, total, err := ctrl.productService.List(c.Request.Context(), repository.ProductFilter{Pagination: p})
	if err != nil {
		respondError(c, err)
		return
	}

	rows := make([]dto.AdminProductRow, 0, len(products))
	for _, item := range products {
		rows = append(rows, dto.AdminProductRow{ID: item.ID, Title: item.Title, UnitPrice: dto.Money(item.UnitPrice)})
	}
	c.JSON(http.StatusOK, newPage(c, p, total, rows))
}

// SetPrice
// @Summary 行内修改价格
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param body body dto.PriceRequest true "价格"
// @Success 200 {object} dto.AdminProductRow
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/admin/products/{id}/price [patch]
func (ctrl *AdminController) SetPrice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := ctrl.productService.SetPrice(c.Request.Context(), id, *req.UnitPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AdminProductRow{ID: product.ID, Title: product.Title, UnitPrice: dto.Money(product.UnitPrice)})
}

// AssignPromotions
// @Summary 设置商品促销
// @Description 用给定列表覆盖商品当前的促销
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param body body dto.AssignPromotionsRequest true "促销ID列表"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/admin/products/{id}/promotions [put]
func (ctrl *AdminController) AssignPromotions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignPromotionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := ctrl.productService.AssignPromotions(c.Request.Context(), id, req.PromotionIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(product))
}

// ==================== 促销 ====================

// ListPromotions
// @Summary 促销列表
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.PromotionResponse
// @Router /api/admin/promotions [get]
func (ctrl *AdminController) ListPromotions(c *gin.Context) {
	promotions, err := ctrl.productService.ListPromotions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]dto.PromotionResponse, 0, len(promotions))
	for i := range promotions {
		results = append(results, dto.NewPromotionResponse(&promotions[i]))
	}
	c.JSON(http.StatusOK, results)
}

// CreatePromotion
// @Summary 创建促销
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.PromotionRequest true "促销"
// @Success 201 {object} dto.PromotionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/admin/promotions [post]
func (ctrl *AdminController) CreatePromotion(c *gin.Context) {
	var req dto.PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	promotion, err := ctrl.productService.CreatePromotion(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewPromotionResponse(promotion))
}

// ==================== 顾客 ====================

// ListCustomers
// @Summary 后台顾客列表
// @Description 按名、姓排序，每页 10 条
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Success 200 {object} dto.Page[dto.AdminCustomerRow]
// @Router /api/admin/customers [get]
func (ctrl *AdminController) ListCustomers(c *gin.Context) {
	p, ok := adminPagination(c)
	if !ok {
		return
	}

	customers, total, err := ctrl.customerService.List(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}

	rows := make([]dto.AdminCustomerRow, 0, len(customers))
	for _, item := range customers {
		rows = append(rows, dto.AdminCustomerRow{
			ID:         item.ID,
			FirstName:  item.FirstName,
			LastName:   item.LastName,
			Membership: item.Membership,
		})
	}
	c.JSON(http.StatusOK, newPage(c, p, total, rows))
}

// SetMembership
// @Summary 行内修改会员等级
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "顾客ID"
// @Param body body dto.MembershipRequest true "会员等级"
// @Success 200 {object} dto.AdminCustomerRow
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/admin/customers/{id}/membership [patch]
func (ctrl *AdminController) SetMembership(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := ctrl.customerService.SetMembership(c.Request.Context(), id, req.Membership)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AdminCustomerRow{
		ID:         customer.ID,
		FirstName:  customer.FirstName,
		LastName:   customer.LastName,
		Membership: customer.Membership,
	})
}
