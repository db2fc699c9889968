package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api/dto"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
)

type CustomerController struct {
	customerService *service.CustomerService
}

func NewCustomerController(s *service.CustomerService) *CustomerController {
	return &CustomerController{customerService: s}
}

// ==================== 当前用户 ====================

// Me
// @Summary 我的顾客档案
// @Description 首次访问时根据账号信息自动创建
// @Tags Customer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CustomerResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/customers/me [get]
func (ctrl *CustomerController) Me(c *gin.Context) {
	customer, err := ctrl.customerService.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerResponse(customer))
}

// UpdateMe
// @Summary 修改我的顾客档案
// @Description 仅可修改 first_name / last_name / phone / birth_date
// @Tags Customer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MeUpdateRequest true "档案"
// @Success 200 {object} dto.CustomerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/customers/me [put]
func (ctrl *CustomerController) UpdateMe(c *gin.Context) {
	var req dto.MeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := ctrl.customerService.UpdateMe(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerResponse(customer))
}

// MyAddress
// @Summary 我的收货地址
// @Tags Customer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AddressResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/customers/me/address [get]
func (ctrl *CustomerController) MyAddress(c *gin.Context) {
	address, err := ctrl.customerService.MyAddress(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAddressResponse(address))
}

// SaveMyAddress
// @Summary 设置我的收货地址
// @Tags Customer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AddressRequest true "地址"
// @Success 200 {object} dto.AddressResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/customers/me/address [put]
func (ctrl *CustomerController) SaveMyAddress(c *gin.Context) {
	var req dto.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	address, err := ctrl.customerService.SaveMyAddress(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAddressResponse(address))
}

// ==================== 后台管理 ====================

// List
// @Summary 顾客列表
// @Tags Customer
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} dto.Page[dto.CustomerResponse]
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/customers [get]
func (ctrl *CustomerController) List(c *gin.Context) {
	p, ok := parsePagination(c, repository.DefaultPageSize)
	if !ok {
		return
	}

	customers, total, err := ctrl.customerService.List(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		results = append(results, dto.NewCustomerResponse(&customers[i]))
	}
	c.JSON(http.StatusOK, newPage(c, p, total, results))
}

// Get
// @Summary 顾客详情
// @Tags Customer
// @Produce json
// @Security BearerAuth
// @Param id path int true "顾客ID"
// @Success 200 {object} dto.CustomerResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/customers/{id} [get]
func (ctrl *CustomerController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	customer, err := ctrl.customerService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerResponse(customer))
}

// Create
// @Summary 创建顾客
// @Tags Customer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CustomerRequest true "顾客"
// @Success 201 {object} dto.CustomerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/customers [post]
func (ctrl *CustomerController) Create(c *gin.Context) {
	var req dto.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := ctrl.customerService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCustomerResponse(customer))
}

// Update
// @Summary 整体更新顾客
// @Tags Customer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "顾客ID"
// @Param body body dto.CustomerRequest true "顾客"
// @Success 200 {object} dto.CustomerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/customers/{id} [put]
func (ctrl *CustomerController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := ctrl.customerService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerResponse(customer))
}

// Patch
// @Summary 部分更新顾客
// @Tags Customer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "顾客ID"
// @Param body body dto.CustomerPatchRequest true "需要修改的字段"
// @Success 200 {object} dto.CustomerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/customers/{id} [patch]
func (ctrl *CustomerController) Patch(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CustomerPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := ctrl.customerService.Patch(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCustomerResponse(customer))
}

// Delete
// @Summary 删除顾客
// @Description 有订单的顾客返回 405
// @Tags Customer
// @Security BearerAuth
// @Param id path int true "顾客ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Failure 405 {object} dto.ErrorResponse
// @Router /api/customers/{id} [delete]
func (ctrl *CustomerController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.customerService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
