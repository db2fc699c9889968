package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api/dto"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
)

type OrderController struct {
	orderService *service.OrderService
}

func NewOrderController(s *service.OrderService) *OrderController {
	return &OrderController{orderService: s}
}

// Create
// @Summary 下单
// @Description 把购物车转换为订单，成功后购物车被删除
// @Tags Order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateOrderRequest true "购物车ID"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/orders [post]
func (ctrl *OrderController) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := ctrl.orderService.PlaceOrder(c.Request.Context(), middleware.GetUserID(c), req.CartID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewOrderResponse(order))
}

// List
// @Summary 订单列表
// @Description 管理员查看全部，其他用户只能看到自己的订单
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} dto.Page[dto.OrderResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/orders [get]
func (ctrl *OrderController) List(c *gin.Context) {
	p, ok := parsePagination(c, repository.DefaultPageSize)
	if !ok {
		return
	}

	orders, total, err := ctrl.orderService.List(c.Request.Context(), actor(c), p)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		results = append(results, dto.NewOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, newPage(c, p, total, results))
}

// Get
// @Summary 订单详情
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/orders/{id} [get]
func (ctrl *OrderController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// Update
// @Summary 修改支付状态
// @Description PUT 与 PATCH 行为一致，状态之间可任意切换
// @Tags Order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Param body body dto.UpdateOrderRequest true "支付状态"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/orders/{id} [patch]
func (ctrl *OrderController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := ctrl.orderService.UpdatePaymentStatus(c.Request.Context(), id, req.PaymentStatus)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

// Delete
// @Summary 删除订单
// @Tags Order
// @Security BearerAuth
// @Param id path int true "订单ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/orders/{id} [delete]
func (ctrl *OrderController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.orderService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
