package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api/dto"
	"storefront/internal/service"
)

// CartController 匿名购物车，无需登录
type CartController struct {
	cartService *service.CartService
}

func NewCartController(s *service.CartService) *CartController {
	return &CartController{cartService: s}
}

// Create
// @Summary 创建购物车
// @Tags Cart
// @Produce json
// @Success 201 {object} dto.CartResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /api/carts [post]
func (ctrl *CartController) Create(c *gin.Context) {
	cart, err := ctrl.cartService.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCartResponse(cart))
}

// Get
// @Summary 购物车详情
// @Description 金额按商品当前价格实时计算
// @Tags Cart
// @Produce json
// @Param id path string true "购物车ID (UUID)"
// @Success 200 {object} dto.CartResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/carts/{id} [get]
func (ctrl *CartController) Get(c *gin.Context) {
	cart, err := ctrl.cartService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCartResponse(cart))
}

// Delete
// @Summary 删除购物车
// @Tags Cart
// @Param id path string true "购物车ID (UUID)"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/carts/{id} [delete]
func (ctrl *CartController) Delete(c *gin.Context) {
	if err := ctrl.cartService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ==================== 明细 ====================

// ListItems
// @Summary 购物车明细列表
// @Tags Cart
// @Produce json
// @Param id path string true "购物车ID (UUID)"
// @Success 200 {array} dto.CartItemResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/carts/{id}/items [get]
func (ctrl *CartController) ListItems(c *gin.Context) {
	items, err := ctrl.cartService.ListItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]dto.CartItemResponse, 0, len(items))
	for i := range items {
		results = append(results, dto.NewCartItemResponse(&items[i]))
	}
	c.JSON(http.StatusOK, results)
}

// GetItem
// @Summary 购物车明细详情
// @Tags Cart
// @Produce json
// @Param id path string true "购物车ID (UUID)"
// @Param item_id path int true "明细ID"
// @Success 200 {object} dto.CartItemResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/carts/{id}/items/{item_id} [get]
func (ctrl *CartController) GetItem(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}

	item, err := ctrl.cartService.GetItem(c.Request.Context(), c.Param("id"), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCartItemResponse(item))
}

// AddItem
// @Summary 加入购物车
// @Description 商品已在购物车中时数量累加
// @Tags Cart
// @Accept json
// @Produce json
// @Param id path string true "购物车ID (UUID)"
// @Param body body dto.AddCartItemRequest true "商品与数量"
// @Success 201 {object} dto.AddCartItemResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/carts/{id}/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := ctrl.cartService.AddItem(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.AddCartItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
	})
}

// UpdateItem
// @Summary 修改明细数量
// @Tags Cart
// @Accept json
// @Produce json
// @Param id path string true "购物车ID (UUID)"
// @Param item_id path int true "明细ID"
// @Param body body dto.UpdateCartItemRequest true "数量"
// @Success 200 {object} dto.AddCartItemResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/carts/{id}/items/{item_id} [patch]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := ctrl.cartService.UpdateItem(c.Request.Context(), c.Param("id"), itemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AddCartItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
	})
}

// DeleteItem
// @Summary 删除明细
// @Tags Cart
// @Param id path string true "购物车ID (UUID)"
// @Param item_id path int true "明细ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/carts/{id}/items/{item_id} [delete]
func (ctrl *CartController) DeleteItem(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}

	if err := ctrl.cartService.DeleteItem(c.Request.Context(), c.Param("id"), itemID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
