package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api/dto"
	"storefront/internal/service"
)

type TagController struct {
	tagService *service.TagService
}

func NewTagController(s *service.TagService) *TagController {
	return &TagController{tagService: s}
}

// ListTags
// @Summary 全部标签
// @Tags Tag
// @Produce json
// @Success 200 {array} dto.TagResponse
// @Router /api/tags [get]
func (ctrl *TagController) ListTags(c *gin.Context) {
	tags, err := ctrl.tagService.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]dto.TagResponse, 0, len(tags))
	for i := range tags {
		results = append(results, dto.NewTagResponse(&tags[i]))
	}
	c.JSON(http.StatusOK, results)
}

// TagsFor
// @Summary 实体上的标签
// @Description 按挂载顺序返回，重复挂载会重复出现
// @Tags Tag
// @Produce json
// @Param entity_type path string true "product | collection | customer | order"
// @Param entity_id path int true "实体ID"
// @Success 200 {array} dto.TagResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/tags/{entity_type}/{entity_id} [get]
func (ctrl *TagController) TagsFor(c *gin.Context) {
	entityID, ok := parseID(c, "entity_id")
	if !ok {
		return
	}

	tags, err := ctrl.tagService.TagsFor(c.Request.Context(), c.Param("entity_type"), entityID)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]dto.TagResponse, 0, len(tags))
	for i := range tags {
		results = append(results, dto.NewTagResponse(&tags[i]))
	}
	c.JSON(http.StatusOK, results)
}

// Attach
// @Summary 给实体挂标签
// @Description tag_id 与 label 二选一，label 不存在时自动创建
// @Tags Tag
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entity_type path string true "product | collection | customer | order"
// @Param entity_id path int true "实体ID"
// @Param body body dto.AttachTagRequest true "标签"
// @Success 201 {object} dto.TaggedItemResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tags/{entity_type}/{entity_id} [post]
func (ctrl *TagController) Attach(c *gin.Context) {
	entityID, ok := parseID(c, "entity_id")
	if !ok {
		return
	}
	var req dto.AttachTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := ctrl.tagService.Attach(c.Request.Context(), c.Param("entity_type"), entityID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTaggedItemResponse(item))
}

// Detach
// @Summary 取消挂载
// @Tags Tag
// @Security BearerAuth
// @Param id path int true "挂载记录ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tags/items/{id} [delete]
func (ctrl *TagController) Detach(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.tagService.Detach(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
