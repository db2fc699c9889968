package controller

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"storefront/internal/api/dto"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
)

// ==================== 错误响应 ====================

// respondError 业务错误映射为 HTTP 状态码，未知错误只记录日志
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Fields: ve.Fields})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: service.ErrNotFound.Error()})
	case errors.Is(err, service.ErrProductProtected),
		errors.Is(err, service.ErrCollectionProtected),
		errors.Is(err, service.ErrCustomerProtected):
		c.JSON(http.StatusMethodNotAllowed, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrUserDisabled):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "duplicate value"})
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "related object does not exist or is still referenced"})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

// respondBindError 请求体绑定失败
func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	if fields, ok := dto.FieldErrors(err); ok {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Fields: fields})
		return
	}
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
}

// ==================== 参数解析 ====================

// parseID 解析路径中的整数 ID，非法时按不存在处理
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: service.ErrNotFound.Error()})
		return 0, false
	}
	return id, true
}

// parsePagination 读取 page / page_size
func parsePagination(c *gin.Context, defaultSize int) (repository.Pagination, bool) {
	p := repository.Pagination{Page: 1, PageSize: defaultSize}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Invalid page."})
			return p, false
		}
		p.Page = n
	}
	if v := c.Query("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:  "validation failed",
				Fields: map[string]string{"page_size": "A valid integer is required."},
			})
			return p, false
		}
		p.PageSize = n
	}
	return p.Normalize(), true
}

// newPage 组装分页响应，next/previous 为完整链接
func newPage[T any](c *gin.Context, p repository.Pagination, total int64, results []T) dto.Page[T] {
	page := dto.Page[T]{Count: total, Results: results}
	if page.Results == nil {
		page.Results = []T{}
	}
	if int64(p.Page*p.PageSize) < total {
		page.Next = pageURL(c, p.Page+1)
	}
	if p.Page > 1 {
		page.Previous = pageURL(c, p.Page-1)
	}
	return page
}

func pageURL(c *gin.Context, page int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}

	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	s := u.String()
	return &s
}

// actor 当前请求身份
func actor(c *gin.Context) service.Actor {
	return service.Actor{UserID: middleware.GetUserID(c), IsAdmin: middleware.IsAdmin(c)}
}
