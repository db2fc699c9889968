package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(OptionalAuth())
	r.GET("/public", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	r.GET("/private", JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	r.GET("/admin", JWTAuth(), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func doGet(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := newAuthRouter()

	customerToken, refreshToken, err := GenerateTokenPair(7, "alice", model.RoleCustomer)
	require.NoError(t, err)
	adminToken, _, err := GenerateTokenPair(1, "root", model.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"匿名访问公开接口", "/public", "", http.StatusOK},
		{"匿名访问私有接口", "/private", "", http.StatusUnauthorized},
		{"非法 token", "/private", "garbage", http.StatusUnauthorized},
		{"refresh token 不能当 access 用", "/private", refreshToken, http.StatusUnauthorized},
		{"普通用户", "/private", customerToken, http.StatusOK},
		{"普通用户访问管理接口", "/admin", customerToken, http.StatusForbidden},
		{"匿名访问管理接口", "/admin", "", http.StatusUnauthorized},
		{"管理员", "/admin", adminToken, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, tt.path, tt.token)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestParseToken_Expired(t *testing.T) {
	orig := GetJWTConfig()
	defer SetJWTConfig(orig)

	cfg := *orig
	cfg.AccessTokenTTL = -time.Minute
	SetJWTConfig(&cfg)

	access, _, err := GenerateTokenPair(1, "bob", model.RoleCustomer)
	require.NoError(t, err)

	_, err = ParseToken(access)
	assert.Error(t, err)
}

func TestCooldownLimiter(t *testing.T) {
	l := NewCooldownLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Check("k", time.Second).Allowed)

	res := l.Check("k", time.Second)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Second, res.RetryAfter)

	now = now.Add(1500 * time.Millisecond)
	assert.True(t, l.Check("k", time.Second).Allowed)

	// interval 为 0 不限制
	assert.True(t, l.Check("k", 0).Allowed)
	assert.True(t, l.Check("k", 0).Allowed)
}

func TestCooldownByIP(t *testing.T) {
	r := gin.New()
	r.POST("/carts", CooldownByIP(NewCooldownLimiter(), "cart:create", time.Hour), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/carts", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.NewNop()), Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := doGet(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}
