package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== CooldownLimiter 冷却限流器 ====================

// CooldownLimiter 同一个 key 两次放行之间至少间隔 interval
type CooldownLimiter struct {
	entries sync.Map // key -> *cooldownEntry
	now     func() time.Time
}

type cooldownEntry struct {
	mu       sync.Mutex
	lastTime time.Time
}

// NewCooldownLimiter 创建限流器
func NewCooldownLimiter() *CooldownLimiter {
	return &CooldownLimiter{now: time.Now}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查并在放行时记录时间
func (l *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	if interval <= 0 {
		return CheckResult{Allowed: true}
	}

	actual, _ := l.entries.LoadOrStore(key, &cooldownEntry{})
	entry := actual.(*cooldownEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := l.now()
	if !entry.lastTime.IsZero() {
		if elapsed := now.Sub(entry.lastTime); elapsed < interval {
			return CheckResult{RetryAfter: interval - elapsed}
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 清除指定 key
func (l *CooldownLimiter) Reset(key string) {
	l.entries.Delete(key)
}

// ==================== Gin 中间件 ====================

// CooldownByIP 按客户端 IP 限流，interval 为 0 时不限制
//
//	carts.POST("", middleware.CooldownByIP(limiter, "cart:create", 2*time.Second), ctl.Create)
func CooldownByIP(limiter *CooldownLimiter, scope string, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if interval <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%s", scope, c.ClientIP())
		result := limiter.Check(key, interval)
		if !result.Allowed {
			seconds := int(result.RetryAfter.Seconds()) + 1
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Request was throttled. Expected available in %d seconds.", seconds),
				"retry_after": seconds,
			})
			return
		}

		c.Next()
	}
}
