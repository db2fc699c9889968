package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

// WebhookHandler 把事件 POST 到配置的 URL，整体由熔断器保护
type WebhookHandler struct {
	client  *resty.Client
	urls    []string
	breaker *gobreaker.CircuitBreaker[*resty.Response]
}

// WebhookOptions webhook 配置
type WebhookOptions struct {
	URLs    []string
	Timeout time.Duration
	// 连续失败多少次后熔断
	MaxFailures uint32
	// 熔断后多久进入半开
	OpenTimeout time.Duration
}

func NewWebhookHandler(opts WebhookOptions) *WebhookHandler {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "storefront-webhook/1.0").
		SetRetryCount(1).
		SetRetryWaitTime(200 * time.Millisecond)

	maxFailures := opts.MaxFailures
	breaker := gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        "order-webhook",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})

	return &WebhookHandler{client: client, urls: opts.URLs, breaker: breaker}
}

func (h *WebhookHandler) Name() string { return "webhook" }

// HandleOrderCreated 逐个 URL 投递，所有失败合并返回
func (h *WebhookHandler) HandleOrderCreated(ctx context.Context, evt OrderCreatedEvent) error {
	var errs []error
	for _, url := range h.urls {
		_, err := h.breaker.Execute(func() (*resty.Response, error) {
			resp, err := h.client.R().
				SetContext(ctx).
				SetHeader("X-Event-Type", evt.Event).
				SetBody(evt).
				Post(url)
			if err != nil {
				return nil, err
			}
			if resp.IsError() {
				return resp, fmt.Errorf("webhook %s returned %d", url, resp.StatusCode())
			}
			return resp, nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("post %s: %w", url, err))
		}
	}
	return errors.Join(errs...)
}

// State 熔断器状态
func (h *WebhookHandler) State() gobreaker.State {
	return h.breaker.State()
}
