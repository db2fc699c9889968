package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"storefront/internal/model"
)

// Recorder 投递结果落库
type Recorder interface {
	Create(ctx context.Context, log *model.NotificationLog) error
}

// Delivery 单个 handler 的投递结果
type Delivery struct {
	Handler string
	Err     error
}

// Dispatcher 按注册顺序持有 handler，并发投递
// 任何 handler 的错误或 panic 都只记录，不影响其他 handler，也不返回给调用方
type Dispatcher struct {
	handlers []Handler
	recorder Recorder
	log      *zap.Logger
	timeout  time.Duration
}

// NewDispatcher 创建分发器，recorder 可为 nil
func NewDispatcher(log *zap.Logger, recorder Recorder, handlers ...Handler) *Dispatcher {
	return &Dispatcher{
		handlers: handlers,
		recorder: recorder,
		log:      log.Named("notify"),
		timeout:  10 * time.Second,
	}
}

// Register 追加 handler
func (d *Dispatcher) Register(h Handler) {
	d.handlers = append(d.handlers, h)
}

// Handlers 已注册的 handler 名称
func (d *Dispatcher) Handlers() []string {
	names := make([]string, 0, len(d.handlers))
	for _, h := range d.handlers {
		names = append(names, h.Name())
	}
	return names
}

// Dispatch 投递 order.created，等待全部 handler 结束
// ctx 被取消不会中断投递，订单已经提交
func (d *Dispatcher) Dispatch(ctx context.Context, evt OrderCreatedEvent) []Delivery {
	deliveries := make([]Delivery, len(d.handlers))
	if len(d.handlers) == 0 {
		return deliveries
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	var wg conc.WaitGroup
	for i, h := range d.handlers {
		wg.Go(func() {
			deliveries[i] = Delivery{Handler: h.Name(), Err: d.invoke(ctx, h, evt)}
		})
	}
	wg.Wait()

	payload, err := json.Marshal(evt)
	if err != nil {
		d.log.Error("marshal event failed", zap.Error(err), zap.Int64("order_id", evt.OrderID))
	}
	for _, dl := range deliveries {
		d.record(ctx, evt, payload, dl)
	}
	return deliveries
}

// invoke 调用单个 handler，panic 转为 error
func (d *Dispatcher) invoke(ctx context.Context, h Handler, evt OrderCreatedEvent) (err error) {
	recovered := panics.Try(func() {
		err = h.HandleOrderCreated(ctx, evt)
	})
	if recovered != nil {
		return fmt.Errorf("handler panicked: %w", recovered.AsError())
	}
	return err
}

func (d *Dispatcher) record(ctx context.Context, evt OrderCreatedEvent, payload []byte, dl Delivery) {
	entry := &model.NotificationLog{
		Event:   evt.Event,
		Handler: dl.Handler,
		OrderID: evt.OrderID,
		Status:  model.NotificationDelivered,
		Payload: datatypes.JSON(payload),
	}
	if dl.Err != nil {
		entry.Status = model.NotificationFailed
		entry.Error = truncate(dl.Err.Error(), 1024)
		d.log.Error("order notification failed",
			zap.String("handler", dl.Handler),
			zap.Int64("order_id", evt.OrderID),
			zap.Error(dl.Err),
		)
	}
	if len(entry.Payload) == 0 {
		entry.Payload = datatypes.JSON("{}")
	}

	if d.recorder == nil {
		return
	}
	if err := d.recorder.Create(ctx, entry); err != nil {
		d.log.Warn("save notification log failed",
			zap.String("handler", dl.Handler),
			zap.Int64("order_id", evt.OrderID),
			zap.Error(err),
		)
	}
}

// truncate 按字符截断，varchar 长度按字符计
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
