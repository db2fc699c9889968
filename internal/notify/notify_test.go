package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"storefront/internal/model"
)

func sampleEvent() OrderCreatedEvent {
	order := &model.Order{
		ID:            42,
		CustomerID:    3,
		PlacedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		PaymentStatus: model.PaymentStatusPending,
		Items: []model.OrderItem{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("5")},
			{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("2.5")},
		},
	}
	return NewOrderCreatedEvent(order, 9)
}

type memoryRecorder struct {
	mu   sync.Mutex
	logs []*model.NotificationLog
}

func (r *memoryRecorder) Create(_ context.Context, log *model.NotificationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *memoryRecorder) byHandler() map[string]*model.NotificationLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*model.NotificationLog, len(r.logs))
	for _, l := range r.logs {
		out[l.Handler] = l
	}
	return out
}

func TestNewOrderCreatedEvent(t *testing.T) {
	evt := sampleEvent()

	assert.Equal(t, EventOrderCreated, evt.Event)
	assert.Equal(t, "12.50", evt.TotalPrice)
	assert.Equal(t, "5.00", evt.Items[0].UnitPrice)
	assert.Equal(t, int64(9), evt.UserID)
}

// ==================== Dispatcher ====================

func TestDispatcher_FailuresAreIsolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	evt := sampleEvent()

	ok1 := NewMockHandler(ctrl)
	failing := NewMockHandler(ctrl)
	panicking := NewMockHandler(ctrl)
	ok2 := NewMockHandler(ctrl)

	ok1.EXPECT().Name().Return("first").AnyTimes()
	failing.EXPECT().Name().Return("failing").AnyTimes()
	panicking.EXPECT().Name().Return("panicking").AnyTimes()
	ok2.EXPECT().Name().Return("last").AnyTimes()

	ok1.EXPECT().HandleOrderCreated(gomock.Any(), evt).Return(nil)
	failing.EXPECT().HandleOrderCreated(gomock.Any(), evt).Return(errors.New("smtp down"))
	panicking.EXPECT().HandleOrderCreated(gomock.Any(), evt).DoAndReturn(
		func(context.Context, OrderCreatedEvent) error { panic("nil map") },
	)
	ok2.EXPECT().HandleOrderCreated(gomock.Any(), evt).Return(nil)

	rec := &memoryRecorder{}
	d := NewDispatcher(zap.NewNop(), rec, ok1, failing, panicking, ok2)

	deliveries := d.Dispatch(context.Background(), evt)
	require.Len(t, deliveries, 4)

	assert.Equal(t, "first", deliveries[0].Handler)
	assert.NoError(t, deliveries[0].Err)
	assert.EqualError(t, deliveries[1].Err, "smtp down")
	assert.ErrorContains(t, deliveries[2].Err, "panicked")
	assert.NoError(t, deliveries[3].Err)

	logs := rec.byHandler()
	require.Len(t, logs, 4)
	assert.Equal(t, model.NotificationDelivered, logs["first"].Status)
	assert.Equal(t, model.NotificationFailed, logs["failing"].Status)
	assert.Equal(t, "smtp down", logs["failing"].Error)
	assert.Equal(t, model.NotificationFailed, logs["panicking"].Status)
	assert.Equal(t, model.NotificationDelivered, logs["last"].Status)

	var payload OrderCreatedEvent
	require.NoError(t, json.Unmarshal(logs["last"].Payload, &payload))
	assert.Equal(t, int64(42), payload.OrderID)
}

func TestDispatcher_LongErrorTruncatedByRune(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewMockHandler(ctrl)
	h.EXPECT().Name().Return("webhook").AnyTimes()
	// 1 字节前缀让 1024 字节边界落在双字节字符中间
	msg := "x" + strings.Repeat("ошибка", 200)
	h.EXPECT().HandleOrderCreated(gomock.Any(), gomock.Any()).Return(errors.New(msg))

	rec := &memoryRecorder{}
	NewDispatcher(zap.NewNop(), rec, h).Dispatch(context.Background(), sampleEvent())

	logs := rec.byHandler()
	require.Contains(t, logs, "webhook")
	got := logs["webhook"].Error
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 1024, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(msg, got))
}

func TestDispatcher_CanceledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewMockHandler(ctrl)
	h.EXPECT().Name().Return("h").AnyTimes()
	h.EXPECT().HandleOrderCreated(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ OrderCreatedEvent) error { return ctx.Err() },
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	deliveries := NewDispatcher(zap.NewNop(), nil, h).Dispatch(ctx, sampleEvent())
	assert.NoError(t, deliveries[0].Err)
}

func TestDispatcher_NoHandlers(t *testing.T) {
	d := NewDispatcher(zap.NewNop(), nil)
	assert.Empty(t, d.Dispatch(context.Background(), sampleEvent()))

	d.Register(NewLogHandler(zap.NewNop()))
	assert.Equal(t, []string{"log"}, d.Handlers())
}

// ==================== Webhook ====================

func TestWebhookHandler(t *testing.T) {
	var received atomic.Int32
	var got OrderCreatedEvent

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		assert.Equal(t, EventOrderCreated, r.Header.Get("X-Event-Type"))
		received.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	h := NewWebhookHandler(WebhookOptions{URLs: []string{srv.URL}, Timeout: time.Second})
	require.NoError(t, h.HandleOrderCreated(context.Background(), sampleEvent()))

	assert.Equal(t, int32(1), received.Load())
	assert.Equal(t, int64(42), got.OrderID)
}

func TestWebhookHandler_BreakerOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	h := NewWebhookHandler(WebhookOptions{
		URLs:        []string{srv.URL},
		Timeout:     time.Second,
		MaxFailures: 2,
		OpenTimeout: time.Minute,
	})

	for i := 0; i < 2; i++ {
		assert.Error(t, h.HandleOrderCreated(context.Background(), sampleEvent()))
	}
	assert.Equal(t, gobreaker.StateOpen, h.State())

	err := h.HandleOrderCreated(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

// ==================== Redis ====================

func TestRedisHandler(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, "orders.created")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	h := NewRedisHandler(client, "orders.created")
	require.NoError(t, h.HandleOrderCreated(ctx, sampleEvent()))

	msgCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(msgCtx)
	require.NoError(t, err)

	var evt OrderCreatedEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
	assert.Equal(t, int64(42), evt.OrderID)
}

// ==================== Kafka ====================

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaHandler(t *testing.T) {
	w := &fakeWriter{}
	h := &KafkaHandler{writer: w}

	require.NoError(t, h.HandleOrderCreated(context.Background(), sampleEvent()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)

	w.err = errors.New("broker unavailable")
	assert.Error(t, h.HandleOrderCreated(context.Background(), sampleEvent()))
}

func TestNewKafkaHandler_ShortBatchTimeout(t *testing.T) {
	h := NewKafkaHandler([]string{"localhost:9092"}, "orders.created")
	defer h.Close()

	w, ok := h.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "orders.created", w.Topic)
	assert.Positive(t, w.BatchTimeout)
	assert.LessOrEqual(t, w.BatchTimeout, 50*time.Millisecond, "单条订单事件不应等待攒批")
}
