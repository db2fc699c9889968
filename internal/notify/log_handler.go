package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogHandler 写一条结构化日志，始终启用
type LogHandler struct {
	log *zap.Logger
}

func NewLogHandler(log *zap.Logger) *LogHandler {
	return &LogHandler{log: log.Named("order_events")}
}

func (h *LogHandler) Name() string { return "log" }

func (h *LogHandler) HandleOrderCreated(_ context.Context, evt OrderCreatedEvent) error {
	h.log.Info("order created",
		zap.Int64("order_id", evt.OrderID),
		zap.Int64("customer_id", evt.CustomerID),
		zap.Int("items", len(evt.Items)),
		zap.String("total_price", evt.TotalPrice),
	)
	return nil
}
