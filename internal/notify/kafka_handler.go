package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter kafka.Writer 的最小子集
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// kafkaBatchTimeout 写入在下单请求内同步完成，不能沿用默认 1s 攒批
const kafkaBatchTimeout = 10 * time.Millisecond

// KafkaHandler 把事件写入 kafka topic，key 为订单 ID
type KafkaHandler struct {
	writer messageWriter
}

func NewKafkaHandler(brokers []string, topic string) *KafkaHandler {
	return &KafkaHandler{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           kafkaBatchTimeout,
		},
	}
}

func (h *KafkaHandler) Name() string { return "kafka" }

func (h *KafkaHandler) HandleOrderCreated(ctx context.Context, evt OrderCreatedEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return h.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(evt.OrderID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Event)},
		},
	})
}

func (h *KafkaHandler) Close() error {
	return h.writer.Close()
}
