package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ms-canteen/internal/config"
	"ms-canteen/internal/logger"
	"ms-canteen/internal/models"

	"github.com/segmentio/kafka-go"
)

type OrderEvent struct {
	Type      string       `json:"type"`
	Order     models.Order `json:"order"`
	Timestamp time.Time    `json:"timestamp"`
}

// Producer publishes order lifecycle events. In mock mode it only logs,
// which keeps local development working without a broker.
type Producer struct {
	writer   *kafka.Writer
	topics   config.TopicConfig
	mockMode bool
	log      *logger.Logger
}

func NewProducer(cfg config.KafkaConfig, log *logger.Logger) *Producer {
	p := &Producer{
		topics:   cfg.Topics,
		mockMode: cfg.MockMode || !cfg.Enabled,
		log:      log,
	}
	if !p.mockMode {
		p.writer = &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Balancer: &kafka.LeastBytes{},
		}
	}
	return p
}

func (p *Producer) publish(topic, eventType string, order models.Order) error {
	event := OrderEvent{
		Type:      eventType,
		Order:     order,
		Timestamp: time.Now(),
	}
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.mockMode {
		p.log.LogKafka("MOCK", topic, fmt.Sprintf("would publish %s for order %s", eventType, order.OrderNo))
		return nil
	}

	p.log.LogKafka("PUBLISH", topic, fmt.Sprintf("%s for order %s", eventType, order.OrderNo))
	return p.writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(order.ID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) PublishOrderPlaced(order models.Order) error {
	return p.publish(p.topics.OrderPlaced, "order_placed", order)
}

func (p *Producer) PublishOrderCancelled(order models.Order) error {
	return p.publish(p.topics.OrderCancelled, "order_cancelled", order)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
