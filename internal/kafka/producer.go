package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"ballpark-tracker/internal/config"
	"ballpark-tracker/internal/logger"
	"ballpark-tracker/internal/models"
)

// Producer streams record changes to Kafka, one topic per change kind. In
// mock mode it only logs; with no writers at all every publish is a no-op.
type Producer struct {
	gameWriter *kafka.Writer
	saleWriter *kafka.Writer
	delWriter  *kafka.Writer
	topics     config.TopicConfig
	logger     *logger.Logger
	mockMode   bool
}

func NewProducer(cfg config.KafkaConfig, log *logger.Logger) *Producer {
	p := &Producer{
		topics:   cfg.Topics,
		logger:   log,
		mockMode: cfg.MockMode,
	}
	if cfg.MockMode {
		log.LogKafka("INIT", "mock", "Producer running in mock mode")
		return p
	}

	p.gameWriter = newWriter(cfg.Brokers, cfg.Topics.GameUpdated)
	p.saleWriter = newWriter(cfg.Brokers, cfg.Topics.SaleSaved)
	p.delWriter = newWriter(cfg.Brokers, cfg.Topics.SaleDeleted)
	return p
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
}

// PublishGameUpdated streams a game record change.
func (p *Producer) PublishGameUpdated(game models.Game) error {
	return p.publish(p.gameWriter, p.topics.GameUpdated, game.ID, game)
}

// PublishSaleSaved streams a created or edited ticket sale.
func (p *Producer) PublishSaleSaved(sale models.TicketSale) error {
	return p.publish(p.saleWriter, p.topics.SaleSaved, sale.ID, sale)
}

// PublishSaleDeleted streams a removed ticket sale.
func (p *Producer) PublishSaleDeleted(sale models.TicketSale) error {
	return p.publish(p.delWriter, p.topics.SaleDeleted, sale.ID, sale)
}

func (p *Producer) publish(writer *kafka.Writer, topic, key string, payload interface{}) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if p.mockMode || writer == nil {
		p.logger.LogKafka("MOCK", topic, string(msgBytes))
		return nil
	}

	p.logger.LogKafka("PUBLISH", topic, key)
	return writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	for _, w := range []*kafka.Writer{p.gameWriter, p.saleWriter, p.delWriter} {
		if w != nil {
			if err := w.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}
