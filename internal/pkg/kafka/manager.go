package kafka

import (
	"IdeaVault/internal/api/config"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理 Canal 变更消费者
type ConsumerManager struct {
	consumer sarama.ConsumerGroup
	handler  sarama.ConsumerGroupHandler
	topics   []string
}

func NewConsumerManager(cfg *config.Config, handler *ChangeFeedHandler) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	consumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaChangeFeed.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		consumer: consumer,
		handler:  handler,
		topics:   cfg.KafkaChangeFeed.Topics,
	}, nil
}

// Start 阻塞直到 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context) error {
	go func() {
		for err := range m.consumer.Errors() {
			log.Error("change feed consumer error", "err", err)
		}
	}()

	go func() {
		log.Info("change feed consumer started", "topics", m.topics)
		for {
			if err := m.consumer.Consume(ctx, m.topics, m.handler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.consumer.Close(); err != nil {
		log.Error("Failed to close change feed consumer", "err", err)
	}
	return nil
}
