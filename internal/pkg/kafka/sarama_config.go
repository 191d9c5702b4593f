package kafka

import (
	"IdeaVault/internal/api/config"
	"time"

	"github.com/IBM/sarama"
)

// newSaramaConfig 变更流消费者配置，未配置的超时使用 sarama 默认值
func newSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	c.Consumer.Return.Errors = true
	c.Consumer.Offsets.Initial = sarama.OffsetNewest
	if kafkaCfg.Consumer.FromOldest {
		// 首次部署时回放 binlog 以补齐通知与索引
		c.Consumer.Offsets.Initial = sarama.OffsetOldest
	}
	// 一批处理完成后手动提交
	c.Consumer.Offsets.AutoCommit.Enable = false

	consumer := kafkaCfg.Consumer
	setSeconds(&c.Consumer.Group.Session.Timeout, consumer.SessionTimeout)
	setSeconds(&c.Consumer.Group.Heartbeat.Interval, consumer.HeartbeatInterval)
	setSeconds(&c.Consumer.Group.Rebalance.Timeout, consumer.RebalanceTimeout)
	setSeconds(&c.Consumer.MaxProcessingTime, consumer.MaxProcessingTime)

	return c
}

func setSeconds(dst *time.Duration, seconds int) {
	if seconds > 0 {
		*dst = time.Duration(seconds) * time.Second
	}
}
