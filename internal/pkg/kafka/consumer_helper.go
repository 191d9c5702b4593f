package kafka

import (
	"context"
	"errors"
	log "log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

const (
	batchSize     = 32
	batchTimeout  = 1 * time.Second
	maxRetryDelay = 5 * time.Second
	maxAttempts   = 8
)

var ErrEmptyData = errors.New("data is empty")

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// pullMessageBatch 攒够一批或超时后处理
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				if len(batch) > 0 {
					processBatch(session, batch, logic)
				}
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				processBatch(session, batch, logic)
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
				ticker.Reset(batchTimeout)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				processBatch(session, batch, logic)
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// processBatch 并发处理一批消息，全部结束后提交最后一条的位移
func processBatch(session sarama.ConsumerGroupSession, messages []*sarama.ConsumerMessage, logic LogicFunc) {
	var wg sync.WaitGroup

	for _, msg := range messages {
		wg.Add(1)
		go func(m *sarama.ConsumerMessage) {
			defer wg.Done()
			runWithRetry(session.Context(), m, logic)
		}(msg)
	}

	wg.Wait()

	if len(messages) > 0 {
		session.MarkMessage(messages[len(messages)-1], "")
		session.Commit()
	}
}

// runWithRetry 指数退避重试，间隔上限 5s，超过次数后丢弃
func runWithRetry(ctx context.Context, m *sarama.ConsumerMessage, logic LogicFunc) {
	retryInterval := 100 * time.Millisecond
	for attempt := 1; ; attempt++ {
		err := logic(ctx, m)
		if err == nil {
			return
		}
		if attempt >= maxAttempts {
			log.Error("drop message after retries", "topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "err", err)
			return
		}
		log.Error("process message error", "attempt", attempt, "err", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryInterval):
		}
		retryInterval *= 2
		if retryInterval > maxRetryDelay {
			retryInterval = maxRetryDelay
		}
	}
}

// ToCanalMessage 将 kafka 消息转换为 canal 消息结构体
func ToCanalMessage(msg *sarama.ConsumerMessage) (*CanalMessage, error) {
	var canalMsg CanalMessage
	if err := json.Unmarshal(msg.Value, &canalMsg); err != nil {
		log.Error("unmarshal canal message error", "err", err)
		return nil, err
	}
	if canalMsg.IsDDL {
		return &canalMsg, nil
	}
	if len(canalMsg.Data) == 0 {
		return nil, ErrEmptyData
	}
	return &canalMsg, nil
}
