package kafka

import (
	"context"
	"errors"
	log "log/slog"

	"github.com/IBM/sarama"
)

// TableHook 处理某张表的一条 Canal 变更
type TableHook func(ctx context.Context, msg *CanalMessage) error

// ChangeFeedHandler 按表名把 Canal 消息分发给对应的钩子
type ChangeFeedHandler struct {
	hooks map[string][]TableHook
}

func NewChangeFeedHandler() *ChangeFeedHandler {
	return &ChangeFeedHandler{hooks: make(map[string][]TableHook)}
}

// On 为表注册钩子，同一张表可注册多个，按注册顺序执行
func (s *ChangeFeedHandler) On(table string, hook TableHook) *ChangeFeedHandler {
	s.hooks[table] = append(s.hooks[table], hook)
	return s
}

func (s *ChangeFeedHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("change feed consumer setup")
	return nil
}

func (s *ChangeFeedHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("change feed consumer cleanup")
	return nil
}

func (s *ChangeFeedHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("change feed consume claim", "topic", claim.Topic(), "partition", claim.Partition())
	if err := pullMessageBatch(session, claim, s.logic); err != nil {
		log.Error("change feed process batch error", "err", err)
		return err
	}
	return nil
}

func (s *ChangeFeedHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg)
	if err != nil {
		// 空数据与无法解析的消息不重试
		if errors.Is(err, ErrEmptyData) {
			return nil
		}
		log.WarnContext(ctx, "skip malformed canal message", "offset", msg.Offset, "err", err)
		return nil
	}
	return s.Dispatch(ctx, canalMsg)
}

// Dispatch 执行表上的全部钩子，任一失败即返回以触发重试
func (s *ChangeFeedHandler) Dispatch(ctx context.Context, canalMsg *CanalMessage) error {
	if canalMsg.IsDDL {
		return nil
	}
	for _, hook := range s.hooks[canalMsg.Table] {
		if err := hook(ctx, canalMsg); err != nil {
			return err
		}
	}
	return nil
}
