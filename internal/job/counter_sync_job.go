package job

import (
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/logger"
	"IdeaVault/internal/pkg/redis"
	"IdeaVault/internal/pkg/util"
	"IdeaVault/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const counterTTL = time.Hour

// counterTarget 一类互动目标的脏集合与计数缓存键
type counterTarget struct {
	kind       string
	dirtyKey   string
	likeKey    string
	commentKey string
}

var counterTargets = []counterTarget{
	{consts.TargetPost, consts.PostDirtyKey, consts.PostLikeKey, consts.PostCommentKey},
	{consts.TargetIdea, consts.IdeaDirtyKey, consts.IdeaLikeKey, consts.IdeaCommentKey},
}

// CounterSyncJob 按明细行重算被标记为脏的帖子与想法的计数，并刷新缓存
type CounterSyncJob struct {
	interactionRepo repository.InteractionRepo
}

func NewCounterSyncJob(interactionRepo repository.InteractionRepo) *CounterSyncJob {
	return &CounterSyncJob{interactionRepo: interactionRepo}
}

func (s *CounterSyncJob) Run() {
	traceID := "job-counter-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	lockVal := uuid.NewString()
	ok, err := redis.TryLock(ctx, consts.CounterSyncLock, lockVal, 50*time.Second, 0)
	if err != nil || !ok {
		return
	}
	defer redis.UnLock(ctx, consts.CounterSyncLock, lockVal)

	for _, t := range counterTargets {
		s.sync(ctx, t)
	}
}

func (s *CounterSyncJob) sync(ctx context.Context, t counterTarget) {
	processingKey := t.dirtyKey + ":processing"
	// 脏集合不存在时 Rename 报错，视为无事可做
	if err := redis.Rename(ctx, t.dirtyKey, processingKey); err != nil {
		return
	}

	tempSet, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "get dirty set error", "kind", t.kind, "err", err)
		return
	}
	ids, err := util.StrSliceToUInt64Slice(tempSet)
	if err != nil {
		log.ErrorContext(ctx, "convert dirty set error", "kind", t.kind, "err", err)
		return
	}

	counts, err := s.interactionRepo.RecountTargets(ctx, t.kind, ids)
	if err != nil {
		log.ErrorContext(ctx, "recount targets error", "kind", t.kind, "err", err)
		// 失败的 ID 放回脏集合等待下一轮
		_ = redis.SAddUint64(ctx, t.dirtyKey, ids...)
		_ = redis.DeleteKey(ctx, processingKey)
		return
	}

	for id, c := range counts {
		sid := strconv.FormatUint(id, 10)
		if err = redis.SetWithExpiration(ctx, t.likeKey+sid, c[0], counterTTL); err != nil {
			log.WarnContext(ctx, "refresh like counter error", "kind", t.kind, "id", id, "err", err)
		}
		if err = redis.SetWithExpiration(ctx, t.commentKey+sid, c[1], counterTTL); err != nil {
			log.WarnContext(ctx, "refresh comment counter error", "kind", t.kind, "id", id, "err", err)
		}
	}

	if err = redis.DeleteKey(ctx, processingKey); err != nil {
		log.ErrorContext(ctx, "delete processing set error", "kind", t.kind, "err", err)
	}
	log.InfoContext(ctx, "sync counters success", "kind", t.kind, "count", len(counts))
}
