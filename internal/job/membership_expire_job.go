package job

import (
	"IdeaVault/internal/pkg/logger"
	"IdeaVault/internal/service"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// MembershipExpireJob 把已过付费周期的会员置为过期
type MembershipExpireJob struct {
	subscriptionSvc service.SubscriptionService
}

func NewMembershipExpireJob(subscriptionSvc service.SubscriptionService) *MembershipExpireJob {
	return &MembershipExpireJob{subscriptionSvc: subscriptionSvc}
}

func (s *MembershipExpireJob) Run() {
	traceID := "job-membership-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	n, err := s.subscriptionSvc.ExpireLapsed(ctx)
	if err != nil {
		log.ErrorContext(ctx, "expire memberships error", "err", err)
		return
	}
	if n > 0 {
		log.InfoContext(ctx, "memberships expired", "count", n)
	}
}
