package service

import (
	"IdeaVault/internal/api/config"
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/feed"
	"IdeaVault/internal/pkg/mongo"
	"IdeaVault/internal/pkg/payment"
	"IdeaVault/internal/pkg/redis"
	"IdeaVault/internal/repository"
	"context"
	"crypto/subtle"
	log "log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	membershipCacheTTL = 5 * time.Minute
	checkoutLockTTL    = 30 * time.Second
)

// CheckoutCreator 创建支付会话
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, userID uint64, tier string) (*payment.Session, error)
}

type SubscriptionService interface {
	GetMembership(ctx context.Context, userID uint64) (*dto.MembershipDTO, error)
	IsPro(ctx context.Context, userID uint64) (bool, error)
	Checkout(ctx context.Context, userID uint64, tier string) (*dto.CheckoutDTO, error)
	CompleteCheckout(ctx context.Context, secret string, req *dto.CheckoutWebhookReq) (*dto.MembershipDTO, error)
	CancelSubscription(ctx context.Context, userID uint64) (*dto.MembershipDTO, error)
	ExpireLapsed(ctx context.Context) (int, error)
}

type subscriptionServiceImpl struct {
	membershipRepo repository.MembershipRepo
	checkout       CheckoutCreator
	sysBoxRepo     mongo.SysBoxRepo
	publisher      *feed.Publisher
	cfg            config.PaymentConfig
	now            func() time.Time
}

// NewSubscriptionService sysBoxRepo 可为 nil，此时不发送到期通知
func NewSubscriptionService(
	membershipRepo repository.MembershipRepo,
	checkout CheckoutCreator,
	sysBoxRepo mongo.SysBoxRepo,
	publisher *feed.Publisher,
	cfg config.PaymentConfig,
) SubscriptionService {
	if cfg.PeriodDays <= 0 {
		cfg.PeriodDays = 30
	}
	return &subscriptionServiceImpl{
		membershipRepo: membershipRepo,
		checkout:       checkout,
		sysBoxRepo:     sysBoxRepo,
		publisher:      publisher,
		cfg:            cfg,
		now:            time.Now,
	}
}

// GetMembership 没有任何记录时视为免费用户
func (s *subscriptionServiceImpl) GetMembership(ctx context.Context, userID uint64) (*dto.MembershipDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	m, err := s.membershipRepo.GetCurrent(ctx, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return &dto.MembershipDTO{UserID: userID, Tier: consts.TierFree, Status: consts.MembershipActive}, nil
	}
	return toMembershipDTO(m, s.now()), nil
}

// IsPro 结果短暂缓存，会员状态变化时失效
func (s *subscriptionServiceImpl) IsPro(ctx context.Context, userID uint64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	key := membershipKey(userID)
	if v, err := redis.GetValue(ctx, key); err == nil && v != "" {
		return v == "1", nil
	}

	m, err := s.membershipRepo.GetCurrent(ctx, userID)
	if err != nil {
		return false, err
	}
	pro := isProMembership(m, s.now())

	ttl := membershipCacheTTL
	if pro && m.EndsAt != nil {
		if left := m.EndsAt.Sub(s.now()); left < ttl {
			ttl = left
		}
	}
	// 已过期但尚未被定时任务处理的记录不缓存
	if ttl < time.Second {
		return pro, nil
	}
	val := "0"
	if pro {
		val = "1"
	}
	if err = redis.SetWithExpiration(ctx, key, val, ttl); err != nil {
		log.WarnContext(ctx, "membership cache fill failed", "key", key, "err", err)
	}
	return pro, nil
}

// Checkout 在支付服务商创建会话并记录待支付的会员
func (s *subscriptionServiceImpl) Checkout(ctx context.Context, userID uint64, tier string) (*dto.CheckoutDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	if tier != consts.TierPro {
		return nil, ErrParamInvalid
	}

	lockKey := consts.CheckoutLock + strconv.FormatUint(userID, 10)
	lockVal := uuid.NewString()
	ok, err := redis.TryLock(ctx, lockKey, lockVal, checkoutLockTTL, 0)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCheckoutFailed
	}
	defer redis.UnLock(context.WithoutCancel(ctx), lockKey, lockVal)

	session, err := s.checkout.CreateCheckoutSession(ctx, userID, tier)
	if err != nil {
		log.ErrorContext(ctx, "create checkout session failed", "user_id", userID, "err", err)
		return nil, ErrCheckoutFailed
	}

	pending := &model.Membership{
		UserID:            userID,
		Tier:              tier,
		Status:            consts.MembershipPending,
		CheckoutSessionID: session.ID,
	}
	if err = s.membershipRepo.CreateMembership(ctx, pending); err != nil {
		return nil, err
	}
	return &dto.CheckoutDTO{SessionID: session.ID, URL: session.URL}, nil
}

// CompleteCheckout 支付回调，重复回调直接返回当前状态
func (s *subscriptionServiceImpl) CompleteCheckout(ctx context.Context, secret string, req *dto.CheckoutWebhookReq) (*dto.MembershipDTO, error) {
	if s.cfg.WebhookSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.WebhookSecret)) != 1 {
		return nil, ErrWebhookSecret
	}
	m, err := s.membershipRepo.GetBySessionID(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMembershipNotFound
	}
	now := s.now()
	if m.Status != consts.MembershipPending {
		return toMembershipDTO(m, now), nil
	}

	old := *m
	switch req.Status {
	case "paid", "complete", "completed":
		endsAt := now.AddDate(0, 0, s.cfg.PeriodDays)
		m.Status = consts.MembershipActive
		m.StartedAt = &now
		m.EndsAt = &endsAt
		err = s.membershipRepo.ActivateMembership(ctx, m)
	default:
		m.Status = consts.MembershipFailed
		err = s.membershipRepo.SaveMembership(ctx, m)
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, m.UserID)
	s.publisher.Publish(ctx, feed.Update, feed.TableMemberships, m, &old)
	return toMembershipDTO(m, now), nil
}

// CancelSubscription 取消后在已付费周期内仍保持 pro
func (s *subscriptionServiceImpl) CancelSubscription(ctx context.Context, userID uint64) (*dto.MembershipDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	m, err := s.membershipRepo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.Tier != consts.TierPro {
		return nil, ErrMembershipNotFound
	}

	now := s.now()
	old := *m
	m.Status = consts.MembershipCancelled
	m.CancelledAt = &now
	if m.EndsAt == nil {
		m.EndsAt = &now
	}
	if err = s.membershipRepo.SaveMembership(ctx, m); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	s.publisher.Publish(ctx, feed.Update, feed.TableMemberships, m, &old)
	return toMembershipDTO(m, now), nil
}

// ExpireLapsed 到期的会员置为过期并通知用户
func (s *subscriptionServiceImpl) ExpireLapsed(ctx context.Context) (int, error) {
	now := s.now()
	userIDs, err := s.membershipRepo.ExpireLapsed(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, uid := range userIDs {
		s.invalidate(ctx, uid)
		s.publisher.Publish(ctx, feed.Update, feed.TableMemberships,
			map[string]any{"user_id": uid, "status": consts.MembershipExpired}, nil)
		if s.sysBoxRepo == nil {
			continue
		}
		err = s.sysBoxRepo.CreateNotification(ctx, &mongo.SysBoxModel{
			ReceiverID: uid,
			Type:       mongo.NotifyMembershipEnded,
			Content:    "Your Pro membership has ended.",
			CreatedAt:  now,
		})
		if err != nil {
			log.WarnContext(ctx, "membership ended notification failed", "user_id", uid, "err", err)
		}
	}
	return len(userIDs), nil
}

func (s *subscriptionServiceImpl) invalidate(ctx context.Context, userID uint64) {
	if err := redis.DeleteKey(ctx, membershipKey(userID)); err != nil {
		log.WarnContext(ctx, "membership cache invalidate failed", "user_id", userID, "err", err)
	}
}

func membershipKey(userID uint64) string {
	return consts.MembershipKey + strconv.FormatUint(userID, 10)
}
