package service

import (
	"IdeaVault/internal/api/config"
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/payment"
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

type fakeCheckout struct {
	calls int
	err   error
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, userID uint64, tier string) (*payment.Session, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	id := fmt.Sprintf("cs_%d_%s_%d", userID, tier, f.calls)
	return &payment.Session{ID: id, URL: "https://pay.test/" + id}, nil
}

func newSubscriptionForTest(env *testEnv, checkout CheckoutCreator, now time.Time) *subscriptionServiceImpl {
	svc := NewSubscriptionService(env.memberships, checkout, nil, env.publisher, config.PaymentConfig{
		WebhookSecret: testWebhookSecret,
		PeriodDays:    30,
	}).(*subscriptionServiceImpl)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCheckoutAndWebhookActivatesPro(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.mkUser(t, "buyer")
	now := time.Now().Truncate(time.Second)
	svc := newSubscriptionForTest(env, &fakeCheckout{}, now)

	pro, err := svc.IsPro(ctx, uid)
	require.NoError(t, err)
	assert.False(t, pro)

	_, err = svc.Checkout(ctx, uid, "gold")
	assert.ErrorIs(t, err, ErrParamInvalid)

	session, err := svc.Checkout(ctx, uid, consts.TierPro)
	require.NoError(t, err)
	assert.NotEmpty(t, session.URL)

	// 待支付记录不影响当前会员状态
	current, err := svc.GetMembership(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, consts.TierFree, current.Tier)

	_, err = svc.CompleteCheckout(ctx, "wrong", &dto.CheckoutWebhookReq{SessionID: session.SessionID, Status: "paid"})
	assert.ErrorIs(t, err, ErrWebhookSecret)
	_, err = svc.CompleteCheckout(ctx, testWebhookSecret, &dto.CheckoutWebhookReq{SessionID: "cs_unknown", Status: "paid"})
	assert.ErrorIs(t, err, ErrMembershipNotFound)

	m, err := svc.CompleteCheckout(ctx, testWebhookSecret, &dto.CheckoutWebhookReq{SessionID: session.SessionID, Status: "paid"})
	require.NoError(t, err)
	assert.True(t, m.IsPro)
	assert.Equal(t, consts.MembershipActive, m.Status)
	require.NotNil(t, m.EndsAt)
	assert.True(t, m.EndsAt.Equal(now.AddDate(0, 0, 30)))

	// 重复回调幂等
	again, err := svc.CompleteCheckout(ctx, testWebhookSecret, &dto.CheckoutWebhookReq{SessionID: session.SessionID, Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, m.ID, again.ID)

	pro, err = svc.IsPro(ctx, uid)
	require.NoError(t, err)
	assert.True(t, pro)
}

func TestWebhookFailedPaymentMarksPendingFailed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.mkUser(t, "buyer")
	svc := newSubscriptionForTest(env, &fakeCheckout{}, time.Now())

	session, err := svc.Checkout(ctx, uid, consts.TierPro)
	require.NoError(t, err)
	m, err := svc.CompleteCheckout(ctx, testWebhookSecret, &dto.CheckoutWebhookReq{SessionID: session.SessionID, Status: "failed"})
	require.NoError(t, err)
	assert.Equal(t, consts.MembershipFailed, m.Status)
	assert.False(t, m.IsPro)

	current, err := svc.GetMembership(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, consts.TierFree, current.Tier)
}

func TestFailedRenewalKeepsPaidMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.mkUser(t, "buyer")
	checkout := &fakeCheckout{}
	svc := newSubscriptionForTest(env, checkout, time.Now().Truncate(time.Second))

	first, err := svc.Checkout(ctx, uid, consts.TierPro)
	require.NoError(t, err)
	_, err = svc.CompleteCheckout(ctx, testWebhookSecret, &dto.CheckoutWebhookReq{SessionID: first.SessionID, Status: "paid"})
	require.NoError(t, err)

	second, err := svc.Checkout(ctx, uid, consts.TierPro)
	require.NoError(t, err)
	require.NotEqual(t, first.SessionID, second.SessionID)
	failed, err := svc.CompleteCheckout(ctx, testWebhookSecret, &dto.CheckoutWebhookReq{SessionID: second.SessionID, Status: "failed"})
	require.NoError(t, err)
	assert.Equal(t, consts.MembershipFailed, failed.Status)

	pro, err := svc.IsPro(ctx, uid)
	require.NoError(t, err)
	assert.True(t, pro)

	current, err := svc.GetMembership(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, consts.TierPro, current.Tier)
	assert.Equal(t, consts.MembershipActive, current.Status)

	// 取消的仍然是已付费的那条记录
	cancelled, err := svc.CancelSubscription(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, current.ID, cancelled.ID)
}

func TestCheckoutProviderFailure(t *testing.T) {
	env := newTestEnv(t)
	uid := env.mkUser(t, "buyer")
	svc := newSubscriptionForTest(env, &fakeCheckout{err: errors.New("provider down")}, time.Now())

	_, err := svc.Checkout(context.Background(), uid, consts.TierPro)
	assert.ErrorIs(t, err, ErrCheckoutFailed)
	assert.Zero(t, countRows(t, env, &model.Membership{}))
}

func TestCancelKeepsProUntilPeriodEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.mkUser(t, "member")
	now := time.Now().Truncate(time.Second)
	started, ends := now.AddDate(0, 0, -10), now.AddDate(0, 0, 20)
	require.NoError(t, env.memberships.CreateMembership(ctx, &model.Membership{
		UserID: uid, Tier: consts.TierPro, Status: consts.MembershipActive, StartedAt: &started, EndsAt: &ends,
	}))
	svc := newSubscriptionForTest(env, &fakeCheckout{}, now)

	_, err := svc.CancelSubscription(ctx, env.mkUser(t, "freeloader"))
	assert.ErrorIs(t, err, ErrMembershipNotFound)

	pro, err := svc.IsPro(ctx, uid)
	require.NoError(t, err)
	require.True(t, pro)

	m, err := svc.CancelSubscription(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, consts.MembershipCancelled, m.Status)
	assert.True(t, m.IsPro)
	assert.NotNil(t, m.CancelledAt)

	// 缓存已失效
	assert.False(t, env.mr.Exists(consts.MembershipKey+strconv.FormatUint(uid, 10)))
	pro, err = svc.IsPro(ctx, uid)
	require.NoError(t, err)
	assert.True(t, pro)

	_, err = svc.CancelSubscription(ctx, uid)
	assert.ErrorIs(t, err, ErrMembershipNotFound)

	// 周期结束后由定时任务置为过期
	later := newSubscriptionForTest(env, &fakeCheckout{}, ends.Add(time.Minute))
	n, err := later.ExpireLapsed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pro, err = later.IsPro(ctx, uid)
	require.NoError(t, err)
	assert.False(t, pro)
	current, err := later.GetMembership(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, consts.MembershipExpired, current.Status)
}

func TestIsProCacheNeverOutlivesPeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.mkUser(t, "member")
	now := time.Now().Truncate(time.Second)
	ends := now.Add(2 * time.Minute)
	require.NoError(t, env.memberships.CreateMembership(ctx, &model.Membership{
		UserID: uid, Tier: consts.TierPro, Status: consts.MembershipActive, EndsAt: &ends,
	}))
	svc := newSubscriptionForTest(env, &fakeCheckout{}, now)

	pro, err := svc.IsPro(ctx, uid)
	require.NoError(t, err)
	assert.True(t, pro)
	ttl := env.mr.TTL(consts.MembershipKey + strconv.FormatUint(uid, 10))
	assert.LessOrEqual(t, ttl, 2*time.Minute)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestIsProMembership(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Hour), now.Add(time.Hour)

	tests := []struct {
		name string
		m    *model.Membership
		want bool
	}{
		{"no record", nil, false},
		{"free active", &model.Membership{Tier: consts.TierFree, Status: consts.MembershipActive}, false},
		{"pro active open ended", &model.Membership{Tier: consts.TierPro, Status: consts.MembershipActive}, true},
		{"pro active in period", &model.Membership{Tier: consts.TierPro, Status: consts.MembershipActive, EndsAt: &future}, true},
		{"pro active lapsed before job ran", &model.Membership{Tier: consts.TierPro, Status: consts.MembershipActive, EndsAt: &past}, false},
		{"pro cancelled in period", &model.Membership{Tier: consts.TierPro, Status: consts.MembershipCancelled, EndsAt: &future}, true},
		{"pro cancelled lapsed", &model.Membership{Tier: consts.TierPro, Status: consts.MembershipCancelled, EndsAt: &past}, false},
		{"pro failed", &model.Membership{Tier: consts.TierPro, Status: consts.MembershipFailed}, false},
		{"pro pending", &model.Membership{Tier: consts.TierPro, Status: consts.MembershipPending}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isProMembership(tt.m, now))
		})
	}
}
