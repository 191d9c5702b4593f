package repository

import (
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type MembershipRepo interface {
	GetCurrent(ctx context.Context, userID uint64) (*model.Membership, error)
	GetActive(ctx context.Context, userID uint64) (*model.Membership, error)
	GetBySessionID(ctx context.Context, sessionID string) (*model.Membership, error)
	CreateMembership(ctx context.Context, m *model.Membership) error
	SaveMembership(ctx context.Context, m *model.Membership) error
	// ActivateMembership 将待支付记录激活，并把该用户其余生效中的记录置为过期
	ActivateMembership(ctx context.Context, m *model.Membership) error
	ExpireLapsed(ctx context.Context, now time.Time) ([]uint64, error)
}

type MembershipRepoImpl struct {
	db *gorm.DB
}

func NewMembershipRepo(db *gorm.DB) MembershipRepo {
	return &MembershipRepoImpl{db: db}
}

// GetCurrent 优先返回生效中或已取消的记录，其次是最近一条已过期的记录
func (s *MembershipRepoImpl) GetCurrent(ctx context.Context, userID uint64) (*model.Membership, error) {
	m, err := s.first(ctx, s.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID,
			[]string{consts.MembershipActive, consts.MembershipCancelled}).
		Order("id DESC"))
	if err != nil || m != nil {
		return m, err
	}
	return s.first(ctx, s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, consts.MembershipExpired).
		Order("id DESC"))
}

func (s *MembershipRepoImpl) GetActive(ctx context.Context, userID uint64) (*model.Membership, error) {
	return s.first(ctx, s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, consts.MembershipActive).
		Order("id DESC"))
}

func (s *MembershipRepoImpl) GetBySessionID(ctx context.Context, sessionID string) (*model.Membership, error) {
	return s.first(ctx, s.db.WithContext(ctx).Where("checkout_session_id = ?", sessionID))
}

func (s *MembershipRepoImpl) CreateMembership(ctx context.Context, m *model.Membership) error {
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *MembershipRepoImpl) SaveMembership(ctx context.Context, m *model.Membership) error {
	return s.db.WithContext(ctx).Save(m).Error
}

func (s *MembershipRepoImpl) ActivateMembership(ctx context.Context, m *model.Membership) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Membership{}).
			Where("user_id = ? AND id <> ? AND status IN ?", m.UserID, m.ID,
				[]string{consts.MembershipActive, consts.MembershipCancelled}).
			Update("status", consts.MembershipExpired).Error
		if err != nil {
			return err
		}
		return tx.Save(m).Error
	})
}

// ExpireLapsed 到期的付费记录置为过期，返回受影响的用户
func (s *MembershipRepoImpl) ExpireLapsed(ctx context.Context, now time.Time) ([]uint64, error) {
	var userIDs []uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&model.Membership{}).
			Where("tier = ? AND status IN ? AND ends_at IS NOT NULL AND ends_at <= ?",
				consts.TierPro, []string{consts.MembershipActive, consts.MembershipCancelled}, now)
		if err := q.Distinct().Pluck("user_id", &userIDs).Error; err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return nil
		}
		return tx.Model(&model.Membership{}).
			Where("tier = ? AND status IN ? AND ends_at IS NOT NULL AND ends_at <= ?",
				consts.TierPro, []string{consts.MembershipActive, consts.MembershipCancelled}, now).
			Update("status", consts.MembershipExpired).Error
	})
	return userIDs, err
}

func (s *MembershipRepoImpl) first(_ context.Context, q *gorm.DB) (*model.Membership, error) {
	m := &model.Membership{}
	if err := q.First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}
