package service

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/redis"
	"IdeaVault/internal/pkg/security"
	"IdeaVault/internal/repository"
	"context"
	log "log/slog"
	"strings"
	"time"
)

type UserService interface {
	SignUp(ctx context.Context, req *dto.SignUpDTO) (*dto.TokenDTO, error)
	SignIn(ctx context.Context, req *dto.SignInDTO) (*dto.TokenDTO, error)
	SignOut(ctx context.Context, token string) error
	GetUser(ctx context.Context, userID uint64) (*dto.UserDTO, error)
	UpdateUser(ctx context.Context, userID uint64, req *dto.UpdateUserDTO) (*dto.UserDTO, error)
	IsTokenRevoked(ctx context.Context, token string) (bool, error)
}

type UserServiceImpl struct {
	userRepo    repository.UserRepo
	profileRepo repository.ProfileRepo
}

func NewUserService(userRepo repository.UserRepo, profileRepo repository.ProfileRepo) UserService {
	return &UserServiceImpl{
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

// SignUp 用户、资料、默认设置与免费会员在同一事务内创建
func (s *UserServiceImpl) SignUp(ctx context.Context, req *dto.SignUpDTO) (*dto.TokenDTO, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	if email == "" || username == "" || req.Password == "" {
		return nil, ErrParamInvalid
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExist
	}
	taken, err := s.profileRepo.UsernameTaken(ctx, username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUserUsernameExist
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &model.User{
		Email:    email,
		Password: hash,
		Roles:    model.Roles{consts.RoleUser},
	}
	profile := &model.Profile{Username: username, AvatarURL: consts.DefaultAvatarURL}
	membership := &model.Membership{
		Tier:      consts.TierFree,
		Status:    consts.MembershipActive,
		StartedAt: &now,
	}

	err = s.userRepo.CreateUser(ctx, user, profile, model.DefaultSettings(0), membership)
	if err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrUserExist
		}
		return nil, err
	}

	log.InfoContext(ctx, "user signed up", "uid", user.ID)
	return s.issueToken(user)
}

func (s *UserServiceImpl) SignIn(ctx context.Context, req *dto.SignInDTO) (*dto.TokenDTO, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrPasswordIncorrect
	}
	if err = security.CheckPasswordHash(req.Password, user.Password); err != nil {
		return nil, ErrPasswordIncorrect
	}
	if user.IsBan {
		return nil, ErrUserBan
	}
	if security.NeedsRehash(user.Password) {
		s.rehash(ctx, user.ID, req.Password)
	}
	return s.issueToken(user)
}

// SignOut 将 Token 签名拉黑到其原本的过期时间
func (s *UserServiceImpl) SignOut(ctx context.Context, token string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return ErrAuthRequired
	}

	ttl := security.Expiration()
	if claims, err := security.ValidateToken(token); err == nil && claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return redis.SetWithExpiration(ctx, consts.TokenBlacklistKey+signature, true, ttl)
}

func (s *UserServiceImpl) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return true, nil
	}
	value, err := redis.GetValue(ctx, consts.TokenBlacklistKey+signature)
	if err != nil {
		return false, err
	}
	return value != "", nil
}

func (s *UserServiceImpl) GetUser(ctx context.Context, userID uint64) (*dto.UserDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toUserDTO(user), nil
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, userID uint64, req *dto.UpdateUserDTO) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	fields := make(map[string]interface{}, 2)
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			other, err := s.userRepo.GetUserByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, ErrUserExist
			}
			fields["email"] = email
		}
	}
	if req.Password != nil {
		if req.CurrentPassword == nil {
			return nil, ErrCurrentPassword
		}
		if err = security.CheckPasswordHash(*req.CurrentPassword, user.Password); err != nil {
			return nil, ErrPasswordIncorrect
		}
		hash, err := security.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hash
	}

	if len(fields) > 0 {
		if err = s.userRepo.UpdateUser(ctx, userID, fields); err != nil {
			if repository.IsDuplicateKey(err) {
				return nil, ErrUserExist
			}
			return nil, err
		}
	}
	return s.GetUser(ctx, userID)
}

func (s *UserServiceImpl) issueToken(user *model.User) (*dto.TokenDTO, error) {
	token, err := security.GenerateToken(user.ID, user.Roles)
	if err != nil {
		return nil, err
	}
	return &dto.TokenDTO{
		Token:     token,
		ExpiresAt: time.Now().Add(security.Expiration()),
		User:      toUserDTO(user),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// rehash 哈希强度调整后在登录时升级旧密码，失败不影响登录
func (s *UserServiceImpl) rehash(ctx context.Context, userID uint64, password string) {
	hash, err := security.HashPassword(password)
	if err == nil {
		err = s.userRepo.UpdateUser(ctx, userID, map[string]interface{}{"password": hash})
	}
	if err != nil {
		log.WarnContext(ctx, "password rehash failed", "uid", userID, "err", err)
	}
}
