package service

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/feed"
	"IdeaVault/internal/pkg/minio"
	"IdeaVault/internal/pkg/redis"
	"IdeaVault/internal/pkg/util"
	"IdeaVault/internal/repository"
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type ProfileService interface {
	GetProfile(ctx context.Context, userID uint64) (*dto.ProfileDTO, error)
	GetProfileByUsername(ctx context.Context, username string) (*dto.ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID uint64, req *dto.UpdateProfileDTO) (*dto.ProfileDTO, error)
	UploadAvatar(ctx context.Context, userID uint64, contentType string, file io.Reader) (*dto.AvatarDTO, error)
	CompleteOnboarding(ctx context.Context, userID uint64) error
	CompleteTutorial(ctx context.Context, userID uint64) error
}

type ProfileServiceImpl struct {
	profileRepo repository.ProfileRepo
	publisher   *feed.Publisher
}

const profileCacheExpiration = time.Hour

func NewProfileService(profileRepo repository.ProfileRepo, publisher *feed.Publisher) ProfileService {
	return &ProfileServiceImpl{
		profileRepo: profileRepo,
		publisher:   publisher,
	}
}

func (s *ProfileServiceImpl) GetProfile(ctx context.Context, userID uint64) (*dto.ProfileDTO, error) {
	key := consts.ProfileKey + strconv.FormatUint(userID, 10)
	if cached, err := redis.GetValue(ctx, key); err == nil && cached != "" {
		out := &dto.ProfileDTO{}
		if err = json.Unmarshal([]byte(cached), out); err == nil {
			return out, nil
		}
	}

	profile, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	out := toProfileDTO(profile)
	if b, err := json.Marshal(out); err == nil {
		_ = redis.SetWithExpiration(ctx, key, string(b), profileCacheExpiration)
	}
	return out, nil
}

func (s *ProfileServiceImpl) GetProfileByUsername(ctx context.Context, username string) (*dto.ProfileDTO, error) {
	profile, err := s.profileRepo.GetProfileByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return toProfileDTO(profile), nil
}

func (s *ProfileServiceImpl) UpdateProfile(ctx context.Context, userID uint64, req *dto.UpdateProfileDTO) (*dto.ProfileDTO, error) {
	fields := make(map[string]interface{}, 2)
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, ErrParamInvalid
		}
		taken, err := s.profileRepo.UsernameTaken(ctx, username, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUserUsernameExist
		}
		fields["username"] = username
	}
	if req.Bio != nil {
		fields["bio"] = strings.TrimSpace(*req.Bio)
	}
	if len(fields) > 0 {
		if err := s.update(ctx, userID, fields); err != nil {
			if repository.IsDuplicateKey(err) {
				return nil, ErrUserUsernameExist
			}
			return nil, err
		}
	}
	return s.GetProfile(ctx, userID)
}

// UploadAvatar 裁剪为正方形后存入 avatars/<uid>/<uuid>.jpg，并删除旧头像
func (s *ProfileServiceImpl) UploadAvatar(ctx context.Context, userID uint64, contentType string, file io.Reader) (*dto.AvatarDTO, error) {
	if !strings.HasPrefix(contentType, consts.MimePrefixImage) {
		return nil, ErrFileNotSupported
	}
	profile, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	buf, err := util.ProcessAvatar(file, consts.AvatarSize)
	if err != nil {
		if errors.Is(err, util.ErrNotImage) {
			return nil, ErrFileNotSupported
		}
		return nil, err
	}

	objectName := fmt.Sprintf("avatars/%d/%s.jpg", userID, uuid.NewString())
	if _, err = minio.UploadFile(ctx, objectName, buf, int64(buf.Len()), "image/jpeg"); err != nil {
		return nil, err
	}
	if err = s.update(ctx, userID, map[string]interface{}{"avatar_url": objectName}); err != nil {
		return nil, err
	}

	if old := profile.AvatarURL; old != "" && old != consts.DefaultAvatarURL {
		if err = minio.DeleteFile(ctx, old); err != nil {
			log.WarnContext(ctx, "failed to delete old avatar", "object", old, "err", err)
		}
	}
	return &dto.AvatarDTO{AvatarURL: minio.GetPublicURL(objectName)}, nil
}

func (s *ProfileServiceImpl) CompleteOnboarding(ctx context.Context, userID uint64) error {
	return s.update(ctx, userID, map[string]interface{}{"onboarding_done": true})
}

func (s *ProfileServiceImpl) CompleteTutorial(ctx context.Context, userID uint64) error {
	return s.update(ctx, userID, map[string]interface{}{"tutorial_completed": true})
}

func (s *ProfileServiceImpl) update(ctx context.Context, userID uint64, fields map[string]interface{}) error {
	if err := s.profileRepo.UpdateProfile(ctx, userID, fields); err != nil {
		return err
	}
	_ = redis.DeleteKey(ctx, consts.ProfileKey+strconv.FormatUint(userID, 10))

	if profile, err := s.profileRepo.GetProfile(ctx, userID); err == nil && profile != nil {
		s.publisher.Publish(ctx, feed.Update, feed.TableProfiles, profile, nil)
	}
	return nil
}
