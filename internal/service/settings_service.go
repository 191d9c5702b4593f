package service

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/feed"
	"IdeaVault/internal/pkg/redis"
	"IdeaVault/internal/pkg/util"
	"IdeaVault/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const settingsCacheExpiration = 30 * time.Minute

type SettingsService interface {
	GetSettings(ctx context.Context, userID uint64) (*dto.SettingsDTO, error)
	UpdateSettings(ctx context.Context, userID uint64, req *dto.UpdateSettingsDTO) (*dto.SettingsDTO, error)
}

type SettingsServiceImpl struct {
	settingsRepo repository.SettingsRepo
	publisher    *feed.Publisher
}

func NewSettingsService(settingsRepo repository.SettingsRepo, publisher *feed.Publisher) SettingsService {
	return &SettingsServiceImpl{
		settingsRepo: settingsRepo,
		publisher:    publisher,
	}
}

func (s *SettingsServiceImpl) GetSettings(ctx context.Context, userID uint64) (*dto.SettingsDTO, error) {
	key := settingsKey(userID)
	if cached, err := redis.GetValue(ctx, key); err == nil && cached != "" {
		out := &dto.SettingsDTO{}
		if err = json.Unmarshal([]byte(cached), out); err == nil {
			return out, nil
		}
	}

	settings, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := toSettingsDTO(settings)
	if b, err := json.Marshal(out); err == nil {
		_ = redis.SetWithExpiration(ctx, key, string(b), settingsCacheExpiration)
	}
	return out, nil
}

func (s *SettingsServiceImpl) UpdateSettings(ctx context.Context, userID uint64, req *dto.UpdateSettingsDTO) (*dto.SettingsDTO, error) {
	if req.Theme != nil && !validTheme(*req.Theme) {
		return nil, ErrThemeInvalid
	}
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}

	settings, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Theme != nil {
		settings.Theme = *req.Theme
	}
	if req.Language != nil {
		settings.Language = strings.TrimSpace(*req.Language)
	}
	setBool(&settings.EmailNotifications, req.EmailNotifications)
	setBool(&settings.PushNotifications, req.PushNotifications)
	setBool(&settings.NotifyOnLike, req.NotifyOnLike)
	setBool(&settings.NotifyOnComment, req.NotifyOnComment)
	setBool(&settings.NotifyOnCollabRequest, req.NotifyOnCollabRequest)

	if err = s.settingsRepo.UpsertSettings(ctx, settings); err != nil {
		return nil, err
	}
	if err = redis.DeleteKey(ctx, settingsKey(userID)); err != nil {
		log.WarnContext(ctx, "settings cache invalidate failed", "user_id", userID, "err", err)
	}
	s.publisher.Publish(ctx, feed.Update, feed.TableSettings, settings, nil)
	return toSettingsDTO(settings), nil
}

// load 读取设置，不存在时写入默认值
func (s *SettingsServiceImpl) load(ctx context.Context, userID uint64) (*model.Settings, error) {
	settings, err := s.settingsRepo.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}
	settings = model.DefaultSettings(userID)
	if err = s.settingsRepo.UpsertSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func settingsKey(userID uint64) string {
	return consts.SettingsKey + strconv.FormatUint(userID, 10)
}

func validTheme(theme string) bool {
	switch theme {
	case "light", "dark", "system":
		return true
	}
	return false
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
