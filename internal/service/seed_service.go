package service

import (
	"IdeaVault/internal/api/config"
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/redis"
	"IdeaVault/internal/pkg/security"
	"IdeaVault/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

const seedLockTTL = 5 * time.Minute

var botNames = []string{"ada", "grace", "linus", "hedy", "alan", "katherine", "dennis", "margaret", "ken", "barbara"}

// seedTemplates 合成帖子的标题与正文模板，%s 为频道名
var seedTemplates = []struct {
	title   string
	content string
}{
	{"Weekly %s prompt", "What is one %s idea you have been sitting on? Share a sketch, not a plan. #prompt"},
	{"Small wins in %s", "Post the smallest %s experiment that surprised you this month. #wins"},
	{"Open questions: %s", "Which %s problem would you solve if time were free? #questions"},
	{"Reading list for %s", "Drop one article or book that changed how you think about %s. #reading"},
	{"Collaborators wanted: %s", "Looking for people to pair on a %s side project. Reply with what you bring. #collab"},
	{"Failure notes: %s", "A %s idea that did not work and what it taught you. #lessons"},
}

var seedComments = []string{
	"Love this, following along.",
	"Have you tried writing it up as a one-pager first?",
	"This resonates. I had a similar idea last year.",
	"Happy to help if you need another pair of hands.",
}

type SeedService interface {
	PopulateChannels(ctx context.Context) (*dto.SeedResultDTO, error)
}

type seedServiceImpl struct {
	userRepo        repository.UserRepo
	postRepo        repository.PostRepo
	interactionRepo repository.InteractionRepo
	cfg             config.SeedConfig
}

func NewSeedService(
	userRepo repository.UserRepo,
	postRepo repository.PostRepo,
	interactionRepo repository.InteractionRepo,
	cfg config.SeedConfig,
) SeedService {
	if cfg.BotCount <= 0 {
		cfg.BotCount = 5
	}
	if cfg.BotCount > len(botNames) {
		cfg.BotCount = len(botNames)
	}
	if cfg.PostsPerChannel <= 0 {
		cfg.PostsPerChannel = 3
	}
	if cfg.PostsPerChannel > len(seedTemplates) {
		cfg.PostsPerChannel = len(seedTemplates)
	}
	return &seedServiceImpl{
		userRepo:        userRepo,
		postRepo:        postRepo,
		interactionRepo: interactionRepo,
		cfg:             cfg,
	}
}

// PopulateChannels 幂等：已存在的机器人与帖子会被跳过
func (s *seedServiceImpl) PopulateChannels(ctx context.Context) (*dto.SeedResultDTO, error) {
	lockVal := uuid.NewString()
	ok, err := redis.TryLock(ctx, consts.SeedLock, lockVal, seedLockTTL, 0)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSeedRunning
	}
	defer redis.UnLock(context.WithoutCancel(ctx), consts.SeedLock, lockVal)

	bots, created, err := s.ensureBots(ctx)
	if err != nil {
		return nil, err
	}
	res := &dto.SeedResultDTO{Bots: created}

	for ci, channel := range consts.Channels {
		for i := 0; i < s.cfg.PostsPerChannel; i++ {
			author := bots[(ci+i)%len(bots)]
			tpl := seedTemplates[(ci+i)%len(seedTemplates)]
			title := fmt.Sprintf(tpl.title, channel)

			exists, err := s.postRepo.ExistsByTitle(ctx, author.ID, channel, title)
			if err != nil {
				return nil, err
			}
			if exists {
				continue
			}

			content := fmt.Sprintf(tpl.content, channel)
			post := &model.CommunityPost{
				UserID:  author.ID,
				Title:   title,
				Content: content,
				Channel: channel,
				Tags:    model.Tags{channel},
			}
			if err = s.postRepo.CreatePost(ctx, post); err != nil {
				return nil, err
			}
			res.Posts++

			likes, comments, err := s.engage(ctx, bots, author.ID, post.ID, ci+i)
			if err != nil {
				return nil, err
			}
			res.Likes += likes
			res.Comments += comments
		}
	}

	res.Message = fmt.Sprintf("populated %d channels: %d new bots, %d posts, %d likes, %d comments",
		len(consts.Channels), res.Bots, res.Posts, res.Likes, res.Comments)
	log.InfoContext(ctx, "channels populated", "bots", res.Bots, "posts", res.Posts)
	return res, nil
}

// ensureBots 补齐缺少的机器人账号，返回全部机器人及新建数量
func (s *seedServiceImpl) ensureBots(ctx context.Context) ([]*model.User, int, error) {
	bots, err := s.userRepo.ListBots(ctx)
	if err != nil {
		return nil, 0, err
	}
	existing := make(map[string]struct{}, len(bots))
	for _, b := range bots {
		existing[b.Profile.Username] = struct{}{}
	}

	created := 0
	for _, name := range botNames[:s.cfg.BotCount] {
		username := name + "_bot"
		if _, ok := existing[username]; ok {
			continue
		}
		hash, err := security.HashPassword(uuid.NewString())
		if err != nil {
			return nil, 0, err
		}
		user := &model.User{
			Email:    username + "@bots.ideavault.local",
			Password: hash,
			Roles:    model.Roles{consts.RoleBot},
		}
		profile := &model.Profile{
			Username:       username,
			AvatarURL:      consts.DefaultAvatarURL,
			Bio:            "Community bot seeding conversation starters.",
			IsBot:          true,
			OnboardingDone: true,
		}
		if err = s.userRepo.CreateUser(ctx, user, profile, model.DefaultSettings(0), nil); err != nil {
			if repository.IsDuplicateKey(err) {
				continue
			}
			return nil, 0, err
		}
		bots = append(bots, user)
		created++
	}
	if len(bots) == 0 {
		return nil, 0, errors.New("no bot accounts available")
	}
	return bots, created, nil
}

// engage 其余机器人为帖子点赞，并按序留下一条评论
func (s *seedServiceImpl) engage(ctx context.Context, bots []*model.User, authorID, postID uint64, seed int) (int, int, error) {
	likes, comments := 0, 0
	for j, bot := range bots {
		if bot.ID == authorID {
			continue
		}
		if (seed+j)%2 == 0 {
			if _, err := s.interactionRepo.CreateLike(ctx, consts.TargetPost, bot.ID, postID); err != nil {
				if !errors.Is(err, repository.ErrDuplicate) {
					return likes, comments, err
				}
			} else {
				likes++
			}
		}
		if (seed+j)%3 == 0 {
			c := &repository.Comment{
				TargetID: postID,
				UserID:   bot.ID,
				Content:  seedComments[(seed+j)%len(seedComments)],
			}
			if err := s.interactionRepo.CreateComment(ctx, consts.TargetPost, c); err != nil {
				return likes, comments, err
			}
			comments++
		}
	}
	return likes, comments, nil
}
