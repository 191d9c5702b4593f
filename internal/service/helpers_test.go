package service

import (
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/feed"
	"IdeaVault/internal/pkg/mutation"
	"IdeaVault/internal/pkg/redis"
	"IdeaVault/internal/pkg/testutil"
	"IdeaVault/internal/repository"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	mr        *miniredis.Miniredis
	bus       *feed.MemoryBus
	publisher *feed.Publisher
	runner    *mutation.Runner

	users          repository.UserRepo
	profiles       repository.ProfileRepo
	ideas          repository.IdeaRepo
	folders        repository.FolderRepo
	posts          repository.PostRepo
	interactions   repository.InteractionRepo
	messages       repository.MessageRepo
	collaborations repository.CollaborationRepo
	memberships    repository.MembershipRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	bus := feed.NewMemoryBus()
	return &testEnv{
		db:             db,
		mr:             testutil.NewRedis(t),
		bus:            bus,
		publisher:      feed.NewPublisher(bus),
		runner:         mutation.NewRunner(redis.KeyInvalidator{}),
		users:          repository.NewUserRepo(db),
		profiles:       repository.NewProfileRepo(db),
		ideas:          repository.NewIdeaRepo(db),
		folders:        repository.NewFolderRepo(db),
		posts:          repository.NewPostRepo(db),
		interactions:   repository.NewInteractionRepo(db),
		messages:       repository.NewMessageRepo(db),
		collaborations: repository.NewCollaborationRepo(db),
		memberships:    repository.NewMembershipRepo(db),
	}
}

// mkUser 创建用户及其资料、默认偏好
func (e *testEnv) mkUser(t *testing.T, name string) uint64 {
	t.Helper()
	u := &model.User{Email: name + "@ideavault.test", Password: "x", Roles: model.Roles{consts.RoleUser}}
	err := e.users.CreateUser(context.Background(), u, &model.Profile{Username: name}, model.DefaultSettings(0), nil)
	require.NoError(t, err)
	return u.ID
}

func (e *testEnv) mkPost(t *testing.T, userID uint64, title string) *model.CommunityPost {
	t.Helper()
	post := &model.CommunityPost{UserID: userID, Title: title, Content: title + " body", Channel: "general"}
	require.NoError(t, e.posts.CreatePost(context.Background(), post))
	return post
}

func (e *testEnv) ideaService() IdeaService {
	return NewIdeaService(e.ideas, e.folders, e.posts, nil, e.publisher)
}

func (e *testEnv) communityService() CommunityService {
	return NewCommunityService(e.posts, e.interactions, nil, e.publisher)
}

func (e *testEnv) interactionService() InteractionService {
	return NewInteractionService(e.interactions, e.posts, e.ideas, e.profiles, e.runner, e.publisher)
}

func (e *testEnv) collaborationService() CollaborationService {
	return NewCollaborationService(e.collaborations, e.posts, e.profiles, e.runner, e.publisher)
}

func (e *testEnv) messageService() MessageService {
	return NewMessageService(e.messages, e.users, e.profiles, e.runner, e.publisher)
}
