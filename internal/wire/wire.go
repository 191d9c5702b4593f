package wire

import (
	"IdeaVault/internal/api"
	"IdeaVault/internal/api/config"
	"IdeaVault/internal/api/handler"
	"IdeaVault/internal/job"
	"IdeaVault/internal/pkg/clipper"
	"IdeaVault/internal/pkg/cron"
	"IdeaVault/internal/pkg/es"
	"IdeaVault/internal/pkg/feed"
	"IdeaVault/internal/pkg/kafka"
	"IdeaVault/internal/pkg/mongo"
	"IdeaVault/internal/pkg/mutation"
	"IdeaVault/internal/pkg/payment"
	"IdeaVault/internal/pkg/redis"
	"IdeaVault/internal/repository"
	"IdeaVault/internal/service"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager // 未配置 broker 时为 nil
}

// Repositories 数据访问层
type Repositories struct {
	User          repository.UserRepo
	Profile       repository.ProfileRepo
	Settings      repository.SettingsRepo
	Membership    repository.MembershipRepo
	Folder        repository.FolderRepo
	Idea          repository.IdeaRepo
	Post          repository.PostRepo
	Interaction   repository.InteractionRepo
	Message       repository.MessageRepo
	Collaboration repository.CollaborationRepo
	SysBox        mongo.SysBoxRepo // 可为 nil
	PostES        es.PostRepo      // 可为 nil
}

func NewRepositories(db *gorm.DB, mongoConn *mongoDB.Database, esClient *elasticsearch.TypedClient) *Repositories {
	repos := &Repositories{
		User:          repository.NewUserRepo(db),
		Profile:       repository.NewProfileRepo(db),
		Settings:      repository.NewSettingsRepo(db),
		Membership:    repository.NewMembershipRepo(db),
		Folder:        repository.NewFolderRepo(db),
		Idea:          repository.NewIdeaRepo(db),
		Post:          repository.NewPostRepo(db),
		Interaction:   repository.NewInteractionRepo(db),
		Message:       repository.NewMessageRepo(db),
		Collaboration: repository.NewCollaborationRepo(db),
	}
	if mongoConn != nil {
		repos.SysBox = mongo.NewSysBoxRepo(mongoConn)
	}
	if esClient != nil {
		repos.PostES = es.NewPostRepo(esClient)
	}
	return repos
}

// NewSubscriptionService 服务端与运维工具共用
func NewSubscriptionService(repos *Repositories, publisher *feed.Publisher, cfg *config.Config) service.SubscriptionService {
	return service.NewSubscriptionService(repos.Membership, payment.NewClient(cfg.Payment), repos.SysBox, publisher, cfg.Payment)
}

func NewSeedService(repos *Repositories, cfg *config.Config) service.SeedService {
	return service.NewSeedService(repos.User, repos.Post, repos.Interaction, cfg.Seed)
}

func BuildApplication(db *gorm.DB, mongoConn *mongoDB.Database, esClient *elasticsearch.TypedClient, cfg *config.Config) (*ApplicationContainer, error) {
	repos := NewRepositories(db, mongoConn, esClient)

	bus := feed.NewRedisBus()
	publisher := feed.NewPublisher(bus)
	registry := feed.NewRegistry(bus)
	runner := mutation.NewRunner(redis.KeyInvalidator{})

	userService := service.NewUserService(repos.User, repos.Profile)
	profileService := service.NewProfileService(repos.Profile, publisher)
	settingsService := service.NewSettingsService(repos.Settings, publisher)
	ideaService := service.NewIdeaService(repos.Idea, repos.Folder, repos.Post, clipper.New(), publisher)
	communityService := service.NewCommunityService(repos.Post, repos.Interaction, repos.PostES, publisher)
	interactionService := service.NewInteractionService(repos.Interaction, repos.Post, repos.Idea, repos.Profile, runner, publisher)
	messageService := service.NewMessageService(repos.Message, repos.User, repos.Profile, runner, publisher)
	collabService := service.NewCollaborationService(repos.Collaboration, repos.Post, repos.Profile, runner, publisher)
	subscriptionService := NewSubscriptionService(repos, publisher, cfg)
	routeService := service.NewRouteService(subscriptionService)
	seedService := NewSeedService(repos, cfg)
	sysBoxService := service.NewSysBoxService(repos.SysBox, repos.Profile)

	readers := handler.NewSnapshotReaders(handler.FeedServices{
		Idea:         ideaService,
		Community:    communityService,
		Interaction:  interactionService,
		Message:      messageService,
		Collab:       collabService,
		Profile:      profileService,
		Settings:     settingsService,
		Subscription: subscriptionService,
	})

	handlers := &api.HandlersGroup{
		UserHandler:          handler.NewUserHandler(userService),
		ProfileHandler:       handler.NewProfileHandler(profileService),
		SettingsHandler:      handler.NewSettingsHandler(settingsService),
		IdeaHandler:          handler.NewIdeaHandler(ideaService),
		CommunityHandler:     handler.NewCommunityHandler(communityService),
		InteractionHandler:   handler.NewInteractionHandler(interactionService),
		MessageHandler:       handler.NewMessageHandler(messageService),
		CollaborationHandler: handler.NewCollaborationHandler(collabService),
		SubscriptionHandler:  handler.NewSubscriptionHandler(subscriptionService),
		RouteHandler:         handler.NewRouteHandler(routeService),
		SeedHandler:          handler.NewSeedHandler(seedService),
		SysBoxHandler:        handler.NewSysBoxHandler(sysBoxService),
		FeedHandler:          handler.NewFeedHandler(registry, readers),
		Membership:           subscriptionService,
	}

	router := api.SetupRouter(handlers, cfg.Server, cfg.Logstash.Index)

	cronMgr := cron.NewCronManager(
		job.NewCounterSyncJob(repos.Interaction),
		job.NewMembershipExpireJob(subscriptionService),
	)

	var kafkaMgr *kafka.ConsumerManager
	if len(cfg.Kafka.Brokers) > 0 {
		hooks := kafka.NewTableHooks(repos.Post, repos.Idea, repos.Profile, repos.Settings, repos.SysBox, repos.PostES)
		var err error
		kafkaMgr, err = kafka.NewConsumerManager(cfg, hooks.Register(kafka.NewChangeFeedHandler()))
		if err != nil {
			return nil, err
		}
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		CronMgr:      cronMgr,
		KafkaManager: kafkaMgr,
	}, nil
}
