package commands

import (
	"IdeaVault/internal/api/config"
	"IdeaVault/internal/pkg/database"
	"IdeaVault/internal/pkg/feed"
	"IdeaVault/internal/pkg/logger"
	"IdeaVault/internal/pkg/mongo"
	"IdeaVault/internal/pkg/redis"
	"IdeaVault/internal/wire"
	"fmt"
	log "log/slog"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "ideavault-tool",
	Short: "IdeaVault maintenance commands",
	Long: `Maintenance commands that operate directly on the IdeaVault stores.

Configuration is read the same way as the API server: .env, then configs/config.yaml,
then IDEAVAULT_* environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// env 命令执行所需的存储连接
type env struct {
	cfg       *config.Config
	db        *gorm.DB
	repos     *wire.Repositories
	publisher *feed.Publisher
}

// setup 连接数据库与 Redis，Mongo 仅在配置了地址时连接
func setup() (*env, error) {
	if err := config.LoadConfig(); err != nil {
		return nil, err
	}
	cfg := config.Cfg
	logger.InitLogger(config.LogstashConfig{})

	dbCfg := cfg.DB
	db, err := database.NewGormDB(&dbCfg)
	if err != nil {
		return nil, err
	}
	if err = redis.InitRedis(cfg.Redis); err != nil {
		return nil, err
	}

	var mongoConn *mongoDB.Database
	if cfg.Mongo.URL != "" {
		if mongoConn, err = mongo.InitMongo(cfg.Mongo); err != nil {
			log.Warn("mongo unavailable, notifications skipped", "err", err)
			mongoConn = nil
		}
	}

	return &env{
		cfg:       cfg,
		db:        db,
		repos:     wire.NewRepositories(db, mongoConn, nil),
		publisher: feed.NewPublisher(feed.NewRedisBus()),
	}, nil
}

// printResult 按 --json 决定输出格式
func printResult(cmd *cobra.Command, text string, v any) error {
	if !jsonOutput {
		cmd.Println(text)
		return nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}
