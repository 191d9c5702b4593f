package es

import (
	"IdeaVault/internal/api/config"
	"IdeaVault/internal/pkg/logger"
	"context"
	log "log/slog"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

var Client *elasticsearch.TypedClient

var PostIndex string

const (
	NotFoundCode = 404
	ConflictCode = 409
)

// InitClient 初始化 Elasticsearch 客户端，未配置地址时返回 nil 客户端
func InitClient(elasticCfg config.ElasticConfig) (*elasticsearch.TypedClient, error) {
	if elasticCfg.Address == "" {
		log.Warn("Elasticsearch address not configured, search falls back to database")
		return nil, nil
	}

	PostIndex = elasticCfg.Indices.PostIndex
	if PostIndex == "" {
		PostIndex = "community_posts"
	}

	cfg := elasticsearch.Config{
		Addresses: []string{elasticCfg.Address},
		Username:  elasticCfg.Username,
		Password:  elasticCfg.Password,
		Transport: &logger.ESTransport{
			Transport: http.DefaultTransport,
		},
	}

	var err error
	Client, err = elasticsearch.NewTypedClient(cfg)
	if err != nil {
		log.Error("Cannot Connect to Elasticsearch", "err", err)
		return nil, err
	}

	ctx := context.Background()
	info, err := Client.Info().Do(ctx)
	if err != nil {
		log.Error("Cannot Connect to Elasticsearch", "err", err)
		return nil, err
	}

	if err = ensurePostIndex(ctx); err != nil {
		return nil, err
	}

	log.Info("Connected to Elasticsearch", "version", info.Version.Int)
	return Client, nil
}

func ensurePostIndex(ctx context.Context) error {
	exists, err := Client.Indices.Exists(PostIndex).Do(ctx)
	if err != nil || exists {
		return err
	}

	_, err = Client.Indices.Create(PostIndex).
		Mappings(&types.TypeMapping{
			Properties: map[string]types.Property{
				"id":             types.NewLongNumberProperty(),
				"user_id":        types.NewLongNumberProperty(),
				"title":          types.NewTextProperty(),
				"content":        types.NewTextProperty(),
				"channel":        types.NewKeywordProperty(),
				"tags":           types.NewKeywordProperty(),
				"author_name":    types.NewKeywordProperty(),
				"likes_count":    types.NewIntegerNumberProperty(),
				"comments_count": types.NewIntegerNumberProperty(),
				"is_pinned":      types.NewBooleanProperty(),
				"created_at":     types.NewDateProperty(),
				"updated_at":     types.NewDateProperty(),
			},
		}).
		Do(ctx)
	if err != nil {
		return err
	}
	log.Info("Elasticsearch index created", "index", PostIndex)
	return nil
}
