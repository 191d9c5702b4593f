package minio

import (
	"IdeaVault/internal/api/config"
	"context"
	"fmt"
	log "log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	// Client 全局 MinIO 客户端实例
	Client *minio.Client
	// MainBucket 主要存储桶
	MainBucket string

	publicBase string
)

// Init 初始化 MinIO 客户端，确保主存储桶存在且可匿名读取
func Init(cfg config.MinIOConfig) error {
	endpoint, useSSL := cfg.InternalEndpoint, cfg.InternalUseSSL
	if endpoint == "" {
		endpoint, useSSL = cfg.ExternalEndpoint, true
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MainBucket)
	if err != nil {
		return fmt.Errorf("failed to connect to minio server: %w", err)
	}
	if !exists {
		if err = client.MakeBucket(ctx, cfg.MainBucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Info("MinIO bucket created", "bucket", cfg.MainBucket)
	}
	if err = ensurePublicRead(ctx, client, cfg.MainBucket); err != nil {
		return err
	}

	Client = client
	MainBucket = cfg.MainBucket
	SetPublicBase(cfg)
	return nil
}

// SetPublicBase 计算对外访问地址前缀
func SetPublicBase(cfg config.MinIOConfig) {
	scheme := "http"
	if cfg.ExternalUseSSL {
		scheme = "https"
	}
	host := cfg.ExternalEndpoint
	if host == "" {
		host = cfg.InternalEndpoint
	}
	publicBase = fmt.Sprintf("%s://%s/%s/", scheme, host, cfg.MainBucket)
}

// ensurePublicRead avatars 前缀允许匿名读取
func ensurePublicRead(ctx context.Context, client *minio.Client, bucket string) error {
	current, _ := client.GetBucketPolicy(ctx, bucket)
	if current != "" {
		return nil
	}
	p := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["%s"],"Resource":["arn:aws:s3:::%s/avatars/*"]}]}`,
		"s3:GetObject", bucket)
	if err := client.SetBucketPolicy(ctx, bucket, p); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}
	log.Info("MinIO bucket policy applied", "bucket", bucket)
	return nil
}
