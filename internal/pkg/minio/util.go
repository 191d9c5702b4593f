package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
)

// UploadFile 上传文件到主存储桶，返回对象名
func UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if Client == nil {
		return "", fmt.Errorf("minio client is not initialized")
	}

	info, err := Client.PutObject(ctx, MainBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=86400",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return info.Key, nil
}

// DeleteFile 删除对象，外链或默认头像直接忽略
func DeleteFile(ctx context.Context, objectName string) error {
	if Client == nil {
		return fmt.Errorf("minio client is not initialized")
	}
	if objectName == "" || strings.Contains(objectName, "://") || !strings.Contains(objectName, "/") {
		return nil
	}
	if err := Client.RemoveObject(ctx, MainBucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetPublicURL 对象名转换为公共访问 URL，已经是完整地址的原样返回
func GetPublicURL(objectName string) string {
	if objectName == "" || strings.Contains(objectName, "://") {
		return objectName
	}
	return publicBase + objectName
}
