// Package storage 提供了与对象存储服务（如 MinIO）交互的功能，用于归档生成的总结。
package storage

import (
	"context"
	"fmt"
	"strings"
	"studylife-go/internal/config"
	"studylife-go/pkg/log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// 归档链接的有效期
const presignExpiry = 7 * 24 * time.Hour

// Archive 把总结文本写入 MinIO 并返回临时下载链接。
type Archive struct {
	client     *minio.Client
	bucketName string
}

// NewArchive 初始化 MinIO 客户端并确保指定的存储桶存在。
func NewArchive(ctx context.Context, cfg config.MinIOConfig) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}
	log.Info("MinIO 客户端初始化成功")

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
		}
	}
	return &Archive{client: client, bucketName: cfg.BucketName}, nil
}

// SummaryObjectName 返回总结的对象路径：summaries/<user>/<kind>/<date>.md
func SummaryObjectName(userID uint, kind, date string) string {
	return fmt.Sprintf("summaries/%d/%s/%s.md", userID, kind, date)
}

// ArchiveSummary 上传 markdown 文本，返回预签名的下载链接。
func (a *Archive) ArchiveSummary(ctx context.Context, objectName, content string) (string, error) {
	_, err := a.client.PutObject(ctx, a.bucketName, objectName,
		strings.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "text/markdown; charset=utf-8"})
	if err != nil {
		return "", fmt.Errorf("上传总结到 MinIO 失败: %w", err)
	}
	u, err := a.client.PresignedGetObject(ctx, a.bucketName, objectName, presignExpiry, nil)
	if err != nil {
		log.Errorf("Error generating presigned URL: %s", err)
		return "", err
	}
	return u.String(), nil
}
