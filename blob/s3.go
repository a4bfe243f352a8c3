// Package blob 提供 core.BlobStore 的实现：S3 兼容对象存储与内存假实现。
package blob

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/reelkit/reelkit/core"
)

// largeObjectMinSize 以上的对象走分片下载器（向量表、模型权重通常远超此值）。
const largeObjectMinSize = 10 * 1024 * 1024

// S3Config 是 S3 客户端的连接配置。
// HostEndpointUrl 非空时走静态凭证 + 自定义端点（MinIO / LocalStack 本地开发），
// 否则走默认凭证链（生产，IAM Role 等）。
type S3Config struct {
	// "http://127.0.0.1:4566"
	HostEndpointUrl string
	// "us-east-1"
	Region   string
	Username string
	Password string
}

// S3Store 是基于 AWS SDK v2 的 core.BlobStore 实现。
type S3Store struct {
	client *s3.Client
}

// NewS3Store 按默认凭证链创建客户端。
func NewS3Store(ctx context.Context, region string) (*S3Store, error) {
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &S3Store{client: s3.NewFromConfig(sdkConfig)}, nil
}

// NewS3StoreWithConfig 按显式端点/凭证创建客户端（本地 MinIO/LocalStack）。
func NewS3StoreWithConfig(cfg S3Config) *S3Store {
	client := s3.NewFromConfig(aws.Config{Region: cfg.Region}, func(o *s3.Options) {
		if cfg.HostEndpointUrl != "" {
			o.BaseEndpoint = aws.String(cfg.HostEndpointUrl)
			o.UsePathStyle = true
		}
		if cfg.Username != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.Username, cfg.Password, "")
		}
	})
	return &S3Store{client: client}
}

func (s *S3Store) Name() string { return "s3" }

// GetObject 读取对象全部内容。
// 先 HeadObject 取大小：大对象走 manager 分片下载，小对象单次 GetObject。
func (s *S3Store) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}

	if head.ContentLength != nil && *head.ContentLength >= largeObjectMinSize {
		return s.fetchLargeObject(ctx, bucket, key)
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer result.Body.Close()
	return io.ReadAll(result.Body)
}

func (s *S3Store) fetchLargeObject(ctx context.Context, bucket, key string) ([]byte, error) {
	downloader := manager.NewDownloader(s.client, func(d *manager.Downloader) {
		d.PartSize = largeObjectMinSize
	})
	buffer := manager.NewWriteAtBuffer([]byte{})
	_, err := downloader.Download(ctx, buffer, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

var _ core.BlobStore = (*S3Store)(nil)
