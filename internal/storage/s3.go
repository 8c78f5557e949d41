package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pressdesk/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI S3 客户端所需的最小接口
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Backend S3 兼容对象存储
type S3Backend struct {
	client    ObjectAPI
	bucket    string
	publicURL string
}

// NewS3Client 创建 S3 客户端，配置 endpoint 时使用自定义地址（MinIO、HiDrive 等）
func NewS3Client(ctx context.Context, cfg config.S3StorageConfig) (*s3.Client, error) {
	options := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		options = append(options, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               endpoint,
					SigningRegion:     cfg.Region,
					HostnameImmutable: true,
				}, nil
			},
		)
		options = append(options, awsconfig.WithEndpointResolverWithOptions(resolver))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = strings.TrimSpace(cfg.Endpoint) != ""
	}), nil
}

// NewS3Backend 按配置创建 S3 存储
func NewS3Backend(ctx context.Context, cfg config.S3StorageConfig) (*S3Backend, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("storage.s3.bucket is required")
	}
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 client failed: %w", err)
	}
	return NewS3BackendWithClient(client, cfg), nil
}

// NewS3BackendWithClient 使用已有客户端创建 S3 存储
func NewS3BackendWithClient(client ObjectAPI, cfg config.S3StorageConfig) *S3Backend {
	publicURL := strings.TrimRight(strings.TrimSpace(cfg.PublicURL), "/")
	if publicURL == "" && strings.TrimSpace(cfg.Endpoint) != "" {
		publicURL = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/") + "/" + cfg.Bucket
	}
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3Backend{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}
}

// Put 上传对象
func (b *S3Backend) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := b.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return b.URL(key), nil
}

// URL 返回对象访问地址
func (b *S3Backend) URL(key string) string {
	return b.publicURL + "/" + strings.TrimLeft(key, "/")
}

// Delete 删除对象
func (b *S3Backend) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	return err
}
