package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// headObjectAPI S3 HeadObject 能力，便于测试替换
type headObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3ImageStoreConfig S3 图片存储配置
type S3ImageStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string // 自定义端点（MinIO、LocalStack 等）
	Prefix        string
	PublicBaseURL string // 为空时按端点或 AWS 虚拟主机地址拼接
}

// S3ImageStore 基于 S3 的图片存储：HeadObject 确认存在后返回公开地址
type S3ImageStore struct {
	client  headObjectAPI
	bucket  string
	prefix  string
	baseURL string
}

// NewS3ImageStore 创建 S3 图片存储
func NewS3ImageStore(ctx context.Context, cfg S3ImageStoreConfig) (*S3ImageStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("storage bucket is required for s3 provider")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config failed: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3ImageStoreWithClient(client, cfg), nil
}

func newS3ImageStoreWithClient(client headObjectAPI, cfg S3ImageStoreConfig) *S3ImageStore {
	return &S3ImageStore{
		client:  client,
		bucket:  strings.TrimSpace(cfg.Bucket),
		prefix:  cfg.Prefix,
		baseURL: s3PublicBase(cfg),
	}
}

// PublicURL 对象存在时返回公开地址，不存在时返回 ErrObjectNotFound
func (s *S3ImageStore) PublicURL(ctx context.Context, key string) (string, error) {
	fullKey, err := objectKey(s.prefix, key)
	if err != nil {
		return "", err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		if isNotFound(err) {
			return "", ErrObjectNotFound
		}
		return "", fmt.Errorf("s3 head object failed for %s: %w", fullKey, err)
	}
	return joinObjectURL(s.baseURL, "", fullKey), nil
}

// s3PublicBase 返回含桶名的公开地址前缀
func s3PublicBase(cfg S3ImageStoreConfig) string {
	bucket := strings.TrimSpace(cfg.Bucket)
	if base := strings.TrimSpace(cfg.PublicBaseURL); base != "" {
		return joinObjectURL(base, bucket, "")
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		return joinObjectURL(endpoint, bucket, "")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
