package objectclient

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	cfg "github.com/Udhayakumar116/ai-question-gen/internal/config"
	"github.com/Udhayakumar116/ai-question-gen/internal/core"
)

// S3Client stores exported analyses in an S3 bucket.
type S3Client struct {
	client *s3.Client
	region string
	bucket string
	logger *zap.Logger
}

var _ core.ObjectClient = (*S3Client)(nil)

func NewS3Client(ctx context.Context, cfg *cfg.Config, logger *zap.Logger) (*S3Client, error) {
	if !cfg.ObjectStorageEnabled() {
		return nil, fmt.Errorf("object storage is not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	awsCfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(cfg.AwsRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AwsAccessKey, cfg.AwsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	logger.Info("object storage configured", zap.String("bucket", cfg.BucketName), zap.String("region", cfg.AwsRegion))

	return &S3Client{
		client: s3.NewFromConfig(awsCfg),
		region: cfg.AwsRegion,
		bucket: cfg.BucketName,
		logger: logger,
	}, nil
}

// Bucket returns the configured default bucket.
func (c *S3Client) Bucket() string { return c.bucket }

// UploadFile uploads a file to S3 and returns its object URL. An empty
// bucket means the configured default.
func (c *S3Client) UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (string, error) {
	if bucket == "" {
		bucket = c.bucket
	}
	uploader := manager.NewUploader(c.client)

	ctxUpload, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	_, err := uploader.Upload(ctxUpload, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}

	c.logger.Debug("object uploaded", zap.String("bucket", bucket), zap.String("key", key))
	return ObjectURL(bucket, c.region, key), nil
}

func (c *S3Client) DeleteFile(ctx context.Context, bucket, key string) error {
	if bucket == "" {
		bucket = c.bucket
	}
	ctxDel, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := c.client.DeleteObject(ctxDel, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete failed: %w", err)
	}
	return nil
}

func (c *S3Client) GetFile(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" {
		bucket = c.bucket
	}
	ctxGet, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := c.client.GetObject(ctxGet, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
