package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/model"
)

// S3Backend uploads artifacts to an S3-compatible object store.
// Path-style addressing is used so MinIO and similar self-hosted
// stores work without bucket DNS.
type S3Backend struct {
	client   *s3.Client
	bucket   string
	endpoint string
	logger   zerolog.Logger
}

func NewS3Backend(settings model.S3Settings, logger zerolog.Logger) (*S3Backend, error) {
	if settings.Endpoint == "" || settings.Bucket == "" {
		return nil, &errdefs.ConfigurationError{Backend: model.StorageBackendS3, Msg: "endpoint and bucket are required"}
	}
	if settings.AccessKey == "" || settings.SecretKey == "" {
		return nil, &errdefs.ConfigurationError{Backend: model.StorageBackendS3, Msg: "access key and secret key are required"}
	}

	endpoint := settings.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	region := settings.Region
	if region == "" {
		region = "us-east-1"
	}

	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(endpoint),
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(settings.AccessKey, settings.SecretKey, ""),
		UsePathStyle: true,
	})

	return &S3Backend{
		client:   client,
		bucket:   settings.Bucket,
		endpoint: endpoint,
		logger:   logger.With().Str("component", "storage-s3").Logger(),
	}, nil
}

func (b *S3Backend) Name() string { return model.StorageBackendS3 }

func (b *S3Backend) TestConnection(ctx context.Context) error {
	_, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.bucket),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return &errdefs.ConfigurationError{
			Backend: model.StorageBackendS3,
			Msg:     fmt.Sprintf("bucket %s not reachable at %s: %v", b.bucket, b.endpoint, err),
		}
	}
	return nil
}

func (b *S3Backend) Upload(ctx context.Context, localPath, remotePath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return &errdefs.UploadError{Backend: b.Name(), Err: err}
	}
	defer f.Close()

	key := strings.TrimPrefix(remotePath, "/")
	b.logger.Info().Str("bucket", b.bucket).Str("key", key).Msg("uploading to s3")

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return &errdefs.UploadError{Backend: b.Name(), Err: err}
	}
	return nil
}
