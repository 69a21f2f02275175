package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"NatureDaily/internal/config"
	"NatureDaily/internal/domain"
	"NatureDaily/internal/ports"
)

var ErrNoBucket = errors.New("object store bucket is not configured")

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads rendered reports next to the local copies.
type S3Publisher struct {
	client putObjectAPI
	bucket string
	prefix string
	logger *slog.Logger
}

var _ ports.Publisher = (*S3Publisher)(nil)

// NewS3Publisher resolves credentials through the default AWS chain.
func NewS3Publisher(ctx context.Context, cfg config.ObjectStoreConfig, log *slog.Logger) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Publisher(client, cfg, log), nil
}

func newS3Publisher(client putObjectAPI, cfg config.ObjectStoreConfig, log *slog.Logger) *S3Publisher {
	return &S3Publisher{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: log,
	}
}

// Publish uploads every file; one failed upload does not stop the rest.
func (p *S3Publisher) Publish(ctx context.Context, files []domain.ReportFile) error {
	var errs []error
	for _, f := range files {
		key := p.objectKey(f.Filename)
		in := &s3.PutObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(f.Payload),
		}
		if f.ContentType != "" {
			in.ContentType = aws.String(f.ContentType)
		}

		if _, err := p.client.PutObject(ctx, in); err != nil {
			errs = append(errs, fmt.Errorf("put s3://%s/%s: %w", p.bucket, key, err))
			continue
		}
		if p.logger != nil {
			p.logger.Info("report uploaded", "bucket", p.bucket, "key", key)
		}
	}
	return errors.Join(errs...)
}

func (p *S3Publisher) objectKey(filename string) string {
	if p.prefix == "" {
		return filename
	}
	return path.Join(p.prefix, filename)
}
