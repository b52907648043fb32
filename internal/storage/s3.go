package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config locates the bucket uploads go to.
type S3Config struct {
	Bucket    string
	KeyPrefix string
	Region    string
	// Endpoint selects an S3-compatible API with path-style addressing.
	Endpoint string
	Profile  string
}

// S3Service uploads files to Amazon S3 (or compatible APIs).
type S3Service struct {
	uploader *manager.Uploader
	cfg      S3Config
}

// NewS3Service loads AWS credentials from the default chain and builds the client.
func NewS3Service(ctx context.Context, cfg S3Config) (*S3Service, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Region),
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Service{uploader: manager.NewUploader(client), cfg: cfg}, nil
}

func (s *S3Service) objectKey(key string) string {
	prefix := strings.Trim(s.cfg.KeyPrefix, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

// objectURL is the public URL of key, path-style when a custom endpoint is set.
func (s *S3Service) objectURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if s.cfg.Endpoint != "" {
		return strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + escaped
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, escaped)
}

func (s *S3Service) Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) (Object, error) {
	fullKey := s.objectKey(key)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(fullKey),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return Object{}, fmt.Errorf("upload %s: %w", fullKey, err)
	}

	u := s.objectURL(fullKey)
	return Object{Key: fullKey, Path: u, URL: u}, nil
}

var _ Service = (*S3Service)(nil)
