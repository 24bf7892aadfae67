// Package s3store saves exported documents to S3-compatible object
// storage (AWS S3, MinIO, RustFS and similar).
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Scheme is the URL scheme handled by a Store.
const Scheme = "s3"

// Config describes the target bucket and how to reach it.
type Config struct {
	Endpoint     string // empty uses AWS
	Region       string
	Bucket       string // used when a path names no bucket
	AccessKey    string // empty uses the default credential chain
	SecretKey    string
	UsePathStyle bool
}

// PutObjectAPI is the part of *s3.Client a Store needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store writes documents addressed as s3://bucket/key.
type Store struct {
	client PutObjectAPI
	bucket string
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store backed by an S3 client built from cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3store: loading AWS config: %w", err)
	}

	var endpoint string
	if cfg.Endpoint != "" {
		endpoint = cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("s3store: invalid endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket, opts...), nil
}

// NewWithClient creates a Store using an existing client.
func NewWithClient(client PutObjectAPI, bucket string, opts ...Option) *Store {
	s := &Store{client: client, bucket: bucket, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save uploads data to the object named by path, either "s3://bucket/key"
// or a bare key in the configured bucket.
func (s *Store) Save(ctx context.Context, path string, data []byte) error {
	bucket, key, err := s.locate(path)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("s3store: uploading s3://%s/%s: %w", bucket, key, err)
	}

	s.logger.Debug("document uploaded",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int("size", len(data)))
	return nil
}

func (s *Store) locate(path string) (bucket, key string, err error) {
	rest, isURL := strings.CutPrefix(path, Scheme+"://")
	if isURL {
		bucket, key, _ = strings.Cut(rest, "/")
	} else {
		bucket, key = s.bucket, path
	}
	key = strings.TrimPrefix(key, "/")

	if bucket == "" {
		return "", "", errors.New("s3store: no bucket in path and none configured")
	}
	if key == "" {
		return "", "", fmt.Errorf("s3store: no object key in %q", path)
	}
	return bucket, key, nil
}
