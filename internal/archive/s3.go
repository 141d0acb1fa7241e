// Package archive keeps a copy of every exported plan in S3-compatible
// object storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var loadDefaultAWSConfig = config.LoadDefaultConfig

// Options describe the bucket and how to reach it. Endpoint and the static
// keys are optional; without keys the default AWS credential chain is used.
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string // e.g. a MinIO URL; enables path-style addressing
	AccessKey string
	SecretKey string
}

// S3Archiver uploads PDFs under plans/YYYY/MM/DD/<uuid>.pdf.
type S3Archiver struct {
	client *s3.Client
	bucket string
	now    func() time.Time
}

func NewS3Archiver(ctx context.Context, opts Options) (*S3Archiver, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Archiver{client: client, bucket: opts.Bucket, now: time.Now}, nil
}

// Key returns a fresh object key for a document created at t.
func Key(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("plans/%04d/%02d/%02d/%s.pdf", t.Year(), int(t.Month()), t.Day(), uuid.New())
}

// Store uploads body and returns its key.
func (a *S3Archiver) Store(ctx context.Context, body []byte) (string, error) {
	key := Key(a.now())
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/pdf"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	return key, nil
}
