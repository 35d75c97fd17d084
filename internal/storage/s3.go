package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures presigned media URLs.
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	TTL             time.Duration
}

type presignFunc func(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)

// S3Resolver issues short-lived presigned GET URLs for objects in one bucket.
type S3Resolver struct {
	bucket  string
	ttl     time.Duration
	presign presignFunc
}

// NewS3Resolver loads the AWS configuration and builds a presign client.
// Static credentials are used when both keys are set, otherwise the default
// provider chain applies.
func NewS3Resolver(ctx context.Context, opts S3Options) (*S3Resolver, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("storage: s3 bucket is required")
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Resolver(opts.Bucket, opts.TTL, s3.NewPresignClient(client).PresignGetObject), nil
}

func newS3Resolver(bucket string, ttl time.Duration, presign presignFunc) *S3Resolver {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &S3Resolver{bucket: bucket, ttl: ttl, presign: presign}
}

func (r *S3Resolver) URL(ctx context.Context, ref string) (string, error) {
	if IsAbsolute(ref) {
		return ref, nil
	}
	key, err := CleanKey(ref)
	if err != nil {
		return "", err
	}
	req, err := r.presign(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.ttl))
	if err != nil {
		return "", fmt.Errorf("storage: presign %q: %w", key, err)
	}
	return req.URL, nil
}
