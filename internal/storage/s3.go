package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Resolver hands out presigned GET urls for thumbnails the backend
// keeps in an S3 (or compatible) bucket.
type S3Resolver struct {
	presign   *s3.PresignClient
	bucket    string
	keyPrefix string
	ttl       time.Duration
}

func NewS3Resolver(client *s3.Client, bucket, keyPrefix string, ttl time.Duration) *S3Resolver {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &S3Resolver{
		presign:   s3.NewPresignClient(client),
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
		ttl:       ttl,
	}
}

func (r *S3Resolver) URL(ctx context.Context, name string) (string, error) {
	if r.bucket == "" {
		return "", fmt.Errorf("storage bucket is required")
	}
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if name == "" {
		return "", fmt.Errorf("thumbnail name is required")
	}

	key := name
	if r.keyPrefix != "" {
		key = path.Join(r.keyPrefix, name)
	}

	req, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.ttl))
	if err != nil {
		return "", fmt.Errorf("presign thumbnail %s: %w", key, err)
	}
	return req.URL, nil
}

var _ ThumbnailResolver = (*S3Resolver)(nil)
