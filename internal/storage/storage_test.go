package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticResolver(t *testing.T) {
	r := StaticResolver{BaseURL: "http://localhost:4000/uploads/"}

	got, err := r.URL(context.Background(), "cover image.png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000/uploads/cover%20image.png", got)

	_, err = r.URL(context.Background(), " ")
	assert.Error(t, err)
}

func TestS3Resolver_Presigns(t *testing.T) {
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String("http://minio.local:9000"),
		UsePathStyle: true,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKID", SecretAccessKey: "SECRET"}, nil
		}),
	})
	r := NewS3Resolver(client, "blog", "/uploads/", 10*time.Minute)

	raw, err := r.URL(context.Background(), "a.png")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "minio.local:9000", u.Host)
	assert.Equal(t, "/blog/uploads/a.png", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
}

func TestS3Resolver_RequiresBucket(t *testing.T) {
	r := NewS3Resolver(s3.New(s3.Options{Region: "us-east-1"}), "", "", 0)
	_, err := r.URL(context.Background(), "a.png")
	assert.Error(t, err)
}
