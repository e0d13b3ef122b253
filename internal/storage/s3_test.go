package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/overload/internal/config"
)

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), config.S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestPresignedDownloadURL_UsesCustomEndpoint(t *testing.T) {
	store, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "http://minio.local:9000",
		Region:          "us-east-1",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "exports",
	})
	require.NoError(t, err)

	url, err := store.GeneratePresignedDownloadURL(context.Background(), "u1/export.json", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://minio.local:9000/exports/u1/export.json?"), url)
	assert.Contains(t, url, "X-Amz-Expires=60")
}
