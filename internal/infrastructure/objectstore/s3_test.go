package objectstore

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func testConfig() Config {
	return Config{
		Region:     "us-east-1",
		Endpoint:   "http://127.0.0.1:9000",
		AccessKey:  "minioadmin",
		SecretKey:  "minioadmin",
		Bucket:     "notes",
		PresignTTL: 10 * time.Minute,
	}
}

func newTestStore(t *testing.T) *S3Store {
	t.Helper()
	store, err := New(context.Background(), testConfig(), slog.Default())
	require.NoError(t, err)
	store.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return store
}

func TestNew_RequiresBucket(t *testing.T) {
	cfg := testConfig()
	cfg.Bucket = ""
	_, err := New(context.Background(), cfg, slog.Default())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNew_LoadConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no credentials")
	}

	_, err := New(context.Background(), testConfig(), slog.Default())
	assert.ErrorContains(t, err, "no credentials")
}

func TestPresignPut_PathStyleURL(t *testing.T) {
	store := newTestStore(t)

	raw, exp, err := store.PresignPut(context.Background(), "users/7/abc/lecture.mp3", "audio/mpeg")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/notes/users/7/abc/lecture.mp3", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.Equal(t, time.Date(2025, 3, 1, 12, 10, 0, 0, time.UTC), exp)
}

func TestPresignGet(t *testing.T) {
	store := newTestStore(t)

	raw, _, err := store.PresignGet(context.Background(), "users/7/abc/lecture.mp3")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "http://127.0.0.1:9000/notes/users/7/abc/lecture.mp3?"))
}

func TestPresignPut_Error(t *testing.T) {
	store := newTestStore(t)

	orig := presignPutObject
	t.Cleanup(func() { presignPutObject = orig })
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("signer failure")
	}

	_, _, err := store.PresignPut(context.Background(), "users/7/abc/a.pdf", "")
	assert.ErrorContains(t, err, "signer failure")
}

func TestNew_DefaultTTL(t *testing.T) {
	cfg := testConfig()
	cfg.PresignTTL = 0
	store, err := New(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, DefaultPresignTTL, store.ttl)
}
