package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "results/a.png", want: "results/a.png"},
		{in: "/results//a.png", want: "results/a.png"},
		{in: "s3://results/a.png", want: "results/a.png"},
		{in: `results\a.png`, want: "results/a.png"},
		{in: "./x/../y.png", want: "y.png"},
		{in: "../etc/passwd", wantErr: true},
		{in: "..", wantErr: true},
		{in: "  ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := CleanKey(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidRef, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestLocalResolver(t *testing.T) {
	r, err := NewLocalResolver("http://localhost:8080/static")
	require.NoError(t, err)

	got, err := r.URL(context.Background(), "results/job 1.png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/static/results/job%201.png", got)

	got, err = r.URL(context.Background(), "https://cdn.example.com/x.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/x.png", got)

	_, err = r.URL(context.Background(), "../secret")
	assert.ErrorIs(t, err, ErrInvalidRef)

	_, err = NewLocalResolver("static")
	assert.Error(t, err)
}

func TestS3ResolverPresignsKey(t *testing.T) {
	var gotBucket, gotKey string
	var gotTTL time.Duration
	r := newS3Resolver("media", time.Minute, func(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotBucket, gotKey = *in.Bucket, *in.Key
		var opts s3.PresignOptions
		for _, fn := range optFns {
			fn(&opts)
		}
		gotTTL = opts.Expires
		return &v4.PresignedHTTPRequest{URL: "https://media.s3.example.com/" + url.PathEscape(*in.Key) + "?X-Amz-Signature=abc"}, nil
	})

	got, err := r.URL(context.Background(), "/thumbs/c1.png")
	require.NoError(t, err)
	assert.Equal(t, "media", gotBucket)
	assert.Equal(t, "thumbs/c1.png", gotKey)
	assert.Equal(t, time.Minute, gotTTL)
	assert.True(t, strings.Contains(got, "X-Amz-Signature"))
}

func TestS3ResolverErrors(t *testing.T) {
	calls := 0
	r := newS3Resolver("media", 0, func(context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		calls++
		return nil, errors.New("boom")
	})
	assert.Equal(t, 15*time.Minute, r.ttl)

	_, err := r.URL(context.Background(), "a.png")
	assert.ErrorContains(t, err, "boom")

	_, err = r.URL(context.Background(), "..")
	assert.ErrorIs(t, err, ErrInvalidRef)
	assert.Equal(t, 1, calls)

	got, err := r.URL(context.Background(), "http://example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/a.png", got)
}
