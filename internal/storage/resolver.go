// Package storage turns stored media references (job results, creation
// thumbnails) into URLs a client can fetch.
package storage

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"
)

// Resolver maps a stored reference to a fetchable URL.
type Resolver interface {
	URL(ctx context.Context, ref string) (string, error)
}

// ErrInvalidRef is returned for references that are empty or escape the
// storage root.
var ErrInvalidRef = errors.New("storage: invalid reference")

// IsAbsolute reports whether ref is already a full http(s) URL and needs no
// resolution.
func IsAbsolute(ref string) bool {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// CleanKey normalizes a reference into an object key and prevents escaping
// the storage root.
func CleanKey(ref string) (string, error) {
	key := strings.TrimSpace(ref)
	key = strings.TrimPrefix(key, "s3://")
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", ErrInvalidRef
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidRef
	}
	return cleaned, nil
}

// LocalResolver serves references from a static base URL, used when media is
// kept on the local file system during development.
type LocalResolver struct {
	base *url.URL
}

// NewLocalResolver validates baseURL and returns a resolver rooted at it.
func NewLocalResolver(baseURL string) (*LocalResolver, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("storage: base url must be absolute")
	}
	return &LocalResolver{base: u}, nil
}

func (r *LocalResolver) URL(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if IsAbsolute(ref) {
		return ref, nil
	}
	key, err := CleanKey(ref)
	if err != nil {
		return "", err
	}
	return r.base.JoinPath(strings.Split(key, "/")...).String(), nil
}
