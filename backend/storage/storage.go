// Package storage uploads lesson images to a Supabase-compatible object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("object storage is not configured")

type ObjectStore interface {
	// Upload stores data under objectPath and returns its public URL.
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, objectPath string) error
	PublicURL(objectPath string) string
}

// SupabaseStore talks to the storage REST API:
//
//	PUT    {base}/storage/v1/object/{bucket}/{path}
//	DELETE {base}/storage/v1/object/{bucket}/{path}
//	GET    {base}/storage/v1/object/public/{bucket}/{path}
type SupabaseStore struct {
	client *resty.Client
	base   string
	bucket string
}

func NewSupabaseStore(baseURL, serviceKey, bucket string) *SupabaseStore {
	client := resty.New().
		SetTimeout(30*time.Second).
		SetHeader("Authorization", "Bearer "+serviceKey).
		SetHeader("apikey", serviceKey)
	return &SupabaseStore{
		client: client,
		base:   strings.TrimRight(baseURL, "/"),
		bucket: bucket,
	}
}

func (s *SupabaseStore) objectURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.base, s.bucket, escapePath(objectPath))
}

func (s *SupabaseStore) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.base, s.bucket, escapePath(objectPath))
}

func (s *SupabaseStore) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Put(s.objectURL(objectPath))
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("upload %s: status %d: %s", objectPath, resp.StatusCode(), resp.String())
	}
	return s.PublicURL(objectPath), nil
}

func (s *SupabaseStore) Delete(ctx context.Context, objectPath string) error {
	resp, err := s.client.R().SetContext(ctx).Delete(s.objectURL(objectPath))
	if err != nil {
		return fmt.Errorf("delete %s: %w", objectPath, err)
	}
	if resp.IsError() {
		return fmt.Errorf("delete %s: status %d: %s", objectPath, resp.StatusCode(), resp.String())
	}
	return nil
}

// Unconfigured is used when no storage URL is set; every call fails.
type Unconfigured struct{}

func (Unconfigured) Upload(context.Context, string, string, []byte) (string, error) {
	return "", ErrNotConfigured
}

func (Unconfigured) Delete(context.Context, string) error { return ErrNotConfigured }

func (Unconfigured) PublicURL(string) string { return "" }

// ObjectPath maps a public URL served by store back to its object path. It
// reports false for URLs the store does not serve.
func ObjectPath(store ObjectStore, publicURL string) (string, bool) {
	prefix := store.PublicURL("")
	if prefix == "" {
		return "", false
	}
	rest, ok := strings.CutPrefix(publicURL, prefix)
	if !ok || rest == "" {
		return "", false
	}
	p, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return p, true
}

// LessonImagePath names an uploaded lesson image: {courseID}/{unix millis}.{ext}.
func LessonImagePath(courseID uuid.UUID, filename string, now time.Time) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%d.%s", courseID, now.UnixMilli(), ext)
}

func escapePath(p string) string {
	parts := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
