// Package storage uploads user avatars to the auth provider's storage
// buckets, with a local filesystem fallback for development.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"

	apperrors "mysre-backend/pkg/errors"
)

// AvatarStore persists an uploaded avatar and returns its public URL.
type AvatarStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}

// SupabaseAvatarStore uploads into a Supabase storage bucket.
type SupabaseAvatarStore struct {
	client     *supabase.Client
	projectURL string
	bucket     string
}

// NewSupabaseAvatarStore builds a store for the given bucket.
func NewSupabaseAvatarStore(projectURL, serviceKey, bucket string) (*SupabaseAvatarStore, error) {
	client, err := supabase.NewClient(projectURL, serviceKey, nil)
	if err != nil {
		return nil, err
	}
	return &SupabaseAvatarStore{client: client, projectURL: projectURL, bucket: bucket}, nil
}

// Upload stores data under path, replacing any previous object, and returns
// the bucket's public object URL.
func (s *SupabaseAvatarStore) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	upsert := true
	_, err := s.client.Storage.UploadFile(s.bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", apperrors.NewInternalError("avatar upload failed").WithCause(err)
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.projectURL, s.bucket, path), nil
}

// LocalAvatarStore writes avatars to a directory; development only.
type LocalAvatarStore struct {
	dir string
}

// NewLocalAvatarStore creates the directory if needed.
func NewLocalAvatarStore(dir string) (*LocalAvatarStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalAvatarStore{dir: dir}, nil
}

// Upload writes the file and returns a relative URL path.
func (s *LocalAvatarStore) Upload(_ context.Context, path, _ string, data []byte) (string, error) {
	full := filepath.Join(s.dir, filepath.Base(path))
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", apperrors.NewInternalError("avatar upload failed").WithCause(err)
	}
	return "/avatars/" + filepath.Base(path), nil
}
