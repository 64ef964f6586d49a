// Package gcs stores uploaded media (shopper avatars) in Google Cloud
// Storage.
package gcs

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
)

// AvatarStoreGCS implements usecase.AvatarStore backed by GCS.
//
// Objects are written as "<hash(email)>/avatar" so re-uploads replace
// the previous image, and the returned URL is the public object URL.
type AvatarStoreGCS struct {
	Client *storage.Client
	Bucket string
}

func NewAvatarStoreGCS(client *storage.Client, bucket string) *AvatarStoreGCS {
	return &AvatarStoreGCS{
		Client: client,
		Bucket: strings.TrimSpace(bucket),
	}
}

func (s *AvatarStoreGCS) Put(ctx context.Context, email, contentType string, data []byte) (string, error) {
	if s == nil || s.Client == nil {
		return "", errors.New("avatar_store_gcs: nil storage client")
	}
	if s.Bucket == "" {
		return "", errors.New("avatar_store_gcs: bucket is empty")
	}
	if len(data) == 0 {
		return "", errors.New("avatar_store_gcs: empty image")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objName := objectName(email)
	w := s.Client.Bucket(s.Bucket).Object(objName).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=300"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "avatar_store_gcs: write")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "avatar_store_gcs: close")
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.Bucket, objName), nil
}

// objectName hashes the email so addresses never appear in object paths
// or public URLs.
func objectName(email string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:]) + "/avatar"
}
