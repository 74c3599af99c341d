package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/videotube/videotube-api/internal/core/domain"
	"github.com/videotube/videotube-api/internal/core/ports"
)

const ensureTimeout = 10 * time.Second

// Config holds the object store settings. PublicURL is the externally
// reachable base of the store; when empty it is derived from Endpoint.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// MinIOStorage stores profile media in a single bucket. Objects are keyed
// <public id><ext> and served from a public-read bucket.
type MinIOStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinIOStorage creates the client and ensures the bucket exists and is
// readable anonymously.
func NewMinIOStorage(ctx context.Context, cfg Config) (*MinIOStorage, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}

	s := &MinIOStorage{client: mc, bucket: cfg.Bucket, baseURL: baseURL(cfg)}

	ctx, cancel := context.WithTimeout(ctx, ensureTimeout)
	defer cancel()
	exists, err := mc.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}
	if err := mc.SetBucketPolicy(ctx, s.bucket, publicReadPolicy(s.bucket)); err != nil {
		return nil, fmt.Errorf("minio bucket policy: %w", err)
	}
	return s, nil
}

func (s *MinIOStorage) Upload(ctx context.Context, file ports.MediaFile) (*ports.UploadedMedia, error) {
	if file.Content == nil {
		return nil, errors.New("empty upload")
	}
	publicID := uuid.NewString()
	key := objectKey(publicID, file.Filename)

	size := file.Size
	if size <= 0 {
		size = -1
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, file.Content, size, minio.PutObjectOptions{
		ContentType: file.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("minio put %s: %w", key, err)
	}
	return &ports.UploadedMedia{URL: s.objectURL(key), PublicID: publicID}, nil
}

// Delete removes every object stored under publicID. It reports false when
// nothing matched.
func (s *MinIOStorage) Delete(ctx context.Context, publicID string) (bool, error) {
	if publicID == "" {
		return false, nil
	}

	var deleted bool
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: publicID}) {
		if obj.Err != nil {
			return deleted, fmt.Errorf("minio list %s: %w", publicID, obj.Err)
		}
		if domain.MediaPublicID(obj.Key) != publicID {
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return deleted, fmt.Errorf("minio remove %s: %w", obj.Key, err)
		}
		deleted = true
	}
	return deleted, nil
}

// Ping reports whether the bucket is reachable.
func (s *MinIOStorage) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s missing", s.bucket)
	}
	return nil
}

func (s *MinIOStorage) objectURL(key string) string {
	return s.baseURL + "/" + s.bucket + "/" + key
}

func baseURL(cfg Config) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint
}

// objectKey keeps the lower-cased extension of the uploaded filename.
func objectKey(publicID, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) < 2 || len(ext) > 8 || strings.ContainsAny(ext, " ?#/") {
		ext = ""
	}
	return publicID + ext
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}
