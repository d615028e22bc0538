package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"CrateFM/config"
	"CrateFM/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// CoverArchive mirrors album cover images into a MinIO bucket so the
// collection stays browseable when the catalog service pulls images.
type CoverArchive struct {
	client     *minio.Client
	bucket     string
	httpClient *http.Client
}

// NewCoverArchive connects to MinIO and ensures the bucket exists.
func NewCoverArchive(cfg *config.Config) (*CoverArchive, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio connect: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio bucket create: %w", err)
		}
		logger.Info("Created cover bucket", logger.String("bucket", cfg.MinioBucket))
	}

	return &CoverArchive{
		client: client,
		bucket: cfg.MinioBucket,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Mirror downloads the cover at url and stores it under the album id.
// Already-archived covers are left alone.
func (a *CoverArchive) Mirror(ctx context.Context, albumID int64, url string) error {
	object := fmt.Sprintf("covers/%d.jpg", albumID)

	if _, err := a.client.StatObject(ctx, a.bucket, object, minio.StatObjectOptions{}); err == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("cover request %d: %w", albumID, err)
	}
	req.Header.Set("User-Agent", "CrateFM/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cover fetch %d: %w", albumID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cover fetch %d: status %d", albumID, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	_, err = a.client.PutObject(ctx, a.bucket, object, resp.Body, resp.ContentLength, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("cover store %d: %w", albumID, err)
	}

	logger.Debug("Cover archived", logger.Int64("album", albumID))
	return nil
}

// CoverURL returns a presigned URL for an archived cover.
func (a *CoverArchive) CoverURL(ctx context.Context, albumID int64, expiry time.Duration) (string, error) {
	object := fmt.Sprintf("covers/%d.jpg", albumID)
	u, err := a.client.PresignedGetObject(ctx, a.bucket, object, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("cover url %d: %w", albumID, err)
	}
	return u.String(), nil
}
