package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"docverify/internal/apperr"
	"docverify/internal/config"
)

// minioStorage is a self-hosted content store on an S3-compatible backend (MinIO, AWS S3, etc.).
// Content identifiers are computed locally and objects live under ipfs/<cid>, so a gateway
// serving the bucket resolves the same URLs as a public IPFS gateway.
// It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client   *minio.Client
	bucket   string
	gateway  string
	maxBytes int64
}

// NewMinIO creates a content store backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.StorageConfig) (Storage, error) {
	mc := cfg.MinIO
	if mc.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if mc.AccessKey == "" || mc.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if mc.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(mc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(mc.AccessKey, mc.SecretKey, ""),
		Secure: mc.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, mc.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, mc.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &minioStorage{
		client:   cli,
		bucket:   mc.Bucket,
		gateway:  cfg.GatewayURL,
		maxBytes: cfg.MaxUploadBytes,
	}, nil
}

func objectKey(contentID string) string {
	return "ipfs/" + contentID
}

// Put hashes the content, then uploads it under its content identifier.
func (m *minioStorage) Put(ctx context.Context, r io.Reader, opt PutOptions) (string, error) {
	data, err := readLimited(r, opt.Size, m.maxBytes)
	if err != nil {
		return "", err
	}
	id, err := ComputeCID(data)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrStorageUnavailable, err)
	}

	meta := map[string]string{}
	for k, v := range opt.Metadata {
		meta[k] = v
	}
	if opt.FileName != "" {
		meta["original-filename"] = opt.FileName
	}

	_, err = m.client.PutObject(ctx, m.bucket, objectKey(id), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: meta,
	})
	if err != nil {
		return "", classifyMinIOError(err)
	}
	return id, nil
}

func (m *minioStorage) ResolveURL(contentID string) string {
	return gatewayURL(m.gateway, contentID)
}

func classifyMinIOError(err error) error {
	code := minio.ToErrorResponse(err).StatusCode
	if code >= 400 && code < 500 &&
		code != http.StatusUnauthorized && code != http.StatusForbidden && code != http.StatusTooManyRequests {
		return apperr.Wrap(apperr.ErrStorageRejected, err)
	}
	return apperr.Wrap(apperr.ErrStorageUnavailable, err)
}
