package repository

import (
	"context"
	"fmt"
	"io"

	"kursus-backend/internal/domain"
	"kursus-backend/pkg/utils"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	BaseURL   string
}

type s3Store struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewS3FileStore connects to an S3-compatible endpoint and creates the bucket when missing.
func NewS3FileStore(ctx context.Context, opts S3Options) (domain.FileStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("s3 bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("s3 make bucket: %w", err)
		}
	}

	return &s3Store{client: client, bucket: opts.Bucket, baseURL: opts.BaseURL}, nil
}

func (s *s3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*domain.FileInfo, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	if size > MaxUploadSize {
		return nil, domain.Validationf("file exceeds %dMB", MaxUploadSize/(1024*1024))
	}
	if contentType == "" {
		contentType = utils.DetectContentType(key)
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 put %s: %w", key, err)
	}

	return &domain.FileInfo{
		Key:         key,
		URL:         publicURL(s.baseURL, key),
		ContentType: contentType,
		Size:        info.Size,
		UploadedAt:  info.LastModified,
	}, nil
}

func (s *s3Store) Open(ctx context.Context, key string) (io.ReadCloser, *domain.FileInfo, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, nil, err
	}

	st, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil, domain.ErrFileNotFound
		}
		return nil, nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, err
	}

	return obj, &domain.FileInfo{
		Key:         key,
		URL:         publicURL(s.baseURL, key),
		ContentType: st.ContentType,
		Size:        st.Size,
		UploadedAt:  st.LastModified,
	}, nil
}

func (s *s3Store) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
