package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"kursus-backend/internal/domain"
	"kursus-backend/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const gridFSBucketName = "uploads"

// gridFSFile mirrors a document in the <bucket>.files collection.
type gridFSFile struct {
	ID         primitive.ObjectID `bson:"_id"`
	Filename   string             `bson:"filename"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Metadata   bson.M             `bson:"metadata"`
}

type gridFSStore struct {
	db      *mongo.Database
	bucket  *gridfs.Bucket
	baseURL string
}

// NewGridFSFileStore stores files in MongoDB GridFS, using the storage key as the GridFS filename.
func NewGridFSFileStore(db *mongo.Database, baseURL string) (domain.FileStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(gridFSBucketName))
	if err != nil {
		return nil, fmt.Errorf("failed to create GridFS bucket: %w", err)
	}
	return &gridFSStore{db: db, bucket: bucket, baseURL: baseURL}, nil
}

func (s *gridFSStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*domain.FileInfo, error) {
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

	uploadOpts := options.GridFSUpload().SetMetadata(bson.M{
		"content_type": contentType,
	})
	if _, err := s.bucket.UploadFromStream(key, io.LimitReader(r, MaxUploadSize), uploadOpts); err != nil {
		return nil, fmt.Errorf("gagal upload file: %w", err)
	}

	f, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.info(f), nil
}

func (s *gridFSStore) Open(ctx context.Context, key string) (io.ReadCloser, *domain.FileInfo, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, nil, err
	}

	f, err := s.find(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.bucket.OpenDownloadStream(f.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("open download stream: %w", err)
	}
	return stream, s.info(f), nil
}

func (s *gridFSStore) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	f, err := s.find(ctx, key)
	if err != nil {
		return err
	}
	if err := s.bucket.Delete(f.ID); err != nil {
		return fmt.Errorf("gagal menghapus file: %w", err)
	}
	return nil
}

// find returns the newest revision stored under key.
func (s *gridFSStore) find(ctx context.Context, key string) (*gridFSFile, error) {
	var f gridFSFile
	opts := options.FindOne().SetSort(bson.D{{Key: "uploadDate", Value: -1}})
	err := s.db.Collection(gridFSBucketName+".files").FindOne(ctx, bson.M{"filename": key}, opts).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *gridFSStore) info(f *gridFSFile) *domain.FileInfo {
	contentType, _ := f.Metadata["content_type"].(string)
	if contentType == "" {
		contentType = utils.DetectContentType(f.Filename)
	}
	return &domain.FileInfo{
		Key:         f.Filename,
		URL:         publicURL(s.baseURL, f.Filename),
		ContentType: contentType,
		Size:        f.Length,
		UploadedAt:  f.UploadDate,
	}
}
