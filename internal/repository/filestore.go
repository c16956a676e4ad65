package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"kursus-backend/internal/domain"
	"kursus-backend/pkg/utils"
)

// MaxUploadSize bounds every stored file.
const MaxUploadSize = 50 * 1024 * 1024

var errInvalidKey = domain.Validationf("invalid file key")

// cleanKey normalises a storage key and rejects anything escaping the store root.
func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimPrefix(k, "/")
	if k == "" || k == "." || strings.HasPrefix(k, "..") {
		return "", errInvalidKey
	}
	return k, nil
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// ========== LOCAL FILE STORE ==========

type localStore struct {
	root    string
	baseURL string
}

func NewLocalFileStore(root, baseURL string) domain.FileStore {
	return &localStore{root: root, baseURL: baseURL}
}

func (s *localStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*domain.FileInfo, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, err
	}

	out, err := os.Create(dst)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("write %s: %w", key, err)
	}
	if written > MaxUploadSize {
		os.Remove(dst)
		return nil, domain.Validationf("file exceeds %dMB", MaxUploadSize/(1024*1024))
	}

	info, err := out.Stat()
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = utils.DetectContentType(key)
	}
	return &domain.FileInfo{
		Key:         key,
		URL:         publicURL(s.baseURL, key),
		ContentType: contentType,
		Size:        written,
		UploadedAt:  info.ModTime(),
	}, nil
}

func (s *localStore) Open(ctx context.Context, key string) (io.ReadCloser, *domain.FileInfo, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, domain.ErrFileNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if st.IsDir() {
		f.Close()
		return nil, nil, domain.ErrFileNotFound
	}

	return f, &domain.FileInfo{
		Key:         key,
		URL:         publicURL(s.baseURL, key),
		ContentType: utils.DetectContentType(key),
		Size:        st.Size(),
		UploadedAt:  st.ModTime(),
	}, nil
}

func (s *localStore) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if errors.Is(err, os.ErrNotExist) {
		return domain.ErrFileNotFound
	}
	return err
}
