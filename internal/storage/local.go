package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalService writes uploads to a directory served by the HTTP server under
// URLPrefix.
type LocalService struct {
	dir       string
	urlPrefix string
	baseURL   string
}

func NewLocalService(dir, urlPrefix, baseURL string) (*LocalService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalService{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		baseURL:   strings.TrimRight(baseURL, "/"),
	}, nil
}

// Dir is the directory uploads are written to.
func (s *LocalService) Dir() string {
	return s.dir
}

// URLPrefix is the route the directory is served under.
func (s *LocalService) URLPrefix() string {
	return s.urlPrefix
}

func (s *LocalService) Save(ctx context.Context, key string, body io.Reader, _ int64, _ string) (Object, error) {
	if key == "" || key != filepath.Base(key) {
		return Object{}, fmt.Errorf("invalid object key %q", key)
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	dst := filepath.Join(s.dir, key)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Object{}, fmt.Errorf("create file %s: %w", key, err)
	}
	_, err = io.Copy(f, body)
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(dst)
		return Object{}, fmt.Errorf("write file %s: %w", key, err)
	}
	if closeErr != nil {
		return Object{}, fmt.Errorf("close file %s: %w", key, closeErr)
	}

	path := s.urlPrefix + "/" + key
	return Object{Key: key, Path: path, URL: s.baseURL + path}, nil
}

var _ Service = (*LocalService)(nil)
