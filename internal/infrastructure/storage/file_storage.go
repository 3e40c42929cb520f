package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"csystem-sip/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var ErrFileTooLarge = errors.New("file exceeds the maximum upload size")

// StoredFile describes a file written to storage
type StoredFile struct {
	Key  string
	URL  string
	Size int64
}

// FileStorage persists uploaded files on an afero filesystem. Production wires an
// OS-backed base path; tests wire an in-memory filesystem.
type FileStorage struct {
	fs      afero.Fs
	baseURL string
	maxSize int64
}

func NewFileStorage(fs afero.Fs, baseURL string, maxSize int64) *FileStorage {
	return &FileStorage{
		fs:      fs,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
	}
}

// NewLocalFileStorage roots storage at cfg.BaseDir on the local disk
func NewLocalFileStorage(cfg config.StorageConfig) (*FileStorage, error) {
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare storage dir: %w", err)
	}
	fs := afero.NewBasePathFs(afero.NewOsFs(), cfg.BaseDir)
	logrus.Infof("File storage rooted at %s", cfg.BaseDir)
	return NewFileStorage(fs, cfg.PublicBaseURL, cfg.MaxUploadSize), nil
}

// Save writes r under dir with a generated name keeping the original extension
func (s *FileStorage) Save(dir, originalName string, r io.Reader) (*StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	key := path.Join(dir, uuid.New().String()+ext)

	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dir %s: %w", dir, err)
	}

	f, err := s.fs.Create(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		_ = s.fs.Remove(key)
		return nil, fmt.Errorf("failed to write file: %w", copyErr)
	case closeErr != nil:
		_ = s.fs.Remove(key)
		return nil, fmt.Errorf("failed to close file: %w", closeErr)
	case s.maxSize > 0 && n > s.maxSize:
		_ = s.fs.Remove(key)
		return nil, ErrFileTooLarge
	}

	return &StoredFile{Key: key, URL: s.URL(key), Size: n}, nil
}

// Delete removes a stored file; a missing file is not an error
func (s *FileStorage) Delete(key string) error {
	if err := s.fs.Remove(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Open returns a reader for a stored file
func (s *FileStorage) Open(key string) (afero.File, error) {
	return s.fs.Open(key)
}

// URL returns the public URL of a storage key
func (s *FileStorage) URL(key string) string {
	return s.baseURL + "/" + key
}

// KeyFromURL reverses URL for files this storage issued
func (s *FileStorage) KeyFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// MaxSize returns the configured upload limit in bytes
func (s *FileStorage) MaxSize() int64 {
	return s.maxSize
}

// Handler serves stored files read-only under their keys
func (s *FileStorage) Handler() http.Handler {
	return http.FileServer(afero.NewHttpFs(s.fs).Dir(""))
}
