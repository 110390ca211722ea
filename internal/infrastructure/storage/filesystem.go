package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/bravo68web/shipyard/pkg/errors"
)

// FilesystemStorage keeps archived logs as files below a base directory
type FilesystemStorage struct {
	basePath string
}

// NewFilesystemStorage creates a new filesystem storage instance
func NewFilesystemStorage(basePath string) (*FilesystemStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	return &FilesystemStorage{basePath: absPath}, nil
}

// BasePath returns the base storage path
func (s *FilesystemStorage) BasePath() string {
	return s.basePath
}

// Put writes data to the file for key, creating parent directories
func (s *FilesystemStorage) Put(_ context.Context, key string, data []byte) error {
	fullPath, err := s.resolvePath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return apperrors.StorageError("mkdir", err)
	}

	// write to a sibling temp file so readers never see a partial log
	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return apperrors.StorageError("write", err)
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		os.Remove(tmp)
		return apperrors.StorageError("write", err)
	}
	return nil
}

// Get reads the file for key
func (s *FilesystemStorage) Get(_ context.Context, key string) ([]byte, error) {
	fullPath, err := s.resolvePath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NotFound("log", err)
		}
		return nil, apperrors.StorageError("read", err)
	}
	return data, nil
}

// DeletePrefix removes the directory or files named by prefix
func (s *FilesystemStorage) DeletePrefix(_ context.Context, prefix string) error {
	fullPath, err := s.resolvePath(prefix)
	if err != nil {
		return err
	}
	if fullPath == s.basePath {
		return apperrors.StorageError("delete", fmt.Errorf("refusing to delete storage root"))
	}

	if err := os.RemoveAll(fullPath); err != nil {
		return apperrors.StorageError("delete", err)
	}
	return nil
}

// resolvePath maps a key to a path below basePath
func (s *FilesystemStorage) resolvePath(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(key, "/")))
	fullPath := filepath.Join(s.basePath, cleaned)

	rel, err := filepath.Rel(s.basePath, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperrors.BadRequest("invalid storage key", apperrors.ErrInvalidInput)
	}
	return fullPath, nil
}
