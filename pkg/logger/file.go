package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const defaultMaxLogBytes = 100 * 1024 * 1024

// rotatingFile is a size-bounded log file. When a write would push the file past
// maxBytes the current file is renamed with a timestamp suffix and a fresh one is
// opened; only the newest maxBackups rotated files are kept.
type rotatingFile struct {
	path       string
	maxBytes   int64
	maxBackups int

	mu   sync.Mutex
	file *os.File
	size int64
}

func (w *rotatingFile) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		if err := w.open(); err != nil {
			return 0, err
		}
	}

	if w.size+int64(len(p)) > w.limit() {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *rotatingFile) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

func (w *rotatingFile) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *rotatingFile) limit() int64 {
	if w.maxBytes <= 0 {
		return defaultMaxLogBytes
	}
	return w.maxBytes
}

func (w *rotatingFile) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = f
	w.size = info.Size()
	return nil
}

func (w *rotatingFile) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		w.file = nil
	}

	ext := filepath.Ext(w.path)
	base := w.path[:len(w.path)-len(ext)]
	backup := fmt.Sprintf("%s-%s%s", base, time.Now().UTC().Format("20060102T150405.000"), ext)
	if err := os.Rename(w.path, backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	w.prune(base, ext)
	return w.open()
}

// prune removes rotated files beyond maxBackups, oldest first
func (w *rotatingFile) prune(base, ext string) {
	if w.maxBackups <= 0 {
		return
	}

	matches, err := filepath.Glob(base + "-*" + ext)
	if err != nil || len(matches) <= w.maxBackups {
		return
	}

	// timestamp suffixes sort lexically
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-w.maxBackups] {
		_ = os.Remove(old)
	}
}

func ensureLogDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0o755)
}

var _ io.WriteCloser = (*rotatingFile)(nil)
