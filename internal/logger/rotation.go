package logger

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RotatingWriter appends to a log file, rotating it away once it exceeds the
// size limit and pruning rotated files past the age limit.
type RotatingWriter struct {
	filename string
	maxSize  int64
	maxAge   int
	compress bool

	file *os.File
	size int64
}

// NewRotatingWriter opens (or creates) the log file. maxSizeMB <= 0 disables
// size-based rotation; maxAge <= 0 disables pruning.
func NewRotatingWriter(filename string, maxSizeMB, maxAge int, compress bool) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}

	w := &RotatingWriter{
		filename: filename,
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		maxAge:   maxAge,
		compress: compress,
		file:     file,
		size:     info.Size(),
	}
	go w.prune()

	return w, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	if w.maxSize > 0 && w.size+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// Close closes the active log file.
func (w *RotatingWriter) Close() error {
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}

	rotated := fmt.Sprintf("%s.%s", w.filename, time.Now().Format("20060102-150405"))
	if err := os.Rename(w.filename, rotated); err != nil {
		return err
	}
	if w.compress {
		go compressFile(rotated)
	}

	file, err := os.OpenFile(w.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	w.file = file
	w.size = 0
	return nil
}

func compressFile(filename string) error {
	src, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filename + ".gz")
	if err != nil {
		return err
	}
	defer dst.Close()

	gzw := gzip.NewWriter(dst)
	if _, err := io.Copy(gzw, src); err != nil {
		gzw.Close()
		return err
	}
	if err := gzw.Close(); err != nil {
		return err
	}
	return os.Remove(filename)
}

// prune deletes rotated files older than maxAge days.
func (w *RotatingWriter) prune() {
	if w.maxAge <= 0 {
		return
	}

	matches, err := filepath.Glob(w.filename + ".*")
	if err != nil {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -w.maxAge)
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(path)
			if !strings.HasSuffix(path, ".gz") {
				os.Remove(path + ".gz")
			}
		}
	}
}
