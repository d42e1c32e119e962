package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mockup/internal/domain"
	"mockup/pkg/zip"
)

const exportPrefix = "mockup-magic-"

// FileStore persists exported mockups onto the local filesystem.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Write persists the provided bytes at the given relative key and returns the
// canonicalized storage key. Keys are cleaned to prevent directory traversal.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return cleanKey, nil
}

// ExportName is the download name for a result saved at t.
func ExportName(img domain.ResultImage, t time.Time) string {
	return fmt.Sprintf("%s%d.%s", exportPrefix, t.UnixMilli(), img.Extension())
}

// Export writes img under its export name and returns the absolute path.
func (s *FileStore) Export(ctx context.Context, img domain.ResultImage, t time.Time) (string, error) {
	if len(img.Data) == 0 {
		return "", errors.New("storage: nothing to export")
	}
	key, err := s.Write(ctx, ExportName(img, t), img.Data)
	if err != nil {
		return "", err
	}
	return filepath.Abs(filepath.Join(s.basePath, filepath.FromSlash(key)))
}

// ArchiveName is the download name for a history archive built at t.
func ArchiveName(t time.Time) string {
	return fmt.Sprintf("%s%d.zip", exportPrefix, t.UnixMilli())
}

// BuildArchive zips every record in timeline order.
func BuildArchive(records []domain.GenerationRecord, t time.Time) ([]byte, error) {
	entries := make([]zip.Entry, 0, len(records))
	for i, rec := range records {
		entries = append(entries, zip.Entry{
			Filename: fmt.Sprintf("%02d-%s.%s", i+1, rec.ID, rec.Image.Extension()),
			Data:     rec.Image.Data,
			Modified: t,
		})
	}
	return zip.Archive(entries)
}

// ExportArchive writes the history archive and returns the absolute path.
func (s *FileStore) ExportArchive(ctx context.Context, records []domain.GenerationRecord, t time.Time) (string, error) {
	if len(records) == 0 {
		return "", errors.New("storage: nothing to export")
	}
	data, err := BuildArchive(records, t)
	if err != nil {
		return "", err
	}
	key, err := s.Write(ctx, ArchiveName(t), data)
	if err != nil {
		return "", err
	}
	return filepath.Abs(filepath.Join(s.basePath, filepath.FromSlash(key)))
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
