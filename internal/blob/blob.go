package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Store persists uploaded artifacts (client photos, signed contracts) and
// returns a stable reference path. Writes are write-once; the application
// never reinterprets stored content.
type Store interface {
	Save(ctx context.Context, folder, filename string, data []byte) (string, error)
}

// DiskStore writes artifacts under a local base directory using
// timestamp-prefixed names so references never collide.
type DiskStore struct {
	baseDir string
	now     func() time.Time
}

// NewDiskStore builds a disk-backed store rooted at baseDir.
func NewDiskStore(baseDir string) *DiskStore {
	return &DiskStore{baseDir: baseDir, now: time.Now}
}

// Save writes data to disk and returns the reference path for the artifact.
func (s *DiskStore) Save(_ context.Context, folder, filename string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), filepath.Base(filename))
	target := filepath.Join(dir, name)

	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("artifact %s already exists", target)
	}

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}

	return "/" + path.Join(folder, name), nil
}
