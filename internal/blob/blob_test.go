package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDiskStoreSave(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir)
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }

	ref, err := store.Save(context.Background(), "signatures", "contract.png", []byte("img"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if ref != "/signatures/1700000000000-contract.png" {
		t.Fatalf("unexpected ref %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(dir, "signatures", "1700000000000-contract.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "img" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestDiskStoreRejectsOverwrite(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir)
	store.now = func() time.Time { return time.UnixMilli(42) }

	if _, err := store.Save(context.Background(), "photos", "me.jpg", []byte("a")); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := store.Save(context.Background(), "photos", "me.jpg", []byte("b")); err == nil {
		t.Fatalf("expected overwrite to be rejected")
	} else if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("unexpected error: %v", err)
	}
}
