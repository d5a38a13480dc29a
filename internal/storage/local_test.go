package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalUploader(t *testing.T) {
	dir := t.TempDir()
	u, err := NewLocalUploader(dir)
	if err != nil {
		t.Fatal(err)
	}

	path, err := u.Upload(context.Background(), "uploads/2026/a.xlsx", "application/octet-stream", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if want := filepath.Join(dir, "uploads", "2026", "a.xlsx"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "data" {
		t.Errorf("content = %q, err = %v", b, err)
	}
}

func TestLocalUploaderStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	u, err := NewLocalUploader(dir)
	if err != nil {
		t.Fatal(err)
	}

	path, err := u.Upload(context.Background(), "../../escape.xlsx", "", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(path, dir) {
		t.Errorf("path %q escaped %q", path, dir)
	}
}
