package localfs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("stream broken") }

func TestSaveAndOpenRoundTrip(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	written, err := storage.Save(context.Background(), "pdf-1_a.pdf", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if written != int64(len("content")) {
		t.Fatalf("expected %d bytes written, got %d", len("content"), written)
	}

	reader, err := storage.Open(context.Background(), "pdf-1_a.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(raw) != "content" {
		t.Fatalf("unexpected content %q", raw)
	}
}

func TestSaveIgnoresPathTraversal(t *testing.T) {
	dir := t.TempDir()
	storage, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := storage.Save(context.Background(), "../escape.pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := storage.Open(context.Background(), "escape.pdf"); err != nil {
		t.Fatalf("expected file inside base dir, got %v", err)
	}
}

func TestSaveFailureLeavesNoObject(t *testing.T) {
	dir := t.TempDir()
	storage, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := storage.Save(context.Background(), "broken.pdf", failingReader{}); err == nil {
		t.Fatalf("expected error from failing reader")
	}
	if _, err := os.Stat(filepath.Join(dir, "broken.pdf")); !os.IsNotExist(err) {
		t.Fatalf("failed upload must not leave a final object, stat err = %v", err)
	}
}

func TestDeleteRemovesObject(t *testing.T) {
	dir := t.TempDir()
	storage, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := storage.Save(context.Background(), "gone.pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := storage.Delete(context.Background(), "gone.pdf"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.pdf")); !os.IsNotExist(err) {
		t.Fatalf("expected object removed, stat err = %v", err)
	}
	if err := storage.Delete(context.Background(), "gone.pdf"); err != nil {
		t.Fatalf("deleting a missing object must not fail, got %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := storage.Open(context.Background(), "missing.pdf"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
