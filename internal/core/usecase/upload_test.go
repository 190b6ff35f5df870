package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

type uploadRepoFake struct {
	created *domain.PdfDocument
	err     error
}

func (f *uploadRepoFake) Create(_ context.Context, doc *domain.PdfDocument) error {
	if f.err != nil {
		return f.err
	}
	copyDoc := *doc
	f.created = &copyDoc
	return nil
}

func (f *uploadRepoFake) GetByID(context.Context, string) (*domain.PdfDocument, error) {
	return nil, errors.New("not implemented")
}
func (f *uploadRepoFake) UpdateStatus(context.Context, string, domain.ProcessingStatus, string) error {
	return errors.New("not implemented")
}
func (f *uploadRepoFake) UpdateOCRInfo(context.Context, string, bool, domain.OCRQuality, int) error {
	return errors.New("not implemented")
}
func (f *uploadRepoFake) MarkProcessed(context.Context, string, domain.ProcessingStatus) error {
	return errors.New("not implemented")
}

type uploadStorageFake struct {
	savedKey   string
	savedBody  string
	deletedKey string
	err        error
}

func (f *uploadStorageFake) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return int64(len(raw)), nil
}

func (f *uploadStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *uploadStorageFake) Delete(_ context.Context, key string) error {
	f.deletedKey = key
	return nil
}

type uploadQueueFake struct {
	documentID string
	err        error
}

func (f *uploadQueueFake) PublishDocumentUploaded(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.documentID = documentID
	return nil
}

func (f *uploadQueueFake) SubscribeDocumentUploaded(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func TestUploadSuccess(t *testing.T) {
	repo := &uploadRepoFake{}
	storage := &uploadStorageFake{}
	queue := &uploadQueueFake{}
	uc := NewUploadDocumentUseCase(repo, storage, queue)

	body := bytes.NewBufferString("%PDF-1.7 fake content")
	doc, err := uc.Upload(context.Background(), "user-1", "공고문 2026.pdf", "application/pdf", int64(body.Len()), body)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatalf("expected document id")
	}
	if doc.Status != domain.StatusPending {
		t.Fatalf("expected status pending, got %s", doc.Status)
	}
	if doc.CacheKey == "" {
		t.Fatalf("expected content hash")
	}
	if repo.created == nil {
		t.Fatalf("expected repo.Create call")
	}
	if queue.documentID != doc.ID {
		t.Fatalf("expected queued doc id %s, got %s", doc.ID, queue.documentID)
	}
	if !strings.HasSuffix(storage.savedKey, ".pdf") {
		t.Fatalf("expected sanitized key suffix, got %s", storage.savedKey)
	}
	if storage.savedBody != "%PDF-1.7 fake content" {
		t.Fatalf("unexpected saved body %q", storage.savedBody)
	}
}

func TestUploadSameBodySameHash(t *testing.T) {
	uc := NewUploadDocumentUseCase(&uploadRepoFake{}, &uploadStorageFake{}, &uploadQueueFake{})

	first, err := uc.Upload(context.Background(), "user-1", "a.pdf", "application/pdf", 5, bytes.NewBufferString("hello"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	second, err := uc.Upload(context.Background(), "user-2", "b.pdf", "application/pdf", 5, bytes.NewBufferString("hello"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if first.CacheKey != second.CacheKey {
		t.Fatalf("expected identical cache keys, got %s and %s", first.CacheKey, second.CacheKey)
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct document ids")
	}
}

func TestUploadRejectsInvalidFile(t *testing.T) {
	storage := &uploadStorageFake{}
	uc := NewUploadDocumentUseCase(&uploadRepoFake{}, storage, &uploadQueueFake{})

	_, err := uc.Upload(context.Background(), "user-1", "notes.txt", "text/plain", 10, bytes.NewBufferString("0123456789"))
	if err == nil {
		t.Fatalf("expected error")
	}
	var rejected *domain.UploadRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected UploadRejectedError, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput chain, got %v", err)
	}
	if storage.savedKey != "" {
		t.Fatalf("rejected upload must not hit storage, saved %s", storage.savedKey)
	}
}

func TestUploadQueueError(t *testing.T) {
	storage := &uploadStorageFake{}
	queue := &uploadQueueFake{err: errors.New("queue down")}
	uc := NewUploadDocumentUseCase(&uploadRepoFake{}, storage, queue)

	_, err := uc.Upload(context.Background(), "user-1", "a.pdf", "application/pdf", 5, bytes.NewBufferString("hello"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "publish upload event") {
		t.Fatalf("expected publish error, got %v", err)
	}
	if storage.deletedKey != storage.savedKey {
		t.Fatalf("expected stored object removed after publish failure, deleted %q saved %q",
			storage.deletedKey, storage.savedKey)
	}
}

func TestUploadCreateErrorRemovesStoredObject(t *testing.T) {
	storage := &uploadStorageFake{}
	uc := NewUploadDocumentUseCase(&uploadRepoFake{err: errors.New("db down")}, storage, &uploadQueueFake{})

	_, err := uc.Upload(context.Background(), "user-1", "a.pdf", "application/pdf", 5, bytes.NewBufferString("hello"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if storage.deletedKey == "" || storage.deletedKey != storage.savedKey {
		t.Fatalf("expected stored object removed after create failure, deleted %q saved %q",
			storage.deletedKey, storage.savedKey)
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"report 1.pdf":    "report_1.pdf",
		"../../evil.pdf":  "evil.pdf",
		"공고문.pdf":         "___.pdf",
		"clean-name.pdf":  "clean-name.pdf",
		"":                "document.pdf",
	}
	for in, want := range cases {
		if got := sanitizeFileName(in); got != want {
			t.Fatalf("sanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
