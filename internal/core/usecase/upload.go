package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
	"github.com/zipduck/subscription-assistant/internal/core/ports"
)

type UploadDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewUploadDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *UploadDocumentUseCase {
	return &UploadDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

// Upload validates the candidate file, stores it while hashing the
// content for duplicate detection, creates the PENDING tracking record
// and hands the document to the worker queue.
func (uc *UploadDocumentUseCase) Upload(
	ctx context.Context,
	userID, fileName, contentType string,
	size int64,
	body io.Reader,
) (*domain.PdfDocument, error) {
	validation := domain.ValidateUpload(fileName, size, contentType)
	if !validation.IsValid {
		return nil, &domain.UploadRejectedError{Result: validation}
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFileName(fileName))

	hasher := sha256.New()
	written, err := uc.storage.Save(ctx, storageKey, io.TeeReader(body, hasher))
	if err != nil {
		return nil, fmt.Errorf("save uploaded file: %w", err)
	}
	if written == 0 {
		_ = uc.storage.Delete(ctx, storageKey)
		return nil, &domain.UploadRejectedError{Result: domain.ValidationResult{
			Errors: []domain.ValidationError{{
				Code:    domain.ValidationEmpty,
				Message: "빈 파일은 업로드할 수 없습니다.",
			}},
		}}
	}

	doc := &domain.PdfDocument{
		ID:          id,
		UserID:      userID,
		FileName:    fileName,
		StoragePath: storageKey,
		FileSize:    written,
		ContentType: contentType,
		Status:      domain.StatusPending,
		CacheKey:    hex.EncodeToString(hasher.Sum(nil)),
		UploadedAt:  time.Now().UTC(),
	}

	// On failure past this point the stored object is removed so a
	// rejected upload leaves no state behind.
	if err := uc.repo.Create(ctx, doc); err != nil {
		_ = uc.storage.Delete(ctx, storageKey)
		return nil, fmt.Errorf("create document record: %w", err)
	}

	if err := uc.queue.PublishDocumentUploaded(ctx, doc.ID); err != nil {
		_ = uc.storage.Delete(ctx, storageKey)
		return nil, fmt.Errorf("publish upload event: %w", err)
	}

	return doc, nil
}

func sanitizeFileName(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.pdf"
	}
	return base
}
