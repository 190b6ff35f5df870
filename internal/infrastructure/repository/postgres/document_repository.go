package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS pdf_documents (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	file_name TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	file_size BIGINT NOT NULL,
	content_type TEXT NOT NULL,
	status TEXT NOT NULL,
	has_ocr BOOLEAN NOT NULL DEFAULT FALSE,
	ocr_quality TEXT NOT NULL DEFAULT 'NONE',
	page_count INTEGER NOT NULL DEFAULT 0,
	cache_key TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	uploaded_at TIMESTAMPTZ NOT NULL,
	processed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_pdf_documents_user ON pdf_documents(user_id);
CREATE INDEX IF NOT EXISTS idx_pdf_documents_status ON pdf_documents(status);
CREATE INDEX IF NOT EXISTS idx_pdf_documents_cache_key ON pdf_documents(cache_key);

CREATE TABLE IF NOT EXISTS analysis_results (
	pdf_id TEXT PRIMARY KEY REFERENCES pdf_documents(id) ON DELETE CASCADE,
	payload JSONB NOT NULL,
	analyzed_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS subscriptions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	payload JSONB NOT NULL,
	source_pdf_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_name ON subscriptions(name);

CREATE TABLE IF NOT EXISTS user_profiles (
	user_id TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.PdfDocument) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO pdf_documents (
	id, user_id, file_name, storage_path, file_size, content_type, status, has_ocr, ocr_quality, page_count, cache_key, error_message, uploaded_at, processed_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`,
		doc.ID, doc.UserID, doc.FileName, doc.StoragePath, doc.FileSize, doc.ContentType,
		string(doc.Status), doc.HasOCR, string(doc.OCRQuality), doc.PageCount, doc.CacheKey,
		doc.Error, doc.UploadedAt, doc.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pdf document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.PdfDocument, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, file_name, storage_path, file_size, content_type, status, has_ocr, ocr_quality, page_count, cache_key, error_message, uploaded_at, processed_at
FROM pdf_documents
WHERE id = $1
`, id)

	var doc domain.PdfDocument
	var status, quality string

	err := row.Scan(
		&doc.ID, &doc.UserID, &doc.FileName, &doc.StoragePath, &doc.FileSize, &doc.ContentType,
		&status, &doc.HasOCR, &quality, &doc.PageCount, &doc.CacheKey, &doc.Error,
		&doc.UploadedAt, &doc.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
		}
		return nil, fmt.Errorf("scan pdf document: %w", err)
	}

	doc.Status = domain.ProcessingStatus(status)
	doc.OCRQuality = domain.OCRQuality(quality)
	return &doc, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.ProcessingStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE pdf_documents
SET status = $2, error_message = $3
WHERE id = $1
`, id, string(status), errMessage)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireRow(res, id)
}

func (r *DocumentRepository) UpdateOCRInfo(ctx context.Context, id string, hasOCR bool, quality domain.OCRQuality, pageCount int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE pdf_documents
SET has_ocr = $2, ocr_quality = $3, page_count = $4
WHERE id = $1
`, id, hasOCR, string(quality), pageCount)
	if err != nil {
		return fmt.Errorf("update ocr info: %w", err)
	}
	return requireRow(res, id)
}

func (r *DocumentRepository) MarkProcessed(ctx context.Context, id string, status domain.ProcessingStatus) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE pdf_documents
SET status = $2, processed_at = $3
WHERE id = $1
`, id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark document processed: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	return nil
}
