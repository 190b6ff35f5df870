package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

// AnalysisRepository stores finished analyses as JSONB documents. The
// payload is written once per pdf and replaced on re-analysis.
type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) Save(ctx context.Context, result *domain.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO analysis_results (pdf_id, payload, analyzed_at)
VALUES ($1, $2, $3)
ON CONFLICT (pdf_id) DO UPDATE SET payload = EXCLUDED.payload, analyzed_at = EXCLUDED.analyzed_at
`, result.PdfID, payload, result.AnalyzedAt)
	if err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) GetByPdfID(ctx context.Context, pdfID string) (*domain.AnalysisResult, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT payload FROM analysis_results WHERE pdf_id = $1
`, pdfID)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: analysis for %s", domain.ErrDocumentNotFound, pdfID)
		}
		return nil, fmt.Errorf("scan analysis: %w", err)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return &result, nil
}
