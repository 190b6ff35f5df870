package usecase

import (
	"context"
	"fmt"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
	"github.com/zipduck/subscription-assistant/internal/core/ports"
)

// DocumentQueryUseCase serves the read side of the processing flow:
// status polling and analysis retrieval.
type DocumentQueryUseCase struct {
	docs     ports.DocumentRepository
	analyses ports.AnalysisRepository
}

func NewDocumentQueryUseCase(
	docs ports.DocumentRepository,
	analyses ports.AnalysisRepository,
) *DocumentQueryUseCase {
	return &DocumentQueryUseCase{docs: docs, analyses: analyses}
}

func (uc *DocumentQueryUseCase) GetByID(ctx context.Context, pdfID string) (*domain.PdfDocument, error) {
	return uc.docs.GetByID(ctx, pdfID)
}

func (uc *DocumentQueryUseCase) StatusFor(ctx context.Context, pdfID string) (domain.StatusReport, error) {
	doc, err := uc.docs.GetByID(ctx, pdfID)
	if err != nil {
		return domain.StatusReport{}, err
	}
	return domain.ReportFor(doc), nil
}

// AnalysisFor returns the stored analysis only once processing has
// finished. Requests arriving earlier get ErrAnalysisNotReady so the
// caller keeps polling the status endpoint instead.
func (uc *DocumentQueryUseCase) AnalysisFor(ctx context.Context, pdfID string) (*domain.AnalysisResult, error) {
	doc, err := uc.docs.GetByID(ctx, pdfID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.StatusCompleted {
		return nil, fmt.Errorf("document %s is %s: %w", pdfID, doc.Status, domain.ErrAnalysisNotReady)
	}
	return uc.analyses.GetByPdfID(ctx, pdfID)
}
