package ports

import (
	"context"
	"io"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

// DocumentUploader is the inbound contract for document upload orchestration.
type DocumentUploader interface {
	Upload(ctx context.Context, userID, fileName, contentType string, size int64, body io.Reader) (*domain.PdfDocument, error)
}

// DocumentReader is the inbound read model for document state and results.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.PdfDocument, error)
	StatusFor(ctx context.Context, id string) (domain.StatusReport, error)
	AnalysisFor(ctx context.Context, id string) (*domain.AnalysisResult, error)
}

// DocumentAnalyzer is the inbound contract for asynchronous analysis.
type DocumentAnalyzer interface {
	AnalyzeByID(ctx context.Context, documentID string) error
}

// ProfileManager stores and reads the eligibility profile of a user.
type ProfileManager interface {
	Save(ctx context.Context, profile *domain.UserProfile) error
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// EligibilityChecker evaluates a user against a subscription.
type EligibilityChecker interface {
	Check(ctx context.Context, subscriptionID, userID string) (*domain.EligibilityResult, error)
}

// ReportExporter renders an eligibility result as a downloadable workbook.
type ReportExporter interface {
	Export(ctx context.Context, subscriptionID, userID string) ([]byte, string, error)
}
