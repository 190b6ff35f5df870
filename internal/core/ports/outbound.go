package ports

import (
	"context"
	"io"
	"time"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.PdfDocument) error
	GetByID(ctx context.Context, id string) (*domain.PdfDocument, error)
	UpdateStatus(ctx context.Context, id string, status domain.ProcessingStatus, errMessage string) error
	UpdateOCRInfo(ctx context.Context, id string, hasOCR bool, quality domain.OCRQuality, pageCount int) error
	MarkProcessed(ctx context.Context, id string, status domain.ProcessingStatus) error
}

// AnalysisRepository persists the immutable analysis results.
type AnalysisRepository interface {
	Save(ctx context.Context, result *domain.AnalysisResult) error
	GetByPdfID(ctx context.Context, pdfID string) (*domain.AnalysisResult, error)
}

// SubscriptionRepository persists housing offers.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	GetByID(ctx context.Context, id string) (*domain.Subscription, error)
	FindByName(ctx context.Context, name string) (*domain.Subscription, error)
	AttachSourcePdf(ctx context.Context, id, pdfID string) error
}

// ProfileRepository persists and reads user eligibility profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error)
	Upsert(ctx context.Context, profile *domain.UserProfile) error
}

// ObjectStorage stores uploaded source files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes document-uploaded events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// AnalysisCache stores finished analysis results keyed by content hash.
type AnalysisCache interface {
	Get(ctx context.Context, cacheKey string) (*domain.AnalysisResult, bool, error)
	Set(ctx context.Context, cacheKey string, result *domain.AnalysisResult) error
	ExtendTTL(ctx context.Context, cacheKey string) error
}

// Extraction is what the text extractor learns about a stored document.
type Extraction struct {
	Text      string
	PageCount int
	NeedsOCR  bool
}

// TextExtractor pulls text from a stored document and decides whether
// the document needs OCR (scanned, image-heavy, no text layer).
type TextExtractor interface {
	Extract(ctx context.Context, r io.Reader, size int64) (Extraction, error)
}

// OCRResult carries recognized text plus a quality verdict.
type OCRResult struct {
	Text     string
	Quality  domain.OCRQuality
	Warnings []string
}

// OCRService recognizes text in scanned documents via an external engine.
type OCRService interface {
	Recognize(ctx context.Context, r io.Reader, fileName string) (*OCRResult, error)
}

// AnnouncementParser turns raw announcement text into structured fields.
type AnnouncementParser interface {
	Parse(ctx context.Context, text string) (domain.ExtractedSubscription, error)
}

// EligibilityEvaluator scores a profile against a subscription.
type EligibilityEvaluator interface {
	Evaluate(profile *domain.UserProfile, sub *domain.Subscription) *domain.EligibilityResult
}

// PipelineObserver receives measurements from the analysis pipeline.
// Implementations must be safe for concurrent use.
type PipelineObserver interface {
	QueueLag(lag time.Duration)
	OCRRun(quality domain.OCRQuality)
	CacheLookup(hit bool)
}

// ReportWriter renders an eligibility result into a binary report.
type ReportWriter interface {
	Write(result *domain.EligibilityResult, groups []domain.RequirementGroup) ([]byte, error)
}
