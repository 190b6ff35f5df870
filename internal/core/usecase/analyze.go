package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
	"github.com/zipduck/subscription-assistant/internal/core/ports"
)

// AnalyzeDocumentUseCase runs the worker-side pipeline for an uploaded
// announcement: text extraction, optional OCR, announcement parsing,
// eligibility evaluation and result persistence.
type AnalyzeDocumentUseCase struct {
	docs          ports.DocumentRepository
	analyses      ports.AnalysisRepository
	subscriptions ports.SubscriptionRepository
	profiles      ports.ProfileRepository
	storage       ports.ObjectStorage
	cache         ports.AnalysisCache
	extractor     ports.TextExtractor
	ocr           ports.OCRService
	parser        ports.AnnouncementParser
	evaluator     ports.EligibilityEvaluator
	logger        *slog.Logger
	observer      ports.PipelineObserver
}

func NewAnalyzeDocumentUseCase(
	docs ports.DocumentRepository,
	analyses ports.AnalysisRepository,
	subscriptions ports.SubscriptionRepository,
	profiles ports.ProfileRepository,
	storage ports.ObjectStorage,
	cache ports.AnalysisCache,
	extractor ports.TextExtractor,
	ocr ports.OCRService,
	parser ports.AnnouncementParser,
	evaluator ports.EligibilityEvaluator,
	logger *slog.Logger,
) *AnalyzeDocumentUseCase {
	return &AnalyzeDocumentUseCase{
		docs:          docs,
		analyses:      analyses,
		subscriptions: subscriptions,
		profiles:      profiles,
		storage:       storage,
		cache:         cache,
		extractor:     extractor,
		ocr:           ocr,
		parser:        parser,
		evaluator:     evaluator,
		logger:        logger,
	}
}

// SetObserver attaches a pipeline observer. A nil observer disables
// the measurements.
func (uc *AnalyzeDocumentUseCase) SetObserver(o ports.PipelineObserver) {
	uc.observer = o
}

func (uc *AnalyzeDocumentUseCase) AnalyzeByID(ctx context.Context, pdfID string) error {
	doc, err := uc.docs.GetByID(ctx, pdfID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", pdfID, err)
	}
	if doc.Status.IsTerminal() {
		uc.logger.Info("document already in terminal state, skipping",
			"pdf_id", pdfID, "status", doc.Status)
		return nil
	}

	started := time.Now()
	if uc.observer != nil && !doc.UploadedAt.IsZero() {
		uc.observer.QueueLag(started.Sub(doc.UploadedAt))
	}
	result, err := uc.process(ctx, doc, started)
	if err != nil {
		uc.markFailed(ctx, doc.ID, err)
		return err
	}

	if err := uc.analyses.Save(ctx, result); err != nil {
		uc.markFailed(ctx, doc.ID, err)
		return fmt.Errorf("save analysis for %s: %w", doc.ID, err)
	}
	if uc.cache != nil && doc.CacheKey != "" {
		if err := uc.cache.Set(ctx, doc.CacheKey, result); err != nil {
			uc.logger.Warn("analysis cache write failed", "pdf_id", doc.ID, "error", err)
		}
	}
	if err := uc.docs.MarkProcessed(ctx, doc.ID, domain.StatusCompleted); err != nil {
		return fmt.Errorf("mark processed %s: %w", doc.ID, err)
	}

	uc.logger.Info("analysis completed",
		"pdf_id", doc.ID,
		"outcome", result.Outcome,
		"duration_ms", time.Since(started).Milliseconds())
	return nil
}

func (uc *AnalyzeDocumentUseCase) process(
	ctx context.Context,
	doc *domain.PdfDocument,
	started time.Time,
) (*domain.AnalysisResult, error) {
	if err := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusProcessing, ""); err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}

	if uc.cache != nil && doc.CacheKey != "" {
		cached := uc.cachedResult(ctx, doc)
		if uc.observer != nil {
			uc.observer.CacheLookup(cached != nil)
		}
		if cached != nil {
			uc.logger.Info("analysis cache hit", "pdf_id", doc.ID, "cache_key", doc.CacheKey)
			return cached, nil
		}
	}

	reader, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	defer reader.Close()

	extraction, err := uc.extractor.Extract(ctx, reader, doc.FileSize)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	text := extraction.Text
	hasOCR := false
	ocrQuality := domain.OCRQualityNone
	var ocrWarnings []string

	if extraction.NeedsOCR {
		if err := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusOCRInProgress, ""); err != nil {
			return nil, fmt.Errorf("mark ocr in progress: %w", err)
		}
		ocrRes, err := uc.recognize(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("ocr: %w", err)
		}
		hasOCR = true
		ocrQuality = ocrRes.Quality
		ocrWarnings = ocrRes.Warnings
		if uc.observer != nil {
			uc.observer.OCRRun(ocrQuality)
		}
		if strings.TrimSpace(ocrRes.Text) != "" {
			text = ocrRes.Text
		}
		if err := uc.docs.UpdateOCRInfo(ctx, doc.ID, true, ocrQuality, extraction.PageCount); err != nil {
			return nil, fmt.Errorf("record ocr info: %w", err)
		}
	} else {
		if err := uc.docs.UpdateOCRInfo(ctx, doc.ID, false, domain.OCRQualityNone, extraction.PageCount); err != nil {
			return nil, fmt.Errorf("record page count: %w", err)
		}
	}

	if err := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusAnalyzing, ""); err != nil {
		return nil, fmt.Errorf("mark analyzing: %w", err)
	}

	extracted, err := uc.parser.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parse announcement: %w", err)
	}

	sub := uc.persistSubscription(ctx, doc, extracted)

	var eligibility *domain.EligibilityResult
	profile, err := uc.profiles.GetByUserID(ctx, doc.UserID)
	switch {
	case err == nil:
		eligibility = uc.evaluator.Evaluate(profile, sub)
	case errors.Is(err, domain.ErrProfileNotFound):
		uc.logger.Info("no user profile, skipping eligibility", "user_id", doc.UserID)
	default:
		return nil, fmt.Errorf("load profile: %w", err)
	}

	result := &domain.AnalysisResult{
		PdfID:                 doc.ID,
		Outcome:               outcomeFor(extracted, hasOCR, ocrQuality),
		TextConfidence:        textConfidence(hasOCR, ocrQuality),
		HasOCR:                hasOCR,
		OCRQuality:            ocrQuality,
		OCRWarnings:           ocrWarnings,
		ExtractedSubscription: extracted,
		Eligibility:           eligibility,
		ProcessingTimeMs:      time.Since(started).Milliseconds(),
		AnalyzedAt:            time.Now().UTC(),
	}
	return result, nil
}

func (uc *AnalyzeDocumentUseCase) cachedResult(ctx context.Context, doc *domain.PdfDocument) *domain.AnalysisResult {
	cached, ok, err := uc.cache.Get(ctx, doc.CacheKey)
	if err != nil {
		uc.logger.Warn("analysis cache read failed", "pdf_id", doc.ID, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	if err := uc.cache.ExtendTTL(ctx, doc.CacheKey); err != nil {
		uc.logger.Warn("analysis cache ttl refresh failed", "pdf_id", doc.ID, "error", err)
	}
	copied := *cached
	copied.PdfID = doc.ID
	copied.AnalyzedAt = time.Now().UTC()
	return &copied
}

func (uc *AnalyzeDocumentUseCase) recognize(ctx context.Context, doc *domain.PdfDocument) (*ports.OCRResult, error) {
	reader, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open file for ocr: %w", err)
	}
	defer reader.Close()
	return uc.ocr.Recognize(ctx, reader, doc.FileName)
}

// persistSubscription stores the parsed announcement, reusing an
// existing record when one with the same name already exists.
func (uc *AnalyzeDocumentUseCase) persistSubscription(
	ctx context.Context,
	doc *domain.PdfDocument,
	extracted domain.ExtractedSubscription,
) *domain.Subscription {
	sub := subscriptionFrom(extracted)
	sub.ID = uuid.NewString()
	sub.SourcePdfID = doc.ID
	sub.CreatedAt = time.Now().UTC()
	sub.UpdatedAt = sub.CreatedAt

	if existing, err := uc.subscriptions.FindByName(ctx, sub.Name); err == nil && existing != nil {
		if err := uc.subscriptions.AttachSourcePdf(ctx, existing.ID, doc.ID); err != nil {
			uc.logger.Warn("attach source pdf failed", "subscription_id", existing.ID, "error", err)
		}
		existing.SourcePdfID = doc.ID
		return existing
	}

	if err := uc.subscriptions.Create(ctx, sub); err != nil {
		uc.logger.Warn("subscription create failed", "pdf_id", doc.ID, "error", err)
	}
	return sub
}

func (uc *AnalyzeDocumentUseCase) markFailed(ctx context.Context, pdfID string, cause error) {
	msg := cause.Error()
	if len(msg) > 500 {
		msg = msg[:500]
	}
	if err := uc.docs.UpdateStatus(ctx, pdfID, domain.StatusFailed, msg); err != nil {
		uc.logger.Error("mark failed did not persist", "pdf_id", pdfID, "error", err)
	}
}

func outcomeFor(extracted domain.ExtractedSubscription, hasOCR bool, quality domain.OCRQuality) domain.AnalysisOutcome {
	if extracted.Name == "" && len(extracted.Requirements) == 0 {
		return domain.AnalysisPartial
	}
	if hasOCR && quality == domain.OCRQualityLow {
		return domain.AnalysisPartial
	}
	return domain.AnalysisSuccess
}

func textConfidence(hasOCR bool, quality domain.OCRQuality) int {
	if !hasOCR {
		return 95
	}
	switch quality {
	case domain.OCRQualityHigh:
		return 85
	case domain.OCRQualityMedium:
		return 70
	default:
		return 50
	}
}

// subscriptionFrom converts a parsed announcement into the persisted
// subscription model, mapping extracted requirement values onto bounds
// where the value parses numerically.
func subscriptionFrom(e domain.ExtractedSubscription) *domain.Subscription {
	sub := &domain.Subscription{
		Name:       e.Name,
		Location:   e.Location,
		Developer:  e.Developer,
		SupplyType: e.SupplyType,
		TotalUnits: e.TotalUnits,
		MinPrice:   e.MinPrice,
		MaxPrice:   e.MaxPrice,
	}
	for _, req := range e.Requirements {
		switch req.Category {
		case domain.CategoryIncome:
			if v, ok := parseInt64(req.Value); ok {
				sub.MaxIncome = &v
			}
		case domain.CategoryAsset:
			if v, ok := parseInt64(req.Value); ok {
				sub.MaxAssets = &v
			}
		case domain.CategoryAge:
			if v, ok := parseInt(req.Value); ok {
				sub.MinAge = &v
			}
		case domain.CategorySubscription:
			if v, ok := parseInt(req.Value); ok {
				sub.MinSubscriptionMo = &v
			}
		case domain.CategoryHousing:
			if v, ok := parseInt(req.Value); ok {
				sub.MaxHousingOwned = &v
			}
		case domain.CategoryHousehold:
			if v, ok := parseInt(req.Value); ok {
				sub.MinHouseholdMembers = &v
			}
		}
	}
	return sub
}

func parseInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseInt64(s string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
