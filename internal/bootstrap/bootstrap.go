package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zipduck/subscription-assistant/internal/config"
	"github.com/zipduck/subscription-assistant/internal/core/eligibility"
	"github.com/zipduck/subscription-assistant/internal/core/ports"
	"github.com/zipduck/subscription-assistant/internal/core/usecase"
	"github.com/zipduck/subscription-assistant/internal/infrastructure/cache/redis"
	"github.com/zipduck/subscription-assistant/internal/infrastructure/extractor/pdftext"
	"github.com/zipduck/subscription-assistant/internal/infrastructure/ocr/vision"
	"github.com/zipduck/subscription-assistant/internal/infrastructure/parser/announce"
	"github.com/zipduck/subscription-assistant/internal/infrastructure/queue/nats"
	"github.com/zipduck/subscription-assistant/internal/infrastructure/report/xlsx"
	"github.com/zipduck/subscription-assistant/internal/infrastructure/repository/postgres"
	"github.com/zipduck/subscription-assistant/internal/infrastructure/resilience"
	"github.com/zipduck/subscription-assistant/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue

	UploadUC      ports.DocumentUploader
	QueryUC       ports.DocumentReader
	AnalyzeUC     ports.DocumentAnalyzer
	EligibilityUC ports.EligibilityChecker
	ReportUC      ports.ReportExporter
	ProfileUC     ports.ProfileManager

	analyze *usecase.AnalyzeDocumentUseCase
	closeFn func()
}

// SetPipelineObserver attaches pipeline instrumentation to the
// analysis use case. Called by the worker after its metrics exist.
func (a *App) SetPipelineObserver(o ports.PipelineObserver) {
	a.analyze.SetObserver(o)
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	docs := postgres.NewDocumentRepository(db)
	if err := docs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	analyses := postgres.NewAnalysisRepository(db)
	subscriptions := postgres.NewSubscriptionRepository(db)
	profiles := postgres.NewProfileRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{})

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	cache, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, time.Duration(cfg.CacheTTLHours)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("init analysis cache: %w", err)
	}

	extractor := pdftext.New(cfg.OCRTextThreshold)
	ocrClient := vision.New(cfg.VisionURL, cfg.VisionModel, cfg.VisionAPIKey,
		time.Duration(cfg.VisionTimeout)*time.Second, cfg.VisionMaxPages, executor)
	parser := announce.New()

	rules, err := eligibility.LoadRuleSet(cfg.EligibilityRulesPath)
	if err != nil {
		return nil, fmt.Errorf("load eligibility rules: %w", err)
	}
	calculator := eligibility.NewCalculator(rules)

	uploadUC := usecase.NewUploadDocumentUseCase(docs, storage, queue)
	queryUC := usecase.NewDocumentQueryUseCase(docs, analyses)
	analyzeUC := usecase.NewAnalyzeDocumentUseCase(
		docs, analyses, subscriptions, profiles,
		storage, cache, extractor, ocrClient, parser, calculator, logger,
	)
	eligibilityUC := usecase.NewEligibilityUseCase(subscriptions, profiles, calculator)
	reportUC := usecase.NewExportReportUseCase(eligibilityUC, xlsx.New())
	profileUC := usecase.NewProfileUseCase(profiles)

	return &App{
		Config: cfg,
		Queue:  queue,

		UploadUC:      uploadUC,
		QueryUC:       queryUC,
		AnalyzeUC:     analyzeUC,
		EligibilityUC: eligibilityUC,
		ReportUC:      reportUC,
		ProfileUC:     profileUC,

		analyze: analyzeUC,
		closeFn: func() {
			queue.Close()
			_ = cache.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
