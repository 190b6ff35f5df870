package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zipduck/subscription-assistant/internal/bootstrap"
	"github.com/zipduck/subscription-assistant/internal/config"
	"github.com/zipduck/subscription-assistant/internal/core/domain"
	"github.com/zipduck/subscription-assistant/internal/observability/logging"
	"github.com/zipduck/subscription-assistant/internal/observability/metrics"
)

// pipelineObserver feeds pipeline measurements into prometheus.
type pipelineObserver struct {
	metrics *metrics.WorkerMetrics
	service string
}

func (o pipelineObserver) QueueLag(lag time.Duration) {
	o.metrics.ObserveQueueLag(o.service, lag)
}

func (o pipelineObserver) OCRRun(quality domain.OCRQuality) {
	o.metrics.RecordOCR(o.service, string(quality))
}

func (o pipelineObserver) CacheLookup(hit bool) {
	o.metrics.RecordCacheLookup(o.service, hit)
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.Setup("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	app.SetPipelineObserver(pipelineObserver{metrics: workerMetrics, service: "worker"})
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentUploaded(ctx, func(handlerCtx context.Context, pdfID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		workerMetrics.StartDocument()
		started := time.Now()
		processErr := app.AnalyzeUC.AnalyzeByID(processCtx, pdfID)
		workerMetrics.FinishDocument("worker", time.Since(started), processErr)
		return processErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
