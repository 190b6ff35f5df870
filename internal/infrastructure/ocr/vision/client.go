package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
	"github.com/zipduck/subscription-assistant/internal/core/ports"
	"github.com/zipduck/subscription-assistant/internal/infrastructure/resilience"
)

// Client calls an external OCR service to recognize text in scanned
// announcement PDFs.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	maxPages   int
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model, apiKey string, timeout time.Duration, maxPages int, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if maxPages <= 0 {
		maxPages = 50
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		maxPages:   maxPages,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

type recognizeRequest struct {
	Model    string `json:"model"`
	FileName string `json:"fileName"`
	Document string `json:"document"`
	Language string `json:"language"`
	MaxPages int    `json:"maxPages"`
}

type recognizeResponse struct {
	Text     string   `json:"text"`
	Quality  string   `json:"quality"`
	Warnings []string `json:"warnings"`
}

func (c *Client) Recognize(ctx context.Context, r io.Reader, fileName string) (*ports.OCRResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	request := recognizeRequest{
		Model:    c.model,
		FileName: fileName,
		Document: base64.StdEncoding.EncodeToString(data),
		Language: "ko",
		MaxPages: c.maxPages,
	}

	var response recognizeResponse
	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/v1/recognize", request, &response, "recognize")
	}

	if c.executor != nil {
		err = c.executor.Execute(ctx, "ocr_recognize", call, classifyVisionError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("ocr recognize", err)
	}

	return &ports.OCRResult{
		Text:     strings.TrimSpace(response.Text),
		Quality:  qualityFrom(response.Quality),
		Warnings: response.Warnings,
	}, nil
}

func qualityFrom(raw string) domain.OCRQuality {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "HIGH":
		return domain.OCRQualityHigh
	case "MEDIUM":
		return domain.OCRQualityMedium
	default:
		return domain.OCRQualityLow
	}
}
