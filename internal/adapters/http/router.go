package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zipduck/subscription-assistant/internal/config"
	"github.com/zipduck/subscription-assistant/internal/core/domain"
	"github.com/zipduck/subscription-assistant/internal/core/ports"
	"github.com/zipduck/subscription-assistant/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg       config.Config
	uploader  ports.DocumentUploader
	reader    ports.DocumentReader
	checker   ports.EligibilityChecker
	exporter  ports.ReportExporter
	profiles  ports.ProfileManager
	metrics   *metrics.HTTPServerMetrics
	validator *openAPIValidator
}

func NewRouter(
	cfg config.Config,
	uploader ports.DocumentUploader,
	reader ports.DocumentReader,
	checker ports.EligibilityChecker,
	exporter ports.ReportExporter,
	profiles ports.ProfileManager,
	m *metrics.HTTPServerMetrics,
) (*Router, error) {
	validator, err := newOpenAPIValidator()
	if err != nil {
		return nil, err
	}
	return &Router{
		cfg:       cfg,
		uploader:  uploader,
		reader:    reader,
		checker:   checker,
		exporter:  exporter,
		profiles:  profiles,
		metrics:   m,
		validator: validator,
	}, nil
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.HandleFunc("/api/v1/pdf/upload", rt.uploadPdf)
	mux.HandleFunc("/api/v1/pdf/", rt.pdfSubresource)
	mux.HandleFunc("/api/v1/eligibility/", rt.eligibility)
	mux.HandleFunc("/api/v1/users/", rt.userSubresource)

	var handler http.Handler = mux
	handler = rt.validator.middleware(handler)
	handler = authMiddleware(rt.cfg.APIAuthToken, handler)
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, backpressureWait)
	handler = rateLimitMiddleware(rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, handler)
	handler = rt.metrics.Middleware(serviceName, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadPdf(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		rt.metrics.RecordUpload(serviceName, "rejected", 0)
		writeError(w, http.StatusBadRequest, "MISSING_FILE", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	userID := strings.TrimSpace(r.FormValue("userId"))
	if userID == "" {
		userID = strings.TrimSpace(r.Header.Get("X-User-Id"))
	}
	if userID == "" {
		rt.metrics.RecordUpload(serviceName, "rejected", 0)
		writeError(w, http.StatusBadRequest, "MISSING_USER", "userId is required")
		return
	}

	doc, err := rt.uploader.Upload(
		r.Context(),
		userID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		var rejected *domain.UploadRejectedError
		if errors.As(err, &rejected) {
			rt.metrics.RecordUpload(serviceName, "rejected", 0)
			writeValidationErrors(w, rejected.Result)
			return
		}
		rt.metrics.RecordUpload(serviceName, "error", 0)
		writeDomainError(w, err)
		return
	}

	rt.metrics.RecordUpload(serviceName, "accepted", doc.FileSize)
	writeJSON(w, http.StatusCreated, uploadAcceptedBody{
		PdfID:      doc.ID,
		FileName:   doc.FileName,
		Status:     doc.Status,
		UploadedAt: doc.UploadedAt,
	})
}

type uploadAcceptedBody struct {
	PdfID      string                  `json:"pdfId"`
	FileName   string                  `json:"fileName"`
	Status     domain.ProcessingStatus `json:"status"`
	UploadedAt time.Time               `json:"uploadedAt"`
}

// userSubresource handles /api/v1/users/{userId}/profile.
func (rt *Router) userSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/users/")
	userID, sub, _ := strings.Cut(rest, "/")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_USER", "user id is required")
		return
	}
	if sub != "profile" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown resource")
		return
	}

	switch r.Method {
	case http.MethodGet:
		rt.profileGet(w, r, userID)
	case http.MethodPut:
		rt.profilePut(w, r, userID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

func (rt *Router) profileGet(w http.ResponseWriter, r *http.Request, userID string) {
	profile, err := rt.profiles.Get(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (rt *Router) profilePut(w http.ResponseWriter, r *http.Request, userID string) {
	var profile domain.UserProfile
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be a json profile")
		return
	}
	profile.UserID = userID

	if err := rt.profiles.Save(r.Context(), &profile); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &profile)
}

func (rt *Router) pdfSubresource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/pdf/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "pdf id is required")
		return
	}

	switch sub {
	case "status":
		rt.pdfStatus(w, r, id)
	case "analysis":
		rt.pdfAnalysis(w, r, id)
	case "":
		rt.pdfByID(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown resource")
	}
}

func (rt *Router) pdfByID(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) pdfStatus(w http.ResponseWriter, r *http.Request, id string) {
	report, err := rt.reader.StatusFor(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rt.metrics.RecordStatusPoll(serviceName, string(report.Status))
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) pdfAnalysis(w http.ResponseWriter, r *http.Request, id string) {
	result, err := rt.reader.AnalysisFor(r.Context(), id)
	if err != nil {
		if domain.IsKind(err, domain.ErrAnalysisNotReady) {
			rt.metrics.RecordAnalysisFetch(serviceName, "not_ready")
			writeError(w, http.StatusConflict, "ANALYSIS_NOT_READY", "분석이 아직 완료되지 않았습니다.")
			return
		}
		rt.metrics.RecordAnalysisFetch(serviceName, "error")
		writeDomainError(w, err)
		return
	}
	rt.metrics.RecordAnalysisFetch(serviceName, "ok")
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) eligibility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/eligibility/")
	subscriptionID, sub, _ := strings.Cut(rest, "/")
	if subscriptionID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "subscription id is required")
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_USER", "userId query parameter is required")
		return
	}

	switch sub {
	case "":
		rt.eligibilityCheck(w, r, subscriptionID, userID)
	case "report":
		rt.eligibilityReport(w, r, subscriptionID, userID)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown resource")
	}
}

func (rt *Router) eligibilityCheck(w http.ResponseWriter, r *http.Request, subscriptionID, userID string) {
	result, err := rt.checker.Check(r.Context(), subscriptionID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rt.metrics.RecordEligibilityCheck(serviceName, result.IsEligible, result.MatchScore)

	groups := domain.GroupRequirements(result)
	writeJSON(w, http.StatusOK, struct {
		*domain.EligibilityResult
		Groups []domain.RequirementGroup `json:"requirementGroups"`
	}{result, groups})
}

func (rt *Router) eligibilityReport(w http.ResponseWriter, r *http.Request, subscriptionID, userID string) {
	content, fileName, err := rt.exporter.Export(r.Context(), subscriptionID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

func writeValidationErrors(w http.ResponseWriter, result domain.ValidationResult) {
	first := result.Errors[0]
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": errorBody{Code: string(first.Code), Message: first.Message},
		"validationErrors": result.Errors,
	})
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, code := errorStatusCode(err)
	writeError(w, status, code, err.Error())
}
