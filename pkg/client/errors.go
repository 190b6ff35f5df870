package client

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnauthorized is returned when the server answers 401. The stored
// token has already been cleared by the time the caller sees it.
var ErrUnauthorized = errors.New("client: unauthorized")

// APIError is a structured 4xx/5xx payload from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d %s", e.StatusCode, e.Code)
}

// ValidationFailedError is returned by Upload when the file fails the
// client-side checks before any network call.
type ValidationFailedError struct {
	Result ValidationResult
}

func (e *ValidationFailedError) Error() string {
	codes := make([]string, 0, len(e.Result.Errors))
	for _, v := range e.Result.Errors {
		codes = append(codes, string(v.Code))
	}
	return "file validation failed: " + strings.Join(codes, ",")
}

// ProcessingFailedError is a server-reported FAILED terminal state.
// Retrying requires a new upload, processing is not resumable.
type ProcessingFailedError struct {
	PdfID   string
	Message string
}

func (e *ProcessingFailedError) Error() string {
	return fmt.Sprintf("processing failed for %s: %s", e.PdfID, e.Message)
}

// PollTimeoutError is a client-side bound on total polling time. The
// server may still be processing; this is distinct from a server FAILED.
type PollTimeoutError struct {
	PdfID   string
	Elapsed time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("polling for %s timed out after %s", e.PdfID, e.Elapsed)
}

// AnalysisFetchError means the document finished processing but the
// result could not be retrieved. Retryable without re-uploading.
type AnalysisFetchError struct {
	PdfID string
	Err   error
}

func (e *AnalysisFetchError) Error() string {
	return fmt.Sprintf("fetch analysis for %s: %v", e.PdfID, e.Err)
}

func (e *AnalysisFetchError) Unwrap() error { return e.Err }
