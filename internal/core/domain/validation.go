package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// MaxUploadBytes is the upload size ceiling (10 MiB).
	MaxUploadBytes = 10 * 1024 * 1024
)

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
}

var allowedExtensions = map[string]bool{
	".pdf": true,
}

type ValidationCode string

const (
	ValidationInvalidType ValidationCode = "INVALID_TYPE"
	ValidationTooLarge    ValidationCode = "TOO_LARGE"
	ValidationEmpty       ValidationCode = "EMPTY"
)

type ValidationError struct {
	Code    ValidationCode `json:"code"`
	Message string         `json:"message"`
}

type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  []ValidationError `json:"errors"`
}

// UploadRejectedError carries the full validation verdict so callers can
// report every violation, not just the first.
type UploadRejectedError struct {
	Result ValidationResult
}

func (e *UploadRejectedError) Error() string {
	if len(e.Result.Errors) == 0 {
		return "upload rejected"
	}
	codes := make([]string, 0, len(e.Result.Errors))
	for _, v := range e.Result.Errors {
		codes = append(codes, string(v.Code))
	}
	return "upload rejected: " + strings.Join(codes, ",")
}

func (e *UploadRejectedError) Unwrap() error { return ErrInvalidInput }

// ValidateUpload checks a candidate file before any network or storage
// work. It is pure: the same inputs always produce the same result, and
// multiple violations are reported together.
func ValidateUpload(fileName string, size int64, contentType string) ValidationResult {
	var errs []ValidationError

	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedContentTypes[strings.ToLower(contentType)] && !allowedExtensions[ext] {
		errs = append(errs, ValidationError{
			Code:    ValidationInvalidType,
			Message: "PDF 파일만 업로드할 수 있습니다.",
		})
	}

	if size > MaxUploadBytes {
		errs = append(errs, ValidationError{
			Code:    ValidationTooLarge,
			Message: fmt.Sprintf("파일 크기는 %dMB를 초과할 수 없습니다.", MaxUploadBytes/(1024*1024)),
		})
	}

	if size == 0 {
		errs = append(errs, ValidationError{
			Code:    ValidationEmpty,
			Message: "빈 파일은 업로드할 수 없습니다.",
		})
	}

	return ValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}
