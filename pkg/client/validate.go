package client

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxFileBytes is the upload size ceiling (10 MiB), matching the server.
const MaxFileBytes = 10 * 1024 * 1024

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

// HasCode reports whether any recorded violation carries the code.
func (r ValidationResult) HasCode(code ValidationCode) bool {
	for _, v := range r.Errors {
		if v.Code == code {
			return true
		}
	}
	return false
}

// ValidateFile checks a candidate file before any network work. It is
// pure and reports every violation, not just the first.
func ValidateFile(fileName string, size int64, mimeType string) ValidationResult {
	var errs []ValidationError

	ext := strings.ToLower(filepath.Ext(fileName))
	if strings.ToLower(mimeType) != "application/pdf" && ext != ".pdf" {
		errs = append(errs, ValidationError{
			Code:    ValidationInvalidType,
			Message: "PDF 파일만 업로드할 수 있습니다.",
		})
	}

	if size > MaxFileBytes {
		errs = append(errs, ValidationError{
			Code:    ValidationTooLarge,
			Message: fmt.Sprintf("파일 크기는 %dMB를 초과할 수 없습니다.", MaxFileBytes/(1024*1024)),
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
