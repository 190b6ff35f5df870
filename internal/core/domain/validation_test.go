package domain

import "testing"

func hasCode(result ValidationResult, code ValidationCode) bool {
	for _, e := range result.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		size        int64
		contentType string
		valid       bool
		codes       []ValidationCode
	}{
		{"valid pdf", "announce.pdf", 2 * 1024 * 1024, "application/pdf", true, nil},
		{"extension only", "announce.pdf", 1024, "application/octet-stream", true, nil},
		{"empty file", "x.pdf", 0, "application/pdf", false, []ValidationCode{ValidationEmpty}},
		{"too large", "x.pdf", 15 * 1024 * 1024, "application/pdf", false, []ValidationCode{ValidationTooLarge}},
		{"wrong type", "x.txt", 1024 * 1024, "text/plain", false, []ValidationCode{ValidationInvalidType}},
		{"empty and wrong type", "x.txt", 0, "text/plain", false, []ValidationCode{ValidationInvalidType, ValidationEmpty}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateUpload(tt.fileName, tt.size, tt.contentType)
			if result.IsValid != tt.valid {
				t.Fatalf("IsValid = %v, want %v (errors: %+v)", result.IsValid, tt.valid, result.Errors)
			}
			for _, code := range tt.codes {
				if !hasCode(result, code) {
					t.Fatalf("missing error code %s in %+v", code, result.Errors)
				}
			}
			if tt.valid && len(result.Errors) != 0 {
				t.Fatalf("valid result must carry no errors, got %+v", result.Errors)
			}
		})
	}
}

func TestValidateUploadIsPure(t *testing.T) {
	a := ValidateUpload("x.pdf", 0, "application/pdf")
	b := ValidateUpload("x.pdf", 0, "application/pdf")
	if a.IsValid != b.IsValid || len(a.Errors) != len(b.Errors) {
		t.Fatalf("repeated validation diverged: %+v vs %+v", a, b)
	}
}
