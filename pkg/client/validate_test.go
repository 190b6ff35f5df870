package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFileAccepts(t *testing.T) {
	result := ValidateFile("announcement.pdf", 2*1024*1024, "application/pdf")
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidateFileEmpty(t *testing.T) {
	result := ValidateFile("x.pdf", 0, "application/pdf")
	require.False(t, result.IsValid)
	assert.True(t, result.HasCode(ValidationEmpty))
}

func TestValidateFileTooLarge(t *testing.T) {
	result := ValidateFile("x.pdf", 15*1024*1024, "application/pdf")
	require.False(t, result.IsValid)
	assert.True(t, result.HasCode(ValidationTooLarge))
}

func TestValidateFileWrongType(t *testing.T) {
	result := ValidateFile("x.txt", 1024*1024, "text/plain")
	require.False(t, result.IsValid)
	assert.True(t, result.HasCode(ValidationInvalidType))
}

func TestValidateFileExtensionAloneSuffices(t *testing.T) {
	result := ValidateFile("x.pdf", 1024, "application/octet-stream")
	assert.True(t, result.IsValid)
}

func TestValidateFileReportsAllViolations(t *testing.T) {
	result := ValidateFile("x.txt", 0, "text/plain")
	require.False(t, result.IsValid)
	assert.True(t, result.HasCode(ValidationInvalidType))
	assert.True(t, result.HasCode(ValidationEmpty))
	assert.Len(t, result.Errors, 2)
}

func TestValidateFileIsDeterministic(t *testing.T) {
	a := ValidateFile("x.txt", 0, "text/plain")
	b := ValidateFile("x.txt", 0, "text/plain")
	assert.Equal(t, a, b)
}
