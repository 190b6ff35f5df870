package httpadapter

import (
	"net/http"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

// errorStatusCode maps a domain error to the HTTP status and the
// machine-readable error code exposed to clients.
func errorStatusCode(err error) (int, string) {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "DOCUMENT_NOT_FOUND"
	case domain.IsKind(err, domain.ErrSubscriptionNotFound):
		return http.StatusNotFound, "SUBSCRIPTION_NOT_FOUND"
	case domain.IsKind(err, domain.ErrProfileNotFound):
		return http.StatusNotFound, "PROFILE_NOT_FOUND"
	case domain.IsKind(err, domain.ErrAnalysisNotReady):
		return http.StatusConflict, "ANALYSIS_NOT_READY"
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable, "TEMPORARY_FAILURE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
