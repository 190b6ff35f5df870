package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

func TestClassifyConnectionErrorsAreRetryable(t *testing.T) {
	for _, err := range []error{nats.ErrNoServers, nats.ErrTimeout, nats.ErrConnectionClosed, nats.ErrDisconnected} {
		class := classifyNATSError(err)
		if !class.Retryable || !class.RecordFailure {
			t.Fatalf("expected %v retryable+recorded, got %+v", err, class)
		}
	}
}

func TestClassifyContextCancelNotRetryable(t *testing.T) {
	class := classifyNATSError(context.Canceled)
	if class.Retryable || class.RecordFailure {
		t.Fatalf("cancelled context must not retry or trip the breaker, got %+v", class)
	}
}

func TestWrapTemporaryOnlyForRetryable(t *testing.T) {
	wrapped := wrapTemporaryIfNeeded(nats.ErrTimeout)
	if !domain.IsKind(wrapped, domain.ErrTemporary) {
		t.Fatalf("expected temporary wrap, got %v", wrapped)
	}

	permanent := errors.New("bad subject")
	if domain.IsKind(wrapTemporaryIfNeeded(permanent), domain.ErrTemporary) {
		t.Fatalf("permanent error must not be wrapped as temporary")
	}
}
