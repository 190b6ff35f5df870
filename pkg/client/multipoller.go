package client

import (
	"context"
	"sync"
)

// MultiPoller tracks N documents with one independent poller each.
// Aggregate completion is the AND of all individual terminal states.
type MultiPoller struct {
	mu        sync.Mutex
	pollers   map[string]*Poller
	succeeded int
	failed    int
	done      chan struct{}

	onAllDone func(succeeded, failed int)
}

// MultiPollerOptions configures the aggregate. Per-document callbacks
// are layered on top of the counting logic.
type MultiPollerOptions struct {
	PollerOptions

	// OnDocumentComplete fires per document, after the shared counting.
	OnDocumentComplete func(pdfID string, result *AnalysisResult)
	// OnDocumentError fires per document for terminal errors.
	OnDocumentError func(pdfID string, err error)
	// OnAllDone fires once, when every document has reached a terminal
	// outcome (success or failure).
	OnAllDone func(succeeded, failed int)
}

func NewMultiPoller(c *Client, pdfIDs []string, opts MultiPollerOptions) *MultiPoller {
	m := &MultiPoller{
		pollers:   make(map[string]*Poller, len(pdfIDs)),
		done:      make(chan struct{}),
		onAllDone: opts.OnAllDone,
	}
	if len(pdfIDs) == 0 {
		close(m.done)
		if m.onAllDone != nil {
			m.onAllDone(0, 0)
		}
		return m
	}

	total := len(pdfIDs)
	for _, id := range pdfIDs {
		id := id
		perDoc := opts.PollerOptions
		base := opts

		perDoc.OnComplete = func(result *AnalysisResult) {
			if base.PollerOptions.OnComplete != nil {
				base.PollerOptions.OnComplete(result)
			}
			if base.OnDocumentComplete != nil {
				base.OnDocumentComplete(id, result)
			}
			m.record(true, total)
		}
		perDoc.OnError = func(err error) {
			if base.PollerOptions.OnError != nil {
				base.PollerOptions.OnError(err)
			}
			if base.OnDocumentError != nil {
				base.OnDocumentError(id, err)
			}
			m.record(false, total)
		}

		m.pollers[id] = NewPoller(c, id, perDoc)
	}
	return m
}

func (m *MultiPoller) record(success bool, total int) {
	m.mu.Lock()
	if success {
		m.succeeded++
	} else {
		m.failed++
	}
	finished := m.succeeded+m.failed == total
	succeeded, failed := m.succeeded, m.failed
	m.mu.Unlock()

	if finished {
		close(m.done)
		if m.onAllDone != nil {
			m.onAllDone(succeeded, failed)
		}
	}
}

// Counts returns how many documents have succeeded and failed so far.
func (m *MultiPoller) Counts() (succeeded, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.succeeded, m.failed
}

// AllTerminal reports whether every tracked document is done.
func (m *MultiPoller) AllTerminal() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// Wait blocks until every document reaches a terminal outcome or the
// context is cancelled.
func (m *MultiPoller) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels all underlying pollers.
func (m *MultiPoller) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pollers {
		p.Stop()
	}
}

// Poller returns the underlying poller for one document, or nil.
func (m *MultiPoller) Poller(pdfID string) *Poller {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pollers[pdfID]
}
