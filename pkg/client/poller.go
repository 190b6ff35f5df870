package client

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultPollInterval matches the reference polling cadence.
	DefaultPollInterval = 2 * time.Second
	// DefaultMaxWait bounds total polling time before the client gives
	// up on its own, independent of the server's state.
	DefaultMaxWait = 120 * time.Second

	fallbackFailureMessage = "문서 처리에 실패했습니다."
)

// PollerOptions configures a Poller. All callbacks are optional and are
// invoked from the poller's goroutine, never concurrently.
type PollerOptions struct {
	Interval time.Duration
	MaxWait  time.Duration

	// Manual disables the automatic start in NewPoller.
	Manual bool

	// OnStatus fires for every accepted (non-stale) poll response.
	OnStatus func(StatusReport)
	// OnTransition fires when the observed status changes.
	OnTransition func(from, to Status)
	// OnComplete fires exactly once, with the fetched analysis, after
	// COMPLETED is observed.
	OnComplete func(*AnalysisResult)
	// OnError fires exactly once per run for terminal failures:
	// ProcessingFailedError, PollTimeoutError or AnalysisFetchError.
	OnError func(error)
	// OnPollError fires for transient poll failures. Polling continues.
	OnPollError func(error)
}

// Poller drives the status state machine for one document: fixed
// interval polling, monotonic step tracking, terminal idempotence and
// an exactly-once analysis fetch on completion.
type Poller struct {
	client *Client
	pdfID  string
	opts   PollerOptions

	mu         sync.Mutex
	running    bool
	generation int
	cancel     context.CancelFunc
	inFlight   bool

	lastStatus    Status
	lastStep      int
	terminalFired bool
	fetchStarted  bool
	completeFired bool
}

// NewPoller builds a poller for pdfID and, unless opts.Manual is set,
// starts it immediately.
func NewPoller(c *Client, pdfID string, opts PollerOptions) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}
	p := &Poller{
		client:   c,
		pdfID:    pdfID,
		opts:     opts,
		lastStep: -1,
	}
	if !opts.Manual {
		p.Start()
	}
	return p
}

// PdfID returns the document this poller tracks.
func (p *Poller) PdfID() string { return p.pdfID }

// Start begins polling. It is a no-op while already running or after a
// completed run; restarting after a FAILED observation is permitted and
// resumes querying the server's current state.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running || (p.lastStatus == StatusCompleted && p.fetchStarted) {
		p.mu.Unlock()
		return
	}
	if p.lastStatus == StatusFailed {
		p.terminalFired = false
		p.lastStep = -1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.running = true
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	go p.loop(ctx, gen)
}

// Stop cancels polling. A response already in flight is discarded when
// it arrives: no state change, no callbacks.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	if !p.running {
		return
	}
	p.running = false
	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Running reports whether a polling loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// LastStatus returns the most recently accepted status, or "" before
// the first poll lands.
func (p *Poller) LastStatus() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastStatus
}

func (p *Poller) loop(ctx context.Context, gen int) {
	deadline := time.Now().Add(p.opts.MaxWait)
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	p.pollOnce(ctx, gen)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if time.Now().After(deadline) {
				p.timeout()
				return
			}
			p.pollOnce(ctx, gen)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context, gen int) {
	p.mu.Lock()
	if !p.running || p.generation != gen || p.inFlight {
		p.mu.Unlock()
		return
	}
	p.inFlight = true
	p.mu.Unlock()

	report, err := p.client.Status(ctx, p.pdfID)

	p.mu.Lock()
	p.inFlight = false
	stale := !p.running || p.generation != gen
	p.mu.Unlock()
	if stale {
		return
	}

	if err != nil {
		if ctx.Err() == nil && p.opts.OnPollError != nil {
			p.opts.OnPollError(err)
		}
		return
	}
	p.handle(gen, *report)
}

func (p *Poller) handle(gen int, report StatusReport) {
	p.mu.Lock()
	if !p.running || p.generation != gen {
		p.mu.Unlock()
		return
	}

	step := report.Status.StepIndex()
	if report.Status != StatusFailed && step < p.lastStep {
		// Out-of-order response; the machine never moves backward.
		p.mu.Unlock()
		return
	}

	from := p.lastStatus
	changed := report.Status != p.lastStatus
	p.lastStatus = report.Status
	if step > p.lastStep {
		p.lastStep = step
	}

	terminal := report.Status.IsTerminal()
	var fireTerminal bool
	if terminal {
		p.stopLocked()
		if !p.terminalFired {
			p.terminalFired = true
			fireTerminal = true
		}
	}
	var startFetch bool
	if report.Status == StatusCompleted && fireTerminal && !p.fetchStarted {
		p.fetchStarted = true
		startFetch = true
	}
	p.mu.Unlock()

	if p.opts.OnStatus != nil {
		p.opts.OnStatus(report)
	}
	if changed && p.opts.OnTransition != nil {
		p.opts.OnTransition(from, report.Status)
	}

	if !fireTerminal {
		return
	}
	switch report.Status {
	case StatusCompleted:
		if startFetch {
			p.fetchAnalysis()
		}
	case StatusFailed:
		message := report.ErrorMessage
		if message == "" {
			message = fallbackFailureMessage
		}
		if p.opts.OnError != nil {
			p.opts.OnError(&ProcessingFailedError{PdfID: p.pdfID, Message: message})
		}
	}
}

func (p *Poller) fetchAnalysis() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := p.client.Analysis(ctx, p.pdfID)
	if err != nil {
		if p.opts.OnError != nil {
			p.opts.OnError(&AnalysisFetchError{PdfID: p.pdfID, Err: err})
		}
		return
	}

	p.mu.Lock()
	if p.completeFired {
		p.mu.Unlock()
		return
	}
	p.completeFired = true
	p.mu.Unlock()

	if p.opts.OnComplete != nil {
		p.opts.OnComplete(result)
	}
}

// RetryAnalysisFetch retries the result fetch after a post-completion
// fetch failure. It does nothing unless COMPLETED was observed and
// OnComplete has not fired yet.
func (p *Poller) RetryAnalysisFetch() {
	p.mu.Lock()
	ok := p.lastStatus == StatusCompleted && !p.completeFired
	p.mu.Unlock()
	if ok {
		p.fetchAnalysis()
	}
}

func (p *Poller) timeout() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.stopLocked()
	fire := !p.terminalFired
	if fire {
		p.terminalFired = true
	}
	p.mu.Unlock()

	if fire && p.opts.OnError != nil {
		p.opts.OnError(&PollTimeoutError{PdfID: p.pdfID, Elapsed: p.opts.MaxWait})
	}
}
