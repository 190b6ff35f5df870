package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statusScript serves a scripted sequence of status reports. The last
// report repeats forever, like a real server holding a terminal state.
type statusScript struct {
	mu               sync.Mutex
	reports          []StatusReport
	idx              int
	statusCalls      int
	analysisCalls    int
	analysisFailures int
	statusDelay      time.Duration
}

func (s *statusScript) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/status"):
			s.mu.Lock()
			s.statusCalls++
			delay := s.statusDelay
			report := s.reports[s.idx]
			if s.idx < len(s.reports)-1 {
				s.idx++
			}
			s.mu.Unlock()
			if delay > 0 {
				time.Sleep(delay)
			}
			writeReport(w, report)
		case strings.HasSuffix(r.URL.Path, "/analysis"):
			s.mu.Lock()
			s.analysisCalls++
			fail := s.analysisFailures > 0
			if fail {
				s.analysisFailures--
			}
			s.mu.Unlock()
			if fail {
				http.Error(w, `{"error":{"code":"INTERNAL","message":"boom"}}`, http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(`{"pdfId":"pdf-1","status":"SUCCESS","textConfidence":95,"eligibilityAnalysis":{"subscriptionId":"sub-1","userId":"user-1","isEligible":true,"matchScore":85}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	})
}

func (s *statusScript) setReports(reports ...StatusReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = reports
	s.idx = 0
}

func (s *statusScript) calls() (status, analysis int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCalls, s.analysisCalls
}

func writeReport(w http.ResponseWriter, report StatusReport) {
	w.Header().Set("Content-Type", "application/json")
	body := `{"pdfId":"` + report.PdfID + `","status":"` + string(report.Status) + `"`
	if report.ErrorMessage != "" {
		body += `,"errorMessage":"` + report.ErrorMessage + `"`
	}
	body += "}"
	_, _ = w.Write([]byte(body))
}

type pollerRecorder struct {
	mu          sync.Mutex
	statuses    []Status
	transitions []string
	completes   []*AnalysisResult
	errors      []error
}

func (r *pollerRecorder) options() PollerOptions {
	return PollerOptions{
		Interval: 10 * time.Millisecond,
		Manual:   true,
		OnStatus: func(report StatusReport) {
			r.mu.Lock()
			r.statuses = append(r.statuses, report.Status)
			r.mu.Unlock()
		},
		OnTransition: func(from, to Status) {
			r.mu.Lock()
			r.transitions = append(r.transitions, string(from)+">"+string(to))
			r.mu.Unlock()
		},
		OnComplete: func(result *AnalysisResult) {
			r.mu.Lock()
			r.completes = append(r.completes, result)
			r.mu.Unlock()
		},
		OnError: func(err error) {
			r.mu.Lock()
			r.errors = append(r.errors, err)
			r.mu.Unlock()
		},
	}
}

func (r *pollerRecorder) snapshot() (statuses []Status, completes []*AnalysisResult, errs []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.statuses...), append([]*AnalysisResult(nil), r.completes...), append([]error(nil), r.errors...)
}

func report(status Status) StatusReport {
	return StatusReport{PdfID: "pdf-1", Status: status}
}

func TestPollerHappyPathCompletesExactlyOnce(t *testing.T) {
	script := &statusScript{}
	script.setReports(report(StatusProcessing), report(StatusAnalyzing), report(StatusCompleted))
	server := httptest.NewServer(script.handler(t))
	defer server.Close()

	rec := &pollerRecorder{}
	p := NewPoller(New(server.URL, Options{}), "pdf-1", rec.options())
	p.Start()

	require.Eventually(t, func() bool {
		_, completes, _ := rec.snapshot()
		return len(completes) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Extra intervals pass; the terminal state must not replay.
	time.Sleep(60 * time.Millisecond)

	statuses, completes, errs := rec.snapshot()
	require.Len(t, completes, 1)
	assert.Empty(t, errs)
	assert.False(t, p.Running())

	result := completes[0]
	require.NotNil(t, result.Eligibility)
	assert.GreaterOrEqual(t, result.Eligibility.MatchScore, 0)
	assert.LessOrEqual(t, result.Eligibility.MatchScore, 100)

	_, analysisCalls := script.calls()
	assert.Equal(t, 1, analysisCalls, "analysis must be fetched exactly once")
	assert.Equal(t, StatusCompleted, statuses[len(statuses)-1])
}

func TestPollerStepIndexMonotonic(t *testing.T) {
	script := &statusScript{}
	script.setReports(
		report(StatusPending),
		report(StatusProcessing),
		report(StatusOCRInProgress),
		report(StatusAnalyzing),
		report(StatusCompleted),
	)
	server := httptest.NewServer(script.handler(t))
	defer server.Close()

	rec := &pollerRecorder{}
	p := NewPoller(New(server.URL, Options{}), "pdf-1", rec.options())
	p.Start()

	require.Eventually(t, func() bool {
		_, completes, _ := rec.snapshot()
		return len(completes) == 1
	}, 2*time.Second, 5*time.Millisecond)

	statuses, _, _ := rec.snapshot()
	last := -1
	for _, s := range statuses {
		idx := s.StepIndex()
		assert.GreaterOrEqual(t, idx, last, "step index went backward: %v", statuses)
		last = idx
	}
}

func TestPollerSkipsOptionalOCRStep(t *testing.T) {
	script := &statusScript{}
	script.setReports(report(StatusProcessing), report(StatusAnalyzing), report(StatusCompleted))
	server := httptest.NewServer(script.handler(t))
	defer server.Close()

	rec := &pollerRecorder{}
	p := NewPoller(New(server.URL, Options{}), "pdf-1", rec.options())
	p.Start()

	require.Eventually(t, func() bool {
		_, completes, _ := rec.snapshot()
		return len(completes) == 1
	}, 2*time.Second, 5*time.Millisecond)

	statuses, _, _ := rec.snapshot()
	assert.NotContains(t, statuses, StatusOCRInProgress)
}

func TestPollerFailedFiresErrorOnce(t *testing.T) {
	script := &statusScript{}
	script.setReports(report(StatusProcessing), StatusReport{PdfID: "pdf-1", Status: StatusFailed, ErrorMessage: "손상된 파일"})
	server := httptest.NewServer(script.handler(t))
	defer server.Close()

	rec := &pollerRecorder{}
	p := NewPoller(New(server.URL, Options{}), "pdf-1", rec.options())
	p.Start()

	require.Eventually(t, func() bool {
		_, _, errs := rec.snapshot()
		return len(errs) == 1
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)

	_, completes, errs := rec.snapshot()
	require.Len(t, errs, 1)
	assert.Empty(t, completes)
	assert.False(t, p.Running())

	var pErr *ProcessingFailedError
	require.ErrorAs(t, errs[0], &pErr)
	assert.Equal(t, "손상된 파일", pErr.Message)
}

func TestPollerFailedFallbackMessage(t *testing.T) {
	script := &statusScript{}
	script.setReports(report(StatusFailed))
	server := httptest.NewServer(script.handler(t))
	defer server.Close()

	rec := &pollerRecorder{}
	p := NewPoller(New(server.URL, Options{}), "pdf-1", rec.options())
	p.Start()

	require.Eventually(t, func() bool {
		_, _, errs := rec.snapshot()
		return len(errs) == 1
	}, 2*time.Second, 5*time.Millisecond)

	_, _, errs := rec.snapshot()
	var pErr *ProcessingFailedError
	require.ErrorAs(t, errs[0], &pErr)
	assert.Equal(t, fallbackFailureMessage, pErr.Message)
}

func TestPollerStopDiscardsInFlightResponse(t *testing.T) {
	script := &statusScript{statusDelay: 50 * time.Millisecond}
	script.setReports(report(StatusProcessing))
	server := httptest.NewServer(script.handler(t))
	defer server.Close()

	rec := &pollerRecorder{}
	p := NewPoller(New(server.URL, Options{}), "pdf-1", rec.options())
	p.Start()

	// Let the first poll leave, then stop while it is in flight.
	time.Sleep(10 * time.Millisecond)
	p.Stop()
	time.Sleep(100 * time.Millisecond)

	statuses, completes, errs := rec.snapshot()
	assert.Empty(t, statuses, "stale response must not update state")
	assert.Empty(t, completes)
	assert.Empty(t, errs)
}

func TestPollerTimeoutDistinctFromServerFailure(t *testing.T) {
	script := &statusScript{}
	script.setReports(report(StatusProcessing))
	server := httptest.NewServer(script.handler(t))
	defer server.Close()

	rec := &pollerRecorder{}
	opts := rec.options()
	opts.MaxWait = 35 * time.Millisecond
	p := NewPoller(New(server.URL, Options{}), "pdf-1", opts)
	p.Start()

	require.Eventually(t, func() bool {
		_, _, errs := rec.snapshot()
		return len(errs) == 1
	}, 2*time.Second, 5*time.Millisecond)

	_, _, errs := rec.snapshot()
	var tErr *PollTimeoutError
	require.ErrorAs(t, errs[0], &tErr)
	var pErr *ProcessingFailedError
	assert.False(t, errors.As(errs[0], &pErr), "timeout must not look like a server FAILED")
	assert.False(t, p.Running())
}

func TestPollerRestartAfterFailed(t *testing.T) {
	script := &statusScript{}
	script.setReports(report(StatusFailed))
	server := httptest.NewServer(script.handler(t))
	defer server.Close()

	rec := &pollerRecorder{}
	p := NewPoller(New(server.URL, Options{}), "pdf-1", rec.options())
	p.Start()

	require.Eventually(t, func() bool {
		_, _, errs := rec.snapshot()
		return len(errs) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.False(t, p.Running())

	// The server has recovered state; a manual restart resumes polling.
	script.setReports(report(StatusAnalyzing), report(StatusCompleted))
	p.Start()

	require.Eventually(t, func() bool {
		_, completes, _ := rec.snapshot()
		return len(completes) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPollerRetryAnalysisFetchAfterFailure(t *testing.T) {
	script := &statusScript{analysisFailures: 1}
	script.setReports(report(StatusCompleted))
	server := httptest.NewServer(script.handler(t))
	defer server.Close()

	rec := &pollerRecorder{}
	p := NewPoller(New(server.URL, Options{}), "pdf-1", rec.options())
	p.Start()

	require.Eventually(t, func() bool {
		_, _, errs := rec.snapshot()
		return len(errs) == 1
	}, 2*time.Second, 5*time.Millisecond)

	_, completes, errs := rec.snapshot()
	assert.Empty(t, completes)
	var fErr *AnalysisFetchError
	require.ErrorAs(t, errs[0], &fErr)

	// The document finished processing; retry without re-uploading.
	p.RetryAnalysisFetch()

	require.Eventually(t, func() bool {
		_, completes, _ := rec.snapshot()
		return len(completes) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPollerSerializesPolls(t *testing.T) {
	var current, max int64
	script := &statusScript{}
	script.setReports(report(StatusProcessing))
	base := script.handler(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&current, 1)
		for {
			m := atomic.LoadInt64(&max)
			if n <= m || atomic.CompareAndSwapInt64(&max, m, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		base.ServeHTTP(w, r)
	}))
	defer server.Close()

	rec := &pollerRecorder{}
	opts := rec.options()
	opts.Interval = 5 * time.Millisecond
	p := NewPoller(New(server.URL, Options{}), "pdf-1", opts)
	p.Start()

	time.Sleep(150 * time.Millisecond)
	p.Stop()

	assert.LessOrEqual(t, atomic.LoadInt64(&max), int64(1), "polls must never overlap")
}

func TestPollerManualOptionDoesNotAutostart(t *testing.T) {
	script := &statusScript{}
	script.setReports(report(StatusProcessing))
	server := httptest.NewServer(script.handler(t))
	defer server.Close()

	rec := &pollerRecorder{}
	p := NewPoller(New(server.URL, Options{}), "pdf-1", rec.options())

	time.Sleep(30 * time.Millisecond)
	statusCalls, _ := script.calls()
	assert.Zero(t, statusCalls)
	assert.False(t, p.Running())
}

func TestPollerAutostartWhenNotManual(t *testing.T) {
	script := &statusScript{}
	script.setReports(report(StatusCompleted))
	server := httptest.NewServer(script.handler(t))
	defer server.Close()

	rec := &pollerRecorder{}
	opts := rec.options()
	opts.Manual = false
	_ = NewPoller(New(server.URL, Options{}), "pdf-1", opts)

	require.Eventually(t, func() bool {
		_, completes, _ := rec.snapshot()
		return len(completes) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestMultiPollerAggregatesTerminalStates(t *testing.T) {
	okScript := &statusScript{}
	okScript.setReports(report(StatusCompleted))
	failScript := &statusScript{}
	failScript.setReports(StatusReport{PdfID: "pdf-2", Status: StatusFailed, ErrorMessage: "깨진 문서"})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "pdf-2") {
			failScript.handler(t).ServeHTTP(w, r)
			return
		}
		okScript.handler(t).ServeHTTP(w, r)
	}))
	defer server.Close()

	var docErrs sync.Map
	m := NewMultiPoller(New(server.URL, Options{}), []string{"pdf-1", "pdf-2"}, MultiPollerOptions{
		PollerOptions: PollerOptions{Interval: 10 * time.Millisecond},
		OnDocumentError: func(pdfID string, err error) {
			docErrs.Store(pdfID, err)
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Wait(ctx))

	succeeded, failed := m.Counts()
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	assert.True(t, m.AllTerminal())

	errVal, ok := docErrs.Load("pdf-2")
	require.True(t, ok)
	var pErr *ProcessingFailedError
	require.ErrorAs(t, errVal.(error), &pErr)
}

func TestMultiPollerEmptyInputIsDone(t *testing.T) {
	m := NewMultiPoller(New("http://localhost", Options{}), nil, MultiPollerOptions{})
	assert.True(t, m.AllTerminal())
}
