package agent

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/codearena/portal/internal/portal/types"
)

// collectServer records every batch POSTed to it and answers with the given
// status codes in order (repeating the last one once exhausted).
type collectServer struct {
	mu       sync.Mutex
	batches  [][]types.Candidate
	statuses []int
}

func (c *collectServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var batch []types.Candidate
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		c.mu.Lock()
		c.batches = append(c.batches, batch)
		status := http.StatusOK
		if len(c.statuses) > 0 {
			status = c.statuses[0]
			if len(c.statuses) > 1 {
				c.statuses = c.statuses[1:]
			}
		}
		c.mu.Unlock()

		w.WriteHeader(status)
	}
}

func (c *collectServer) batchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func (c *collectServer) waitForBatches(t *testing.T, n int, within time.Duration) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if c.batchCount() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d batches within %s, got %d", n, within, c.batchCount())
}

func newTestReporter(t *testing.T, srv *collectServer, opts Options) *Reporter {
	t.Helper()
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)

	opts.Endpoint = ts.URL + "/violations"
	opts.Client = ts.Client()
	r := NewReporter(opts)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestReporter_FullQueueFlushesImmediately(t *testing.T) {
	srv := &collectServer{}
	r := newTestReporter(t, srv, Options{
		BatchSize:     3,
		FlushInterval: time.Hour, // only the size trigger may fire
	})

	// Distinct detail payloads so the throttle passes all three.
	r.Observe(Clipboard{Op: OpPaste, Length: 1})
	r.Observe(Clipboard{Op: OpPaste, Length: 2})
	r.Observe(Clipboard{Op: OpPaste, Length: 3})

	srv.waitForBatches(t, 1, 2*time.Second)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if len(srv.batches[0]) != 3 {
		t.Errorf("expected a batch of 3, got %d", len(srv.batches[0]))
	}
}

func TestReporter_PartialQueueWaitsForTimer(t *testing.T) {
	srv := &collectServer{}
	r := newTestReporter(t, srv, Options{
		BatchSize:     10,
		FlushInterval: 150 * time.Millisecond,
	})

	r.Observe(Clipboard{Op: OpCopy, Length: 1})
	r.Observe(Clipboard{Op: OpCopy, Length: 2})

	// Below the size threshold: nothing goes out before the interval.
	time.Sleep(50 * time.Millisecond)
	if n := srv.batchCount(); n != 0 {
		t.Fatalf("expected no flush before the timer, got %d", n)
	}

	srv.waitForBatches(t, 1, 2*time.Second)
}

func TestReporter_FailedFlushRetainsQueue(t *testing.T) {
	srv := &collectServer{statuses: []int{http.StatusInternalServerError, http.StatusOK}}
	r := newTestReporter(t, srv, Options{
		BatchSize:     10,
		FlushInterval: 50 * time.Millisecond,
	})

	r.Observe(Clipboard{Op: OpCut, Length: 7})

	// First attempt fails with a 5xx, the retained candidate is retried on a
	// later tick and succeeds.
	srv.waitForBatches(t, 2, 2*time.Second)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	for i, b := range srv.batches[:2] {
		if len(b) != 1 || b[0].Type != types.ViolationCut {
			t.Errorf("batch %d: expected the retained cut candidate, got %v", i, b)
		}
	}
}

func TestReporter_AuthRejectionStopsReporting(t *testing.T) {
	srv := &collectServer{statuses: []int{http.StatusUnauthorized}}
	r := newTestReporter(t, srv, Options{
		BatchSize:     1,
		FlushInterval: 25 * time.Millisecond,
	})

	r.Observe(ContextMenu{})
	srv.waitForBatches(t, 1, 2*time.Second)

	// Give a few ticks' grace, then confirm nothing else was attempted and
	// new observations are ignored.
	time.Sleep(100 * time.Millisecond)
	r.Observe(Clipboard{Op: OpPaste, Length: 99})
	time.Sleep(100 * time.Millisecond)

	if n := srv.batchCount(); n != 1 {
		t.Errorf("expected reporting to stop after 401, got %d batches", n)
	}
	if r.QueueLen() != 0 {
		t.Errorf("expected queue to stay empty after auth stop, got %d", r.QueueLen())
	}
}

func TestReporter_CloseFlushesRemainder(t *testing.T) {
	srv := &collectServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	r := NewReporter(Options{
		Endpoint:      ts.URL + "/violations",
		Client:        ts.Client(),
		BatchSize:     10,
		FlushInterval: time.Hour,
	})

	r.Observe(VisibilityHidden{})
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if srv.batchCount() != 1 {
		t.Fatalf("expected the final flush to deliver 1 batch, got %d", srv.batchCount())
	}

	// Close is idempotent.
	if err := r.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestReporter_EmptyFlushIsNoOp(t *testing.T) {
	srv := &collectServer{}
	r := newTestReporter(t, srv, Options{FlushInterval: 20 * time.Millisecond})

	time.Sleep(100 * time.Millisecond)
	if n := srv.batchCount(); n != 0 {
		t.Errorf("expected no requests with an empty queue, got %d", n)
	}
	_ = r
}
