package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/codearena/portal/internal/portal/types"
)

const (
	DefaultThrottleWindow = 2 * time.Second
	DefaultFlushInterval  = 3 * time.Second
	DefaultBatchSize      = 10
)

// errUnauthorized marks a flush rejected for auth reasons.  Unlike transient
// failures it is terminal: the session is gone or the role is wrong, so
// retrying forever would only hammer the server.
var errUnauthorized = errors.New("violation report rejected: not authorized")

type Options struct {
	// Endpoint is the ingestion URL, e.g. "https://portal.example/violations".
	Endpoint string

	// Client performs the flush requests.  It should carry the cookie jar
	// holding the participant's session.  Defaults to http.DefaultClient.
	Client *http.Client

	ThrottleWindow time.Duration // default 2s
	FlushInterval  time.Duration // default 3s
	BatchSize      int           // default 10

	// Logger receives flush failures.  Reporting problems are never surfaced
	// to the participant; nil discards them.
	Logger *log.Logger
}

// Reporter queues accepted candidates and flushes them as one batch request
// whenever the queue reaches BatchSize or the flush interval elapses,
// whichever comes first.  A failed flush keeps its candidates queued for the
// next tick (at-least-once; the server tolerates duplicates).
type Reporter struct {
	opts   Options
	client *http.Client
	logger *log.Logger

	mu      sync.Mutex
	queue   []types.Candidate
	th      *throttle
	stopped bool // terminal auth rejection; no further reporting
	closed  bool

	kick chan struct{}
	stop chan struct{}
	done chan struct{}
}

func NewReporter(opts Options) *Reporter {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.ThrottleWindow <= 0 {
		opts.ThrottleWindow = DefaultThrottleWindow
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	r := &Reporter{
		opts:   opts,
		client: opts.Client,
		logger: opts.Logger,
		th:     newThrottle(opts.ThrottleWindow, time.Now),
		kick:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go r.loop()
	return r
}

// Observe feeds a raw signal through detection and throttling.  Accepted
// candidates are queued; a full queue triggers an immediate asynchronous
// flush.  Observe itself never blocks on the network.
func (r *Reporter) Observe(sig Signal) {
	c, ok := detect(sig)
	if !ok {
		return
	}

	r.mu.Lock()
	if r.stopped || r.closed || !r.th.allow(c) {
		r.mu.Unlock()
		return
	}
	r.queue = append(r.queue, c)
	full := len(r.queue) >= r.opts.BatchSize
	r.mu.Unlock()

	if full {
		select {
		case r.kick <- struct{}{}:
		default:
		}
	}
}

// QueueLen reports how many candidates are waiting for the next flush.
func (r *Reporter) QueueLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Close stops the flush loop and attempts one final best-effort flush.
// Whatever that flush cannot deliver is dropped; losing a handful of events
// on navigation-away is accepted.
func (r *Reporter) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	close(r.stop)
	<-r.done

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := r.flush(ctx)

	r.mu.Lock()
	r.queue = nil
	r.mu.Unlock()
	return err
}

func (r *Reporter) loop() {
	defer close(r.done)

	ticker := time.NewTicker(r.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
		case <-r.kick:
		}
		if err := r.flush(context.Background()); err != nil {
			r.logger.Printf("violation flush: %v", err)
		}
	}
}

// flush sends the current queue as one batch.  Flushing an empty queue is a
// no-op.  On transient failure the batch is put back at the head of the
// queue; on an auth rejection the reporter stops for good.
func (r *Reporter) flush(ctx context.Context) error {
	r.mu.Lock()
	if len(r.queue) == 0 {
		r.mu.Unlock()
		return nil
	}
	batch := r.queue
	r.queue = nil
	r.mu.Unlock()

	err := r.post(ctx, batch)
	if err == nil {
		return nil
	}

	if errors.Is(err, errUnauthorized) {
		r.mu.Lock()
		r.stopped = true
		r.queue = nil
		r.mu.Unlock()
		return err
	}

	r.mu.Lock()
	if !r.stopped {
		r.queue = append(batch, r.queue...)
	}
	r.mu.Unlock()
	return err
}

func (r *Reporter) post(ctx context.Context, batch []types.Candidate) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errUnauthorized
	case resp.StatusCode >= 300:
		return fmt.Errorf("post batch: unexpected status %d", resp.StatusCode)
	}
	return nil
}
