package tracker

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"atelierlux/api/logger"
)

// Sender delivers built events to the collection endpoint. Delivery is
// fire-and-forget: implementations never surface errors to the caller.
// A guaranteed send must survive shutdown (the beacon case, used for
// page-leave signals); a best-effort send may be dropped under backpressure.
type Sender interface {
	Send(event Event, guaranteed bool)
}

type queuedEvent struct {
	event      Event
	guaranteed bool
}

// HTTPSender posts events as JSON, one at a time and in enqueue order, so a
// leave for the previous page always goes on the wire before the enter for
// the next one. Responses are never read; failures are logged and dropped.
type HTTPSender struct {
	endpoint string
	client   *http.Client
	log      *logger.Logger

	mu     sync.Mutex
	closed bool
	queue  chan queuedEvent
	done   chan struct{}
}

func NewHTTPSender(endpoint string, log *logger.Logger) *HTTPSender {
	if log == nil {
		log = logger.NewNop()
	}
	s := &HTTPSender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
		log:      log,
		queue:    make(chan queuedEvent, 64),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *HTTPSender) Send(event Event, guaranteed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	q := queuedEvent{event: event, guaranteed: guaranteed}
	if guaranteed {
		// leave signals are accepted even when the queue is full
		s.queue <- q
		return
	}
	select {
	case s.queue <- q:
	default:
		s.log.Debug("analytics event dropped, queue full", "event_type", event.Kind, "path", event.Path)
	}
}

func (s *HTTPSender) run() {
	for q := range s.queue {
		s.post(q.event)
	}
	close(s.done)
}

func (s *HTTPSender) post(event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		s.log.Debug("analytics event not serializable", "error", err)
		return
	}
	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		s.log.Debug("analytics request build failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Debug("analytics delivery failed", "error", err)
		return
	}
	resp.Body.Close()
}

// Close stops accepting new events and drains what is already queued, waiting
// at most grace. The grace period exists so guaranteed leave signals enqueued
// just before teardown still reach the collector.
func (s *HTTPSender) Close(grace time.Duration) {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
	case <-time.After(grace):
	}
}
