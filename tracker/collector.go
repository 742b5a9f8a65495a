package tracker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/net/html"

	"atelierlux/api/logger"
)

// AuthProvider reports whether an admin is signed in. The initial lookup may
// be slow or hang entirely, so the collector bounds it with a safety timeout.
type AuthProvider interface {
	IsAuthenticated(ctx context.Context) (bool, error)
	// OnChange registers a live auth-state listener and returns its
	// unsubscribe function.
	OnChange(fn func(authenticated bool)) (unsubscribe func())
}

// How long the collector waits for the auth provider before assuming the
// visitor is not an admin. Erring toward collecting after the timeout beats
// going dark forever, but nothing is emitted before the determination.
const authResolveTimeout = 2 * time.Second

type collectorState int

const (
	statePending collectorState = iota
	stateActive
	stateSuppressed
)

// Collector orchestrates the page lifecycle: it closes dwell intervals on
// navigation, emits enter/leave pageviews and classified clicks, and
// suppresses everything for authenticated admin sessions. It never returns an
// error to the caller; a failed signal is simply lost.
type Collector struct {
	builder    *Builder
	classifier *Classifier
	sender     Sender
	store      Store
	log        *logger.Logger
	now        func() time.Time
	authWait   time.Duration

	mu          sync.Mutex
	state       collectorState
	path        string
	enteredAt   time.Time
	pendingPath string
	unsubscribe func()
}

func NewCollector(builder *Builder, classifier *Classifier, sender Sender, store Store, log *logger.Logger) *Collector {
	if log == nil {
		log = logger.NewNop()
	}
	return &Collector{
		builder:    builder,
		classifier: classifier,
		sender:     sender,
		store:      store,
		log:        log,
		now:        time.Now,
		authWait:   authResolveTimeout,
		state:      statePending,
	}
}

// Start resolves the initial auth state, bounded by the safety timeout, then
// enables or suppresses collection and subscribes to live auth changes. A
// provider error or timeout counts as "not authenticated".
func (c *Collector) Start(ctx context.Context, auth AuthProvider) {
	rctx, cancel := context.WithTimeout(ctx, c.authWait)
	defer cancel()

	resolved := make(chan bool, 1)
	go func() {
		authenticated, err := auth.IsAuthenticated(rctx)
		if err != nil {
			authenticated = false
		}
		resolved <- authenticated
	}()

	var authenticated bool
	select {
	case authenticated = <-resolved:
	case <-rctx.Done():
		c.log.Debug("auth state unresolved, collecting as anonymous")
	}

	c.mu.Lock()
	c.unsubscribe = auth.OnChange(c.setAuthenticated)
	c.mu.Unlock()

	c.resolve(authenticated)
}

// Close unsubscribes the auth listener. It does not flush the sender; the
// owner closes that separately.
func (c *Collector) Close() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (c *Collector) resolve(authenticated bool) {
	c.mu.Lock()
	if c.state != statePending {
		c.mu.Unlock()
		return
	}
	if authenticated {
		c.state = stateSuppressed
	} else {
		c.state = stateActive
	}
	deferred := c.pendingPath
	c.pendingPath = ""
	c.mu.Unlock()

	if deferred != "" {
		c.EnterPage(deferred)
	}
}

// setAuthenticated flips suppression live: signing in stops tracking, signing
// out resumes it. A change arriving while still pending resolves the pending
// state instead.
func (c *Collector) setAuthenticated(authenticated bool) {
	c.mu.Lock()
	if c.state == statePending {
		c.mu.Unlock()
		c.resolve(authenticated)
		return
	}
	if authenticated {
		c.state = stateSuppressed
	} else {
		c.state = stateActive
	}
	c.mu.Unlock()
}

// EnterPage records a route change. If a different path was being tracked, a
// leave pageview carrying the elapsed dwell is emitted for it first, then the
// enter pageview for the new path, both best-effort and in that order.
// Before the auth state resolves the path is only remembered, not emitted.
func (c *Collector) EnterPage(path string) {
	c.mu.Lock()
	if c.state == statePending {
		c.pendingPath = path
		c.mu.Unlock()
		return
	}
	if c.path == path {
		// same-path re-enter (e.g. a reload already adopted below); the open
		// dwell interval keeps running
		c.mu.Unlock()
		return
	}

	now := c.now()
	suppressed := c.state == stateSuppressed

	var leave *Event
	if c.path != "" && !suppressed {
		duration := c.dwellSeconds(now)
		ev := c.builder.Pageview(c.path, &duration, nil)
		leave = &ev
	}

	fresh := c.path == ""
	c.path = path
	c.markEnter(now, fresh)
	c.mu.Unlock()

	if suppressed {
		return
	}
	if leave != nil {
		c.sender.Send(*leave, false)
	}
	c.sender.Send(c.builder.Pageview(path, nil, nil), false)
}

// Leave closes out the current dwell interval on visibility-hidden or unload.
// The pageview goes through guaranteed delivery because the page may be torn
// down immediately after.
func (c *Collector) Leave() {
	c.mu.Lock()
	if c.state != stateActive || c.path == "" {
		c.mu.Unlock()
		return
	}
	duration := c.dwellSeconds(c.now())
	event := c.builder.Pageview(c.path, &duration, nil)
	c.mu.Unlock()

	c.sender.Send(event, true)
}

// Click classifies a click's target chain and emits a click event when the
// classifier finds something attributable. Clicks arriving before the auth
// state resolves are dropped.
func (c *Collector) Click(chain []*html.Node) {
	c.mu.Lock()
	active := c.state == stateActive
	path := c.path
	c.mu.Unlock()
	if !active {
		return
	}

	descriptor := c.classifier.Classify(chain)
	if descriptor == "" {
		return
	}
	c.sender.Send(c.builder.Click(path, descriptor, nil, nil), false)
}

// markEnter records the dwell start, persisting it so a reload does not reset
// the interval. A fresh collector finding a persisted timestamp adopts it:
// that is the reload case, and the dwell should span it.
func (c *Collector) markEnter(now time.Time, fresh bool) {
	entered := now
	if fresh {
		if raw, err := c.store.Get(pageEnterKey); err == nil && raw != "" {
			if ms, perr := strconv.ParseInt(raw, 10, 64); perr == nil && ms > 0 && ms <= now.UnixMilli() {
				entered = time.UnixMilli(ms)
			}
		}
	}
	c.enteredAt = entered
	if err := c.store.Set(pageEnterKey, strconv.FormatInt(entered.UnixMilli(), 10)); err != nil {
		c.log.Debug("page enter timestamp not persisted", "error", err)
	}
}

// dwellSeconds is the elapsed dwell for the open interval, rounded to whole
// seconds and clamped to zero.
func (c *Collector) dwellSeconds(now time.Time) int {
	elapsed := now.Sub(c.enteredAt)
	if elapsed < 0 {
		return 0
	}
	return int((elapsed + 500*time.Millisecond) / time.Second)
}
