package alerting

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"rentdesk/internal/logging"
	"rentdesk/internal/models"
	"rentdesk/internal/sink"
)

// DataSource is the read-only collaborator the engine polls.
type DataSource interface {
	FetchBills(ctx context.Context, limit int) ([]models.Bill, error)
	FetchTenants(ctx context.Context) ([]models.Lease, error)
}

// State is the engine's cycle phase.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateDeriving
	StateDispatching
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateDeriving:
		return "deriving"
	case StateDispatching:
		return "dispatching"
	default:
		return "idle"
	}
}

const fetchTimeout = 30 * time.Second

// Options tunes the engine. Zero values fall back to production defaults.
type Options struct {
	PollInterval   time.Duration
	BillFetchLimit int
	MediumPushCap  int
	SummaryMin     int
	SummaryDelay   time.Duration
	Now            func() time.Time
}

// Engine owns the full poll cycle: fetch, derive, prioritize, dedup, read
// merge, throttled dispatch, snapshot publish. All cycles run on a single
// goroutine; triggers that fire while a cycle is in flight are dropped, so
// two cycles never overlap and the seen and read sets are only ever mutated
// from inside a completed cycle.
type Engine struct {
	source    DataSource
	sink      sink.Sink
	throttler *Throttler
	dedup     *Deduplicator
	readState *ReadState
	logger    *logging.Logger

	pollInterval time.Duration
	billLimit    int
	now          func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	state  atomic.Int32

	refreshCh chan struct{}

	mu              sync.Mutex
	snapshot        models.Snapshot
	onSnapshot      func(models.Snapshot)
	onNavigate      func(models.Action)
	permissionAsked bool
}

// New constructs an Engine. The sink and data source are injected so tests
// run with fakes.
func New(source DataSource, snk sink.Sink, logger *logging.Logger, opts Options) *Engine {
	if opts.PollInterval == 0 {
		opts.PollInterval = 2 * time.Minute
	}
	if opts.BillFetchLimit == 0 {
		opts.BillFetchLimit = 100
	}
	if opts.MediumPushCap == 0 {
		opts.MediumPushCap = 3
	}
	if opts.SummaryMin == 0 {
		opts.SummaryMin = 5
	}
	if opts.SummaryDelay == 0 {
		opts.SummaryDelay = 2 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		source:       source,
		sink:         snk,
		throttler:    NewThrottler(snk, logger, opts.MediumPushCap, opts.SummaryMin, opts.SummaryDelay),
		dedup:        NewDeduplicator(),
		readState:    NewReadState(),
		logger:       logger,
		pollInterval: opts.PollInterval,
		billLimit:    opts.BillFetchLimit,
		now:          opts.Now,
		ctx:          ctx,
		cancel:       cancel,
		refreshCh:    make(chan struct{}, 1),
	}
}

// OnSnapshot registers the host callback receiving the read model after
// every state change. Register before Start.
func (e *Engine) OnSnapshot(fn func(models.Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSnapshot = fn
}

// OnNavigate registers the host callback receiving navigation messages from
// notification clicks. Register before Start.
func (e *Engine) OnNavigate(fn func(models.Action)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onNavigate = fn
}

// Start requests push permission once if undecided, runs an immediate first
// cycle, then polls on the configured interval.
func (e *Engine) Start(wg *sync.WaitGroup) {
	wg.Add(1)
	go e.run(wg)
}

// Stop tears the engine down: the poll loop, and any pending summary timer,
// are cancelled together so nothing dispatches after disposal.
func (e *Engine) Stop() {
	e.cancel()
	e.throttler.Stop()
}

// RefreshNow triggers a cycle on demand. If a cycle is already in flight
// the trigger is dropped; cycles never run concurrently.
func (e *Engine) RefreshNow() {
	select {
	case e.refreshCh <- struct{}{}:
	default:
	}
}

// State reports the current cycle phase.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Snapshot returns a copy of the current read model.
func (e *Engine) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := e.snapshot
	snap.Alerts = append([]models.Alert(nil), e.snapshot.Alerts...)
	return snap
}

// MarkRead marks one alert read and republishes the read model. The click
// handler never calls this; it is the host UI's move when it handles the
// navigation event.
func (e *Engine) MarkRead(id string) {
	e.readState.MarkRead(id)
	e.republishRead()
}

// MarkAllRead marks every currently listed alert read.
func (e *Engine) MarkAllRead() {
	e.readState.MarkAllRead(e.Snapshot().Alerts)
	e.republishRead()
}

// Navigate publishes a navigation message to the host. Called by sinks when
// a notification is clicked.
func (e *Engine) Navigate(a models.Action) {
	e.mu.Lock()
	fn := e.onNavigate
	e.mu.Unlock()
	if fn != nil {
		fn(a)
	}
}

func (e *Engine) run(wg *sync.WaitGroup) {
	defer wg.Done()

	e.requestPermission()

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	e.runCycle()
	e.drainTriggers(ticker)
	for {
		select {
		case <-e.ctx.Done():
			e.logger.Infof("Alert engine stopped")
			return
		case <-ticker.C:
			e.runCycle()
		case <-e.refreshCh:
			e.runCycle()
		}
		e.drainTriggers(ticker)
	}
}

// requestPermission prompts exactly once, and only from the undecided
// state. A denial is never re-prompted.
func (e *Engine) requestPermission() {
	e.mu.Lock()
	asked := e.permissionAsked
	e.permissionAsked = true
	e.mu.Unlock()

	if asked || e.sink.Permission() != sink.PermissionDefault {
		return
	}
	p, err := e.sink.RequestPermission(e.ctx)
	if err != nil {
		e.logger.Warnf("Push permission request failed: %v", err)
	}
	e.logger.Infof("Push permission: %s", p)
}

// drainTriggers discards ticks and refresh requests that arrived while a
// cycle was running.
func (e *Engine) drainTriggers(ticker *time.Ticker) {
	for {
		select {
		case <-ticker.C:
		case <-e.refreshCh:
		default:
			return
		}
	}
}

// runCycle executes one full poll cycle. A fetch failure aborts before the
// seen set is touched: the last good alert list stays visible and the next
// tick retries.
func (e *Engine) runCycle() {
	e.state.Store(int32(StateFetching))
	e.setLoading(true)

	ctx, cancel := context.WithTimeout(e.ctx, fetchTimeout)
	defer cancel()

	bills, err := e.source.FetchBills(ctx, e.billLimit)
	if err != nil {
		e.abortCycle("bills fetch failed: %v", err)
		return
	}
	leases, err := e.source.FetchTenants(ctx)
	if err != nil {
		e.abortCycle("tenants fetch failed: %v", err)
		return
	}

	e.state.Store(int32(StateDeriving))
	today := Midnight(e.now())
	alerts := Derive(bills, leases, today)
	Sort(alerts)
	newlySeen := e.dedup.NewlySeen(alerts)
	alerts = e.readState.Merge(alerts)

	e.state.Store(int32(StateDispatching))
	e.throttler.Dispatch(e.ctx, newlySeen)

	e.publish(models.Snapshot{
		Alerts:      alerts,
		UnreadCount: e.readState.UnreadCount(alerts),
		RefreshedAt: e.now(),
	})
	e.state.Store(int32(StateIdle))
	e.logger.Debugf("Cycle complete: %d alerts, %d newly seen", len(alerts), len(newlySeen))
}

func (e *Engine) abortCycle(format string, args ...interface{}) {
	e.logger.Errorf(format, args...)
	e.setLoading(false)
	e.state.Store(int32(StateIdle))
}

func (e *Engine) setLoading(loading bool) {
	e.mu.Lock()
	e.snapshot.Loading = loading
	snap := e.snapshot
	snap.Alerts = append([]models.Alert(nil), e.snapshot.Alerts...)
	fn := e.onSnapshot
	e.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func (e *Engine) publish(snap models.Snapshot) {
	e.mu.Lock()
	e.snapshot = snap
	out := snap
	out.Alerts = append([]models.Alert(nil), snap.Alerts...)
	fn := e.onSnapshot
	e.mu.Unlock()
	if fn != nil {
		fn(out)
	}
}

// republishRead recomputes read flags and unread count for the current list
// without running a cycle.
func (e *Engine) republishRead() {
	e.mu.Lock()
	alerts := append([]models.Alert(nil), e.snapshot.Alerts...)
	e.mu.Unlock()

	alerts = e.readState.Merge(alerts)
	e.mu.Lock()
	e.snapshot.Alerts = alerts
	e.snapshot.UnreadCount = e.readState.UnreadCount(alerts)
	out := e.snapshot
	out.Alerts = append([]models.Alert(nil), alerts...)
	fn := e.onSnapshot
	e.mu.Unlock()
	if fn != nil {
		fn(out)
	}
}
