package alerting

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk/internal/logging"
	"rentdesk/internal/models"
	"rentdesk/internal/sink"
)

// fakeSource serves canned records and lets tests inject fetch failures.
// A non-nil gate blocks FetchBills until the test closes it.
type fakeSource struct {
	mu      sync.Mutex
	bills   []models.Bill
	leases  []models.Lease
	err     error
	fetches int
	gate    chan struct{}
}

func (f *fakeSource) FetchBills(_ context.Context, _ int) ([]models.Bill, error) {
	f.mu.Lock()
	f.fetches++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Bill(nil), f.bills...), nil
}

func (f *fakeSource) FetchTenants(_ context.Context) ([]models.Lease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Lease(nil), f.leases...), nil
}

func (f *fakeSource) setBills(bills []models.Bill) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bills = bills
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func overdueBill(id int64) models.Bill {
	due := day(2025, time.January, 10)
	return models.Bill{
		ID:          id,
		Status:      models.BillStatusPending,
		DueDate:     &due,
		TotalAmount: 1200,
		TenantID:    1,
		TenantName:  "Alice Martin",
	}
}

func newTestEngine(fs *fakeSource, snk sink.Sink) *Engine {
	return New(fs, snk, logging.Discard(), Options{
		PollInterval: time.Hour, // cycles driven by RefreshNow in tests
		SummaryDelay: 10 * time.Millisecond,
		Now:          func() time.Time { return day(2025, time.January, 25) },
	})
}

func waitForFetches(t *testing.T, fs *fakeSource, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return fs.fetchCount() >= n }, time.Second, 5*time.Millisecond)
}

func TestEngineRunsImmediateCycle(t *testing.T) {
	fs := &fakeSource{bills: []models.Bill{overdueBill(7)}}
	snk := newFakeSink(sink.PermissionGranted)
	e := newTestEngine(fs, snk)

	var wg sync.WaitGroup
	e.Start(&wg)
	defer func() { e.Stop(); wg.Wait() }()

	require.Eventually(t, func() bool { return len(e.Snapshot().Alerts) == 1 }, time.Second, 5*time.Millisecond)
	snap := e.Snapshot()
	assert.Equal(t, "overdue-7", snap.Alerts[0].ID)
	assert.Equal(t, 1, snap.UnreadCount)
	assert.False(t, snap.Loading)

	// high priority alert got pushed
	require.Eventually(t, func() bool { return snk.shownCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestEngineRefreshNowTriggersCycle(t *testing.T) {
	fs := &fakeSource{}
	snk := newFakeSink(sink.PermissionGranted)
	e := newTestEngine(fs, snk)

	var wg sync.WaitGroup
	e.Start(&wg)
	defer func() { e.Stop(); wg.Wait() }()

	waitForFetches(t, fs, 1)
	assert.Empty(t, e.Snapshot().Alerts)

	fs.setBills([]models.Bill{overdueBill(7)})
	e.RefreshNow()

	require.Eventually(t, func() bool { return len(e.Snapshot().Alerts) == 1 }, time.Second, 5*time.Millisecond)
}

func TestEngineFailedFetchKeepsLastGoodList(t *testing.T) {
	fs := &fakeSource{bills: []models.Bill{overdueBill(7)}}
	snk := newFakeSink(sink.PermissionGranted)
	e := newTestEngine(fs, snk)

	var wg sync.WaitGroup
	e.Start(&wg)
	defer func() { e.Stop(); wg.Wait() }()

	require.Eventually(t, func() bool { return snk.shownCount() == 1 }, time.Second, 5*time.Millisecond)

	fs.setErr(context.DeadlineExceeded)
	e.RefreshNow()
	waitForFetches(t, fs, 2)

	// last good list stays visible, engine returns to idle
	require.Eventually(t, func() bool { return e.State() == StateIdle && !e.Snapshot().Loading }, time.Second, 5*time.Millisecond)
	assert.Len(t, e.Snapshot().Alerts, 1)

	// seen set was untouched by the failed cycle: the surviving alert is
	// not re-pushed once fetching recovers
	fs.setErr(nil)
	e.RefreshNow()
	waitForFetches(t, fs, 3)
	require.Eventually(t, func() bool { return e.State() == StateIdle }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, snk.shownCount())
}

func TestEngineCoalescesTriggersDuringCycle(t *testing.T) {
	fs := &fakeSource{gate: make(chan struct{})}
	snk := newFakeSink(sink.PermissionGranted)
	e := newTestEngine(fs, snk)

	var wg sync.WaitGroup
	e.Start(&wg)
	defer func() { e.Stop(); wg.Wait() }()

	// first cycle is parked inside the slow fetch
	waitForFetches(t, fs, 1)

	// triggers fired mid-cycle must not stack up extra cycles
	for i := 0; i < 5; i++ {
		e.RefreshNow()
	}
	close(fs.gate)

	require.Eventually(t, func() bool { return e.State() == StateIdle }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, fs.fetchCount())
}

func TestEngineReadStatePersistsAcrossCycles(t *testing.T) {
	fs := &fakeSource{bills: []models.Bill{overdueBill(7)}}
	snk := newFakeSink(sink.PermissionGranted)
	e := newTestEngine(fs, snk)

	var wg sync.WaitGroup
	e.Start(&wg)
	defer func() { e.Stop(); wg.Wait() }()

	require.Eventually(t, func() bool { return len(e.Snapshot().Alerts) == 1 }, time.Second, 5*time.Millisecond)

	e.MarkRead("overdue-7")
	assert.Zero(t, e.Snapshot().UnreadCount)

	// condition still holds on the next cycle: stays read
	e.RefreshNow()
	waitForFetches(t, fs, 2)
	require.Eventually(t, func() bool {
		snap := e.Snapshot()
		return len(snap.Alerts) == 1 && snap.Alerts[0].Read && snap.UnreadCount == 0
	}, time.Second, 5*time.Millisecond)
}

func TestEngineRequestsPermissionOnce(t *testing.T) {
	fs := &fakeSource{}
	snk := newFakeSink(sink.PermissionDefault)
	e := newTestEngine(fs, snk)

	var wg sync.WaitGroup
	e.Start(&wg)
	defer func() { e.Stop(); wg.Wait() }()

	waitForFetches(t, fs, 1)
	snk.mu.Lock()
	requests := snk.requests
	snk.mu.Unlock()
	assert.Equal(t, 1, requests)
}

func TestEngineNeverPromptsAfterDenial(t *testing.T) {
	fs := &fakeSource{}
	snk := newFakeSink(sink.PermissionDenied)
	e := newTestEngine(fs, snk)

	var wg sync.WaitGroup
	e.Start(&wg)
	defer func() { e.Stop(); wg.Wait() }()

	waitForFetches(t, fs, 1)
	snk.mu.Lock()
	requests := snk.requests
	snk.mu.Unlock()
	assert.Zero(t, requests)
}

func TestEngineNavigationCallback(t *testing.T) {
	fs := &fakeSource{}
	e := newTestEngine(fs, newFakeSink(sink.PermissionGranted))

	var got models.Action
	e.OnNavigate(func(a models.Action) { got = a })
	e.Navigate(models.Action{Section: "bills", RecordID: 7})

	assert.Equal(t, models.Action{Section: "bills", RecordID: 7}, got)
}

func TestEngineSnapshotCallback(t *testing.T) {
	fs := &fakeSource{bills: []models.Bill{overdueBill(7)}}
	e := newTestEngine(fs, newFakeSink(sink.PermissionGranted))

	var mu sync.Mutex
	var last models.Snapshot
	e.OnSnapshot(func(s models.Snapshot) {
		mu.Lock()
		last = s
		mu.Unlock()
	})

	var wg sync.WaitGroup
	e.Start(&wg)
	defer func() { e.Stop(); wg.Wait() }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(last.Alerts) == 1 && !last.Loading
	}, time.Second, 5*time.Millisecond)
}
