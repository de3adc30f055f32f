package scheduler_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"zeku/internal/models"
	"zeku/internal/scheduler"
	"zeku/internal/testutil"
)

func item(id, sortKey, start int64) *models.DownloadItem {
	it := testutil.NewItem("https://example.com/" + string(rune('a'+id%26)))
	it.ID = id
	it.SortKey = sortKey
	it.DownloadStartTime = start
	return it
}

func TestPlanDelay(t *testing.T) {
	t.Parallel()
	now := testutil.FixedClock().Now()

	tests := []struct {
		name  string
		start int64
		want  time.Duration
	}{
		{"unset start runs now", 0, 0},
		{"past start runs now", now.Add(-time.Hour).UnixMilli(), 0},
		{"within grace runs now", now.Add(59 * time.Second).UnixMilli(), 0},
		{"at grace boundary runs now", now.Add(60 * time.Second).UnixMilli(), 0},
		{"beyond grace waits", now.Add(61 * time.Second).UnixMilli(), 61 * time.Second},
		{"far future waits", now.Add(3 * time.Hour).UnixMilli(), 3 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := scheduler.Plan([]*models.DownloadItem{item(1, 1, tt.start)}, now, scheduler.PlanOptions{AllowMetered: true})
			if req.Delay != tt.want {
				t.Fatalf("Delay = %v, want %v", req.Delay, tt.want)
			}
		})
	}
}

func TestPlanEarliestStartWins(t *testing.T) {
	t.Parallel()
	now := testutil.FixedClock().Now()

	items := []*models.DownloadItem{
		item(1, 1, now.Add(2*time.Hour).UnixMilli()),
		item(2, 2, now.Add(10*time.Minute).UnixMilli()),
	}
	req := scheduler.Plan(items, now, scheduler.PlanOptions{AllowMetered: true})
	if req.Delay != 10*time.Minute {
		t.Fatalf("Delay = %v, want 10m", req.Delay)
	}
	if !slices.Equal(req.PriorityIDs, []int64{2, 1}) {
		t.Fatalf("PriorityIDs = %v, want [2 1]", req.PriorityIDs)
	}

	// An unset start time is due now and beats any future item.
	items = append(items, item(3, 3, 0))
	req = scheduler.Plan(items, now, scheduler.PlanOptions{AllowMetered: true})
	if req.Delay != 0 || req.PriorityIDs[0] != 3 {
		t.Fatalf("Delay = %v, PriorityIDs = %v", req.Delay, req.PriorityIDs)
	}
}

func TestPlanPriorityCapAndOrder(t *testing.T) {
	t.Parallel()
	now := testutil.FixedClock().Now()

	var items []*models.DownloadItem
	for i := int64(30); i >= 1; i-- {
		items = append(items, item(i, i, 0))
	}
	req := scheduler.Plan(items, now, scheduler.PlanOptions{ContinueAfterPriority: true})

	if len(req.PriorityIDs) != 20 {
		t.Fatalf("len(PriorityIDs) = %d, want 20", len(req.PriorityIDs))
	}
	for i, id := range req.PriorityIDs {
		if id != int64(i+1) {
			t.Fatalf("PriorityIDs[%d] = %d, want %d", i, id, i+1)
		}
	}
	if !req.ContinueAfterPriority {
		t.Error("ContinueAfterPriority not carried")
	}
	if req.Network != scheduler.NetworkUnmetered {
		t.Errorf("Network = %v, want unmetered when metered is disallowed", req.Network)
	}
	if req.Name != "download" {
		t.Errorf("Name = %q", req.Name)
	}
}

func TestPlanEmpty(t *testing.T) {
	t.Parallel()
	req := scheduler.Plan(nil, time.Now(), scheduler.PlanOptions{AllowMetered: true})
	if req.Delay != 0 || len(req.PriorityIDs) != 0 || req.Network != scheduler.NetworkAny {
		t.Fatalf("req = %+v", req)
	}
}

// fakeExecutor records requests and optionally blocks until released.
type fakeExecutor struct {
	mu       sync.Mutex
	requests []scheduler.Request
	ran      chan scheduler.Request
	release  chan struct{}
	active   atomic.Int32
	maxSeen  atomic.Int32
}

func newFakeExecutor(blocking bool) *fakeExecutor {
	f := &fakeExecutor{ran: make(chan scheduler.Request, 16)}
	if blocking {
		f.release = make(chan struct{})
	}
	return f
}

func (f *fakeExecutor) Run(ctx context.Context, req scheduler.Request) error {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	f.ran <- req

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
		}
	}
	return nil
}

func waitRun(t *testing.T, f *fakeExecutor) scheduler.Request {
	t.Helper()
	select {
	case req := <-f.ran:
		return req
	case <-time.After(3 * time.Second):
		t.Fatal("executor was not run")
	}
	return scheduler.Request{}
}

func newDispatcher(t *testing.T, exec scheduler.Executor, opts scheduler.Options) *scheduler.Dispatcher {
	t.Helper()
	store := testutil.NewTestStore(t)
	if opts.IDs == nil {
		opts.IDs = testutil.NewStubIDGenerator()
	}
	if opts.Clock == nil {
		opts.Clock = testutil.FixedClock()
	}
	d := scheduler.New(exec, store.DownloadStore(), opts)
	d.Start(context.Background())
	t.Cleanup(d.Stop)
	return d
}

func TestDispatcherRunsImmediateRequest(t *testing.T) {
	t.Parallel()
	exec := newFakeExecutor(false)
	d := newDispatcher(t, exec, scheduler.Options{AllowMetered: true})

	adv, err := d.Submit(context.Background(), []*models.DownloadItem{item(7, 1, 0)}, true)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(adv.Messages) != 0 {
		t.Errorf("unexpected advisory: %v", adv.Messages)
	}

	req := waitRun(t, exec)
	if req.ID != "id-1" || !slices.Equal(req.PriorityIDs, []int64{7}) {
		t.Fatalf("request = %+v", req)
	}
}

func TestDispatcherReplacesPendingRequest(t *testing.T) {
	t.Parallel()
	exec := newFakeExecutor(false)
	clk := testutil.FixedClock()
	d := newDispatcher(t, exec, scheduler.Options{Clock: clk, AllowMetered: true})
	ctx := context.Background()

	later := clk.Now().Add(time.Hour).UnixMilli()
	adv, err := d.Submit(ctx, []*models.DownloadItem{item(1, 1, later)}, true)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(adv.Messages) != 1 || !strings.HasPrefix(adv.Messages[0], "Download rescheduled to") {
		t.Fatalf("advisory = %v", adv.Messages)
	}
	if _, err := d.Submit(ctx, []*models.DownloadItem{item(2, 2, later)}, true); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	req, ok := d.Pending()
	if !ok {
		t.Fatal("no pending request")
	}
	if req.ID != "id-2" || !slices.Equal(req.PriorityIDs, []int64{2}) {
		t.Fatalf("pending = %+v, want the second request", req)
	}
	if got := d.Superseded(); got != 1 {
		t.Fatalf("Superseded = %d, want 1", got)
	}

	// The replacement runs immediately; the first request must never run.
	if _, err := d.Submit(ctx, []*models.DownloadItem{item(3, 3, 0)}, true); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	run := waitRun(t, exec)
	if run.ID != "id-3" {
		t.Fatalf("ran %s, want id-3", run.ID)
	}
	select {
	case extra := <-exec.ran:
		t.Fatalf("superseded request %s ran", extra.ID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherSingleSlot(t *testing.T) {
	t.Parallel()
	exec := newFakeExecutor(true)
	d := newDispatcher(t, exec, scheduler.Options{AllowMetered: true})
	ctx := context.Background()

	if _, err := d.Submit(ctx, []*models.DownloadItem{item(1, 1, 0)}, true); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	waitRun(t, exec)

	if _, err := d.Submit(ctx, []*models.DownloadItem{item(2, 2, 0)}, true); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, ok := d.Running(); !ok {
		t.Fatal("first request not reported as running")
	}

	select {
	case req := <-exec.ran:
		t.Fatalf("request %s started while the slot was busy", req.ID)
	case <-time.After(100 * time.Millisecond):
	}

	close(exec.release)
	waitRun(t, exec)
	if got := exec.maxSeen.Load(); got != 1 {
		t.Fatalf("max concurrent runs = %d, want 1", got)
	}
}

func TestDispatcherWaitsForUnmeteredNetwork(t *testing.T) {
	t.Parallel()
	exec := newFakeExecutor(false)
	network := scheduler.NewStaticNetwork(true)
	d := newDispatcher(t, exec, scheduler.Options{
		Network:         network,
		AllowMetered:    false,
		RecheckInterval: 10 * time.Millisecond,
	})

	adv, err := d.Submit(context.Background(), []*models.DownloadItem{item(1, 1, 0)}, true)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(adv.Messages) != 1 || !strings.Contains(adv.Messages[0], "Metered") {
		t.Fatalf("advisory = %v", adv.Messages)
	}

	select {
	case req := <-exec.ran:
		t.Fatalf("request %s ran on a metered network", req.ID)
	case <-time.After(100 * time.Millisecond):
	}
	if _, ok := d.Pending(); !ok {
		t.Fatal("request was dropped instead of staying pending")
	}

	network.SetMetered(false)
	waitRun(t, exec)
}

func TestKickSubmitsRunnableRows(t *testing.T) {
	t.Parallel()
	exec := newFakeExecutor(false)
	store := testutil.NewTestStore(t)
	ctx := context.Background()

	id, err := store.DownloadStore().Insert(ctx, testutil.NewItem("https://k.example/a"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	d := scheduler.New(exec, store.DownloadStore(), scheduler.Options{
		Clock:        testutil.FixedClock(),
		IDs:          testutil.NewStubIDGenerator(),
		AllowMetered: true,
	})
	d.Start(ctx)
	t.Cleanup(d.Stop)

	d.Kick(ctx)
	req := waitRun(t, exec)
	if !slices.Equal(req.PriorityIDs, []int64{id}) {
		t.Fatalf("PriorityIDs = %v, want [%d]", req.PriorityIDs, id)
	}
}

func TestKickReturnsMeteredAdvisory(t *testing.T) {
	t.Parallel()
	exec := newFakeExecutor(false)
	store := testutil.NewTestStore(t)
	ctx := context.Background()

	if _, err := store.DownloadStore().Insert(ctx, testutil.NewItem("https://k.example/metered")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	d := scheduler.New(exec, store.DownloadStore(), scheduler.Options{
		Clock:           testutil.FixedClock(),
		IDs:             testutil.NewStubIDGenerator(),
		Network:         scheduler.NewStaticNetwork(true),
		AllowMetered:    false,
		RecheckInterval: time.Hour,
	})
	d.Start(ctx)
	t.Cleanup(d.Stop)

	adv := d.Kick(ctx)
	if len(adv.Messages) != 1 || !strings.HasPrefix(adv.Messages[0], "Metered networks are not allowed") {
		t.Fatalf("advisory = %v", adv.Messages)
	}
	if _, ok := d.Pending(); !ok {
		t.Fatal("kicked request is not pending")
	}
}

func TestAdviseDoesNotSubmit(t *testing.T) {
	t.Parallel()
	exec := newFakeExecutor(false)
	store := testutil.NewTestStore(t)
	ctx := context.Background()
	clk := testutil.FixedClock()

	later := testutil.NewItem("https://k.example/later")
	later.DownloadStartTime = clk.Now().Add(2 * time.Hour).UnixMilli()
	later.Status = models.StatusScheduled
	if _, err := store.DownloadStore().Insert(ctx, later); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	d := scheduler.New(exec, store.DownloadStore(), scheduler.Options{
		Clock:        clk,
		IDs:          testutil.NewStubIDGenerator(),
		Network:      scheduler.NewStaticNetwork(true),
		AllowMetered: false,
	})

	adv := d.Advise(ctx)
	if len(adv.Messages) != 2 {
		t.Fatalf("advisory = %v, want metered and rescheduled messages", adv.Messages)
	}
	if !strings.HasPrefix(adv.Messages[0], "Metered networks are not allowed") {
		t.Errorf("first message = %q", adv.Messages[0])
	}
	if !strings.HasPrefix(adv.Messages[1], "Download rescheduled to") {
		t.Errorf("second message = %q", adv.Messages[1])
	}
	if _, ok := d.Pending(); ok {
		t.Fatal("Advise submitted a request")
	}
	if got := d.Superseded(); got != 0 {
		t.Fatalf("Superseded = %d", got)
	}
}
