package downloads_test

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"zeku/internal/cache"
	"zeku/internal/domain/errs"
	"zeku/internal/downloads"
	"zeku/internal/enums"
	"zeku/internal/models"
	"zeku/internal/queue"
	"zeku/internal/repo"
	"zeku/internal/scheduler"
	"zeku/internal/testutil"
)

type execFixture struct {
	store  *repo.Store
	cache  *cache.Reconciler
	mgr    *queue.Manager
	runner *testutil.FakeRunner
	exec   *downloads.Executor
}

func newExecFixture(t *testing.T, runner *testutil.FakeRunner) *execFixture {
	t.Helper()
	f := &execFixture{
		store:  testutil.NewTestStore(t),
		cache:  cache.NewReconciler(t.TempDir()),
		runner: runner,
	}
	clk := testutil.FixedClock()
	f.mgr = queue.New(f.store, f.cache, queue.Options{Clock: clk})
	f.exec = downloads.NewExecutor(f.mgr, f.cache, loadSettings(t), downloads.ExecutorOptions{
		Runner:       runner,
		Clock:        clk,
		PollInterval: 10 * time.Millisecond,
	})
	return f
}

func (f *execFixture) enqueue(t *testing.T, url string) int64 {
	t.Helper()
	adm, err := f.mgr.Enqueue(context.Background(), testutil.NewItem(url), enums.PreventDuplicateNone)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	return adm.ID
}

func (f *execFixture) get(t *testing.T, id int64) *models.DownloadItem {
	t.Helper()
	item, err := f.store.DownloadStore().Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get(%d) failed: %v", id, err)
	}
	return item
}

// runAsync starts Run and returns a channel with its result.
func (f *execFixture) runAsync(ctx context.Context, req scheduler.Request) <-chan error {
	done := make(chan error, 1)
	go func() { done <- f.exec.Run(ctx, req) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func waitStarted(t *testing.T, r *testutil.FakeRunner) {
	t.Helper()
	select {
	case <-r.Started:
	case <-time.After(5 * time.Second):
		t.Fatal("runner was not started")
	}
}

func TestExecutorCompletesItem(t *testing.T) {
	ctx := context.Background()
	f := newExecFixture(t, testutil.NewFakeRunner("[download] 100% of 10MiB", "/media/downloads/out.mkv"))
	id := f.enqueue(t, "https://example.com/a")

	if err := f.exec.Run(ctx, scheduler.Request{PriorityIDs: []int64{id}}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, err := f.store.DownloadStore().Get(ctx, id); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("completed row should be removed, err = %v", err)
	}
	if _, err := os.Stat(f.cache.Path(id)); !os.IsNotExist(err) {
		t.Errorf("cache dir should be removed, stat err = %v", err)
	}

	history, err := f.store.HistoryStore().List(ctx, models.HistoryFilter{})
	if err != nil {
		t.Fatalf("List history failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history = %d entries, want 1", len(history))
	}
	h := history[0]
	if !slices.Equal(h.DownloadPath, []string{"/media/downloads/out.mkv"}) {
		t.Errorf("DownloadPath = %v", h.DownloadPath)
	}
	if !strings.HasSuffix(h.Command, "https://example.com/a") || h.DownloadID != id {
		t.Errorf("history = %+v", h)
	}

	logs, err := f.store.LogStore().List(ctx)
	if err != nil {
		t.Fatalf("List logs failed: %v", err)
	}
	if len(logs) != 1 || !strings.Contains(logs[0].Content, "/media/downloads/out.mkv") {
		t.Errorf("logs = %+v", logs)
	}
}

func TestExecutorFailureKeepsLog(t *testing.T) {
	runner := testutil.NewFakeRunner("ERROR: Video unavailable")
	runner.Err = errors.New("exit status 1")
	f := newExecFixture(t, runner)
	id := f.enqueue(t, "https://example.com/gone")

	if err := f.exec.Run(context.Background(), scheduler.Request{PriorityIDs: []int64{id}}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	item := f.get(t, id)
	if item.Status != models.StatusError {
		t.Fatalf("status = %s, want %s", item.Status, models.StatusError)
	}
	if item.LogID == nil {
		t.Fatal("failed item should keep its log id")
	}
}

func TestExecutorCancelStopsProcess(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.Block = true
	f := newExecFixture(t, runner)
	id := f.enqueue(t, "https://example.com/long")

	done := f.runAsync(context.Background(), scheduler.Request{PriorityIDs: []int64{id}})
	waitStarted(t, runner)

	if _, err := f.mgr.Cancel(context.Background(), id); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := f.get(t, id).Status; got != models.StatusCancelled {
		t.Fatalf("status = %s, want %s", got, models.StatusCancelled)
	}
}

func TestExecutorObservesStatusChange(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.Block = true
	f := newExecFixture(t, runner)
	id := f.enqueue(t, "https://example.com/paused")

	done := f.runAsync(context.Background(), scheduler.Request{PriorityIDs: []int64{id}})
	waitStarted(t, runner)

	// Changed behind the executor's back, only the status poll can notice.
	if _, err := f.store.DownloadStore().SetStatusMultiple(context.Background(), []int64{id}, models.StatusPaused); err != nil {
		t.Fatalf("SetStatusMultiple failed: %v", err)
	}
	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := f.get(t, id).Status; got != models.StatusPaused {
		t.Fatalf("status = %s, want %s", got, models.StatusPaused)
	}
}

func TestExecutorShutdownRequeues(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.Block = true
	f := newExecFixture(t, runner)
	id := f.enqueue(t, "https://example.com/shutdown")

	ctx, cancel := context.WithCancel(context.Background())
	done := f.runAsync(ctx, scheduler.Request{PriorityIDs: []int64{id}})
	waitStarted(t, runner)
	cancel()

	if err := waitDone(t, done); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err = %v, want context.Canceled", err)
	}
	if got := f.get(t, id).Status; got != models.StatusQueued {
		t.Fatalf("status = %s, want %s", got, models.StatusQueued)
	}
}

func TestExecutorSkipsNonRunnable(t *testing.T) {
	ctx := context.Background()
	f := newExecFixture(t, testutil.NewFakeRunner())
	id := f.enqueue(t, "https://example.com/p")
	if _, err := f.mgr.Pause(ctx, id); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}

	if err := f.exec.Run(ctx, scheduler.Request{PriorityIDs: []int64{id, 9999}}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n := len(f.runner.Calls()); n != 0 {
		t.Fatalf("runner called %d times for a paused item", n)
	}
}

func TestExecutorContinuesAfterPriority(t *testing.T) {
	ctx := context.Background()
	f := newExecFixture(t, testutil.NewFakeRunner("/media/downloads/x.mkv"))
	first := f.enqueue(t, "https://example.com/1")
	second := f.enqueue(t, "https://example.com/2")

	req := scheduler.Request{PriorityIDs: []int64{second}, ContinueAfterPriority: true}
	if err := f.exec.Run(ctx, req); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	calls := f.runner.Calls()
	if len(calls) != 2 {
		t.Fatalf("runner called %d times, want 2", len(calls))
	}
	if last := calls[0].Args[len(calls[0].Args)-1]; last != "https://example.com/2" {
		t.Errorf("priority item ran second, first URL = %q", last)
	}
	for _, id := range []int64{first, second} {
		if _, err := f.store.DownloadStore().Get(ctx, id); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("download %d not completed, err = %v", id, err)
		}
	}
}
