package queue_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"zeku/internal/domain/errs"
	"zeku/internal/enums"
	"zeku/internal/models"
	"zeku/internal/queue"
	"zeku/internal/repo"
	"zeku/internal/scheduler"
	"zeku/internal/testutil"
)

type countingKicker struct {
	n      atomic.Int32
	advice []string
}

func (k *countingKicker) Kick(context.Context) scheduler.Advisory {
	k.n.Add(1)
	return scheduler.Advisory{Messages: k.advice}
}

type fixture struct {
	store *repo.Store
	cache *testutil.FakeReconciler
	clock *testutil.StubClock
	mgr   *queue.Manager
	kick  *countingKicker
}

func newFixture(t *testing.T, keepCompleted bool, failIDs ...int64) *fixture {
	t.Helper()
	f := &fixture{
		store: testutil.NewTestStore(t),
		cache: testutil.NewFakeReconciler(failIDs...),
		clock: testutil.FixedClock(),
		kick:  &countingKicker{},
	}
	f.mgr = queue.New(f.store, f.cache, queue.Options{Clock: f.clock, KeepCompleted: keepCompleted})
	f.mgr.SetKicker(f.kick)
	return f
}

func (f *fixture) enqueue(t *testing.T, item *models.DownloadItem) int64 {
	t.Helper()
	adm, err := f.mgr.Enqueue(context.Background(), item, enums.PreventDuplicateNone)
	if err != nil {
		t.Fatalf("Enqueue(%q) failed: %v", item.URL, err)
	}
	return adm.ID
}

func (f *fixture) status(t *testing.T, id int64) models.Status {
	t.Helper()
	item, err := f.store.DownloadStore().Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get(%d) failed: %v", id, err)
	}
	return item.Status
}

func (f *fixture) activate(t *testing.T, id int64) {
	t.Helper()
	if err := f.store.DownloadStore().SetStatus(context.Background(), id, models.StatusActive); err != nil {
		t.Fatalf("SetStatus(%d, Active) failed: %v", id, err)
	}
}

func TestEnqueueDedupPolicies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		policy    enums.PreventDuplicateDownload
		existing  enums.MediaType
		candidate enums.MediaType
		want      bool
	}{
		{"none always admits", enums.PreventDuplicateNone, enums.MediaTypeVideo, enums.MediaTypeVideo, false},
		{"url rejects any type", enums.PreventDuplicateURL, enums.MediaTypeVideo, enums.MediaTypeAudio, true},
		{"type and url admits other type", enums.PreventDuplicateTypeAndURL, enums.MediaTypeVideo, enums.MediaTypeAudio, false},
		{"type and url rejects same type", enums.PreventDuplicateTypeAndURL, enums.MediaTypeAudio, enums.MediaTypeAudio, true},
		{"configuration rejects identical", enums.PreventDuplicateConfiguration, enums.MediaTypeVideo, enums.MediaTypeVideo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, false)
			ctx := context.Background()

			first := models.NewDownloadItem("https://example.com/v", tt.existing)
			firstID := f.enqueue(t, first)

			adm, err := f.mgr.Enqueue(ctx, models.NewDownloadItem("https://example.com/v", tt.candidate), tt.policy)
			if err != nil {
				t.Fatalf("Enqueue failed: %v", err)
			}
			if adm.Duplicate != tt.want {
				t.Fatalf("Duplicate = %v, want %v", adm.Duplicate, tt.want)
			}
			if tt.want && adm.ExistingID != firstID {
				t.Errorf("ExistingID = %d, want %d", adm.ExistingID, firstID)
			}

			n, err := f.store.DownloadStore().CountByStatus(ctx, models.AllStatuses()...)
			if err != nil {
				t.Fatalf("CountByStatus failed: %v", err)
			}
			want := 2
			if tt.want {
				want = 1
			}
			if n != want {
				t.Errorf("row count = %d, want %d", n, want)
			}
		})
	}
}

func TestEnqueueTypeAndURLAgainstActive(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	active := f.enqueue(t, models.NewDownloadItem("https://u.example/x", enums.MediaTypeVideo))
	f.activate(t, active)

	a, err := f.mgr.Enqueue(ctx, models.NewDownloadItem("https://u.example/x", enums.MediaTypeAudio), enums.PreventDuplicateTypeAndURL)
	if err != nil || a.Duplicate {
		t.Fatalf("item A: adm=%+v err=%v, want admitted", a, err)
	}
	b, err := f.mgr.Enqueue(ctx, models.NewDownloadItem("https://u.example/x", enums.MediaTypeVideo), enums.PreventDuplicateTypeAndURL)
	if err != nil {
		t.Fatalf("item B: %v", err)
	}
	if !b.Duplicate || b.ExistingID != active {
		t.Fatalf("item B: adm=%+v, want duplicate of %d", b, active)
	}
}

func TestEnqueueConfigurationDiffers(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	first := testutil.NewItem("https://c.example/1")
	first.Format = models.Format{FormatID: "137", Container: "mp4"}
	f.enqueue(t, first)

	other := testutil.NewItem("https://c.example/1")
	other.Format = models.Format{FormatID: "22", Container: "mp4"}
	adm, err := f.mgr.Enqueue(ctx, other, enums.PreventDuplicateConfiguration)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if adm.Duplicate {
		t.Fatal("different format id was rejected as duplicate")
	}
}

func TestEnqueueAfterTerminalIsAdmitted(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	id := f.enqueue(t, testutil.NewItem("https://t.example/a"))
	if _, err := f.mgr.Cancel(ctx, id); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	adm, err := f.mgr.Enqueue(ctx, testutil.NewItem("https://t.example/a"), enums.PreventDuplicateURL)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if adm.Duplicate {
		t.Fatal("cancelled row blocked admission")
	}
}

func TestEnqueueFutureStartIsScheduled(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	item := testutil.NewItem("https://s.example/a")
	item.DownloadStartTime = f.clock.Now().Add(time.Hour).UnixMilli()
	id := f.enqueue(t, item)

	if got := f.status(t, id); got != models.StatusScheduled {
		t.Fatalf("status = %s, want %s", got, models.StatusScheduled)
	}
	if f.kick.n.Load() == 0 {
		t.Error("kicker not called after admission")
	}
}

func TestConcurrentEnqueueAdmitsOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	const callers = 8
	var (
		wg       sync.WaitGroup
		admitted atomic.Int32
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			adm, err := f.mgr.Enqueue(ctx, testutil.NewItem("https://race.example/v"), enums.PreventDuplicateURL)
			if err != nil {
				t.Errorf("Enqueue failed: %v", err)
				return
			}
			if !adm.Duplicate {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := admitted.Load(); got != 1 {
		t.Fatalf("admitted %d rows, want 1", got)
	}
}

func TestEnqueueAllDedupsWithinBatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	items := []*models.DownloadItem{
		testutil.NewItem("https://b.example/1"),
		testutil.NewItem("https://b.example/2"),
		testutil.NewItem("https://b.example/1"),
	}
	adms, err := f.mgr.EnqueueAll(context.Background(), items, enums.PreventDuplicateURL)
	if err != nil {
		t.Fatalf("EnqueueAll failed: %v", err)
	}
	if len(adms) != 3 {
		t.Fatalf("got %d admissions, want 3", len(adms))
	}
	if adms[0].Duplicate || adms[1].Duplicate || !adms[2].Duplicate {
		t.Fatalf("admissions = %+v", adms)
	}
	if adms[2].ExistingID != adms[0].ID {
		t.Errorf("ExistingID = %d, want %d", adms[2].ExistingID, adms[0].ID)
	}
	if adms[0].ID >= adms[1].ID {
		t.Errorf("ids not in request order: %d, %d", adms[0].ID, adms[1].ID)
	}
}

func TestStageAndAdmit(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	queued := f.enqueue(t, testutil.NewItem("https://p.example/dup"))

	fresh, err := f.mgr.Stage(ctx, testutil.NewItem("https://p.example/new"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	dup, err := f.mgr.Stage(ctx, testutil.NewItem("https://p.example/dup"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if got := f.status(t, fresh); got != models.StatusProcessing {
		t.Fatalf("staged status = %s", got)
	}

	format := models.Format{FormatID: "251", Container: "webm", ACodec: "opus"}
	adm, err := f.mgr.Admit(ctx, fresh, format, []models.Format{format}, enums.PreventDuplicateURL)
	if err != nil || adm.Duplicate {
		t.Fatalf("Admit(fresh) = %+v, %v", adm, err)
	}
	item, err := f.store.DownloadStore().Get(ctx, fresh)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if item.Status != models.StatusQueued || item.Format.FormatID != "251" || item.Container != "webm" {
		t.Fatalf("admitted item = status %s format %+v container %q", item.Status, item.Format, item.Container)
	}

	adm, err = f.mgr.Admit(ctx, dup, format, nil, enums.PreventDuplicateURL)
	if err != nil {
		t.Fatalf("Admit(dup) failed: %v", err)
	}
	if !adm.Duplicate || adm.ExistingID != queued {
		t.Fatalf("Admit(dup) = %+v, want duplicate of %d", adm, queued)
	}
	if _, err := f.store.DownloadStore().Get(ctx, dup); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("rejected staging row still present: %v", err)
	}
	if !slices.Contains(f.cache.Reconciled(), dup) {
		t.Error("rejected staging row cache not reconciled")
	}

	if _, err := f.mgr.Admit(ctx, fresh, format, nil, enums.PreventDuplicateNone); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Fatalf("Admit of queued row: err = %v, want ErrInvalidTransition", err)
	}
}

func TestLifecycleTransitions(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	a := f.enqueue(t, testutil.NewItem("https://l.example/a"))
	b := f.enqueue(t, testutil.NewItem("https://l.example/b"))

	if n, err := f.mgr.Pause(ctx, a, b); err != nil || n != 2 {
		t.Fatalf("Pause = %d, %v", n, err)
	}
	if n, err := f.mgr.Resume(ctx, a); err != nil || n != 1 {
		t.Fatalf("Resume = %d, %v", n, err)
	}
	if got := f.status(t, a); got != models.StatusQueued {
		t.Fatalf("resumed status = %s", got)
	}

	if n, err := f.mgr.Cancel(ctx, a, b); err != nil || n != 2 {
		t.Fatalf("Cancel = %d, %v", n, err)
	}
	if n, err := f.mgr.Retry(ctx, a); err != nil || n != 1 {
		t.Fatalf("Retry = %d, %v", n, err)
	}
	if got := f.status(t, a); got != models.StatusQueued {
		t.Fatalf("retried status = %s", got)
	}

	if n, err := f.mgr.Save(ctx, b); err != nil || n != 1 {
		t.Fatalf("Save = %d, %v", n, err)
	}
	// Saved may only be re-queued, so a pause is ignored.
	if n, err := f.mgr.Pause(ctx, b); err != nil || n != 0 {
		t.Fatalf("Pause(saved) = %d, %v", n, err)
	}
	if err := f.mgr.SetStatus(ctx, b, models.StatusActive); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Fatalf("Saved -> Active: err = %v", err)
	}
}

func TestResumeFutureItemIsScheduled(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	item := testutil.NewItem("https://r.example/a")
	item.DownloadStartTime = f.clock.Now().Add(2 * time.Hour).UnixMilli()
	id := f.enqueue(t, item)
	if _, err := f.mgr.Pause(ctx, id); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if _, err := f.mgr.Resume(ctx, id); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if got := f.status(t, id); got != models.StatusScheduled {
		t.Fatalf("status = %s, want %s", got, models.StatusScheduled)
	}
}

func TestReschedule(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	id := f.enqueue(t, testutil.NewItem("https://r.example/b"))
	later := f.clock.Now().Add(time.Hour).UnixMilli()
	if err := f.mgr.Reschedule(ctx, id, later); err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}
	item, err := f.store.DownloadStore().Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if item.Status != models.StatusScheduled || item.DownloadStartTime != later {
		t.Fatalf("item = %s at %d", item.Status, item.DownloadStartTime)
	}

	if err := f.mgr.Reschedule(ctx, id, 0); err != nil {
		t.Fatalf("Reschedule(now) failed: %v", err)
	}
	if got := f.status(t, id); got != models.StatusQueued {
		t.Fatalf("status = %s, want %s", got, models.StatusQueued)
	}

	f.activate(t, id)
	if err := f.mgr.Reschedule(ctx, id, later); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Fatalf("Reschedule(active): err = %v", err)
	}
}

func TestDeleteReconcilesEachIDOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	a := f.enqueue(t, testutil.NewItem("https://d.example/a"))
	b := f.enqueue(t, testutil.NewItem("https://d.example/b"))
	keep := f.enqueue(t, testutil.NewItem("https://d.example/keep"))
	f.cache.Fail[b] = true

	if _, err := f.mgr.Cancel(ctx, a, b); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	res, err := f.mgr.DeleteCancelled(ctx)
	if err != nil {
		t.Fatalf("DeleteCancelled failed: %v", err)
	}
	if !slices.Equal(res.IDs, []int64{a, b}) {
		t.Fatalf("deleted ids = %v, want %v", res.IDs, []int64{a, b})
	}
	if _, ok := res.CacheFailed[b]; !ok || len(res.CacheFailed) != 1 {
		t.Fatalf("CacheFailed = %v, want only %d", res.CacheFailed, b)
	}
	if got := f.cache.Reconciled(); !slices.Equal(got, []int64{a, b}) {
		t.Fatalf("reconciled = %v, want %v", got, []int64{a, b})
	}

	for _, id := range []int64{a, b} {
		if _, err := f.store.DownloadStore().Get(ctx, id); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("row %d still present: %v", id, err)
		}
	}
	if got := f.status(t, keep); got != models.StatusQueued {
		t.Errorf("unrelated row status = %s", got)
	}
}

func TestDeleteSingleAndMissing(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	id := f.enqueue(t, testutil.NewItem("https://d.example/one"))
	res, err := f.mgr.Delete(ctx, id)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !slices.Equal(res.IDs, []int64{id}) {
		t.Fatalf("deleted = %v", res.IDs)
	}

	if _, err := f.mgr.Delete(ctx, id); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second Delete: err = %v, want ErrNotFound", err)
	}
	if got := f.cache.Reconciled(); !slices.Equal(got, []int64{id}) {
		t.Fatalf("reconciled = %v, want exactly [%d]", got, id)
	}
}

func TestDeleteAllWithIDsIgnoresMissing(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	a := f.enqueue(t, testutil.NewItem("https://d.example/x"))
	res, err := f.mgr.DeleteAllWithIDs(context.Background(), []int64{a, 9999})
	if err != nil {
		t.Fatalf("DeleteAllWithIDs failed: %v", err)
	}
	if !slices.Equal(res.IDs, []int64{a}) {
		t.Fatalf("deleted = %v, want [%d]", res.IDs, a)
	}
}

func TestCompleteWritesHistoryAndRemovesRow(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	id := f.enqueue(t, testutil.NewItem("https://h.example/a"))
	f.activate(t, id)

	err := f.mgr.Complete(ctx, id, queue.Completion{
		Paths:    []string{"/media/a.mp4"},
		Format:   models.Format{FormatID: "22", Container: "mp4"},
		FileSize: 1024,
		Command:  "yt-dlp https://h.example/a",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if _, err := f.store.DownloadStore().Get(ctx, id); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("completed row still present: %v", err)
	}
	hist, err := f.store.HistoryStore().ListByURL(ctx, "https://h.example/a")
	if err != nil {
		t.Fatalf("ListByURL failed: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("history rows = %d, want 1", len(hist))
	}
	if hist[0].DownloadID != id || hist[0].FileSize != 1024 || hist[0].Format.FormatID != "22" {
		t.Errorf("history = %+v", hist[0])
	}
	if !slices.Contains(f.cache.Reconciled(), id) {
		t.Error("cache not reconciled on completion")
	}

	if err := f.mgr.Complete(ctx, id, queue.Completion{}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second Complete: err = %v", err)
	}
}

func TestCompleteKeepAndIncognito(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := context.Background()

	item := testutil.NewItem("https://h.example/private")
	item.Incognito = true
	id := f.enqueue(t, item)
	f.activate(t, id)

	if err := f.mgr.Complete(ctx, id, queue.Completion{Paths: []string{"/tmp/x"}}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got := f.status(t, id); got != models.StatusSaved {
		t.Fatalf("status = %s, want %s", got, models.StatusSaved)
	}
	n, err := f.store.HistoryStore().Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("incognito download wrote %d history rows", n)
	}
}

func TestCompleteRequiresActive(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	id := f.enqueue(t, testutil.NewItem("https://h.example/q"))
	if err := f.mgr.Complete(context.Background(), id, queue.Completion{}); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestFailKeepsPartialData(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	item := testutil.NewItem("https://f.example/a")
	item.Format = models.Format{FormatID: "18"}
	id := f.enqueue(t, item)
	f.activate(t, id)

	logID, err := f.store.LogStore().Insert(ctx, &models.LogItem{Title: "a", Content: "ERROR: boom"})
	if err != nil {
		t.Fatalf("log Insert failed: %v", err)
	}
	if err := f.mgr.Fail(ctx, id, queue.Failure{LogID: &logID}); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	got, err := f.store.DownloadStore().Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.StatusError {
		t.Fatalf("status = %s", got.Status)
	}
	if got.Format.FormatID != "18" {
		t.Errorf("format lost: %+v", got.Format)
	}
	if got.LogID == nil || *got.LogID != logID {
		t.Errorf("log id = %v, want %d", got.LogID, logID)
	}
}

func TestRecoverRequeuesActive(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	id := f.enqueue(t, testutil.NewItem("https://rec.example/a"))
	f.activate(t, id)

	n, err := f.mgr.Recover(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Recover = %d, %v", n, err)
	}
	if got := f.status(t, id); got != models.StatusQueued {
		t.Fatalf("status = %s", got)
	}
}

func TestWatchCountsFollowsCommits(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := f.mgr.WatchCounts(ctx)
	first := <-ch
	if first.Queued != 0 {
		t.Fatalf("initial counts = %+v", first)
	}

	f.enqueue(t, testutil.NewItem("https://w.example/a"))

	select {
	case c := <-ch:
		if c.Queued != 1 {
			t.Fatalf("counts after enqueue = %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no counts after enqueue")
	}
}

func TestDeleteProcessingByURL(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	queued := f.enqueue(t, testutil.NewItem("https://p.example/stale"))
	stale, err := f.mgr.Stage(ctx, testutil.NewItem("https://p.example/stale"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	other, err := f.mgr.Stage(ctx, testutil.NewItem("https://p.example/other"))
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	res, err := f.mgr.DeleteProcessingByURL(ctx, "https://p.example/stale")
	if err != nil {
		t.Fatalf("DeleteProcessingByURL failed: %v", err)
	}
	if !slices.Equal(res.IDs, []int64{stale}) {
		t.Fatalf("deleted %v, want [%d]", res.IDs, stale)
	}
	if got := f.status(t, queued); got != models.StatusQueued {
		t.Fatalf("queued row status = %s", got)
	}
	if got := f.status(t, other); got != models.StatusProcessing {
		t.Fatalf("other staging row status = %s", got)
	}
}

func TestCancelActiveAndQueuedKeepsScheduledAndPaused(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	queued := f.enqueue(t, testutil.NewItem("https://h.example/queued"))
	active := f.enqueue(t, testutil.NewItem("https://h.example/active"))
	f.activate(t, active)

	later := testutil.NewItem("https://h.example/scheduled")
	later.DownloadStartTime = f.clock.Now().Add(24 * time.Hour).UnixMilli()
	scheduled := f.enqueue(t, later)

	paused := f.enqueue(t, testutil.NewItem("https://h.example/paused"))
	if _, err := f.mgr.Pause(ctx, paused); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}

	n, err := f.mgr.CancelActiveAndQueued(ctx)
	if err != nil || n != 2 {
		t.Fatalf("CancelActiveAndQueued = %d, %v, want 2", n, err)
	}

	want := map[int64]models.Status{
		queued:    models.StatusCancelled,
		active:    models.StatusCancelled,
		scheduled: models.StatusScheduled,
		paused:    models.StatusPaused,
	}
	for id, st := range want {
		if got := f.status(t, id); got != st {
			t.Errorf("download %d status = %s, want %s", id, got, st)
		}
	}
}

// corruptStatus writes a status value outside the known set straight to the row.
func (f *fixture) corruptStatus(t *testing.T, id int64) {
	t.Helper()
	_, err := f.store.DownloadStore().GetDB().Exec("UPDATE downloads SET status = 'garbage' WHERE id = ?", id)
	if err != nil {
		t.Fatalf("corrupting status of %d failed: %v", id, err)
	}
}

func TestUnknownStoredStatusActsAsError(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	retried := f.enqueue(t, testutil.NewItem("https://g.example/retry"))
	errored := f.enqueue(t, testutil.NewItem("https://g.example/errored"))
	kept := f.enqueue(t, testutil.NewItem("https://g.example/kept"))
	f.corruptStatus(t, retried)
	f.corruptStatus(t, errored)

	if got := f.status(t, retried); got != models.StatusError {
		t.Fatalf("corrupt status read back as %s, want %s", got, models.StatusError)
	}

	if n, err := f.mgr.Retry(ctx, retried); err != nil || n != 1 {
		t.Fatalf("Retry = %d, %v, want 1", n, err)
	}
	if got := f.status(t, retried); got != models.StatusQueued {
		t.Fatalf("retried status = %s", got)
	}

	res, err := f.mgr.DeleteErrored(ctx)
	if err != nil {
		t.Fatalf("DeleteErrored failed: %v", err)
	}
	if !slices.Equal(res.IDs, []int64{errored}) {
		t.Fatalf("DeleteErrored ids = %v, want [%d]", res.IDs, errored)
	}
	if got := f.status(t, kept); got != models.StatusQueued {
		t.Fatalf("untouched row status = %s", got)
	}
}

func TestDeleteAllIncludesUnknownStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	a := f.enqueue(t, testutil.NewItem("https://g.example/a"))
	b := f.enqueue(t, testutil.NewItem("https://g.example/b"))
	f.corruptStatus(t, a)

	res, err := f.mgr.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	if len(res.IDs) != 2 || !slices.Contains(res.IDs, a) || !slices.Contains(res.IDs, b) {
		t.Fatalf("DeleteAll ids = %v, want %d and %d", res.IDs, a, b)
	}
	if _, err := f.store.DownloadStore().Get(ctx, a); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("corrupt row survived DeleteAll: %v", err)
	}
}

func TestEnqueueConfigurationComparesSubtitles(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	first := testutil.NewItem("https://c.example/subs")
	first.AvailableSubtitles = []string{"en"}
	id := f.enqueue(t, first)

	other := testutil.NewItem("https://c.example/subs")
	other.AvailableSubtitles = []string{"en", "de"}
	adm, err := f.mgr.Enqueue(ctx, other, enums.PreventDuplicateConfiguration)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if adm.Duplicate {
		t.Fatal("different subtitle languages were rejected as duplicate")
	}

	same := testutil.NewItem("https://c.example/subs")
	same.AvailableSubtitles = []string{"en"}
	adm, err = f.mgr.Enqueue(ctx, same, enums.PreventDuplicateConfiguration)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if !adm.Duplicate || adm.ExistingID != id {
		t.Fatalf("Enqueue(same) = %+v, want duplicate of %d", adm, id)
	}
}

func TestAdmissionCarriesAdvisory(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	f.kick.advice = []string{"Download rescheduled to later"}
	ctx := context.Background()

	adm, err := f.mgr.Enqueue(ctx, testutil.NewItem("https://a.example/1"), enums.PreventDuplicateURL)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if !slices.Equal(adm.Advisory, f.kick.advice) {
		t.Fatalf("Advisory = %v, want %v", adm.Advisory, f.kick.advice)
	}

	dup, err := f.mgr.Enqueue(ctx, testutil.NewItem("https://a.example/1"), enums.PreventDuplicateURL)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if dup.Advisory != nil {
		t.Errorf("duplicate admission carried advisory %v", dup.Advisory)
	}

	items := []*models.DownloadItem{
		testutil.NewItem("https://a.example/1"),
		testutil.NewItem("https://a.example/2"),
		testutil.NewItem("https://a.example/3"),
	}
	adms, err := f.mgr.EnqueueAll(ctx, items, enums.PreventDuplicateURL)
	if err != nil {
		t.Fatalf("EnqueueAll failed: %v", err)
	}
	if adms[0].Advisory != nil || !slices.Equal(adms[1].Advisory, f.kick.advice) || adms[2].Advisory != nil {
		t.Fatalf("EnqueueAll advisories = %v %v %v", adms[0].Advisory, adms[1].Advisory, adms[2].Advisory)
	}
}

func TestSetKickerWhileEnqueuing(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 50 {
			f.mgr.SetKicker(&countingKicker{})
		}
	}()
	for i := range 10 {
		f.enqueue(t, testutil.NewItem("https://k.example/"+string(rune('a'+i))))
	}
	wg.Wait()

	second := &countingKicker{}
	f.mgr.SetKicker(second)
	f.enqueue(t, testutil.NewItem("https://k.example/last"))
	if got := second.n.Load(); got != 1 {
		t.Fatalf("replacement kicker called %d times, want 1", got)
	}
}
