package repo_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"zeku/internal/contracts"
	"zeku/internal/domain/errs"
	"zeku/internal/enums"
	"zeku/internal/models"
	"zeku/internal/testutil"
)

func ids(items []*models.DownloadItem) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestInsertGetRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := testutil.NewTestStore(t).DownloadStore()

	logID := int64(5)
	plURL := "https://example.com/playlist"
	plIdx := 3

	in := testutil.NewItem("https://example.com/watch?v=1")
	in.Type = enums.MediaTypeAudio
	in.Format = models.Format{FormatID: "140", Container: "m4a", ACodec: "mp4a.40.2", FileSize: 99}
	in.AllFormats = []models.Format{in.Format, {FormatID: "251", Container: "webm"}}
	in.AudioPreferences.Format = enums.AudioFormatMP3
	in.AudioPreferences.SponsorBlock = []string{"sponsor"}
	in.LogID = &logID
	in.PlaylistURL = &plURL
	in.PlaylistIndex = &plIdx
	in.AvailableSubtitles = []string{"en", "de"}
	in.DownloadStartTime = 1234
	in.Incognito = true

	id, err := ds.Insert(ctx, in)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := ds.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Type != enums.MediaTypeAudio || got.Format != in.Format || len(got.AllFormats) != 2 {
		t.Errorf("media fields mismatch: %+v", got)
	}
	if got.AudioPreferences.Format != enums.AudioFormatMP3 || !slices.Equal(got.AudioPreferences.SponsorBlock, []string{"sponsor"}) {
		t.Errorf("audio prefs = %+v", got.AudioPreferences)
	}
	if got.LogID == nil || *got.LogID != 5 || got.PlaylistURL == nil || *got.PlaylistURL != plURL || got.PlaylistIndex == nil || *got.PlaylistIndex != 3 {
		t.Errorf("nullable fields mismatch: %+v", got)
	}
	if !got.Incognito || got.DownloadStartTime != 1234 || got.Status != models.StatusQueued {
		t.Errorf("scalar fields mismatch: %+v", got)
	}
	if !slices.Equal(got.AvailableSubtitles, []string{"en", "de"}) {
		t.Errorf("subtitles = %v", got.AvailableSubtitles)
	}
}

func TestGetMissing(t *testing.T) {
	t.Parallel()
	ds := testutil.NewTestStore(t).DownloadStore()

	if _, err := ds.Get(context.Background(), 404); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSetStatusRejectsIllegalTransition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := testutil.NewTestStore(t).DownloadStore()

	item := testutil.NewItem("https://example.com/a")
	item.Status = models.StatusSaved
	id, err := ds.Insert(ctx, item)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := ds.SetStatus(ctx, id, models.StatusActive); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Fatalf("SetStatus(Saved->Active) error = %v", err)
	}
	if err := ds.SetStatus(ctx, id, models.StatusQueued); err != nil {
		t.Fatalf("SetStatus(Saved->Queued) error = %v", err)
	}
	got, _ := ds.Get(ctx, id)
	if got.Status != models.StatusQueued {
		t.Errorf("status = %s", got.Status)
	}
}

func TestSetStatusMultipleSkipsIneligible(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := testutil.NewTestStore(t).DownloadStore()

	var all []*models.DownloadItem
	for i, st := range []models.Status{models.StatusQueued, models.StatusPaused, models.StatusSaved} {
		it := testutil.NewItem("https://example.com/" + string(rune('a'+i)))
		it.Status = st
		all = append(all, it)
	}
	if _, err := ds.InsertAll(ctx, all); err != nil {
		t.Fatalf("InsertAll() error = %v", err)
	}

	n, err := ds.SetStatusMultiple(ctx, ids(all), models.StatusPaused)
	if err != nil {
		t.Fatalf("SetStatusMultiple() error = %v", err)
	}
	if n != 1 {
		t.Errorf("changed = %d, want 1 (only the queued row)", n)
	}

	saved, _ := ds.Get(ctx, all[2].ID)
	if saved.Status != models.StatusSaved {
		t.Errorf("saved row moved to %s", saved.Status)
	}
}

func TestPageRowNumbers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := testutil.NewTestStore(t).DownloadStore()

	var items []*models.DownloadItem
	for i := range 5 {
		it := testutil.NewItem("https://example.com/p" + string(rune('0'+i)))
		if i == 2 {
			it.Status = models.StatusSaved
		}
		items = append(items, it)
	}
	if _, err := ds.InsertAll(ctx, items); err != nil {
		t.Fatalf("InsertAll() error = %v", err)
	}

	page, err := ds.Page(ctx, 1, 2, models.StatusQueued)
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page len = %d", len(page))
	}
	if page[0].RowNumber != 2 || page[1].RowNumber != 3 {
		t.Errorf("row numbers = %d, %d, want 2, 3", page[0].RowNumber, page[1].RowNumber)
	}
	if page[0].ID != items[1].ID || page[1].ID != items[3].ID {
		t.Errorf("page ids = %d, %d", page[0].ID, page[1].ID)
	}
}

func TestReverseProcessingKeepsIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := testutil.NewTestStore(t).DownloadStore()

	var items []*models.DownloadItem
	for i := range 3 {
		it := testutil.NewItem("https://example.com/r" + string(rune('0'+i)))
		it.Status = models.StatusProcessing
		items = append(items, it)
	}
	queued := testutil.NewItem("https://example.com/q")
	items = append(items, queued)
	if _, err := ds.InsertAll(ctx, items); err != nil {
		t.Fatalf("InsertAll() error = %v", err)
	}
	before := ids(items[:3])

	if err := ds.ReverseProcessing(ctx); err != nil {
		t.Fatalf("ReverseProcessing() error = %v", err)
	}

	got, err := ds.ListByStatus(ctx, models.StatusProcessing)
	if err != nil {
		t.Fatalf("ListByStatus() error = %v", err)
	}
	want := slices.Clone(before)
	slices.Reverse(want)
	if !slices.Equal(ids(got), want) {
		t.Errorf("order = %v, want %v", ids(got), want)
	}

	all, _ := ds.ListByStatus(ctx)
	if all[len(all)-1].ID != queued.ID {
		t.Error("queued row moved by reversing processing rows")
	}
}

func TestNextRunnableHonoursStartTime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := testutil.NewTestStore(t).DownloadStore()
	now := testutil.FixedClock().Now()

	future := testutil.NewItem("https://example.com/future")
	future.Status = models.StatusScheduled
	future.DownloadStartTime = now.Add(time.Hour).UnixMilli()

	due := testutil.NewItem("https://example.com/due")
	due.Status = models.StatusScheduled
	due.DownloadStartTime = now.Add(-time.Minute).UnixMilli()

	paused := testutil.NewItem("https://example.com/paused")
	paused.Status = models.StatusPaused

	if _, err := ds.InsertAll(ctx, []*models.DownloadItem{future, paused, due}); err != nil {
		t.Fatalf("InsertAll() error = %v", err)
	}

	next, err := ds.NextRunnable(ctx, now)
	if err != nil {
		t.Fatalf("NextRunnable() error = %v", err)
	}
	if next == nil || next.ID != due.ID {
		t.Fatalf("NextRunnable() = %+v, want due item", next)
	}

	if err := ds.SetStatus(ctx, due.ID, models.StatusActive); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	next, err = ds.NextRunnable(ctx, now)
	if err != nil {
		t.Fatalf("NextRunnable() error = %v", err)
	}
	if next != nil {
		t.Errorf("NextRunnable() = %d, want nil", next.ID)
	}
}

func TestCountsAndResetInterrupted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := testutil.NewTestStore(t).DownloadStore()

	statuses := []models.Status{models.StatusActive, models.StatusActive, models.StatusQueued, models.StatusError}
	var items []*models.DownloadItem
	for i, st := range statuses {
		it := testutil.NewItem("https://example.com/c" + string(rune('0'+i)))
		it.Status = st
		items = append(items, it)
	}
	if _, err := ds.InsertAll(ctx, items); err != nil {
		t.Fatalf("InsertAll() error = %v", err)
	}

	c, err := ds.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if c.Active != 2 || c.Queued != 1 || c.Errored != 1 {
		t.Errorf("Counts() = %+v", c)
	}

	n, err := ds.ResetInterrupted(ctx)
	if err != nil || n != 2 {
		t.Fatalf("ResetInterrupted() = %d, %v", n, err)
	}
	q, _ := ds.CountByStatus(ctx, models.StatusQueued)
	if q != 3 {
		t.Errorf("queued after reset = %d, want 3", q)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewTestStore(t)

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx contracts.Tx) error {
		if _, err := tx.InsertDownload(testutil.NewItem("https://example.com/rb")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v", err)
	}

	all, _ := store.DownloadStore().ListByStatus(ctx)
	if len(all) != 0 {
		t.Errorf("rows after rollback = %d", len(all))
	}
}

func TestLogIDRemoval(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewTestStore(t)

	logID, err := store.LogStore().Insert(ctx, &models.LogItem{Title: "run"})
	if err != nil {
		t.Fatalf("LogStore.Insert() error = %v", err)
	}
	item := testutil.NewItem("https://example.com/log")
	if _, err := store.DownloadStore().Insert(ctx, item); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.DownloadStore().SetLogID(ctx, item.ID, logID); err != nil {
		t.Fatalf("SetLogID() error = %v", err)
	}

	if err := store.LogStore().Delete(ctx, logID); err != nil {
		t.Fatalf("LogStore.Delete() error = %v", err)
	}
	got, _ := store.DownloadStore().Get(ctx, item.ID)
	if got.LogID != nil {
		t.Errorf("LogID = %d, want nil", *got.LogID)
	}
}

func TestNonTerminalExcludesFinishedRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := testutil.NewTestStore(t).DownloadStore()

	statuses := []models.Status{
		models.StatusQueued, models.StatusError, models.StatusPaused,
		models.StatusCancelled, models.StatusScheduled, models.StatusProcessing,
	}
	var items []*models.DownloadItem
	for i, st := range statuses {
		it := testutil.NewItem("https://example.com/n" + string(rune('0'+i)))
		it.Status = st
		items = append(items, it)
	}
	if _, err := ds.InsertAll(ctx, items); err != nil {
		t.Fatalf("InsertAll() error = %v", err)
	}

	got, err := ds.NonTerminal(ctx)
	if err != nil {
		t.Fatalf("NonTerminal() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("NonTerminal() returned %d rows, want 3", len(got))
	}
	for _, it := range got {
		if !slices.Contains(models.NonTerminalStatuses(), it.Status) {
			t.Errorf("NonTerminal() returned row with status %s", it.Status)
		}
	}
}

func TestEmptyContainerStoredAsDefault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := testutil.NewTestStore(t).DownloadStore()

	id, err := ds.Insert(ctx, testutil.NewItem("https://example.com/container"))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	var raw string
	if err := ds.GetDB().QueryRow("SELECT container FROM downloads WHERE id = ?", id).Scan(&raw); err != nil {
		t.Fatalf("reading container column failed: %v", err)
	}
	if raw != models.ContainerDefault {
		t.Errorf("stored container = %q, want %q", raw, models.ContainerDefault)
	}

	got, err := ds.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Container != "" {
		t.Errorf("Container = %q, want empty", got.Container)
	}
}
