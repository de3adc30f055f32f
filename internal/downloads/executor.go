// Package downloads runs queued items through yt-dlp.
package downloads

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zeku/internal/clock"
	"zeku/internal/config"
	"zeku/internal/contracts"
	"zeku/internal/domain/consts"
	"zeku/internal/domain/errs"
	"zeku/internal/domain/logger"
	"zeku/internal/models"
	"zeku/internal/queue"
	"zeku/internal/scheduler"
	"zeku/internal/state"
)

const cookieFileName = "cookies.txt"

// CacheDirs hands out per-download scratch directories.
type CacheDirs interface {
	Dir(id int64) (string, error)
}

// CookieExporter writes cookies for a URL to a file.
type CookieExporter interface {
	Export(ctx context.Context, rawURL, path string) (int, error)
}

// ExecutorOptions configure an Executor. Zero values use the defaults.
type ExecutorOptions struct {
	Runner       Runner
	Cookies      CookieExporter
	Clock        clock.Clock
	PollInterval time.Duration
}

// Executor implements scheduler.Executor.
type Executor struct {
	queue     *queue.Manager
	downloads contracts.DownloadStore
	logs      contracts.LogStore
	cache     CacheDirs
	runner    Runner
	cookies   CookieExporter
	settings  config.Settings
	clock     clock.Clock
	poll      time.Duration
}

// NewExecutor returns an Executor reporting outcomes to m.
func NewExecutor(m *queue.Manager, cache CacheDirs, settings config.Settings, opts ExecutorOptions) *Executor {
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = consts.StatusPollInterval
	}
	return &Executor{
		queue:     m,
		downloads: m.Store().DownloadStore(),
		logs:      m.Store().LogStore(),
		cache:     cache,
		runner:    opts.Runner,
		cookies:   opts.Cookies,
		settings:  settings,
		clock:     opts.Clock,
		poll:      opts.PollInterval,
	}
}

// Run downloads the request's priority items in order, then keeps pulling
// runnable items when the request allows it.
func (e *Executor) Run(ctx context.Context, req scheduler.Request) error {
	attempted := make(map[int64]struct{}, len(req.PriorityIDs))

	for _, id := range req.PriorityIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		attempted[id] = struct{}{}

		item, err := e.downloads.Get(ctx, id)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				continue
			}
			return err
		}
		if !e.runnable(item) {
			logger.Pl.D(2, "Skipping download %d with status %s", id, item.Status)
			continue
		}
		e.download(ctx, item)
	}

	if !req.ContinueAfterPriority {
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		item, err := e.downloads.NextRunnable(ctx, e.clock.Now().Add(consts.ScheduleGraceWindow))
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}
		if _, ok := attempted[item.ID]; ok {
			return nil
		}
		attempted[item.ID] = struct{}{}
		e.download(ctx, item)
	}
}

// runnable reports whether item may start now.
func (e *Executor) runnable(item *models.DownloadItem) bool {
	switch item.Status {
	case models.StatusQueued:
		return true
	case models.StatusScheduled:
		return item.IsDue(e.clock.Now().Add(consts.ScheduleGraceWindow))
	default:
		return false
	}
}

// download runs one item and reports its outcome.
func (e *Executor) download(ctx context.Context, item *models.DownloadItem) {
	n, err := e.downloads.SetStatusMultiple(ctx, []int64{item.ID}, models.StatusActive, models.StatusQueued, models.StatusScheduled)
	if err != nil {
		logger.Pl.E("Could not start download %d: %v", item.ID, err)
		return
	}
	if n == 0 {
		return
	}
	item.Status = models.StatusActive
	logger.Pl.I("Starting download %d for URL %q", item.ID, item.URL)

	logID, tracker := e.startLog(ctx, item)

	dir, err := e.cache.Dir(item.ID)
	if err != nil {
		logger.Pl.E("%v", err)
		e.fail(ctx, item, logID)
		return
	}

	var cookieFile string
	if e.cookies != nil {
		path := filepath.Join(dir, cookieFileName)
		if n, err := e.cookies.Export(ctx, item.URL, path); err != nil {
			logger.Pl.W("Could not export cookies for %q: %v", item.URL, err)
		} else if n > 0 {
			cookieFile = path
		}
	}

	args := BuildArgs(item, ArgOptions{Settings: e.settings, CacheDir: dir, CookieFile: cookieFile})
	cmdLine := e.settings.YtDLPPath + " " + strings.Join(args, " ")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	state.SetRunning(item.ID, cancel)
	defer state.DeleteRunning(item.ID)

	go e.watchStatus(runCtx, cancel, item.ID)

	var paths []string
	err = e.runner.Run(runCtx, e.settings.YtDLPPath, args, func(line string) {
		if tracker != nil {
			tracker.Add(line)
		}
		if filepath.IsAbs(line) {
			paths = append(paths, line)
		}
	})
	if tracker != nil {
		tracker.Stop()
	}

	switch {
	case err == nil:
		e.complete(ctx, item, paths, cmdLine)
	case ctx.Err() != nil:
		rctx, rcancel := outcomeContext(ctx)
		defer rcancel()
		if err := e.queue.Requeue(rctx, item.ID); err != nil {
			logger.Pl.E("Could not requeue interrupted download %d: %v", item.ID, err)
		}
	case runCtx.Err() != nil:
		logger.Pl.I("Download %d was stopped", item.ID)
	default:
		logger.Pl.E("Download %d failed: %v", item.ID, err)
		e.fail(ctx, item, logID)
	}
}

// startLog creates the log record of a run. Incognito items are not logged.
func (e *Executor) startLog(ctx context.Context, item *models.DownloadItem) (*int64, *LogTracker) {
	if !e.settings.LogDownloads || item.Incognito {
		return nil, nil
	}

	id, err := e.logs.Insert(ctx, &models.LogItem{
		Title:        item.Title,
		Format:       item.Format,
		DownloadType: item.Type,
		DownloadTime: e.clock.Now().UnixMilli(),
	})
	if err != nil {
		logger.Pl.W("Could not create log for download %d: %v", item.ID, err)
		return nil, nil
	}
	if err := e.downloads.SetLogID(ctx, item.ID, id); err != nil {
		logger.Pl.W("Could not attach log %d to download %d: %v", id, item.ID, err)
	}

	tracker := NewLogTracker(e.logs, id)
	tracker.Start()
	return &id, tracker
}

// watchStatus cancels the run once the row leaves Active or is deleted.
func (e *Executor) watchStatus(ctx context.Context, cancel context.CancelFunc, id int64) {
	ticker := time.NewTicker(e.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			item, err := e.downloads.Get(ctx, id)
			switch {
			case errors.Is(err, errs.ErrNotFound):
				cancel()
				return
			case err != nil:
				continue
			case item.Status != models.StatusActive:
				logger.Pl.D(1, "Download %d moved to %s, stopping", id, item.Status)
				cancel()
				return
			}
		}
	}
}

func (e *Executor) complete(ctx context.Context, item *models.DownloadItem, paths []string, cmdLine string) {
	rctx, cancel := outcomeContext(ctx)
	defer cancel()

	err := e.queue.Complete(rctx, item.ID, queue.Completion{
		Paths:    paths,
		Format:   item.Format,
		FileSize: totalSize(paths),
		Command:  cmdLine,
	})
	if err != nil {
		logger.Pl.E("Could not record completion of download %d: %v", item.ID, err)
	}
}

func (e *Executor) fail(ctx context.Context, item *models.DownloadItem, logID *int64) {
	rctx, cancel := outcomeContext(ctx)
	defer cancel()

	if err := e.queue.Fail(rctx, item.ID, queue.Failure{Format: &item.Format, LogID: logID}); err != nil {
		logger.Pl.E("Could not record failure of download %d: %v", item.ID, err)
	}
}

// outcomeContext outlives ctx so outcomes are stored during shutdown.
func outcomeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), consts.DatabaseTimeout)
}

func totalSize(paths []string) int64 {
	var size int64
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			size += info.Size()
		}
	}
	return size
}
