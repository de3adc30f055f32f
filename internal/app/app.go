// Package app wires the stores, queue, dispatcher and executor into one running program.
package app

import (
	"context"

	"zeku/internal/cache"
	"zeku/internal/clock"
	"zeku/internal/config"
	"zeku/internal/cookies"
	"zeku/internal/database"
	"zeku/internal/domain/logger"
	"zeku/internal/downloads"
	"zeku/internal/queue"
	"zeku/internal/repo"
	"zeku/internal/scheduler"
)

// Options replace the external dependencies of an App, mainly for tests.
type Options struct {
	Runner downloads.Runner
	Clock  clock.Clock
	IDs    clock.IDGenerator
}

// App holds every long-lived component.
type App struct {
	Settings   config.Settings
	DB         *database.Database
	Store      *repo.Store
	Cache      *cache.Reconciler
	Queue      *queue.Manager
	Network    *scheduler.StaticNetwork
	Dispatcher *scheduler.Dispatcher
	Executor   *downloads.Executor

	runner downloads.Runner
	clock  clock.Clock
}

// Open opens the configured database and builds an App on it.
func Open(s config.Settings, opts Options) (*App, error) {
	db, err := database.Open(s.DBPath)
	if err != nil {
		return nil, err
	}
	return New(db, s, opts), nil
}

// New builds an App on an open database. Nothing runs until Start.
func New(db *database.Database, s config.Settings, opts Options) *App {
	if opts.Runner == nil {
		opts.Runner = downloads.ExecRunner{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.IDs == nil {
		opts.IDs = clock.UUIDGenerator{}
	}

	a := &App{
		Settings: s,
		DB:       db,
		Store:    repo.InitStores(db.DB),
		Cache:    cache.NewReconciler(s.CacheDir),
		Network:  scheduler.NewStaticNetwork(s.NetworkMetered),
		runner:   opts.Runner,
		clock:    opts.Clock,
	}
	a.Queue = queue.New(a.Store, a.Cache, queue.Options{
		Clock:         opts.Clock,
		KeepCompleted: s.KeepCompleted,
	})

	execOpts := downloads.ExecutorOptions{Runner: opts.Runner, Clock: opts.Clock}
	if s.ExportCookies {
		execOpts.Cookies = cookies.NewExporter(s.CookieDomain)
	}
	a.Executor = downloads.NewExecutor(a.Queue, a.Cache, s, execOpts)

	a.Dispatcher = scheduler.New(a.Executor, a.Store.DownloadStore(), scheduler.Options{
		Clock:           opts.Clock,
		IDs:             opts.IDs,
		Network:         a.Network,
		AllowMetered:    s.AllowMetered,
		RecheckInterval: s.NetworkRecheck,
	})
	a.Queue.SetKicker(adviser{a.Dispatcher})
	return a
}

// adviser answers admissions with the dispatch advisory but submits nothing.
// It serves processes that never Start.
type adviser struct {
	d *scheduler.Dispatcher
}

func (v adviser) Kick(ctx context.Context) scheduler.Advisory {
	return v.d.Advise(ctx)
}

// Start recovers runs interrupted by a previous process and begins
// dispatching. Queue changes schedule work from then on.
func (a *App) Start(ctx context.Context) error {
	a.Dispatcher.Start(ctx)
	a.Queue.SetKicker(a.Dispatcher)

	n, err := a.Queue.Recover(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Pl.I("Requeued %d download(s) interrupted by a previous run", n)
	}
	a.Dispatcher.Kick(ctx)
	return nil
}

// Idle reports whether nothing is pending, running, or waiting in the queue.
func (a *App) Idle(ctx context.Context) (bool, error) {
	if _, ok := a.Dispatcher.Pending(); ok {
		return false, nil
	}
	if _, ok := a.Dispatcher.Running(); ok {
		return false, nil
	}
	counts, err := a.Queue.Counts(ctx)
	if err != nil {
		return false, err
	}
	return counts.Active+counts.Queued+counts.Scheduled == 0, nil
}

// Clock returns the clock the App schedules against.
func (a *App) Clock() clock.Clock {
	return a.clock
}

// Close stops dispatching and closes the database.
func (a *App) Close() error {
	a.Dispatcher.Stop()
	return a.DB.Close()
}
