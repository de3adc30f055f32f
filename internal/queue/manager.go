// Package queue admits, transitions and removes download queue rows.
package queue

import (
	"context"
	"fmt"
	"sync/atomic"

	"zeku/internal/cache"
	"zeku/internal/clock"
	"zeku/internal/contracts"
	"zeku/internal/domain/errs"
	"zeku/internal/domain/logger"
	"zeku/internal/enums"
	"zeku/internal/models"
	"zeku/internal/scheduler"
)

// Reconciler removes the cached artifacts of the given download ids.
type Reconciler interface {
	Reconcile(ids []int64) cache.Result
}

// Kicker is notified when new work may be runnable. The returned advisory
// is passed back to the caller that admitted the work.
type Kicker interface {
	Kick(ctx context.Context) scheduler.Advisory
}

// Options configure a Manager.
type Options struct {
	Clock         clock.Clock
	KeepCompleted bool
}

// Manager owns every mutation of the download queue.
type Manager struct {
	store         contracts.Store
	cache         Reconciler
	clock         clock.Clock
	keepCompleted bool
	kicker        atomic.Pointer[Kicker]
}

// Admission is the outcome of an enqueue. A rejected duplicate is not an error.
type Admission struct {
	ID         int64    `json:"id"`
	Duplicate  bool     `json:"duplicate"`
	ExistingID int64    `json:"existing_id,omitempty"`
	Advisory   []string `json:"advisory,omitempty"`
}

// New returns a Manager over store.
func New(store contracts.Store, reconciler Reconciler, opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	return &Manager{
		store:         store,
		cache:         reconciler,
		clock:         opts.Clock,
		keepCompleted: opts.KeepCompleted,
	}
}

// SetKicker registers the dispatcher woken after admissions. It may be
// replaced while the Manager is in use.
func (m *Manager) SetKicker(k Kicker) {
	m.kicker.Store(&k)
}

// Store returns the underlying store.
func (m *Manager) Store() contracts.Store {
	return m.store
}

// kick wakes the registered kicker and returns its advisory messages.
func (m *Manager) kick(ctx context.Context) []string {
	k := m.kicker.Load()
	if k == nil || *k == nil {
		return nil
	}
	adv := (*k).Kick(ctx)
	if len(adv.Messages) == 0 {
		return nil
	}
	return adv.Messages
}

// Enqueue admits item under policy. The duplicate check and the insert share
// one write transaction.
func (m *Manager) Enqueue(ctx context.Context, item *models.DownloadItem, policy enums.PreventDuplicateDownload) (Admission, error) {
	var adm Admission
	err := m.store.WithTx(ctx, func(tx contracts.Tx) error {
		var err error
		adm, err = m.admit(tx, item, policy)
		return err
	})
	if err != nil {
		return Admission{}, err
	}
	if !adm.Duplicate {
		adm.Advisory = m.kick(ctx)
	}
	return adm, nil
}

// EnqueueAll admits items in order. Later items are checked against the
// earlier ones admitted in the same call. The advisory is attached to the
// first admitted item.
func (m *Manager) EnqueueAll(ctx context.Context, items []*models.DownloadItem, policy enums.PreventDuplicateDownload) ([]Admission, error) {
	out := make([]Admission, 0, len(items))
	err := m.store.WithTx(ctx, func(tx contracts.Tx) error {
		out = out[:0]
		for _, item := range items {
			adm, err := m.admit(tx, item, policy)
			if err != nil {
				return err
			}
			out = append(out, adm)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i := range out {
		if !out[i].Duplicate {
			out[i].Advisory = m.kick(ctx)
			break
		}
	}
	return out, nil
}

// Stage inserts item as a Processing row while its metadata is fetched.
func (m *Manager) Stage(ctx context.Context, item *models.DownloadItem) (int64, error) {
	var id int64
	err := m.store.WithTx(ctx, func(tx contracts.Tx) error {
		item.Status = models.StatusProcessing
		var err error
		id, err = tx.InsertDownload(item)
		return err
	})
	return id, err
}

// Admit replaces the format of a Processing row with the probed one and runs
// it through admission. A duplicate staging row is removed.
func (m *Manager) Admit(ctx context.Context, id int64, format models.Format, allFormats []models.Format, policy enums.PreventDuplicateDownload) (Admission, error) {
	var (
		adm     Admission
		removed cache.Result
	)
	err := m.store.WithTx(ctx, func(tx contracts.Tx) error {
		item, err := tx.GetDownload(id)
		if err != nil {
			return err
		}
		if item.Status != models.StatusProcessing {
			return fmt.Errorf("download %d is %s, not %s: %w", id, item.Status, models.StatusProcessing, errs.ErrInvalidTransition)
		}

		item.Format = format
		if allFormats != nil {
			item.AllFormats = allFormats
		}
		if format.Container != "" {
			item.Container = format.Container
		}

		if existing, dup, err := m.findDuplicate(tx, item, policy); err != nil {
			return err
		} else if dup {
			removed = m.cache.Reconcile([]int64{id})
			if _, err := tx.DeleteDownloads([]int64{id}); err != nil {
				return err
			}
			adm = Admission{Duplicate: true, ExistingID: existing}
			return nil
		}

		item.Status = m.initialStatus(item)
		if err := tx.UpdateDownload(item); err != nil {
			return err
		}
		adm = Admission{ID: id}
		return nil
	})
	if err != nil {
		return Admission{}, err
	}
	if len(removed.Failed) > 0 {
		logger.Pl.W("Cache for rejected download %d could not be removed", id)
	}
	if !adm.Duplicate {
		adm.Advisory = m.kick(ctx)
	}
	return adm, nil
}

// ReverseProcessing reverses the queue order of the Processing rows.
func (m *Manager) ReverseProcessing(ctx context.Context) error {
	return m.store.DownloadStore().ReverseProcessing(ctx)
}

// admit runs the duplicate check and inserts item when it passes.
func (m *Manager) admit(tx contracts.Tx, item *models.DownloadItem, policy enums.PreventDuplicateDownload) (Admission, error) {
	existing, dup, err := m.findDuplicate(tx, item, policy)
	if err != nil {
		return Admission{}, err
	}
	if dup {
		logger.Pl.I("Download for URL %q already in queue as %d", item.URL, existing)
		return Admission{Duplicate: true, ExistingID: existing}, nil
	}

	item.Status = m.initialStatus(item)
	id, err := tx.InsertDownload(item)
	if err != nil {
		return Admission{}, err
	}
	logger.Pl.D(1, "Admitted download %d for URL %q as %s", id, item.URL, item.Status)
	return Admission{ID: id}, nil
}

func (m *Manager) findDuplicate(tx contracts.Tx, item *models.DownloadItem, policy enums.PreventDuplicateDownload) (int64, bool, error) {
	if policy == enums.PreventDuplicateNone {
		return 0, false, nil
	}
	existing, err := tx.DownloadsByStatus(models.NonTerminalStatuses()...)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load queue for duplicate check: %w", err)
	}
	id, ok := duplicateOf(existing, item, policy)
	return id, ok, nil
}

// initialStatus is Scheduled for a future start time, Queued otherwise.
func (m *Manager) initialStatus(item *models.DownloadItem) models.Status {
	if item.DownloadStartTime > m.clock.Now().UnixMilli() {
		return models.StatusScheduled
	}
	return models.StatusQueued
}
