package queue

import (
	"context"
	"errors"
	"fmt"

	"zeku/internal/contracts"
	"zeku/internal/domain/errs"
	"zeku/internal/domain/logger"
	"zeku/internal/models"
	"zeku/internal/state"
)

// Completion describes a successful run reported by the executor.
type Completion struct {
	Paths    []string
	Format   models.Format
	FileSize int64
	Command  string
}

// Failure describes a failed run. Nil fields keep the stored values.
type Failure struct {
	Format *models.Format
	LogID  *int64
}

// SetStatus moves one row to status, validated against the state machine.
func (m *Manager) SetStatus(ctx context.Context, id int64, status models.Status) error {
	return m.store.DownloadStore().SetStatus(ctx, id, status)
}

// SetStatusMultiple moves every eligible row in ids to status.
func (m *Manager) SetStatusMultiple(ctx context.Context, ids []int64, status models.Status) (int64, error) {
	return m.store.DownloadStore().SetStatusMultiple(ctx, ids, status)
}

// Cancel cancels ids and interrupts any of them running in this process.
func (m *Manager) Cancel(ctx context.Context, ids ...int64) (int64, error) {
	n, err := m.SetStatusMultiple(ctx, ids, models.StatusCancelled)
	if err != nil {
		return n, err
	}
	state.Interrupt(ids...)
	return n, nil
}

// CancelActiveAndQueued cancels every Active and Queued row.
func (m *Manager) CancelActiveAndQueued(ctx context.Context) (int64, error) {
	n, err := m.store.DownloadStore().CancelActiveQueued(ctx)
	if err != nil {
		return n, err
	}
	state.Interrupt(state.RunningIDs()...)
	return n, nil
}

// Pause pauses ids and interrupts any of them running in this process.
func (m *Manager) Pause(ctx context.Context, ids ...int64) (int64, error) {
	n, err := m.SetStatusMultiple(ctx, ids, models.StatusPaused)
	if err != nil {
		return n, err
	}
	state.Interrupt(ids...)
	return n, nil
}

// Resume returns paused ids to the queue, or to Scheduled when their start
// time is still in the future.
func (m *Manager) Resume(ctx context.Context, ids ...int64) (int64, error) {
	var n int64
	now := m.clock.Now()
	err := m.store.WithTx(ctx, func(tx contracts.Tx) error {
		n = 0
		for _, id := range ids {
			item, err := tx.GetDownload(id)
			if errors.Is(err, errs.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if item.Status != models.StatusPaused {
				continue
			}
			to := models.StatusQueued
			if !item.IsDue(now) {
				to = models.StatusScheduled
			}
			changed, err := tx.SetDownloadStatus([]int64{id}, to, models.StatusPaused)
			if err != nil {
				return err
			}
			n += changed
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.kick(ctx)
	}
	return n, nil
}

// Retry requeues errored and cancelled ids.
func (m *Manager) Retry(ctx context.Context, ids ...int64) (int64, error) {
	n, err := m.store.DownloadStore().SetStatusMultiple(ctx, ids, models.StatusQueued, models.StatusError, models.StatusCancelled)
	if err != nil {
		return n, err
	}
	if n > 0 {
		m.kick(ctx)
	}
	return n, nil
}

// Save parks ids as Saved.
func (m *Manager) Save(ctx context.Context, ids ...int64) (int64, error) {
	n, err := m.SetStatusMultiple(ctx, ids, models.StatusSaved)
	if err != nil {
		return n, err
	}
	state.Interrupt(ids...)
	return n, nil
}

// Reschedule sets the start time of id. A time at or before now queues it.
func (m *Manager) Reschedule(ctx context.Context, id int64, startTime int64) error {
	err := m.store.WithTx(ctx, func(tx contracts.Tx) error {
		item, err := tx.GetDownload(id)
		if err != nil {
			return err
		}

		if item.Status == models.StatusActive || item.Status == models.StatusProcessing {
			return fmt.Errorf("download %d is %s: %w", id, item.Status, errs.ErrInvalidTransition)
		}

		item.DownloadStartTime = startTime
		to := m.initialStatus(item)
		if item.Status != to && !item.Status.CanTransition(to) {
			return fmt.Errorf("download %d %s -> %s: %w", id, item.Status, to, errs.ErrInvalidTransition)
		}
		item.Status = to
		return tx.UpdateDownload(item)
	})
	if err != nil {
		return err
	}
	m.kick(ctx)
	return nil
}

// Complete records a finished run. History is written unless the item is
// incognito, then the row is removed with its cache or kept as Saved.
func (m *Manager) Complete(ctx context.Context, id int64, c Completion) error {
	var failed map[int64]error
	err := m.store.WithTx(ctx, func(tx contracts.Tx) error {
		item, err := tx.GetDownload(id)
		if err != nil {
			return err
		}
		if item.Status != models.StatusActive {
			return fmt.Errorf("download %d is %s, not %s: %w", id, item.Status, models.StatusActive, errs.ErrInvalidTransition)
		}

		if !item.Incognito {
			if _, err := tx.InsertHistory(m.historyFor(item, c)); err != nil {
				return err
			}
		}

		if m.keepCompleted {
			_, err := tx.SetDownloadStatus([]int64{id}, models.StatusSaved, models.StatusActive)
			return err
		}

		failed = m.cache.Reconcile([]int64{id}).Failed
		_, err = tx.DeleteDownloads([]int64{id})
		return err
	})
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		logger.Pl.W("Download %d completed but its cache could not be removed: %v", id, failed[id])
	}
	logger.Pl.S("Download %d completed", id)
	return nil
}

func (m *Manager) historyFor(item *models.DownloadItem, c Completion) *models.HistoryItem {
	format := c.Format
	if format.IsZero() {
		format = item.Format
	}
	size := c.FileSize
	if size == 0 {
		size = format.FileSize
	}
	return &models.HistoryItem{
		URL:          item.URL,
		Title:        item.Title,
		Author:       item.Author,
		Duration:     item.Duration,
		Thumb:        item.Thumb,
		Type:         item.Type,
		Time:         m.clock.Now().UnixMilli(),
		DownloadPath: c.Paths,
		Website:      item.Website,
		Format:       format,
		FileSize:     size,
		DownloadID:   item.ID,
		Command:      c.Command,
	}
}

// Fail moves an Active row to Error, keeping partial format and log data.
func (m *Manager) Fail(ctx context.Context, id int64, f Failure) error {
	return m.store.WithTx(ctx, func(tx contracts.Tx) error {
		item, err := tx.GetDownload(id)
		if err != nil {
			return err
		}
		if !item.Status.CanTransition(models.StatusError) {
			return fmt.Errorf("download %d %s -> %s: %w", id, item.Status, models.StatusError, errs.ErrInvalidTransition)
		}
		if f.Format != nil && !f.Format.IsZero() {
			item.Format = *f.Format
		}
		if f.LogID != nil {
			item.LogID = f.LogID
		}
		item.Status = models.StatusError
		return tx.UpdateDownload(item)
	})
}

// Requeue returns an interrupted Active row to the queue.
func (m *Manager) Requeue(ctx context.Context, id int64) error {
	_, err := m.store.DownloadStore().SetStatusMultiple(ctx, []int64{id}, models.StatusQueued, models.StatusActive)
	return err
}

// Recover requeues rows left Active by a previous process.
func (m *Manager) Recover(ctx context.Context) (int64, error) {
	return m.store.DownloadStore().ResetInterrupted(ctx)
}
