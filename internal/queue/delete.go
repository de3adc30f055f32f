package queue

import (
	"context"

	"zeku/internal/contracts"
	"zeku/internal/domain/logger"
	"zeku/internal/models"
	"zeku/internal/state"
)

// DeleteResult lists the removed rows and the ids whose cache survived.
type DeleteResult struct {
	IDs         []int64         `json:"ids"`
	CacheFailed map[int64]error `json:"-"`
}

type resolveFunc func(tx contracts.Tx) ([]int64, error)

// Delete removes one row and its cache. A missing id returns errs.ErrNotFound.
func (m *Manager) Delete(ctx context.Context, id int64) (DeleteResult, error) {
	return m.deleteResolved(ctx, func(tx contracts.Tx) ([]int64, error) {
		if _, err := tx.GetDownload(id); err != nil {
			return nil, err
		}
		return []int64{id}, nil
	})
}

// DeleteAllWithIDs removes the rows in ids that exist.
func (m *Manager) DeleteAllWithIDs(ctx context.Context, ids []int64) (DeleteResult, error) {
	return m.deleteResolved(ctx, func(tx contracts.Tx) ([]int64, error) {
		return tx.ExistingDownloadIDs(ids)
	})
}

// DeleteAll removes every row, whatever its stored status.
func (m *Manager) DeleteAll(ctx context.Context) (DeleteResult, error) {
	return m.deleteStatus(ctx)
}

// DeleteCancelled removes every Cancelled row.
func (m *Manager) DeleteCancelled(ctx context.Context) (DeleteResult, error) {
	return m.deleteStatus(ctx, models.StatusCancelled)
}

// DeleteErrored removes every Error row.
func (m *Manager) DeleteErrored(ctx context.Context) (DeleteResult, error) {
	return m.deleteStatus(ctx, models.StatusError)
}

// DeleteScheduled removes every Scheduled row.
func (m *Manager) DeleteScheduled(ctx context.Context) (DeleteResult, error) {
	return m.deleteStatus(ctx, models.StatusScheduled)
}

// DeleteQueued removes every Queued row.
func (m *Manager) DeleteQueued(ctx context.Context) (DeleteResult, error) {
	return m.deleteStatus(ctx, models.StatusQueued)
}

// DeleteSaved removes every Saved row.
func (m *Manager) DeleteSaved(ctx context.Context) (DeleteResult, error) {
	return m.deleteStatus(ctx, models.StatusSaved)
}

// DeleteProcessing removes every Processing row.
func (m *Manager) DeleteProcessing(ctx context.Context) (DeleteResult, error) {
	return m.deleteStatus(ctx, models.StatusProcessing)
}

// DeleteProcessingByURL removes the staging rows left for url by unfinished probes.
func (m *Manager) DeleteProcessingByURL(ctx context.Context, url string) (DeleteResult, error) {
	return m.deleteResolved(ctx, func(tx contracts.Tx) ([]int64, error) {
		return tx.ProcessingIDsByURL(url)
	})
}

// DeleteByStatus removes every row in statuses.
func (m *Manager) DeleteByStatus(ctx context.Context, statuses ...models.Status) (DeleteResult, error) {
	if len(statuses) == 0 {
		return DeleteResult{IDs: []int64{}, CacheFailed: map[int64]error{}}, nil
	}
	return m.deleteStatus(ctx, statuses...)
}

func (m *Manager) deleteStatus(ctx context.Context, statuses ...models.Status) (DeleteResult, error) {
	return m.deleteResolved(ctx, func(tx contracts.Tx) ([]int64, error) {
		return tx.DownloadIDsByStatus(statuses...)
	})
}

// deleteResolved resolves ids, reconciles their caches and deletes the rows,
// all within one write transaction. Each id is reconciled exactly once.
func (m *Manager) deleteResolved(ctx context.Context, resolve resolveFunc) (DeleteResult, error) {
	res := DeleteResult{IDs: []int64{}, CacheFailed: map[int64]error{}}
	err := m.store.WithTx(ctx, func(tx contracts.Tx) error {
		ids, err := resolve(tx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		state.Interrupt(ids...)
		rec := m.cache.Reconcile(ids)
		if _, err := tx.DeleteDownloads(ids); err != nil {
			return err
		}
		res.IDs = ids
		res.CacheFailed = rec.Failed
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	if len(res.IDs) > 0 {
		logger.Pl.I("Deleted %d download(s)", len(res.IDs))
	}
	for id, cerr := range res.CacheFailed {
		logger.Pl.W("Download %d deleted but its cache remains: %v", id, cerr)
	}
	return res, nil
}
