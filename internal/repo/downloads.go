package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"zeku/internal/domain/consts"
	"zeku/internal/domain/errs"
	"zeku/internal/domain/logger"
	"zeku/internal/models"

	"github.com/Masterminds/squirrel"
)

// DownloadStore holds a pointer to the sql.DB.
type DownloadStore struct {
	DB *sql.DB
	w  *writer
}

// GetDownloadStore returns a download store instance with injected database.
func GetDownloadStore(db *sql.DB, w *writer) *DownloadStore {
	return &DownloadStore{
		DB: db,
		w:  w,
	}
}

// GetDB returns the database.
func (ds *DownloadStore) GetDB() *sql.DB {
	return ds.DB
}

// ******************************** Add / update ***************************************************************************************

// Insert adds one item and returns its new id.
func (ds *DownloadStore) Insert(ctx context.Context, item *models.DownloadItem) (id int64, err error) {
	err = ds.w.withTx(ctx, func(tx *sql.Tx) error {
		id, err = insertDownload(ctx, tx, item)
		return err
	})
	if err != nil {
		return 0, err
	}
	item.ID = id
	return id, nil
}

// InsertAll adds items in one transaction, preserving their order.
func (ds *DownloadStore) InsertAll(ctx context.Context, items []*models.DownloadItem) ([]int64, error) {
	ids := make([]int64, 0, len(items))
	err := ds.w.withTx(ctx, func(tx *sql.Tx) error {
		for _, item := range items {
			id, err := insertDownload(ctx, tx, item)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		item.ID = ids[i]
	}
	return ids, nil
}

// Update overwrites every column of the item's row.
func (ds *DownloadStore) Update(ctx context.Context, item *models.DownloadItem) error {
	return ds.w.withTx(ctx, func(tx *sql.Tx) error {
		return updateDownload(ctx, tx, item)
	})
}

// UpdateAll overwrites several rows in one transaction.
func (ds *DownloadStore) UpdateAll(ctx context.Context, items []*models.DownloadItem) error {
	return ds.w.withTx(ctx, func(tx *sql.Tx) error {
		for _, item := range items {
			if err := updateDownload(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetStatus moves one row to status to, rejecting illegal transitions.
func (ds *DownloadStore) SetStatus(ctx context.Context, id int64, to models.Status) error {
	return ds.w.withTx(ctx, func(tx *sql.Tx) error {
		n, err := setDownloadStatus(ctx, tx, []int64{id}, to)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		item, err := getDownload(ctx, tx, id)
		if err != nil {
			return err
		}
		if item.Status == to {
			return nil
		}
		return fmt.Errorf("download %d %s -> %s: %w", id, item.Status, to, errs.ErrInvalidTransition)
	})
}

// SetStatusMultiple moves every eligible row in ids to status to and returns
// the number changed. Rows in an illegal source status are left untouched.
func (ds *DownloadStore) SetStatusMultiple(ctx context.Context, ids []int64, to models.Status, from ...models.Status) (n int64, err error) {
	err = ds.w.withTx(ctx, func(tx *sql.Tx) error {
		n, err = setDownloadStatus(ctx, tx, ids, to, from...)
		return err
	})
	return n, err
}

// CancelActiveQueued marks every Active and Queued row as cancelled.
// Scheduled and Paused rows are left alone.
func (ds *DownloadStore) CancelActiveQueued(ctx context.Context) (n int64, err error) {
	err = ds.w.withTx(ctx, func(tx *sql.Tx) error {
		ids, err := downloadIDsByStatus(ctx, tx, models.StatusActive, models.StatusQueued)
		if err != nil {
			return err
		}
		n, err = setDownloadStatus(ctx, tx, ids, models.StatusCancelled)
		return err
	})
	return n, err
}

// SetLogID attaches a log row to a download.
func (ds *DownloadStore) SetLogID(ctx context.Context, id, logID int64) error {
	return ds.w.withTx(ctx, func(tx *sql.Tx) error {
		_, err := squirrel.
			Update(consts.DBDownloads).
			Set(consts.QDLLogID, logID).
			Where(squirrel.Eq{consts.QDLID: id}).
			RunWith(tx).
			ExecContext(ctx)
		return err
	})
}

// RemoveLogID detaches a log row from every download that references it.
func (ds *DownloadStore) RemoveLogID(ctx context.Context, logID int64) error {
	return ds.w.withTx(ctx, func(tx *sql.Tx) error {
		return clearLogIDs(ctx, tx, squirrel.Eq{consts.QDLLogID: logID})
	})
}

// RemoveAllLogIDs detaches every log row from every download.
func (ds *DownloadStore) RemoveAllLogIDs(ctx context.Context) error {
	return ds.w.withTx(ctx, func(tx *sql.Tx) error {
		return clearLogIDs(ctx, tx, squirrel.NotEq{consts.QDLLogID: nil})
	})
}

// ReverseProcessing reverses the queue order of the Processing rows among
// themselves. Ids are never changed.
func (ds *DownloadStore) ReverseProcessing(ctx context.Context) error {
	return ds.w.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := squirrel.
			Select(consts.QDLID, consts.QDLSortKey).
			From(consts.DBDownloads).
			Where(squirrel.Eq{consts.QDLStatus: string(models.StatusProcessing)}).
			OrderBy(downloadOrder...).
			RunWith(tx).
			QueryContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to query processing rows: %w", err)
		}

		var ids, keys []int64
		for rows.Next() {
			var id, key int64
			if err := rows.Scan(&id, &key); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
			keys = append(keys, key)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for i, id := range ids {
			if _, err := squirrel.
				Update(consts.DBDownloads).
				Set(consts.QDLSortKey, keys[len(keys)-1-i]).
				Where(squirrel.Eq{consts.QDLID: id}).
				RunWith(tx).
				ExecContext(ctx); err != nil {
				return fmt.Errorf("failed to reorder download %d: %w", id, err)
			}
		}
		return nil
	})
}

// ResetInterrupted returns Active rows left behind by a crashed run to the queue.
func (ds *DownloadStore) ResetInterrupted(ctx context.Context) (n int64, err error) {
	err = ds.w.withTx(ctx, func(tx *sql.Tx) error {
		ids, err := downloadIDsByStatus(ctx, tx, models.StatusActive)
		if err != nil {
			return err
		}
		n, err = setDownloadStatus(ctx, tx, ids, models.StatusQueued, models.StatusActive)
		return err
	})
	if n > 0 {
		logger.Pl.I("Requeued %d interrupted download(s)", n)
	}
	return n, err
}

// ******************************** 'Get' operations ***************************************************************************************

// Get returns one row or errs.ErrNotFound.
func (ds *DownloadStore) Get(ctx context.Context, id int64) (*models.DownloadItem, error) {
	return getDownload(ctx, ds.DB, id)
}

// GetByIDs returns the rows in ids that exist, in queue order.
func (ds *DownloadStore) GetByIDs(ctx context.Context, ids []int64) ([]*models.DownloadItem, error) {
	out := []*models.DownloadItem{}
	for _, chunk := range chunked(ids) {
		items, err := queryDownloads(ctx, ds.DB, selectDownloads().
			Where(squirrel.Eq{consts.QDLID: chunk}).
			OrderBy(downloadOrder...))
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

// ListByStatus returns rows in any of statuses (every row if none given), in queue order.
func (ds *DownloadStore) ListByStatus(ctx context.Context, statuses ...models.Status) ([]*models.DownloadItem, error) {
	q := selectDownloads().OrderBy(downloadOrder...)
	if len(statuses) > 0 {
		q = q.Where(statusIn(statuses))
	}
	return queryDownloads(ctx, ds.DB, q)
}

// ListConfigureMultiple returns the bulk-edit projection of rows in statuses.
func (ds *DownloadStore) ListConfigureMultiple(ctx context.Context, statuses ...models.Status) ([]*models.DownloadItemConfigureMultiple, error) {
	items, err := ds.ListByStatus(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	out := make([]*models.DownloadItemConfigureMultiple, 0, len(items))
	for _, it := range items {
		out = append(out, &models.DownloadItemConfigureMultiple{
			ID:         it.ID,
			URL:        it.URL,
			Title:      it.Title,
			Type:       it.Type,
			Format:     it.Format,
			AllFormats: it.AllFormats,
			Container:  it.Container,
			Status:     it.Status,
			Incognito:  it.Incognito,
		})
	}
	return out, nil
}

// Page returns one page of rows in statuses with RowNumber set to the row's
// 1-based position within the full filtered listing.
func (ds *DownloadStore) Page(ctx context.Context, offset, limit int, statuses ...models.Status) ([]*models.DownloadItem, error) {
	q := squirrel.
		Select(downloadColumns...).
		Column("ROW_NUMBER() OVER (ORDER BY " + consts.QDLDefaultSortOrder + ") AS " + consts.QDLRowNumberAlias).
		From(consts.DBDownloads).
		OrderBy(downloadOrder...)
	if len(statuses) > 0 {
		q = q.Where(statusIn(statuses))
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		if limit <= 0 {
			q = q.Limit(uint64(1<<62 - 1))
		}
		q = q.Offset(uint64(offset))
	}

	rows, err := q.RunWith(ds.DB).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query download page: %w", err)
	}
	defer rows.Close()

	items := []*models.DownloadItem{}
	for rows.Next() {
		var rn int
		item, err := scanDownload(rows, &rn)
		if err != nil {
			return nil, fmt.Errorf("failed to scan download row: %w", err)
		}
		item.RowNumber = rn
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountByStatus counts rows in any of statuses.
func (ds *DownloadStore) CountByStatus(ctx context.Context, statuses ...models.Status) (int, error) {
	var n int
	err := squirrel.
		Select("COUNT(*)").
		From(consts.DBDownloads).
		Where(statusIn(statuses)).
		RunWith(ds.DB).
		QueryRowContext(ctx).
		Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count downloads: %w", err)
	}
	return n, nil
}

// Counts returns per-status row counts.
func (ds *DownloadStore) Counts(ctx context.Context) (models.ActiveAndQueuedCounts, error) {
	var c models.ActiveAndQueuedCounts

	rows, err := squirrel.
		Select(consts.QDLStatus, "COUNT(*)").
		From(consts.DBDownloads).
		GroupBy(consts.QDLStatus).
		RunWith(ds.DB).
		QueryContext(ctx)
	if err != nil {
		return c, fmt.Errorf("failed to count downloads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status models.Status
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return c, err
		}
		switch status {
		case models.StatusActive:
			c.Active += n
		case models.StatusQueued:
			c.Queued += n
		case models.StatusScheduled:
			c.Scheduled += n
		case models.StatusPaused:
			c.Paused += n
		case models.StatusCancelled:
			c.Cancelled += n
		case models.StatusError:
			c.Errored += n
		case models.StatusSaved:
			c.Saved += n
		}
	}
	return c, rows.Err()
}

// ActiveAndQueuedIDs returns the ids of Active and Queued rows in queue order.
func (ds *DownloadStore) ActiveAndQueuedIDs(ctx context.Context) ([]int64, error) {
	return downloadIDsByStatus(ctx, ds.DB, models.StatusActive, models.StatusQueued)
}

// ScheduledIDs returns the ids of Scheduled rows in queue order.
func (ds *DownloadStore) ScheduledIDs(ctx context.Context) ([]int64, error) {
	return downloadIDsByStatus(ctx, ds.DB, models.StatusScheduled)
}

// NextRunnable returns the earliest due Queued or Scheduled row, or nil.
func (ds *DownloadStore) NextRunnable(ctx context.Context, now time.Time) (*models.DownloadItem, error) {
	items, err := queryDownloads(ctx, ds.DB, selectDownloads().
		Where(squirrel.Or{
			squirrel.Eq{consts.QDLStatus: string(models.StatusQueued)},
			squirrel.And{
				squirrel.Eq{consts.QDLStatus: string(models.StatusScheduled)},
				squirrel.LtOrEq{consts.QDLStartTime: now.UnixMilli()},
			},
		}).
		OrderBy(consts.QDLStartTime+" ASC", consts.QDLSortKey+" ASC", consts.QDLID+" ASC").
		Limit(1))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// NonTerminal returns rows still waiting on or holding the execution slot, in queue order.
func (ds *DownloadStore) NonTerminal(ctx context.Context) ([]*models.DownloadItem, error) {
	return ds.ListByStatus(ctx, models.NonTerminalStatuses()...)
}

// ProcessingByURL returns Processing rows for url.
func (ds *DownloadStore) ProcessingByURL(ctx context.Context, url string) ([]*models.DownloadItem, error) {
	return queryDownloads(ctx, ds.DB, selectDownloads().
		Where(squirrel.Eq{
			consts.QDLStatus: string(models.StatusProcessing),
			consts.QDLURL:    url,
		}).
		OrderBy(downloadOrder...))
}

// ******************************** Private ***************************************************************************************

func clearLogIDs(ctx context.Context, r runner, where squirrel.Sqlizer) error {
	_, err := squirrel.
		Update(consts.DBDownloads).
		Set(consts.QDLLogID, nil).
		Where(where).
		RunWith(r).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear log ids: %w", err)
	}
	return nil
}
