package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"zeku/internal/domain/consts"
	"zeku/internal/domain/errs"
	"zeku/internal/domain/logger"
	"zeku/internal/enums"
	"zeku/internal/models"

	"github.com/Masterminds/squirrel"
)

// HistoryStore holds a pointer to the sql.DB.
type HistoryStore struct {
	DB *sql.DB
	w  *writer
}

// GetHistoryStore returns a history store instance with injected database.
func GetHistoryStore(db *sql.DB, w *writer) *HistoryStore {
	return &HistoryStore{DB: db, w: w}
}

var historyColumns = []string{
	consts.QHistID,
	consts.QHistURL,
	consts.QHistTitle,
	consts.QHistAuthor,
	consts.QHistDuration,
	consts.QHistThumb,
	consts.QHistType,
	consts.QHistTime,
	consts.QHistPaths,
	consts.QHistWebsite,
	consts.QHistFormat,
	consts.QHistFilesize,
	consts.QHistDownloadID,
	consts.QHistCommand,
}

var historySortColumns = map[models.HistorySort]string{
	models.HistorySortDate:     consts.QHistTime,
	models.HistorySortTitle:    consts.QHistTitle,
	models.HistorySortAuthor:   consts.QHistAuthor,
	models.HistorySortFilesize: consts.QHistFilesize,
}

// Insert adds a history row.
func (hs *HistoryStore) Insert(ctx context.Context, h *models.HistoryItem) (id int64, err error) {
	err = hs.w.withTx(ctx, func(tx *sql.Tx) error {
		id, err = insertHistory(ctx, tx, h)
		return err
	})
	if err == nil {
		h.ID = id
	}
	return id, err
}

// Get returns one history row or errs.ErrNotFound.
func (hs *HistoryStore) Get(ctx context.Context, id int64) (*models.HistoryItem, error) {
	items, err := hs.query(ctx, squirrel.Select(historyColumns...).
		From(consts.DBHistory).
		Where(squirrel.Eq{consts.QHistID: id}))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("history %d: %w", id, errs.ErrNotFound)
	}
	return items[0], nil
}

// List returns history rows matching f.
func (hs *HistoryStore) List(ctx context.Context, f models.HistoryFilter) ([]*models.HistoryItem, error) {
	q := squirrel.Select(historyColumns...).From(consts.DBHistory)

	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where(squirrel.Or{
			squirrel.Like{consts.QHistTitle: like},
			squirrel.Like{consts.QHistAuthor: like},
			squirrel.Like{consts.QHistURL: like},
		})
	}
	if f.Type != "" {
		q = q.Where(squirrel.Eq{consts.QHistType: string(f.Type)})
	}
	if f.Website != "" {
		q = q.Where(squirrel.Eq{consts.QHistWebsite: f.Website})
	}

	col, ok := historySortColumns[f.Sort]
	if !ok {
		col = consts.QHistTime
	}
	dir := " ASC"
	if f.Desc {
		dir = " DESC"
	}
	q = q.OrderBy(col+dir, consts.QHistID+dir)

	return hs.query(ctx, q)
}

// ListByURL returns history rows for url, newest first.
func (hs *HistoryStore) ListByURL(ctx context.Context, url string) ([]*models.HistoryItem, error) {
	return hs.query(ctx, squirrel.Select(historyColumns...).
		From(consts.DBHistory).
		Where(squirrel.Eq{consts.QHistURL: url}).
		OrderBy(consts.QHistTime+" DESC", consts.QHistID+" DESC"))
}

// ListByURLAndType returns history rows for url of media type t, newest first.
func (hs *HistoryStore) ListByURLAndType(ctx context.Context, url string, t enums.MediaType) ([]*models.HistoryItem, error) {
	return hs.query(ctx, squirrel.Select(historyColumns...).
		From(consts.DBHistory).
		Where(squirrel.Eq{consts.QHistURL: url, consts.QHistType: string(t)}).
		OrderBy(consts.QHistTime+" DESC", consts.QHistID+" DESC"))
}

// Websites returns the distinct websites present in history.
func (hs *HistoryStore) Websites(ctx context.Context) ([]string, error) {
	rows, err := squirrel.
		Select(consts.QHistWebsite).
		Distinct().
		From(consts.DBHistory).
		Where(squirrel.NotEq{consts.QHistWebsite: ""}).
		OrderBy(consts.QHistWebsite).
		RunWith(hs.DB).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query websites: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Count returns the number of history rows.
func (hs *HistoryStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := squirrel.Select("COUNT(*)").From(consts.DBHistory).RunWith(hs.DB).QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// Delete removes one history row, and its files when deleteFiles is set.
func (hs *HistoryStore) Delete(ctx context.Context, id int64, deleteFiles bool) error {
	n, err := hs.DeleteWithIDs(ctx, []int64{id}, deleteFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("history %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

// DeleteAll removes every history row, and their files when deleteFiles is set.
func (hs *HistoryStore) DeleteAll(ctx context.Context, deleteFiles bool) (int64, error) {
	items, err := hs.List(ctx, models.HistoryFilter{})
	if err != nil {
		return 0, err
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return hs.DeleteWithIDs(ctx, ids, deleteFiles)
}

// DeleteWithIDs removes history rows in chunks, and their files when deleteFiles is set.
// Files are only removed after the rows are committed.
func (hs *HistoryStore) DeleteWithIDs(ctx context.Context, ids []int64, deleteFiles bool) (total int64, err error) {
	var paths []string
	err = hs.w.withTx(ctx, func(tx *sql.Tx) error {
		for _, chunk := range chunked(ids) {
			if deleteFiles {
				items, err := hs.query(ctx, squirrel.Select(historyColumns...).
					From(consts.DBHistory).
					Where(squirrel.Eq{consts.QHistID: chunk}), tx)
				if err != nil {
					return err
				}
				for _, it := range items {
					paths = append(paths, it.DownloadPath...)
				}
			}

			res, err := squirrel.
				Delete(consts.DBHistory).
				Where(squirrel.Eq{consts.QHistID: chunk}).
				RunWith(tx).
				ExecContext(ctx)
			if err != nil {
				return fmt.Errorf("failed to delete history: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, p := range paths {
		removeFile(p)
	}
	return total, nil
}

// DeleteDuplicates keeps only the newest row per URL, type and format.
func (hs *HistoryStore) DeleteDuplicates(ctx context.Context) (n int64, err error) {
	err = hs.w.withTx(ctx, func(tx *sql.Tx) error {
		keep := squirrel.
			Select("MAX("+consts.QHistID+")").
			From(consts.DBHistory).
			GroupBy(consts.QHistURL, consts.QHistType, consts.QHistFormat)
		keepSQL, args, err := keep.ToSql()
		if err != nil {
			return err
		}

		res, err := squirrel.
			Delete(consts.DBHistory).
			Where(consts.QHistID+" NOT IN ("+keepSQL+")", args...).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete duplicate history: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// ClearMissingFiles removes history rows none of whose files exist anymore.
func (hs *HistoryStore) ClearMissingFiles(ctx context.Context) (int64, error) {
	items, err := hs.List(ctx, models.HistoryFilter{})
	if err != nil {
		return 0, err
	}

	var gone []int64
	for _, it := range items {
		if allMissing(it.DownloadPath) {
			gone = append(gone, it.ID)
		}
	}
	if len(gone) == 0 {
		return 0, nil
	}
	return hs.DeleteWithIDs(ctx, gone, false)
}

// ******************************** Private ***************************************************************************************

func (hs *HistoryStore) query(ctx context.Context, q squirrel.SelectBuilder, r ...runner) ([]*models.HistoryItem, error) {
	var run runner = hs.DB
	if len(r) > 0 {
		run = r[0]
	}

	rows, err := q.RunWith(run).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	items := []*models.HistoryItem{}
	for rows.Next() {
		var (
			h                  models.HistoryItem
			typ, paths, format string
		)
		if err := rows.Scan(
			&h.ID,
			&h.URL,
			&h.Title,
			&h.Author,
			&h.Duration,
			&h.Thumb,
			&typ,
			&h.Time,
			&paths,
			&h.Website,
			&format,
			&h.FileSize,
			&h.DownloadID,
			&h.Command,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		h.Type = enums.ParseMediaType(typ)
		h.DownloadPath = models.DecodeStrings(paths)
		h.Format = models.DecodeFormat(format)
		items = append(items, &h)
	}
	return items, rows.Err()
}

func insertHistory(ctx context.Context, r runner, h *models.HistoryItem) (int64, error) {
	res, err := squirrel.
		Insert(consts.DBHistory).
		SetMap(map[string]any{
			consts.QHistURL:        h.URL,
			consts.QHistTitle:      h.Title,
			consts.QHistAuthor:     h.Author,
			consts.QHistDuration:   h.Duration,
			consts.QHistThumb:      h.Thumb,
			consts.QHistType:       string(h.Type),
			consts.QHistTime:       h.Time,
			consts.QHistPaths:      models.EncodeStrings(h.DownloadPath),
			consts.QHistWebsite:    h.Website,
			consts.QHistFormat:     models.EncodeFormat(h.Format),
			consts.QHistFilesize:   h.FileSize,
			consts.QHistDownloadID: h.DownloadID,
			consts.QHistCommand:    h.Command,
		}).
		RunWith(r).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to insert history for URL %q: %w", h.URL, err)
	}
	return res.LastInsertId()
}

func allMissing(paths []string) bool {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil || !errors.Is(err, os.ErrNotExist) {
			return false
		}
	}
	return true
}

func removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Pl.W("Could not remove file %q: %v", path, err)
	}
}
