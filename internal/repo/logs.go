package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"zeku/internal/domain/consts"
	"zeku/internal/domain/errs"
	"zeku/internal/enums"
	"zeku/internal/models"

	"github.com/Masterminds/squirrel"
)

// LogStore holds a pointer to the sql.DB.
type LogStore struct {
	DB *sql.DB
	w  *writer
}

// GetLogStore returns a log store instance with injected database.
func GetLogStore(db *sql.DB, w *writer) *LogStore {
	return &LogStore{DB: db, w: w}
}

var logColumns = []string{
	consts.QLogID,
	consts.QLogTitle,
	consts.QLogContent,
	consts.QLogFormat,
	consts.QLogDownloadType,
	consts.QLogTime,
}

// Insert adds a log row.
func (ls *LogStore) Insert(ctx context.Context, l *models.LogItem) (id int64, err error) {
	err = ls.w.withTx(ctx, func(tx *sql.Tx) error {
		res, err := squirrel.
			Insert(consts.DBLogs).
			SetMap(map[string]any{
				consts.QLogTitle:        l.Title,
				consts.QLogContent:      l.Content,
				consts.QLogFormat:       models.EncodeFormat(l.Format),
				consts.QLogDownloadType: string(l.DownloadType),
				consts.QLogTime:         l.DownloadTime,
			}).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert log %q: %w", l.Title, err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err == nil {
		l.ID = id
	}
	return id, err
}

// Get returns one log row or errs.ErrNotFound.
func (ls *LogStore) Get(ctx context.Context, id int64) (*models.LogItem, error) {
	row := squirrel.
		Select(logColumns...).
		From(consts.DBLogs).
		Where(squirrel.Eq{consts.QLogID: id}).
		RunWith(ls.DB).
		QueryRowContext(ctx)

	l, err := scanLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("log %d: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get log %d: %w", id, err)
	}
	return l, nil
}

// List returns every log row, newest first.
func (ls *LogStore) List(ctx context.Context) ([]*models.LogItem, error) {
	rows, err := squirrel.
		Select(logColumns...).
		From(consts.DBLogs).
		OrderBy(consts.QLogTime+" DESC", consts.QLogID+" DESC").
		RunWith(ls.DB).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	out := []*models.LogItem{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Append merges line into the log content. With reset the previous content is discarded.
func (ls *LogStore) Append(ctx context.Context, id int64, line string, reset bool) error {
	return ls.w.withTx(ctx, func(tx *sql.Tx) error {
		var content string
		if !reset {
			err := squirrel.
				Select(consts.QLogContent).
				From(consts.DBLogs).
				Where(squirrel.Eq{consts.QLogID: id}).
				RunWith(tx).
				QueryRowContext(ctx).
				Scan(&content)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("log %d: %w", id, errs.ErrNotFound)
				}
				return err
			}
		}

		_, err := squirrel.
			Update(consts.DBLogs).
			Set(consts.QLogContent, models.AppendLogLine(content, line)).
			Where(squirrel.Eq{consts.QLogID: id}).
			RunWith(tx).
			ExecContext(ctx)
		return err
	})
}

// Delete removes a log row and detaches it from downloads.
func (ls *LogStore) Delete(ctx context.Context, id int64) error {
	return ls.w.withTx(ctx, func(tx *sql.Tx) error {
		res, err := squirrel.Delete(consts.DBLogs).Where(squirrel.Eq{consts.QLogID: id}).RunWith(tx).ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete log %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("log %d: %w", id, errs.ErrNotFound)
		}
		return clearLogIDs(ctx, tx, squirrel.Eq{consts.QDLLogID: id})
	})
}

// DeleteAll removes every log row and detaches them from downloads.
func (ls *LogStore) DeleteAll(ctx context.Context) error {
	return ls.w.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := squirrel.Delete(consts.DBLogs).RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to delete logs: %w", err)
		}
		return clearLogIDs(ctx, tx, squirrel.NotEq{consts.QDLLogID: nil})
	})
}

func scanLog(row rowScanner) (*models.LogItem, error) {
	var (
		l           models.LogItem
		format, typ string
	)
	if err := row.Scan(&l.ID, &l.Title, &l.Content, &format, &typ, &l.DownloadTime); err != nil {
		return nil, err
	}
	l.Format = models.DecodeFormat(format)
	l.DownloadType = enums.ParseMediaType(typ)
	return &l, nil
}
