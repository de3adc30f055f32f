// Package repo is used for performing database repository operations.
package repo

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"

	"zeku/internal/contracts"
	"zeku/internal/domain/consts"
	"zeku/internal/domain/logger"
	"zeku/internal/observe"

	"github.com/Masterminds/squirrel"
)

// Store holds the database variable and sub-stores like DownloadStore etc.
type Store struct {
	db            *sql.DB
	w             *writer
	downloadStore *DownloadStore
	historyStore  *HistoryStore
	logStore      *LogStore
}

// InitStores injects databases into the store methods.
func InitStores(db *sql.DB) *Store {
	w := &writer{db: db, notifier: observe.NewNotifier()}
	return &Store{
		db:            db,
		w:             w,
		downloadStore: GetDownloadStore(db, w),
		historyStore:  GetHistoryStore(db, w),
		logStore:      GetLogStore(db, w),
	}
}

// DownloadStore with pointer receiver.
func (s *Store) DownloadStore() contracts.DownloadStore {
	return s.downloadStore
}

// HistoryStore with pointer receiver.
func (s *Store) HistoryStore() contracts.HistoryStore {
	return s.historyStore
}

// LogStore with pointer receiver.
func (s *Store) LogStore() contracts.LogStore {
	return s.logStore
}

// Notifier returns the commit notifier shared by every sub-store.
func (s *Store) Notifier() *observe.Notifier {
	return s.w.notifier
}

// WithTx runs fn inside one serialized write transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx contracts.Tx) error) error {
	return s.w.withTx(ctx, func(tx *sql.Tx) error {
		return fn(&txOps{ctx: ctx, tx: tx})
	})
}

// ******************************** Private ***************************************************************************************

// runner is satisfied by both *sql.DB and *sql.Tx.
type runner interface {
	squirrel.StdSqlCtx
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// writer serializes every write transaction of this process.
type writer struct {
	db       *sql.DB
	mu       sync.Mutex
	notifier *observe.Notifier
}

// withTx begins a transaction, runs fn, and commits. Any error or panic rolls back.
func (w *writer) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Pl.E("Panic rollback failed: %v", rbErr)
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Pl.E("Transaction rollback failed after original error %v: %v", err, rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.notifier.Notify()
	return nil
}

// chunked splits ids into slices small enough for one IN clause.
func chunked(ids []int64) [][]int64 {
	return slices.Collect(slices.Chunk(ids, consts.SQLDeleteChunk))
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
