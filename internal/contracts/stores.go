// Package contracts defines interfaces that decouple the application layer from storage implementations.
package contracts

import (
	"context"
	"database/sql"
	"time"

	"zeku/internal/enums"
	"zeku/internal/models"
	"zeku/internal/observe"
)

// Store allows access to the main store repo methods.
type Store interface {
	DownloadStore() DownloadStore
	HistoryStore() HistoryStore
	LogStore() LogStore

	// WithTx runs fn inside one serialized write transaction. Subscribers are
	// notified after a successful commit.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	Notifier() *observe.Notifier
}

// Tx exposes the operations that must share a write transaction.
type Tx interface {
	GetDownload(id int64) (*models.DownloadItem, error)
	DownloadsByStatus(statuses ...models.Status) ([]*models.DownloadItem, error)
	// DownloadIDsByStatus returns every id when statuses is empty.
	DownloadIDsByStatus(statuses ...models.Status) ([]int64, error)
	ExistingDownloadIDs(ids []int64) ([]int64, error)
	ProcessingIDsByURL(url string) ([]int64, error)
	InsertDownload(item *models.DownloadItem) (int64, error)
	UpdateDownload(item *models.DownloadItem) error
	SetDownloadStatus(ids []int64, to models.Status, from ...models.Status) (int64, error)
	DeleteDownloads(ids []int64) (int64, error)
	InsertHistory(h *models.HistoryItem) (int64, error)
}

// DownloadStore allows access to download repo methods.
type DownloadStore interface {
	GetDB() *sql.DB

	// Add and update operations.
	Insert(ctx context.Context, item *models.DownloadItem) (int64, error)
	InsertAll(ctx context.Context, items []*models.DownloadItem) ([]int64, error)
	Update(ctx context.Context, item *models.DownloadItem) error
	UpdateAll(ctx context.Context, items []*models.DownloadItem) error
	SetStatus(ctx context.Context, id int64, to models.Status) error
	SetStatusMultiple(ctx context.Context, ids []int64, to models.Status, from ...models.Status) (int64, error)
	CancelActiveQueued(ctx context.Context) (int64, error)
	SetLogID(ctx context.Context, id, logID int64) error
	RemoveLogID(ctx context.Context, logID int64) error
	RemoveAllLogIDs(ctx context.Context) error
	ReverseProcessing(ctx context.Context) error
	ResetInterrupted(ctx context.Context) (int64, error)

	// 'Get' operations.
	Get(ctx context.Context, id int64) (*models.DownloadItem, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.DownloadItem, error)
	ListByStatus(ctx context.Context, statuses ...models.Status) ([]*models.DownloadItem, error)
	ListConfigureMultiple(ctx context.Context, statuses ...models.Status) ([]*models.DownloadItemConfigureMultiple, error)
	Page(ctx context.Context, offset, limit int, statuses ...models.Status) ([]*models.DownloadItem, error)
	CountByStatus(ctx context.Context, statuses ...models.Status) (int, error)
	Counts(ctx context.Context) (models.ActiveAndQueuedCounts, error)
	ActiveAndQueuedIDs(ctx context.Context) ([]int64, error)
	ScheduledIDs(ctx context.Context) ([]int64, error)
	NonTerminal(ctx context.Context) ([]*models.DownloadItem, error)
	NextRunnable(ctx context.Context, now time.Time) (*models.DownloadItem, error)
	ProcessingByURL(ctx context.Context, url string) ([]*models.DownloadItem, error)
}

// HistoryStore allows access to history repo methods.
type HistoryStore interface {
	Insert(ctx context.Context, h *models.HistoryItem) (int64, error)
	Get(ctx context.Context, id int64) (*models.HistoryItem, error)
	List(ctx context.Context, f models.HistoryFilter) ([]*models.HistoryItem, error)
	ListByURL(ctx context.Context, url string) ([]*models.HistoryItem, error)
	ListByURLAndType(ctx context.Context, url string, t enums.MediaType) ([]*models.HistoryItem, error)
	Websites(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64, deleteFiles bool) error
	DeleteAll(ctx context.Context, deleteFiles bool) (int64, error)
	DeleteWithIDs(ctx context.Context, ids []int64, deleteFiles bool) (int64, error)
	DeleteDuplicates(ctx context.Context) (int64, error)
	ClearMissingFiles(ctx context.Context) (int64, error)
}

// LogStore allows access to downloader log repo methods.
type LogStore interface {
	Insert(ctx context.Context, l *models.LogItem) (int64, error)
	Get(ctx context.Context, id int64) (*models.LogItem, error)
	List(ctx context.Context) ([]*models.LogItem, error)
	Append(ctx context.Context, id int64, line string, reset bool) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}
