package repo

import (
	"context"
	"database/sql"

	"zeku/internal/domain/consts"
	"zeku/internal/models"

	"github.com/Masterminds/squirrel"
)

// txOps binds the shared row operations to one write transaction.
type txOps struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t *txOps) GetDownload(id int64) (*models.DownloadItem, error) {
	return getDownload(t.ctx, t.tx, id)
}

func (t *txOps) DownloadsByStatus(statuses ...models.Status) ([]*models.DownloadItem, error) {
	return queryDownloads(t.ctx, t.tx, selectDownloads().
		Where(statusIn(statuses)).
		OrderBy(downloadOrder...))
}

func (t *txOps) DownloadIDsByStatus(statuses ...models.Status) ([]int64, error) {
	return downloadIDsByStatus(t.ctx, t.tx, statuses...)
}

func (t *txOps) ExistingDownloadIDs(ids []int64) ([]int64, error) {
	return existingDownloadIDs(t.ctx, t.tx, ids)
}

func (t *txOps) ProcessingIDsByURL(url string) ([]int64, error) {
	items, err := queryDownloads(t.ctx, t.tx, selectDownloads().
		Where(squirrel.Eq{
			consts.QDLStatus: string(models.StatusProcessing),
			consts.QDLURL:    url,
		}))
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids, nil
}

func (t *txOps) InsertDownload(item *models.DownloadItem) (int64, error) {
	id, err := insertDownload(t.ctx, t.tx, item)
	if err != nil {
		return 0, err
	}
	item.ID = id
	return id, nil
}

func (t *txOps) UpdateDownload(item *models.DownloadItem) error {
	return updateDownload(t.ctx, t.tx, item)
}

func (t *txOps) SetDownloadStatus(ids []int64, to models.Status, from ...models.Status) (int64, error) {
	return setDownloadStatus(t.ctx, t.tx, ids, to, from...)
}

func (t *txOps) DeleteDownloads(ids []int64) (int64, error) {
	return deleteDownloads(t.ctx, t.tx, ids)
}

func (t *txOps) InsertHistory(h *models.HistoryItem) (int64, error) {
	id, err := insertHistory(t.ctx, t.tx, h)
	if err != nil {
		return 0, err
	}
	h.ID = id
	return id, nil
}
