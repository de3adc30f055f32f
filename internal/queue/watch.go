package queue

import (
	"context"

	"zeku/internal/models"
	"zeku/internal/observe"
)

// Counts returns the current per-status counts.
func (m *Manager) Counts(ctx context.Context) (models.ActiveAndQueuedCounts, error) {
	return m.store.DownloadStore().Counts(ctx)
}

// WatchCounts streams the per-status counts after every committed change.
func (m *Manager) WatchCounts(ctx context.Context) <-chan models.ActiveAndQueuedCounts {
	return observe.Watch(ctx, m.store.Notifier(), m.Counts)
}

// WatchStatus streams the rows in statuses after every committed change.
func (m *Manager) WatchStatus(ctx context.Context, statuses ...models.Status) <-chan []*models.DownloadItem {
	return observe.Watch(ctx, m.store.Notifier(), func(ctx context.Context) ([]*models.DownloadItem, error) {
		return m.store.DownloadStore().ListByStatus(ctx, statuses...)
	})
}

// WatchActive streams the Active rows.
func (m *Manager) WatchActive(ctx context.Context) <-chan []*models.DownloadItem {
	return m.WatchStatus(ctx, models.StatusActive)
}

// WatchProcessing streams the Processing rows.
func (m *Manager) WatchProcessing(ctx context.Context) <-chan []*models.DownloadItem {
	return m.WatchStatus(ctx, models.StatusProcessing)
}
