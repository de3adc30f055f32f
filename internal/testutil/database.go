// Package testutil holds shared test fixtures.
package testutil

import (
	"path/filepath"
	"testing"

	"zeku/internal/database"
	"zeku/internal/enums"
	"zeku/internal/models"
	"zeku/internal/repo"
)

// NewTestDatabase opens a migrated SQLite database in a temp directory.
// A file is used rather than :memory: so pooled connections share one database.
// The database is closed when the test completes.
func NewTestDatabase(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "zeku.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// NewTestStore returns stores over a fresh test database.
func NewTestStore(t *testing.T) *repo.Store {
	t.Helper()
	return repo.InitStores(NewTestDatabase(t).DB)
}

// NewItem returns a queued video item for url.
func NewItem(url string) *models.DownloadItem {
	item := models.NewDownloadItem(url, enums.MediaTypeVideo)
	item.Title = "title of " + url
	return item
}
