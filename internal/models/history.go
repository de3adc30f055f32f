package models

import "zeku/internal/enums"

// HistoryItem records one completed download.
type HistoryItem struct {
	ID           int64           `json:"id" db:"id"`
	URL          string          `json:"url" db:"url"`
	Title        string          `json:"title" db:"title"`
	Author       string          `json:"author" db:"author"`
	Duration     string          `json:"duration" db:"duration"`
	Thumb        string          `json:"thumb" db:"thumb"`
	Type         enums.MediaType `json:"type" db:"type"`
	Time         int64           `json:"time" db:"time"`
	DownloadPath []string        `json:"download_path" db:"download_path"`
	Website      string          `json:"website" db:"website"`
	Format       Format          `json:"format" db:"format"`
	FileSize     int64           `json:"filesize" db:"filesize"`
	DownloadID   int64           `json:"download_id" db:"download_id"`
	Command      string          `json:"command" db:"command"`
}

// HistorySort selects the ordering of history listings.
type HistorySort string

const (
	HistorySortDate     HistorySort = "date"
	HistorySortTitle    HistorySort = "title"
	HistorySortAuthor   HistorySort = "author"
	HistorySortFilesize HistorySort = "filesize"
)

// HistoryFilter narrows a history listing. Zero fields are ignored.
type HistoryFilter struct {
	Query   string
	Type    enums.MediaType
	Website string
	Sort    HistorySort
	Desc    bool
}
