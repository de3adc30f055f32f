package models

import "zeku/internal/enums"

// LogItem holds the captured downloader output of one run.
type LogItem struct {
	ID           int64           `json:"id" db:"id"`
	Title        string          `json:"title" db:"title"`
	Content      string          `json:"content" db:"content"`
	Format       Format          `json:"format" db:"format"`
	DownloadType enums.MediaType `json:"download_type" db:"download_type"`
	DownloadTime int64           `json:"download_time" db:"download_time"`
}
