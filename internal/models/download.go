package models

import (
	"time"

	"zeku/internal/enums"
)

// ContainerDefault is the stored container of items that leave it to the
// video preferences. It reads back as an empty Container.
const ContainerDefault = "Default"

// DownloadItem is one row of the download queue.
//
// Matches the order of the DB table, do not alter.
type DownloadItem struct {
	ID                     int64            `json:"id" db:"id"`
	URL                    string           `json:"url" db:"url"`
	Title                  string           `json:"title" db:"title"`
	Author                 string           `json:"author" db:"author"`
	Thumb                  string           `json:"thumb" db:"thumb"`
	Duration               string           `json:"duration" db:"duration"`
	Type                   enums.MediaType  `json:"type" db:"type"`
	Format                 Format           `json:"format" db:"format"`
	Container              string           `json:"container" db:"container"`
	DownloadSections       string           `json:"download_sections" db:"download_sections"`
	AllFormats             []Format         `json:"all_formats" db:"all_formats"`
	DownloadPath           string           `json:"download_path" db:"download_path"`
	Website                string           `json:"website" db:"website"`
	DownloadSize           string           `json:"download_size" db:"download_size"`
	PlaylistTitle          string           `json:"playlist_title" db:"playlist_title"`
	AudioPreferences       AudioPreferences `json:"audio_preferences" db:"audio_preferences"`
	VideoPreferences       VideoPreferences `json:"video_preferences" db:"video_preferences"`
	ExtraCommands          string           `json:"extra_commands" db:"extra_commands"`
	CustomFileNameTemplate string           `json:"custom_file_name_template" db:"custom_file_name_template"`
	SaveThumb              bool             `json:"save_thumb" db:"save_thumb"`
	Status                 Status           `json:"status" db:"status"`
	DownloadStartTime      int64            `json:"download_start_time" db:"download_start_time"`
	LogID                  *int64           `json:"log_id,omitempty" db:"log_id"`
	PlaylistURL            *string          `json:"playlist_url,omitempty" db:"playlist_url"`
	PlaylistIndex          *int             `json:"playlist_index,omitempty" db:"playlist_index"`
	Incognito              bool             `json:"incognito" db:"incognito"`
	AvailableSubtitles     []string         `json:"available_subtitles" db:"available_subtitles"`
	RowNumber              int              `json:"row_number" db:"-"`
	SortKey                int64            `json:"-" db:"sort_key"`
}

// NewDownloadItem returns an item for url with default preferences.
func NewDownloadItem(url string, mediaType enums.MediaType) *DownloadItem {
	return &DownloadItem{
		URL:                url,
		Type:               mediaType,
		AllFormats:         []Format{},
		AudioPreferences:   DefaultAudioPreferences(),
		VideoPreferences:   DefaultVideoPreferences(),
		Status:             StatusQueued,
		AvailableSubtitles: []string{},
	}
}

// DueAt returns the millisecond timestamp the item becomes runnable. An unset
// start time means the item is due immediately.
func (d *DownloadItem) DueAt(now time.Time) int64 {
	if d.DownloadStartTime == 0 {
		return now.UnixMilli()
	}
	return d.DownloadStartTime
}

// IsDue reports whether the item's start time has been reached.
func (d *DownloadItem) IsDue(now time.Time) bool {
	return d.DownloadStartTime <= now.UnixMilli()
}

// DownloadItemConfigureMultiple is the trimmed projection used for bulk editing.
type DownloadItemConfigureMultiple struct {
	ID         int64           `json:"id"`
	URL        string          `json:"url"`
	Title      string          `json:"title"`
	Type       enums.MediaType `json:"type"`
	Format     Format          `json:"format"`
	AllFormats []Format        `json:"all_formats"`
	Container  string          `json:"container"`
	Status     Status          `json:"status"`
	Incognito  bool            `json:"incognito"`
}

// ActiveAndQueuedCounts holds the live counts of the queue.
type ActiveAndQueuedCounts struct {
	Active    int `json:"active"`
	Queued    int `json:"queued"`
	Scheduled int `json:"scheduled"`
	Paused    int `json:"paused"`
	Cancelled int `json:"cancelled"`
	Errored   int `json:"errored"`
	Saved     int `json:"saved"`
}
