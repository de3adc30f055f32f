package consts

// Tables
const (
	DBProgram   = "program"
	DBDownloads = "downloads"
	DBHistory   = "history"
	DBLogs      = "logs"
)

// Program
const (
	QProgHost      = "host"
	QProgID        = "id"
	QProgHeartbeat = "last_heartbeat"
	QProgProgramID = "program_id"
	QProgPID       = "pid"
	QProgStartedAt = "started_at"
	QProgRunning   = "running"
)

// Downloads
const (
	QDLID               = "id"
	QDLURL              = "url"
	QDLTitle            = "title"
	QDLAuthor           = "author"
	QDLThumb            = "thumb"
	QDLDuration         = "duration"
	QDLType             = "type"
	QDLFormat           = "format"
	QDLContainer        = "container"
	QDLSections         = "download_sections"
	QDLAllFormats       = "all_formats"
	QDLPath             = "download_path"
	QDLWebsite          = "website"
	QDLSize             = "download_size"
	QDLPlaylistTitle    = "playlist_title"
	QDLAudioPrefs       = "audio_preferences"
	QDLVideoPrefs       = "video_preferences"
	QDLExtraCommands    = "extra_commands"
	QDLFileTemplate     = "custom_file_name_template"
	QDLSaveThumb        = "save_thumb"
	QDLStatus           = "status"
	QDLStartTime        = "download_start_time"
	QDLLogID            = "log_id"
	QDLPlaylistURL      = "playlist_url"
	QDLPlaylistIndex    = "playlist_index"
	QDLIncognito        = "incognito"
	QDLSubtitles        = "available_subtitles"
	QDLRowNumber        = "row_number"
	QDLSortKey          = "sort_key"
	QDLRowNumberAlias   = "rn"
	QDLDefaultSortOrder = QDLSortKey + " ASC, " + QDLID + " ASC"
)

// History
const (
	QHistID         = "id"
	QHistURL        = "url"
	QHistTitle      = "title"
	QHistAuthor     = "author"
	QHistDuration   = "duration"
	QHistThumb      = "thumb"
	QHistType       = "type"
	QHistTime       = "time"
	QHistPaths      = "download_path"
	QHistWebsite    = "website"
	QHistFormat     = "format"
	QHistFilesize   = "filesize"
	QHistDownloadID = "download_id"
	QHistCommand    = "command"
)

// Logs
const (
	QLogID           = "id"
	QLogTitle        = "title"
	QLogContent      = "content"
	QLogFormat       = "format"
	QLogDownloadType = "download_type"
	QLogTime         = "download_time"
)

// Batch sizes.
const (
	SQLDeleteChunk = 500
)
