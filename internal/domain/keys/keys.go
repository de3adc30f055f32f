// Package keys holds viper and flag key names.
package keys

// Program files
const (
	ConfigFile string = "config-file"
	DBPath     string = "db-path"
	LogPath    string = "log-path"
	CacheDir   string = "cache-dir"
)

// Logging
const (
	DebugLevel    string = "debug-level"
	LogMaxSizeMB  string = "log-max-size-mb"
	LogMaxBackups string = "log-max-backups"
)

// Download behaviour
const (
	DownloadDir                 string = "download-dir"
	YtDLPPath                   string = "ytdlp-path"
	PreventDuplicateDownloads   string = "prevent-duplicate-downloads"
	ContinueAfterPriority       string = "continue-after-priority"
	KeepCompleted               string = "keep-completed"
	LogDownloads                string = "log-downloads"
	Incognito                   string = "incognito"
	Retries                     string = "retries"
	AudioFileTemplate           string = "audio-file-template"
	VideoFileTemplate           string = "video-file-template"
	SaveThumbnail               string = "save-thumbnail"
	ExtraCommands               string = "extra-commands"
	ExportCookies               string = "export-cookies"
	CookieBrowserDomainOverride string = "cookie-domain"
)

// Network policy
const (
	AllowMetered   string = "allow-metered"
	NetworkMetered string = "network-metered"
	NetworkRecheck string = "network-recheck"
)

// Preferences
const (
	AudioFormat     string = "audio.format"
	AudioEncoding   string = "audio.encoding"
	AudioQuality    string = "audio.quality"
	AudioEmbedThumb string = "audio.embed-thumb"
	AudioCropThumb  string = "audio.crop-thumb"
	AudioSplitChaps string = "audio.split-by-chapters"
	AudioSponsor    string = "audio.sponsorblock"

	VideoFormat      string = "video.format"
	VideoEncoding    string = "video.encoding"
	VideoQuality     string = "video.quality"
	VideoEmbedSubs   string = "video.embed-subs"
	VideoWriteSubs   string = "video.write-subs"
	VideoAutoSubs    string = "video.write-auto-subs"
	VideoSubsLangs   string = "video.subs-languages"
	VideoSubsFormat  string = "video.subs-format"
	VideoAddChapters string = "video.add-chapters"
	VideoSplitChaps  string = "video.split-by-chapters"
	VideoSponsor     string = "video.sponsorblock"
)

// Server
const (
	ServerAddr string = "addr"
)

// Command flags
const (
	At        string = "at"
	Type      string = "type"
	FormatID  string = "format-id"
	Title     string = "title"
	Template  string = "template"
	Status    string = "status"
	Limit     string = "limit"
	Offset    string = "offset"
	Search    string = "search"
	Sort      string = "sort"
	Desc      string = "desc"
	Website   string = "website"
	Files     string = "delete-files"
	Reset     string = "reset"
	All       string = "all"
	Serve     string = "serve"
	NoProbe   string = "no-probe"
	URLFile   string = "file"
	Duplicate string = "duplicates"
)
