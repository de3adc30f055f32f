// Package command holds yt-dlp argument constants.
package command

// General
const (
	YTDLP          = "yt-dlp"
	AfterMove      = "after_move:filepath"
	CookiePath     = "--cookies"
	FilenameSyntax = "%(title)s.%(ext)s"
	Newline        = "--newline"
	NoColors       = "--no-colors"
	NoPlaylist     = "--no-playlist"
	PlaylistItems  = "--playlist-items"
	Output         = "-o"
	P              = "-P"
	PathHome       = "home:"
	PathTemp       = "temp:"
	Print          = "--print"
	Retries        = "--retries"
	Sections       = "--download-sections"
)

// Formats
const (
	Format            = "-f"
	FormatSort        = "-S"
	ExtractAudio      = "-x"
	AudioFormat       = "--audio-format"
	MergeOutputFormat = "--merge-output-format"
	BestFallback      = "/best"
)

// Post-processing
const (
	EmbedThumbnail     = "--embed-thumbnail"
	WriteThumbnail     = "--write-thumbnail"
	ConvertThumbnails  = "--convert-thumbnails"
	EmbedSubs          = "--embed-subs"
	WriteSubs          = "--write-subs"
	WriteAutoSubs      = "--write-auto-subs"
	SubLangs           = "--sub-langs"
	SubFormat          = "--sub-format"
	EmbedChapters      = "--embed-chapters"
	SplitChapters      = "--split-chapters"
	SponsorBlockRemove = "--sponsorblock-remove"
	PostProcessorArgs  = "--ppa"
	CropThumbnail      = `ThumbnailsConvertor+FFmpeg_o:-c:v mjpeg -vf crop="'if(gt(ih,iw),iw,ih)':'if(gt(iw,ih),ih,iw)'"`
	ThumbnailJPG       = "jpg"
)

// JSON only
const (
	OutputJSON = "-J"
)
