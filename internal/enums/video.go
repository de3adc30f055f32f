package enums

// VideoFormat is the container a video download is merged into.
type VideoFormat string

const (
	VideoFormatMP4     VideoFormat = "mp4"
	VideoFormatMKV     VideoFormat = "mkv"
	VideoFormatWEBM    VideoFormat = "webm"
	VideoFormatMOV     VideoFormat = "mov"
	VideoFormatFLV     VideoFormat = "flv"
	VideoFormatAVI     VideoFormat = "avi"
	VideoFormatGIF     VideoFormat = "gif"
	VideoFormatDefault VideoFormat = "default"
)

var videoFormats = newCatalog(VideoFormatDefault,
	option{string(VideoFormatMP4), "MP4", "mp4"},
	option{string(VideoFormatMKV), "MKV", "mkv"},
	option{string(VideoFormatWEBM), "WEBM", "webm"},
	option{string(VideoFormatMOV), "MOV", "mov"},
	option{string(VideoFormatFLV), "FLV", "flv"},
	option{string(VideoFormatAVI), "AVI", "avi"},
	option{string(VideoFormatGIF), "GIF", "gif"},
	option{string(VideoFormatDefault), "Default", "mkv"},
)

// ParseVideoFormat returns the matching format or VideoFormatDefault.
func ParseVideoFormat(s string) VideoFormat { return videoFormats.parse(s) }

// AllVideoFormats lists every video format in display order.
func AllVideoFormats() []VideoFormat { return videoFormats.all() }

func (f VideoFormat) Value() string { return videoFormats.find(f).value }
func (f VideoFormat) Label() string { return videoFormats.find(f).label }
func (f VideoFormat) Arg() string   { return videoFormats.find(f).arg }

func (f VideoFormat) MarshalText() ([]byte, error) { return []byte(f), nil }

func (f *VideoFormat) UnmarshalText(b []byte) error {
	*f = videoFormats.unmarshal(b)
	return nil
}

// VideoEncoding is the preferred video codec.
type VideoEncoding string

const (
	VideoEncodingH264     VideoEncoding = "h264"
	VideoEncodingH265     VideoEncoding = "h265"
	VideoEncodingVP9      VideoEncoding = "vp9"
	VideoEncodingAV1      VideoEncoding = "av1"
	VideoEncodingNoRecode VideoEncoding = "no_recode"
)

var videoEncodings = newCatalog(VideoEncodingNoRecode,
	option{string(VideoEncodingH264), "H.264", "h264"},
	option{string(VideoEncodingH265), "H.265 (HEVC)", "h265"},
	option{string(VideoEncodingVP9), "VP9", "vp9"},
	option{string(VideoEncodingAV1), "AV1", "av1"},
	option{string(VideoEncodingNoRecode), "No Recoding", ""},
)

// ParseVideoEncoding returns the matching encoding or VideoEncodingNoRecode.
func ParseVideoEncoding(s string) VideoEncoding { return videoEncodings.parse(s) }

// AllVideoEncodings lists every video encoding in display order.
func AllVideoEncodings() []VideoEncoding { return videoEncodings.all() }

func (e VideoEncoding) Value() string { return videoEncodings.find(e).value }
func (e VideoEncoding) Label() string { return videoEncodings.find(e).label }
func (e VideoEncoding) Arg() string   { return videoEncodings.find(e).arg }

func (e VideoEncoding) MarshalText() ([]byte, error) { return []byte(e), nil }

func (e *VideoEncoding) UnmarshalText(b []byte) error {
	*e = videoEncodings.unmarshal(b)
	return nil
}

// VideoQuality selects a video stream by height.
type VideoQuality string

const (
	VideoQualityBest    VideoQuality = "best"
	VideoQuality2160p   VideoQuality = "2160p"
	VideoQuality1440p   VideoQuality = "1440p"
	VideoQuality1080p   VideoQuality = "1080p"
	VideoQuality720p    VideoQuality = "720p"
	VideoQuality480p    VideoQuality = "480p"
	VideoQuality360p    VideoQuality = "360p"
	VideoQualityLowest  VideoQuality = "lowest"
	VideoQualityDefault VideoQuality = "default"
)

var videoQualities = newCatalog(VideoQualityDefault,
	option{string(VideoQualityBest), "Best", "bestvideo"},
	option{string(VideoQuality2160p), "2160p", "bestvideo[height<=2160]"},
	option{string(VideoQuality1440p), "1440p", "bestvideo[height<=1440]"},
	option{string(VideoQuality1080p), "1080p", "bestvideo[height<=1080]"},
	option{string(VideoQuality720p), "720p", "bestvideo[height<=720]"},
	option{string(VideoQuality480p), "480p", "bestvideo[height<=480]"},
	option{string(VideoQuality360p), "360p", "bestvideo[height<=360]"},
	option{string(VideoQualityLowest), "Lowest", "worstvideo"},
	option{string(VideoQualityDefault), "Default", "bestvideo[height<=1080]"},
)

// ParseVideoQuality returns the matching quality or VideoQualityDefault.
func ParseVideoQuality(s string) VideoQuality { return videoQualities.parse(s) }

// AllVideoQualities lists every video quality in display order.
func AllVideoQualities() []VideoQuality { return videoQualities.all() }

func (q VideoQuality) Value() string { return videoQualities.find(q).value }
func (q VideoQuality) Label() string { return videoQualities.find(q).label }
func (q VideoQuality) Arg() string   { return videoQualities.find(q).arg }

func (q VideoQuality) MarshalText() ([]byte, error) { return []byte(q), nil }

func (q *VideoQuality) UnmarshalText(b []byte) error {
	*q = videoQualities.unmarshal(b)
	return nil
}

// SubtitlesFormat is the subtitle file format requested from the downloader.
type SubtitlesFormat string

const (
	SubtitlesFormatSRT     SubtitlesFormat = "srt"
	SubtitlesFormatVTT     SubtitlesFormat = "vtt"
	SubtitlesFormatASS     SubtitlesFormat = "ass"
	SubtitlesFormatLRC     SubtitlesFormat = "lrc"
	SubtitlesFormatDefault SubtitlesFormat = "default"
)

var subtitlesFormats = newCatalog(SubtitlesFormatDefault,
	option{string(SubtitlesFormatSRT), "SRT", "srt"},
	option{string(SubtitlesFormatVTT), "VTT", "vtt"},
	option{string(SubtitlesFormatASS), "ASS", "ass"},
	option{string(SubtitlesFormatLRC), "LRC", "lrc"},
	option{string(SubtitlesFormatDefault), "Default", "best"},
)

// ParseSubtitlesFormat returns the matching format or SubtitlesFormatDefault.
func ParseSubtitlesFormat(s string) SubtitlesFormat { return subtitlesFormats.parse(s) }

// AllSubtitlesFormats lists every subtitle format in display order.
func AllSubtitlesFormats() []SubtitlesFormat { return subtitlesFormats.all() }

func (f SubtitlesFormat) Value() string { return subtitlesFormats.find(f).value }
func (f SubtitlesFormat) Label() string { return subtitlesFormats.find(f).label }
func (f SubtitlesFormat) Arg() string   { return subtitlesFormats.find(f).arg }

func (f SubtitlesFormat) MarshalText() ([]byte, error) { return []byte(f), nil }

func (f *SubtitlesFormat) UnmarshalText(b []byte) error {
	*f = subtitlesFormats.unmarshal(b)
	return nil
}
