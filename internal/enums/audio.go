package enums

// AudioFormat is the container an audio download is converted to.
type AudioFormat string

const (
	AudioFormatAAC     AudioFormat = "aac"
	AudioFormatMP3     AudioFormat = "mp3"
	AudioFormatFLAC    AudioFormat = "flac"
	AudioFormatVorbis  AudioFormat = "ogg_vorbis"
	AudioFormatOpus    AudioFormat = "opus"
	AudioFormatM4A     AudioFormat = "m4a"
	AudioFormatWAV     AudioFormat = "wav"
	AudioFormatDefault AudioFormat = "default"
)

var audioFormats = newCatalog(AudioFormatDefault,
	option{string(AudioFormatAAC), "AAC", "aac"},
	option{string(AudioFormatMP3), "MP3", "mp3"},
	option{string(AudioFormatFLAC), "FLAC", "flac"},
	option{string(AudioFormatVorbis), "OGG Vorbis", "vorbis"},
	option{string(AudioFormatOpus), "Opus", "opus"},
	option{string(AudioFormatM4A), "M4A", "m4a"},
	option{string(AudioFormatWAV), "WAV", "wav"},
	option{string(AudioFormatDefault), "Default", "m4a"},
)

// ParseAudioFormat returns the matching format or AudioFormatDefault.
func ParseAudioFormat(s string) AudioFormat { return audioFormats.parse(s) }

// AllAudioFormats lists every audio format in display order.
func AllAudioFormats() []AudioFormat { return audioFormats.all() }

func (f AudioFormat) Value() string { return audioFormats.find(f).value }
func (f AudioFormat) Label() string { return audioFormats.find(f).label }
func (f AudioFormat) Arg() string   { return audioFormats.find(f).arg }

func (f AudioFormat) MarshalText() ([]byte, error) { return []byte(f), nil }

func (f *AudioFormat) UnmarshalText(b []byte) error {
	*f = audioFormats.unmarshal(b)
	return nil
}

// AudioEncoding is the codec family requested for audio extraction.
type AudioEncoding string

const (
	AudioEncodingOpus    AudioEncoding = "opus"
	AudioEncodingM4A     AudioEncoding = "m4a"
	AudioEncodingDefault AudioEncoding = "default"
)

var audioEncodings = newCatalog(AudioEncodingDefault,
	option{string(AudioEncodingOpus), "Opus", "ogg"},
	option{string(AudioEncodingM4A), "M4A", "mp4"},
	option{string(AudioEncodingDefault), "Default", "m4a"},
)

// ParseAudioEncoding returns the matching encoding or AudioEncodingDefault.
func ParseAudioEncoding(s string) AudioEncoding { return audioEncodings.parse(s) }

// AllAudioEncodings lists every audio encoding in display order.
func AllAudioEncodings() []AudioEncoding { return audioEncodings.all() }

func (e AudioEncoding) Value() string { return audioEncodings.find(e).value }
func (e AudioEncoding) Label() string { return audioEncodings.find(e).label }
func (e AudioEncoding) Arg() string   { return audioEncodings.find(e).arg }

func (e AudioEncoding) MarshalText() ([]byte, error) { return []byte(e), nil }

func (e *AudioEncoding) UnmarshalText(b []byte) error {
	*e = audioEncodings.unmarshal(b)
	return nil
}

// AudioQuality selects an audio stream by bitrate.
type AudioQuality string

const (
	AudioQualityHighest AudioQuality = "highest"
	AudioQuality320k    AudioQuality = "320k"
	AudioQuality256k    AudioQuality = "256k"
	AudioQuality192k    AudioQuality = "192k"
	AudioQuality128k    AudioQuality = "128k"
	AudioQuality96k     AudioQuality = "96k"
	AudioQuality64k     AudioQuality = "64k"
	AudioQuality32k     AudioQuality = "32k"
	AudioQualityLowest  AudioQuality = "lowest"
	AudioQualityDefault AudioQuality = "default"
)

var audioQualities = newCatalog(AudioQualityDefault,
	option{string(AudioQualityHighest), "Highest", "bestaudio"},
	option{string(AudioQuality320k), "320 kbps", "bestaudio[abr<=320]"},
	option{string(AudioQuality256k), "256 kbps", "bestaudio[abr<=256]"},
	option{string(AudioQuality192k), "192 kbps", "bestaudio[abr<=192]"},
	option{string(AudioQuality128k), "128 kbps", "bestaudio[abr<=128]"},
	option{string(AudioQuality96k), "96 kbps", "bestaudio[abr<=96]"},
	option{string(AudioQuality64k), "64 kbps", "bestaudio[abr<=64]"},
	option{string(AudioQuality32k), "32 kbps", "bestaudio[abr<=32]"},
	option{string(AudioQualityLowest), "Lowest", "worstaudio"},
	option{string(AudioQualityDefault), "Default", "bestaudio[abr<=192]"},
)

// ParseAudioQuality returns the matching quality or AudioQualityDefault.
func ParseAudioQuality(s string) AudioQuality { return audioQualities.parse(s) }

// AllAudioQualities lists every audio quality in display order.
func AllAudioQualities() []AudioQuality { return audioQualities.all() }

func (q AudioQuality) Value() string { return audioQualities.find(q).value }
func (q AudioQuality) Label() string { return audioQualities.find(q).label }
func (q AudioQuality) Arg() string   { return audioQualities.find(q).arg }

func (q AudioQuality) MarshalText() ([]byte, error) { return []byte(q), nil }

func (q *AudioQuality) UnmarshalText(b []byte) error {
	*q = audioQualities.unmarshal(b)
	return nil
}
