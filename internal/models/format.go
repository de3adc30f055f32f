package models

// Format describes one stream variant reported by the downloader.
type Format struct {
	FormatID   string `json:"format_id"`
	Container  string `json:"ext"`
	VCodec     string `json:"vcodec"`
	ACodec     string `json:"acodec"`
	Encoding   string `json:"encoding"`
	FileSize   int64  `json:"filesize"`
	FormatNote string `json:"format_note"`
	FPS        string `json:"fps,omitempty"`
	ASR        string `json:"asr,omitempty"`
	URL        string `json:"url,omitempty"`
	Lang       string `json:"language,omitempty"`
	TBR        string `json:"tbr,omitempty"`
}

// IsZero reports whether no format has been selected.
func (f Format) IsZero() bool {
	return f == Format{}
}
