package downloads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"zeku/internal/domain/command"
	"zeku/internal/domain/consts"
	"zeku/internal/models"
	"zeku/internal/parsing"
)

// ProbeResult is the metadata yt-dlp reports for a URL.
type ProbeResult struct {
	URL           string
	Title         string
	Author        string
	Thumb         string
	Duration      string
	PlaylistTitle string
	Format        models.Format
	Formats       []models.Format
	Subtitles     []string
}

type probeInfo struct {
	Title          string                     `json:"title"`
	Uploader       string                     `json:"uploader"`
	Channel        string                     `json:"channel"`
	Thumbnail      string                     `json:"thumbnail"`
	DurationString string                     `json:"duration_string"`
	PlaylistTitle  string                     `json:"playlist_title"`
	FormatID       string                     `json:"format_id"`
	Ext            string                     `json:"ext"`
	Formats        []probeFormat              `json:"formats"`
	Subtitles      map[string]json.RawMessage `json:"subtitles"`
}

type probeFormat struct {
	FormatID       string   `json:"format_id"`
	Ext            string   `json:"ext"`
	VCodec         string   `json:"vcodec"`
	ACodec         string   `json:"acodec"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	FormatNote     string   `json:"format_note"`
	FPS            *float64 `json:"fps"`
	ASR            *float64 `json:"asr"`
	URL            string   `json:"url"`
	Language       *string  `json:"language"`
	TBR            *float64 `json:"tbr"`
}

// Probe runs "yt-dlp -J" for rawURL and returns its metadata.
func Probe(ctx context.Context, runner Runner, bin, rawURL string) (*ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.ProbeTimeout)
	defer cancel()

	var payload []byte
	args := []string{command.OutputJSON, command.NoPlaylist, command.NoColors, rawURL}
	err := runner.Run(ctx, bin, args, func(line string) {
		// Warnings are merged into the output, only the JSON document matters
		if strings.HasPrefix(line, "{") {
			payload = []byte(line)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("probe of %q failed: %w", rawURL, err)
	}
	if len(payload) == 0 {
		return nil, errors.New("probe returned no metadata")
	}
	return parseProbe(rawURL, payload)
}

func parseProbe(rawURL string, payload []byte) (*ProbeResult, error) {
	var info probeInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return nil, fmt.Errorf("failed to decode probe output: %w", err)
	}

	res := &ProbeResult{
		URL:           rawURL,
		Title:         info.Title,
		Author:        info.Uploader,
		Thumb:         info.Thumbnail,
		Duration:      info.DurationString,
		PlaylistTitle: info.PlaylistTitle,
		Formats:       make([]models.Format, 0, len(info.Formats)),
		Subtitles:     make([]string, 0, len(info.Subtitles)),
	}
	if res.Author == "" {
		res.Author = info.Channel
	}

	for _, f := range info.Formats {
		format := f.toFormat()
		res.Formats = append(res.Formats, format)
		if f.FormatID == info.FormatID {
			res.Format = format
		}
	}
	if res.Format.IsZero() && info.FormatID != "" {
		res.Format = models.Format{FormatID: info.FormatID, Container: info.Ext}
	}

	for lang := range info.Subtitles {
		res.Subtitles = append(res.Subtitles, lang)
	}
	slices.Sort(res.Subtitles)
	return res, nil
}

func (f probeFormat) toFormat() models.Format {
	out := models.Format{
		FormatID:   f.FormatID,
		Container:  f.Ext,
		VCodec:     f.VCodec,
		ACodec:     f.ACodec,
		FormatNote: f.FormatNote,
		URL:        f.URL,
		FPS:        floatString(f.FPS),
		ASR:        floatString(f.ASR),
		TBR:        floatString(f.TBR),
	}
	switch {
	case f.Filesize != nil:
		out.FileSize = int64(*f.Filesize)
	case f.FilesizeApprox != nil:
		out.FileSize = int64(*f.FilesizeApprox)
	}
	if f.Language != nil {
		out.Lang = *f.Language
	}
	if out.VCodec != "" && out.VCodec != "none" {
		out.Encoding = out.VCodec
	} else {
		out.Encoding = out.ACodec
	}
	return out
}

func floatString(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// Apply fills item fields the user left empty. Formats and subtitles are
// always replaced.
func (r *ProbeResult) Apply(item *models.DownloadItem) {
	if item.Title == "" {
		item.Title = r.Title
	}
	if item.Author == "" {
		item.Author = r.Author
	}
	if item.Thumb == "" {
		item.Thumb = r.Thumb
	}
	if item.Duration == "" {
		item.Duration = r.Duration
	}
	if item.PlaylistTitle == "" {
		item.PlaylistTitle = r.PlaylistTitle
	}
	if item.Website == "" {
		item.Website = parsing.Website(item.URL)
	}
	item.AllFormats = r.Formats
	item.AvailableSubtitles = r.Subtitles

	if item.Format.IsZero() {
		item.Format = r.Format
	}
	if item.Container == "" {
		item.Container = item.Format.Container
	}
	if item.DownloadSize == "" && item.Format.FileSize > 0 {
		item.DownloadSize = strconv.FormatInt(item.Format.FileSize, 10)
	}
}
