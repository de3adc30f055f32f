// Package templates validates the downloader's output file name templates.
package templates

import (
	"regexp"
	"slices"
	"strings"
)

// placeholders is the whitelist of metadata keys accepted inside %(...)x tokens.
var placeholders = []string{
	"id", "title", "fulltitle", "alt_title", "ext",
	"uploader", "uploader_id", "uploader_url",
	"channel", "channel_id", "channel_url",
	"upload_date", "release_date", "timestamp",
	"duration", "duration_string",
	"format", "format_id", "resolution", "width", "height", "fps",
	"vbr", "abr", "vcodec", "acodec",
	"playlist", "playlist_id", "playlist_index", "n_entries",
	"series", "season", "season_number", "episode", "episode_number",
	"artist", "album", "album_artist", "track", "track_number", "disc_number",
	"release_year", "genre", "chapter", "chapter_number",
	"view_count", "like_count", "dislike_count", "comment_count",
	"epoch", "filesize", "filesize_approx", "filename",
	"webpage_url", "description", "age_limit",
}

var tokenRx = regexp.MustCompile(`%\(([^)]+)\)([a-zA-Z])`)

// Placeholders returns a copy of the accepted placeholder keys.
func Placeholders() []string {
	return slices.Clone(placeholders)
}

// IsValidFileTemplate reports whether every %(...)x token in the template only
// references whitelisted keys. Comma separated alternatives are each checked.
// A template without tokens is valid.
func IsValidFileTemplate(tmpl string) bool {
	for _, m := range tokenRx.FindAllStringSubmatch(tmpl, -1) {
		content := m[1]
		if i := strings.Index(content, ")"); i >= 0 {
			content = content[:i]
		}
		for key := range strings.SplitSeq(content, ",") {
			if !slices.Contains(placeholders, strings.TrimSpace(key)) {
				return false
			}
		}
	}
	return true
}
