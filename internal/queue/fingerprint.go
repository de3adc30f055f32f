package queue

import (
	"strconv"
	"strings"

	"zeku/internal/enums"
	"zeku/internal/models"
)

// fingerprint returns the comparison key of item under policy. An empty key
// never matches.
func fingerprint(item *models.DownloadItem, policy enums.PreventDuplicateDownload) string {
	switch policy {
	case enums.PreventDuplicateURL:
		return item.URL
	case enums.PreventDuplicateTypeAndURL:
		return string(item.Type) + "\x1f" + item.URL
	case enums.PreventDuplicateConfiguration:
		index := ""
		if item.PlaylistIndex != nil {
			index = strconv.Itoa(*item.PlaylistIndex)
		}
		return strings.Join([]string{
			string(item.Type),
			item.URL,
			item.Format.FormatID,
			item.Container,
			models.EncodeAudioPreferences(item.AudioPreferences),
			models.EncodeVideoPreferences(item.VideoPreferences),
			item.ExtraCommands,
			item.DownloadSections,
			item.CustomFileNameTemplate,
			index,
			models.EncodeStrings(item.AvailableSubtitles),
		}, "\x1f")
	default:
		return ""
	}
}

// duplicateOf returns the id of the first row in existing matching item.
func duplicateOf(existing []*models.DownloadItem, item *models.DownloadItem, policy enums.PreventDuplicateDownload) (int64, bool) {
	key := fingerprint(item, policy)
	if key == "" {
		return 0, false
	}
	for _, e := range existing {
		if e.ID == item.ID && item.ID != 0 {
			continue
		}
		if fingerprint(e, policy) == key {
			return e.ID, true
		}
	}
	return 0, false
}
