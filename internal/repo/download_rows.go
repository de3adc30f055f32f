package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"zeku/internal/domain/consts"
	"zeku/internal/domain/errs"
	"zeku/internal/enums"
	"zeku/internal/models"

	"github.com/Masterminds/squirrel"
)

// downloadColumns matches the scan order of scanDownload.
var downloadColumns = []string{
	consts.QDLID,
	consts.QDLURL,
	consts.QDLTitle,
	consts.QDLAuthor,
	consts.QDLThumb,
	consts.QDLDuration,
	consts.QDLType,
	consts.QDLFormat,
	consts.QDLContainer,
	consts.QDLSections,
	consts.QDLAllFormats,
	consts.QDLPath,
	consts.QDLWebsite,
	consts.QDLSize,
	consts.QDLPlaylistTitle,
	consts.QDLAudioPrefs,
	consts.QDLVideoPrefs,
	consts.QDLExtraCommands,
	consts.QDLFileTemplate,
	consts.QDLSaveThumb,
	consts.QDLStatus,
	consts.QDLStartTime,
	consts.QDLLogID,
	consts.QDLPlaylistURL,
	consts.QDLPlaylistIndex,
	consts.QDLIncognito,
	consts.QDLSubtitles,
	consts.QDLSortKey,
}

// downloadOrder is the queue order used by every listing.
var downloadOrder = []string{consts.QDLSortKey + " ASC", consts.QDLID + " ASC"}

func scanDownload(row rowScanner, extra ...any) (*models.DownloadItem, error) {
	var (
		item                                  models.DownloadItem
		typ, format, allFormats, audio, video string
		subs                                  string
		logID, playlistIndex                  sql.NullInt64
		playlistURL                           sql.NullString
	)

	dest := []any{
		&item.ID,
		&item.URL,
		&item.Title,
		&item.Author,
		&item.Thumb,
		&item.Duration,
		&typ,
		&format,
		&item.Container,
		&item.DownloadSections,
		&allFormats,
		&item.DownloadPath,
		&item.Website,
		&item.DownloadSize,
		&item.PlaylistTitle,
		&audio,
		&video,
		&item.ExtraCommands,
		&item.CustomFileNameTemplate,
		&item.SaveThumb,
		&item.Status,
		&item.DownloadStartTime,
		&logID,
		&playlistURL,
		&playlistIndex,
		&item.Incognito,
		&subs,
		&item.SortKey,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	item.Type = enums.ParseMediaType(typ)
	if item.Container == models.ContainerDefault {
		item.Container = ""
	}
	item.Format = models.DecodeFormat(format)
	item.AllFormats = models.DecodeFormats(allFormats)
	item.AudioPreferences = models.DecodeAudioPreferences(audio)
	item.VideoPreferences = models.DecodeVideoPreferences(video)
	item.AvailableSubtitles = models.DecodeStrings(subs)

	if logID.Valid {
		item.LogID = &logID.Int64
	}
	if playlistURL.Valid && playlistURL.String != "" {
		item.PlaylistURL = &playlistURL.String
	}
	if playlistIndex.Valid {
		idx := int(playlistIndex.Int64)
		item.PlaylistIndex = &idx
	}
	return &item, nil
}

// downloadValues returns the column map written on insert and update.
func downloadValues(item *models.DownloadItem) map[string]any {
	var (
		logID         any
		playlistURL   any = ""
		playlistIndex any
	)
	if item.LogID != nil {
		logID = *item.LogID
	}
	if item.PlaylistURL != nil {
		playlistURL = *item.PlaylistURL
	}
	if item.PlaylistIndex != nil {
		playlistIndex = *item.PlaylistIndex
	}

	container := item.Container
	if container == "" {
		container = models.ContainerDefault
	}
	status := item.Status
	if status == "" {
		status = models.StatusQueued
	}
	mediaType := item.Type
	if mediaType == "" {
		mediaType = enums.MediaTypeVideo
	}

	return map[string]any{
		consts.QDLURL:           item.URL,
		consts.QDLTitle:         item.Title,
		consts.QDLAuthor:        item.Author,
		consts.QDLThumb:         item.Thumb,
		consts.QDLDuration:      item.Duration,
		consts.QDLType:          string(mediaType),
		consts.QDLFormat:        models.EncodeFormat(item.Format),
		consts.QDLContainer:     container,
		consts.QDLSections:      item.DownloadSections,
		consts.QDLAllFormats:    models.EncodeFormats(item.AllFormats),
		consts.QDLPath:          item.DownloadPath,
		consts.QDLWebsite:       item.Website,
		consts.QDLSize:          item.DownloadSize,
		consts.QDLPlaylistTitle: item.PlaylistTitle,
		consts.QDLAudioPrefs:    models.EncodeAudioPreferences(item.AudioPreferences),
		consts.QDLVideoPrefs:    models.EncodeVideoPreferences(item.VideoPreferences),
		consts.QDLExtraCommands: item.ExtraCommands,
		consts.QDLFileTemplate:  item.CustomFileNameTemplate,
		consts.QDLSaveThumb:     item.SaveThumb,
		consts.QDLStatus:        string(status),
		consts.QDLStartTime:     item.DownloadStartTime,
		consts.QDLLogID:         logID,
		consts.QDLPlaylistURL:   playlistURL,
		consts.QDLPlaylistIndex: playlistIndex,
		consts.QDLIncognito:     item.Incognito,
		consts.QDLSubtitles:     models.EncodeStrings(item.AvailableSubtitles),
	}
}

func selectDownloads() squirrel.SelectBuilder {
	return squirrel.Select(downloadColumns...).From(consts.DBDownloads)
}

func queryDownloads(ctx context.Context, r runner, q squirrel.SelectBuilder) ([]*models.DownloadItem, error) {
	rows, err := q.RunWith(r).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	items := []*models.DownloadItem{}
	for rows.Next() {
		item, err := scanDownload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan download row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func getDownload(ctx context.Context, r runner, id int64) (*models.DownloadItem, error) {
	row := selectDownloads().
		Where(squirrel.Eq{consts.QDLID: id}).
		RunWith(r).
		QueryRowContext(ctx)

	item, err := scanDownload(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("download %d: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get download %d: %w", id, err)
	}
	return item, nil
}

func insertDownload(ctx context.Context, r runner, item *models.DownloadItem) (int64, error) {
	values := downloadValues(item)
	values[consts.QDLSortKey] = squirrel.Expr(
		"(SELECT COALESCE(MAX(" + consts.QDLSortKey + "), 0) + 1 FROM " + consts.DBDownloads + ")",
	)

	res, err := squirrel.
		Insert(consts.DBDownloads).
		SetMap(values).
		RunWith(r).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to insert download for URL %q: %w", item.URL, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id for URL %q: %w", item.URL, err)
	}
	return id, nil
}

func updateDownload(ctx context.Context, r runner, item *models.DownloadItem) error {
	res, err := squirrel.
		Update(consts.DBDownloads).
		SetMap(downloadValues(item)).
		Where(squirrel.Eq{consts.QDLID: item.ID}).
		RunWith(r).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update download %d: %w", item.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("download %d: %w", item.ID, errs.ErrNotFound)
	}
	return nil
}

// setDownloadStatus moves ids to status to. Only rows whose current status is
// a legal source for to (and, when given, one of from) are changed.
func setDownloadStatus(ctx context.Context, r runner, ids []int64, to models.Status, from ...models.Status) (int64, error) {
	allowed := models.Sources(to)
	if len(from) > 0 {
		var narrowed []models.Status
		for _, s := range allowed {
			for _, f := range from {
				if s == f {
					narrowed = append(narrowed, s)
				}
			}
		}
		allowed = narrowed
	}
	if len(ids) == 0 || len(allowed) == 0 {
		return 0, nil
	}

	var total int64
	for _, chunk := range chunked(ids) {
		res, err := squirrel.
			Update(consts.DBDownloads).
			Set(consts.QDLStatus, string(to)).
			Where(squirrel.Eq{consts.QDLID: chunk}).
			Where(statusIn(allowed)).
			RunWith(r).
			ExecContext(ctx)
		if err != nil {
			return total, fmt.Errorf("failed to set status %s: %w", to, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// downloadIDsByStatus returns ids of rows in statuses, or of every row when none are given.
func downloadIDsByStatus(ctx context.Context, r runner, statuses ...models.Status) ([]int64, error) {
	q := squirrel.
		Select(consts.QDLID).
		From(consts.DBDownloads).
		OrderBy(downloadOrder...)
	if len(statuses) > 0 {
		q = q.Where(statusIn(statuses))
	}
	rows, err := q.RunWith(r).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query download ids: %w", err)
	}
	return scanIDs(rows)
}

func existingDownloadIDs(ctx context.Context, r runner, ids []int64) ([]int64, error) {
	out := []int64{}
	for _, chunk := range chunked(ids) {
		rows, err := squirrel.
			Select(consts.QDLID).
			From(consts.DBDownloads).
			Where(squirrel.Eq{consts.QDLID: chunk}).
			OrderBy(consts.QDLID).
			RunWith(r).
			QueryContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query download ids: %w", err)
		}
		found, err := scanIDs(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

func deleteDownloads(ctx context.Context, r runner, ids []int64) (int64, error) {
	var total int64
	for _, chunk := range chunked(ids) {
		res, err := squirrel.
			Delete(consts.DBDownloads).
			Where(squirrel.Eq{consts.QDLID: chunk}).
			RunWith(r).
			ExecContext(ctx)
		if err != nil {
			return total, fmt.Errorf("failed to delete downloads: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func statusStrings(statuses []models.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

// statusIn matches rows stored in any of statuses. Unknown stored values
// read back as Error, so a filter on Error matches them too.
func statusIn(statuses []models.Status) squirrel.Sqlizer {
	in := squirrel.Eq{consts.QDLStatus: statusStrings(statuses)}
	if !slices.Contains(statuses, models.StatusError) {
		return in
	}
	return squirrel.Or{
		in,
		squirrel.NotEq{consts.QDLStatus: statusStrings(models.AllStatuses())},
		squirrel.Eq{consts.QDLStatus: nil},
	}
}
