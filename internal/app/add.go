package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"zeku/internal/domain/errs"
	"zeku/internal/domain/logger"
	"zeku/internal/domain/templates"
	"zeku/internal/downloads"
	"zeku/internal/enums"
	"zeku/internal/models"
	"zeku/internal/parsing"
	"zeku/internal/queue"
)

// AddRequest describes a URL to enqueue. Zero fields take the configured defaults.
type AddRequest struct {
	URL           string          `json:"url"`
	Type          enums.MediaType `json:"type"`
	StartTime     int64           `json:"download_start_time"`
	FormatID      string          `json:"format_id"`
	Title         string          `json:"title"`
	Template      string          `json:"template"`
	ExtraCommands string          `json:"extra_commands"`
	Incognito     *bool           `json:"incognito,omitempty"`
	Probe         bool            `json:"probe"`
}

// NewItem builds a queue item for req from the configured preferences.
func (a *App) NewItem(req AddRequest) (*models.DownloadItem, error) {
	u := strings.TrimSpace(req.URL)
	if u == "" {
		return nil, errors.New("no URL entered")
	}
	if req.Template != "" && !templates.IsValidFileTemplate(req.Template) {
		return nil, fmt.Errorf("template %q: %w", req.Template, errs.ErrInvalidTemplate)
	}

	mediaType := req.Type
	if mediaType == "" {
		mediaType = enums.MediaTypeVideo
	}

	s := a.Settings
	item := models.NewDownloadItem(u, mediaType)
	item.Title = req.Title
	item.Website = parsing.Website(u)
	item.DownloadPath = s.DownloadDir
	item.DownloadStartTime = req.StartTime
	item.CustomFileNameTemplate = req.Template
	item.ExtraCommands = req.ExtraCommands
	item.SaveThumb = s.SaveThumbnail
	item.Incognito = s.Incognito
	if req.Incognito != nil {
		item.Incognito = *req.Incognito
	}

	item.AudioPreferences = s.Audio
	item.AudioPreferences.SponsorBlock = slices.Clone(s.Audio.SponsorBlock)
	item.VideoPreferences = s.Video
	item.VideoPreferences.SponsorBlock = slices.Clone(s.Video.SponsorBlock)
	item.VideoPreferences.AudioFormatIDs = slices.Clone(s.Video.AudioFormatIDs)

	if req.FormatID != "" {
		item.Format = models.Format{FormatID: req.FormatID}
	}
	return item, nil
}

// Add enqueues req. With Probe set the item is staged while yt-dlp reports
// its metadata, then admitted with the probed format.
func (a *App) Add(ctx context.Context, req AddRequest) (queue.Admission, error) {
	item, err := a.NewItem(req)
	if err != nil {
		return queue.Admission{}, err
	}
	if !req.Probe {
		return a.Queue.Enqueue(ctx, item, a.Settings.PreventDuplicate)
	}

	if _, err := a.Queue.DeleteProcessingByURL(ctx, item.URL); err != nil {
		return queue.Admission{}, err
	}
	id, err := a.Queue.Stage(ctx, item)
	if err != nil {
		return queue.Admission{}, err
	}
	item.ID = id

	res, err := downloads.Probe(ctx, a.runner, a.Settings.YtDLPPath, item.URL)
	if err != nil {
		if _, derr := a.Queue.Delete(context.WithoutCancel(ctx), id); derr != nil {
			logger.Pl.E("Could not remove staged download %d: %v", id, derr)
		}
		return queue.Admission{}, err
	}

	requested := item.Format.FormatID
	item.Format = models.Format{}
	res.Apply(item)
	if requested != "" {
		item.Format = pickFormat(item.AllFormats, requested)
		item.Container = item.Format.Container
	}

	if err := a.Store.DownloadStore().Update(ctx, item); err != nil {
		return queue.Admission{}, err
	}
	return a.Queue.Admit(ctx, id, item.Format, item.AllFormats, a.Settings.PreventDuplicate)
}

// AddAll enqueues every URL with the shared options of req in one admission batch.
func (a *App) AddAll(ctx context.Context, urls []string, req AddRequest) ([]queue.Admission, error) {
	items := make([]*models.DownloadItem, 0, len(urls))
	for _, u := range urls {
		r := req
		r.URL = u
		item, err := a.NewItem(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return a.Queue.EnqueueAll(ctx, items, a.Settings.PreventDuplicate)
}

// pickFormat returns the probed format with id, or a bare format for ids
// yt-dlp did not list (e.g. merged "137+140").
func pickFormat(formats []models.Format, id string) models.Format {
	for _, f := range formats {
		if f.FormatID == id {
			return f
		}
	}
	return models.Format{FormatID: id}
}
