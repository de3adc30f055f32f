package cfg

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"zeku/internal/app"
	"zeku/internal/domain/keys"
	"zeku/internal/domain/logger"
	"zeku/internal/enums"
	"zeku/internal/models"
	"zeku/internal/parsing"
	"zeku/internal/queue"

	"github.com/spf13/cobra"
)

// addCmd enqueues URLs.
func addCmd(e *env) *cobra.Command {
	var (
		at, mediaType, formatID, title, template, file string
		noProbe                                        bool
	)

	cmd := &cobra.Command{
		Use:   "add [URL...]",
		Short: "Add URLs to the download queue.",
		Long:  "Adds one or more URLs to the queue. A single URL is probed with yt-dlp first unless --no-probe is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := args
			if file != "" {
				fromFile, err := parsing.ReadURLFile(file)
				if err != nil {
					return err
				}
				urls = append(urls, fromFile...)
			}
			if len(urls) == 0 {
				return errors.New("must enter a URL or a URL file")
			}

			a, err := e.App(false)
			if err != nil {
				return err
			}

			req := app.AddRequest{
				Type:     enums.ParseMediaType(mediaType),
				FormatID: formatID,
				Title:    title,
				Template: template,
			}
			if req.StartTime, err = parsing.ParseStartTime(at, a.Clock().Now()); err != nil {
				return err
			}

			if len(urls) == 1 {
				req.URL = urls[0]
				req.Probe = !noProbe
				adm, err := a.Add(e.ctx, req)
				if err != nil {
					return err
				}
				printAdmission(cmd, urls[0], adm)
				return nil
			}

			adms, err := a.AddAll(e.ctx, urls, req)
			if err != nil {
				return err
			}
			for i, adm := range adms {
				printAdmission(cmd, urls[i], adm)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&at, keys.At, "", "When to start, e.g. \"in 2h\" or \"2026-01-02 15:04\"")
	cmd.Flags().StringVar(&mediaType, keys.Type, string(enums.MediaTypeVideo), "Download type (video, audio, command, auto)")
	cmd.Flags().StringVar(&formatID, keys.FormatID, "", "yt-dlp format ID")
	cmd.Flags().StringVar(&title, keys.Title, "", "Title override")
	cmd.Flags().StringVar(&template, keys.Template, "", "Output template override")
	cmd.Flags().StringVar(&file, keys.URLFile, "", "File with one URL per line")
	cmd.Flags().BoolVar(&noProbe, keys.NoProbe, false, "Skip the yt-dlp metadata probe")
	return cmd
}

func printAdmission(cmd *cobra.Command, url string, adm queue.Admission) {
	if adm.Duplicate {
		fmt.Fprintf(cmd.OutOrStdout(), "Skipped %s: already queued as %d\n", url, adm.ExistingID)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Queued %s as %d\n", url, adm.ID)
	for _, m := range adm.Advisory {
		fmt.Fprintln(cmd.OutOrStdout(), m)
	}
}

// listCmd lists queue rows.
func listCmd(e *env) *cobra.Command {
	var (
		statuses      []string
		limit, offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List downloads.",
		Long:  "Lists downloads in queue order, optionally limited to some statuses.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sts, err := parseStatuses(statuses)
			if err != nil {
				return err
			}
			a, err := e.App(false)
			if err != nil {
				return err
			}

			items, err := a.Store.DownloadStore().Page(e.ctx, offset, limit, sts...)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No downloads.")
				return nil
			}
			printDownloads(cmd.OutOrStdout(), items)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, keys.Status, nil, "Statuses to list (comma separated)")
	cmd.Flags().IntVar(&limit, keys.Limit, 0, "Maximum rows to list")
	cmd.Flags().IntVar(&offset, keys.Offset, 0, "Rows to skip")
	return cmd
}

// lifecycleFunc changes the status of ids, or of every eligible row when all is set.
type lifecycleFunc func(ctx context.Context, a *app.App, all bool, ids []int64) (int64, error)

// lifecycleCmd builds a command applying a status change to ids.
func lifecycleCmd(e *env, use, short string, apply lifecycleFunc) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   use + " [ID...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if len(ids) == 0 && !all {
				return fmt.Errorf("must enter download IDs or --%s", keys.All)
			}
			a, err := e.App(false)
			if err != nil {
				return err
			}

			n, err := apply(e.ctx, a, all, ids)
			if err != nil {
				return err
			}
			logger.Pl.S("%s: %d download(s) changed", use, n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, keys.All, false, "Apply to every eligible download")
	return cmd
}

func cancelDownloads(ctx context.Context, a *app.App, all bool, ids []int64) (int64, error) {
	if all {
		return a.Queue.CancelActiveAndQueued(ctx)
	}
	return a.Queue.Cancel(ctx, ids...)
}

func pauseDownloads(ctx context.Context, a *app.App, all bool, ids []int64) (int64, error) {
	if all {
		items, err := a.Store.DownloadStore().NonTerminal(ctx)
		if err != nil {
			return 0, err
		}
		ids = ids[:0]
		for _, it := range items {
			ids = append(ids, it.ID)
		}
	}
	return a.Queue.Pause(ctx, ids...)
}

func resumeDownloads(ctx context.Context, a *app.App, all bool, ids []int64) (int64, error) {
	if all {
		var err error
		if ids, err = idsWithStatus(ctx, a, models.StatusPaused); err != nil {
			return 0, err
		}
	}
	return a.Queue.Resume(ctx, ids...)
}

func retryDownloads(ctx context.Context, a *app.App, all bool, ids []int64) (int64, error) {
	if all {
		var err error
		if ids, err = idsWithStatus(ctx, a, models.StatusError, models.StatusCancelled); err != nil {
			return 0, err
		}
	}
	return a.Queue.Retry(ctx, ids...)
}

func saveDownloads(ctx context.Context, a *app.App, all bool, ids []int64) (int64, error) {
	if all {
		var err error
		if ids, err = idsWithStatus(ctx, a, models.StatusQueued, models.StatusScheduled, models.StatusPaused,
			models.StatusCancelled, models.StatusError); err != nil {
			return 0, err
		}
	}
	return a.Queue.Save(ctx, ids...)
}

func idsWithStatus(ctx context.Context, a *app.App, statuses ...models.Status) ([]int64, error) {
	items, err := a.Store.DownloadStore().ListByStatus(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids, nil
}

// scheduleCmd moves the start time of one download.
func scheduleCmd(e *env) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "schedule ID",
		Short: "Change when a download starts.",
		Long:  "Sets a new start time. \"now\" or an empty --at queues the download immediately.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			a, err := e.App(false)
			if err != nil {
				return err
			}
			start, err := parsing.ParseStartTime(at, a.Clock().Now())
			if err != nil {
				return err
			}
			if err := a.Queue.Reschedule(e.ctx, ids[0], start); err != nil {
				return err
			}
			logger.Pl.S("Download %d starts %s", ids[0], parsing.FormatMillis(start))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, keys.At, "", "New start time")
	return cmd
}

// deleteCmd removes rows and their cache.
func deleteCmd(e *env) *cobra.Command {
	var (
		statuses []string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "delete [ID...]",
		Short: "Delete downloads.",
		Long:  "Deletes downloads by ID, by --status, or every download with --all. Running downloads are stopped first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			sts, err := parseStatuses(statuses)
			if err != nil {
				return err
			}
			if len(ids) == 0 && len(sts) == 0 && !all {
				return fmt.Errorf("must enter download IDs, --%s or --%s", keys.Status, keys.All)
			}

			a, err := e.App(false)
			if err != nil {
				return err
			}

			var res queue.DeleteResult
			switch {
			case all:
				res, err = a.Queue.DeleteAll(e.ctx)
			case len(sts) > 0:
				res, err = a.Queue.DeleteByStatus(e.ctx, sts...)
			default:
				res, err = a.Queue.DeleteAllWithIDs(e.ctx, ids)
			}
			if err != nil {
				return err
			}

			for id, cerr := range res.CacheFailed {
				logger.Pl.W("Cache of download %d was not removed: %v", id, cerr)
			}
			logger.Pl.S("Deleted %d download(s)", len(res.IDs))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, keys.Status, nil, "Delete every download in these statuses")
	cmd.Flags().BoolVar(&all, keys.All, false, "Delete every download")
	return cmd
}

// parseIDs converts positional arguments to row ids.
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid download ID %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseStatuses matches status names case-insensitively.
func parseStatuses(names []string) ([]models.Status, error) {
	out := make([]models.Status, 0, len(names))
	for _, name := range names {
		st, ok := models.LookupStatus(name)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", name)
		}
		out = append(out, st)
	}
	return out, nil
}
