package cfg

import (
	"errors"
	"fmt"

	"zeku/internal/domain/keys"
	"zeku/internal/domain/logger"
	"zeku/internal/enums"
	"zeku/internal/models"

	"github.com/spf13/cobra"
)

// historyCmd lists and manages completed downloads.
func historyCmd(e *env) *cobra.Command {
	var (
		search, mediaType, website, sort string
		desc                             bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed downloads.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.App(false)
			if err != nil {
				return err
			}

			filter := models.HistoryFilter{
				Query:   search,
				Website: website,
				Sort:    models.HistorySort(sort),
				Desc:    desc,
			}
			if mediaType != "" {
				filter.Type = enums.ParseMediaType(mediaType)
			}

			items, err := a.Store.HistoryStore().List(e.ctx, filter)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history.")
				return nil
			}
			printHistory(cmd.OutOrStdout(), items)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, keys.Search, "", "Match title, author or URL")
	cmd.Flags().StringVar(&mediaType, keys.Type, "", "Only this download type")
	cmd.Flags().StringVar(&website, keys.Website, "", "Only this website")
	cmd.Flags().StringVar(&sort, keys.Sort, string(models.HistorySortDate), "Sort by date, title, author or filesize")
	cmd.Flags().BoolVar(&desc, keys.Desc, false, "Sort descending")

	cmd.AddCommand(deleteHistoryCmd(e), cleanHistoryCmd(e))
	return cmd
}

// deleteHistoryCmd deletes history entries.
func deleteHistoryCmd(e *env) *cobra.Command {
	var all, deleteFiles bool

	cmd := &cobra.Command{
		Use:   "delete [ID...]",
		Short: "Delete history entries.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if len(ids) == 0 && !all {
				return fmt.Errorf("must enter history IDs or --%s", keys.All)
			}
			a, err := e.App(false)
			if err != nil {
				return err
			}

			hs := a.Store.HistoryStore()
			var n int64
			if all {
				n, err = hs.DeleteAll(e.ctx, deleteFiles)
			} else {
				n, err = hs.DeleteWithIDs(e.ctx, ids, deleteFiles)
			}
			if err != nil {
				return err
			}
			logger.Pl.S("Deleted %d history entries", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, keys.All, false, "Delete the whole history")
	cmd.Flags().BoolVar(&deleteFiles, keys.Files, false, "Also delete the downloaded files")
	return cmd
}

// cleanHistoryCmd drops entries whose files are gone.
func cleanHistoryCmd(e *env) *cobra.Command {
	var duplicates bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove history entries whose files no longer exist.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.App(false)
			if err != nil {
				return err
			}
			hs := a.Store.HistoryStore()

			missing, err := hs.ClearMissingFiles(e.ctx)
			if err != nil {
				return err
			}
			logger.Pl.S("Removed %d entries with missing files", missing)

			if duplicates {
				n, err := hs.DeleteDuplicates(e.ctx)
				if err != nil {
					return err
				}
				logger.Pl.S("Removed %d duplicate entries", n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&duplicates, keys.Duplicate, false, "Also remove duplicate entries")
	return cmd
}

// logsCmd shows stored downloader output.
func logsCmd(e *env) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "logs [ID]",
		Short: "Show downloader logs.",
		Long:  "Without an ID lists every stored log. With an ID prints that log's output.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if reset && len(ids) > 0 {
				return errors.New("--reset deletes every log and takes no ID")
			}
			a, err := e.App(false)
			if err != nil {
				return err
			}
			ls := a.Store.LogStore()

			switch {
			case reset:
				if err := a.Store.DownloadStore().RemoveAllLogIDs(e.ctx); err != nil {
					return err
				}
				if err := ls.DeleteAll(e.ctx); err != nil {
					return err
				}
				logger.Pl.S("Deleted all logs")
				return nil

			case len(ids) == 1:
				l, err := ls.Get(e.ctx, ids[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), l.Content)
				return nil
			}

			logs, err := ls.List(e.ctx)
			if err != nil {
				return err
			}
			if len(logs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No logs.")
				return nil
			}
			printLogs(cmd.OutOrStdout(), logs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, keys.Reset, false, "Delete every stored log")
	return cmd
}
