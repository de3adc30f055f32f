package cfg

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"zeku/internal/models"
	"zeku/internal/parsing"
)

func newTable(w io.Writer, header string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	return tw
}

func printDownloads(w io.Writer, items []*models.DownloadItem) {
	tw := newTable(w, "ID\tSTATUS\tTYPE\tSTART\tTITLE")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			it.ID, it.Status, it.Type, parsing.FormatMillis(it.DownloadStartTime), displayName(it.Title, it.URL))
	}
	tw.Flush()
}

func printHistory(w io.Writer, items []*models.HistoryItem) {
	tw := newTable(w, "ID\tDATE\tTYPE\tSITE\tTITLE")
	for _, h := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			h.ID, parsing.FormatMillis(h.Time), h.Type, h.Website, displayName(h.Title, h.URL))
	}
	tw.Flush()
}

func printLogs(w io.Writer, logs []*models.LogItem) {
	tw := newTable(w, "ID\tDATE\tTYPE\tFORMAT\tTITLE")
	for _, l := range logs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			l.ID, parsing.FormatMillis(l.DownloadTime), l.DownloadType, l.Format.FormatID, l.Title)
	}
	tw.Flush()
}

func printCounts(w io.Writer, c models.ActiveAndQueuedCounts) {
	fmt.Fprintf(w, "%s  active %d  queued %d  scheduled %d  paused %d  errored %d  cancelled %d  saved %d\n",
		time.Now().Format(time.TimeOnly), c.Active, c.Queued, c.Scheduled, c.Paused, c.Errored, c.Cancelled, c.Saved)
}

func displayName(title, url string) string {
	if title != "" {
		return title
	}
	return url
}
