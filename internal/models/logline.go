package models

import (
	"regexp"
	"slices"
	"strings"
)

// finishedProgressRx matches download lines worth keeping: the final 100% line
// and lines whose payload starts with a word, such as destinations.
var finishedProgressRx = regexp.MustCompile(`\[download\][ \t]+(100%|[a-zA-Z])`)

// AppendLogLine merges new downloader output into accumulated log content.
//
// Lines already present are dropped and intermediate progress lines are
// filtered out. If the newest line is a progress line it is kept as a trailing
// line so the latest progress stays visible.
func AppendLogLine(content, line string) string {
	var lines []string
	if content != "" {
		lines = splitLines(content)
	}

	if strings.TrimSpace(line) == "" {
		return strings.Join(filterProgress(lines), "\n")
	}

	var added []string
	for _, l := range splitLines(line) {
		if !slices.Contains(lines, l) {
			added = append(added, l)
		}
	}
	lines = append(lines, added...)

	var trailing string
	if n := len(added); n > 0 && strings.Contains(added[n-1], "[download") {
		trailing = "\n" + added[n-1]
	}

	return strings.Join(filterProgress(distinct(lines)), "\n") + trailing
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

func filterProgress(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if !strings.Contains(l, "[download]") || finishedProgressRx.MatchString(l) {
			out = append(out, l)
		}
	}
	return out
}

func distinct(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
