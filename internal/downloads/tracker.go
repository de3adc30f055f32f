package downloads

import (
	"context"
	"strings"
	"time"

	"zeku/internal/contracts"
	"zeku/internal/domain/consts"
	"zeku/internal/domain/logger"
)

// LogTracker batches downloader output into a log record.
type LogTracker struct {
	logs       contracts.LogStore
	logID      int64
	lines      chan string
	batchSize  int
	flushTimer time.Duration
	done       chan struct{}
	finished   chan struct{}
}

// NewLogTracker returns a tracker appending to log logID.
func NewLogTracker(logs contracts.LogStore, logID int64) *LogTracker {
	return &LogTracker{
		logs:       logs,
		logID:      logID,
		lines:      make(chan string, 100),
		batchSize:  50,
		flushTimer: 500 * time.Millisecond,
		done:       make(chan struct{}),
		finished:   make(chan struct{}),
	}
}

// Start starts log tracking.
func (t *LogTracker) Start() {
	go t.processLines()
}

// Stop flushes pending lines and waits for the tracker to exit.
func (t *LogTracker) Stop() {
	close(t.done)
	<-t.finished
}

// Add queues a line. Lines added after Stop are dropped.
func (t *LogTracker) Add(line string) {
	select {
	case t.lines <- line:
	case <-t.done:
	}
}

// processLines collects lines and flushes them on a timer or when the batch fills.
func (t *LogTracker) processLines() {
	defer close(t.finished)

	ticker := time.NewTicker(t.flushTimer)
	defer ticker.Stop()
	batch := make([]string, 0, t.batchSize)

	for {
		select {
		case <-t.done:
			for {
				select {
				case line := <-t.lines:
					batch = append(batch, line)
				default:
					t.flushLines(batch)
					return
				}
			}

		case line := <-t.lines:
			batch = append(batch, line)
			if len(batch) >= t.batchSize {
				t.flushLines(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				t.flushLines(batch)
				batch = batch[:0]
			}
		}
	}
}

// flushLines appends the batch to the log record.
func (t *LogTracker) flushLines(lines []string) {
	if len(lines) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), consts.DatabaseTimeout)
	defer cancel()

	// Retry logic for transient failures
	content := strings.Join(lines, "\n")
	for attempt := range consts.DefaultMaxRetries {
		if err := t.logs.Append(ctx, t.logID, content, false); err != nil {
			if attempt == consts.DefaultMaxRetries-1 {
				logger.Pl.E("Failed to append to log %d after %d attempts: %v", t.logID, consts.DefaultMaxRetries, err)
				return
			}
			logger.Pl.W("Retrying log append after failure (attempt %d/%d): %v",
				attempt+1, consts.DefaultMaxRetries, err)
			time.Sleep(consts.RetryBackoff * time.Duration(attempt+1))
			continue
		}
		break
	}
	logger.Pl.D(3, "Flushed %d lines to log %d", len(lines), t.logID)
}
