// Package state maintains global sync maps for running downloads.
package state

import (
	"context"
	"sync"

	"zeku/internal/domain/logger"
)

// --- Running downloads --------------------------------------------------------------------------

// Cancel functions of downloads currently executing in this process.
var runningDownloads sync.Map

// SetRunning registers the cancel function of a running download.
func SetRunning(id int64, cancel context.CancelFunc) {
	runningDownloads.Store(id, cancel)
}

// DeleteRunning removes the entry for id.
func DeleteRunning(id int64) {
	runningDownloads.Delete(id)
}

// IsRunning reports whether id is executing in this process.
func IsRunning(id int64) bool {
	_, ok := runningDownloads.Load(id)
	return ok
}

// Interrupt cancels the running downloads in ids and returns how many were found.
func Interrupt(ids ...int64) int {
	n := 0
	for _, id := range ids {
		v, ok := runningDownloads.Load(id)
		if !ok {
			continue
		}
		cancel, ok := v.(context.CancelFunc)
		if !ok {
			logger.Pl.E("Dev Error: Wrong type %T stored in running downloads for ID %d", v, id)
			continue
		}
		cancel()
		n++
	}
	if n > 0 {
		logger.Pl.D(1, "Interrupted %d running download(s)", n)
	}
	return n
}

// RunningIDs returns the ids executing in this process.
func RunningIDs() []int64 {
	var ids []int64
	runningDownloads.Range(func(k, _ any) bool {
		if id, ok := k.(int64); ok {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}
