// Package scheduler plans download runs and dispatches them to the single
// execution slot.
package scheduler

import (
	"slices"
	"time"

	"zeku/internal/domain/consts"
	"zeku/internal/models"
)

// Network is the connectivity a request needs before it may start.
type Network int

const (
	NetworkAny Network = iota
	NetworkUnmetered
)

func (n Network) String() string {
	if n == NetworkUnmetered {
		return "unmetered"
	}
	return "any"
}

// Request is one planned execution of the download worker.
type Request struct {
	ID                    string        `json:"id"`
	Name                  string        `json:"name"`
	PriorityIDs           []int64       `json:"priority_ids"`
	ContinueAfterPriority bool          `json:"continue_after_priority"`
	Delay                 time.Duration `json:"delay"`
	Network               Network       `json:"network"`
	CreatedAt             time.Time     `json:"created_at"`
}

// PlanOptions control how a request is built.
type PlanOptions struct {
	ContinueAfterPriority bool
	AllowMetered          bool
}

// Plan builds a request for items. The delay runs until the earliest start
// time, and is zero when that is within the grace window. The priority list
// holds the soonest due items.
func Plan(items []*models.DownloadItem, now time.Time, opts PlanOptions) Request {
	req := Request{
		Name:                  consts.UniqueWorkName,
		PriorityIDs:           []int64{},
		ContinueAfterPriority: opts.ContinueAfterPriority,
		Network:               NetworkAny,
		CreatedAt:             now,
	}
	if !opts.AllowMetered {
		req.Network = NetworkUnmetered
	}
	if len(items) == 0 {
		return req
	}

	ordered := slices.Clone(items)
	slices.SortStableFunc(ordered, func(a, b *models.DownloadItem) int {
		if da, db := a.DueAt(now), b.DueAt(now); da != db {
			if da < db {
				return -1
			}
			return 1
		}
		switch {
		case a.SortKey < b.SortKey:
			return -1
		case a.SortKey > b.SortKey:
			return 1
		}
		return 0
	})

	req.Delay = delayUntil(ordered[0].DownloadStartTime, now)

	for _, item := range ordered[:min(len(ordered), consts.MaxPriorityItems)] {
		req.PriorityIDs = append(req.PriorityIDs, item.ID)
	}
	return req
}

// delayUntil returns the wait before startMillis. An unset start time or one
// inside the grace window yields zero.
func delayUntil(startMillis int64, now time.Time) time.Duration {
	if startMillis == 0 {
		return 0
	}
	delay := time.UnixMilli(startMillis).Sub(now)
	if delay <= consts.ScheduleGraceWindow {
		return 0
	}
	return delay
}
