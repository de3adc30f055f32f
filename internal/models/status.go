package models

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"zeku/internal/domain/logger"
)

// Status is the lifecycle state of a download row.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusQueued     Status = "Queued"
	StatusScheduled  Status = "Scheduled"
	StatusActive     Status = "Active"
	StatusPaused     Status = "Paused"
	StatusCancelled  Status = "Cancelled"
	StatusError      Status = "Error"
	StatusSaved      Status = "Saved"
	StatusDefault    Status = "Default"
)

// AllStatuses lists every status.
func AllStatuses() []Status {
	return []Status{
		StatusProcessing, StatusQueued, StatusScheduled, StatusActive, StatusPaused,
		StatusCancelled, StatusError, StatusSaved, StatusDefault,
	}
}

// NonTerminalStatuses are the statuses considered when checking for duplicates.
func NonTerminalStatuses() []Status {
	return []Status{StatusQueued, StatusActive, StatusScheduled, StatusPaused}
}

// transitions maps each status to the statuses it may move to.
var transitions = map[Status][]Status{
	StatusProcessing: {StatusQueued, StatusScheduled, StatusCancelled, StatusError},
	StatusQueued:     {StatusActive, StatusPaused, StatusScheduled, StatusCancelled, StatusSaved},
	StatusScheduled:  {StatusQueued, StatusActive, StatusPaused, StatusCancelled, StatusSaved},
	StatusActive:     {StatusQueued, StatusPaused, StatusCancelled, StatusError, StatusSaved},
	StatusPaused:     {StatusQueued, StatusScheduled, StatusCancelled, StatusSaved},
	StatusCancelled:  {StatusQueued, StatusSaved},
	StatusError:      {StatusQueued, StatusSaved, StatusCancelled},
	StatusSaved:      {StatusQueued},
	StatusDefault:    {StatusQueued, StatusCancelled},
}

// ParseStatus maps a stored string to a Status. Unknown values become StatusError.
func ParseStatus(s string) Status {
	st := Status(s)
	if _, ok := transitions[st]; ok {
		return st
	}
	logger.Pl.W("Unknown download status %q, treating as %s", s, StatusError)
	return StatusError
}

// LookupStatus matches name against every status case-insensitively.
func LookupStatus(name string) (Status, bool) {
	name = strings.TrimSpace(name)
	for _, st := range AllStatuses() {
		if strings.EqualFold(string(st), name) {
			return st, true
		}
	}
	return "", false
}

// CanTransition reports whether a row may move from s to to.
func (s Status) CanTransition(to Status) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Sources lists every status that may move to to.
func Sources(to Status) []Status {
	var out []Status
	for _, from := range AllStatuses() {
		if from.CanTransition(to) {
			out = append(out, from)
		}
	}
	return out
}

// IsTerminal reports whether the status is outside the admission dedup set.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusError, StatusSaved:
		return true
	}
	return false
}

// IsRunnable reports whether the executor may pick up a row in this status.
func (s Status) IsRunnable() bool {
	return s == StatusQueued || s == StatusScheduled
}

// Scan implements sql.Scanner with the ParseStatus fallback.
func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*s = ParseStatus(v)
	case []byte:
		*s = ParseStatus(string(v))
	case nil:
		*s = ParseStatus("")
	default:
		return fmt.Errorf("unsupported status column type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (s Status) Value() (driver.Value, error) {
	return string(s), nil
}
