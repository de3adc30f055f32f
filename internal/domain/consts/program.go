package consts

import "time"

// Program identity.
const (
	ProgramName = "zeku"
)

// Scheduler.
const (
	// UniqueWorkName is the logical name every download request is submitted under.
	UniqueWorkName = "download"

	// MaxPriorityItems caps the number of ids a single request pins to the front.
	MaxPriorityItems = 20

	// ScheduleGraceWindow collapses near-future start times to an immediate run.
	ScheduleGraceWindow = 60 * time.Second

	// NetworkRecheckInterval is how often a request blocked on network policy is re-evaluated.
	NetworkRecheckInterval = 15 * time.Second
)
