package consts

import "time"

// Heartbeat and health checks
const (
	HeartbeatInterval     = 30 * time.Second
	StaleProcessThreshold = 2 * time.Minute
	// QueuePollInterval is how often a daemon picks up rows written by other processes.
	QueuePollInterval = 5 * time.Second
)

// Timeouts
const (
	DatabaseTimeout  = 5 * time.Second
	ProbeTimeout     = 60 * time.Second
	ShutdownTimeout  = 10 * time.Second
	ServerReadHeader = 10 * time.Second
)

// Retry configuration
const (
	DefaultMaxRetries = 3
	RetryBackoff      = 100 * time.Millisecond
)

// Executor
const (
	// StatusPollInterval bounds how often a running download re-reads its own status.
	StatusPollInterval = 500 * time.Millisecond
)
