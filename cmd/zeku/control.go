package main

import (
	"context"
	"time"

	"zeku/internal/domain/consts"
	"zeku/internal/domain/logger"
	"zeku/internal/repo"
)

// startHeartbeat starts the program heartbeat.
//
// Mainly useful for preventing DB lockouts.
func startHeartbeat(ctx context.Context, progControl *repo.ProgControl) {
	ticker := time.NewTicker(consts.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := progControl.UpdateHeartbeat(ctx); err != nil {
				logger.Pl.E("Failed to update heartbeat for process ID %d: %v", progControl.ProcessID, err)
			}
		}
	}
}

// cleanup safely quits the program.
func (s *session) cleanup() {
	defer func() {
		r := recover() // grab panic condition
		if r != nil {
			logger.Pl.E("Panic occurred: %v", r)
		}

		if r != nil {
			panic(r)
		}
	}()

	if s.heartbeatDone != nil {
		<-s.heartbeatDone // wait for heartbeat to finish its last write
	}
	if s.app == nil {
		return
	}

	// Stop dispatching before releasing the program lock
	s.app.Dispatcher.Stop()

	if s.progControl != nil {
		ctx, cancel := context.WithTimeout(context.Background(), consts.DatabaseTimeout)
		defer cancel()
		if err := s.progControl.Quit(ctx, s.startTime); err != nil {
			logger.Pl.E("!!! Failed to mark Zeku as exited, won't run again until heartbeat goes stale (%v): %v",
				consts.StaleProcessThreshold, err)
		}
	}

	if err := s.app.Close(); err != nil {
		logger.Pl.E("Failed to close database: %v", err)
	}
}
