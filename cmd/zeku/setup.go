package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"zeku/internal/app"
	"zeku/internal/config"
	"zeku/internal/domain/consts"
	"zeku/internal/domain/logger"
	"zeku/internal/logging"
	"zeku/internal/repo"
)

// session holds what one invocation opened, for cleanup.
type session struct {
	ctx       context.Context
	startTime time.Time

	app           *app.App
	progControl   *repo.ProgControl
	heartbeatDone chan struct{}
}

// open initializes the application for the loaded settings. Daemons also
// take the program lock and keep it alive with a heartbeat.
func (s *session) open(ctx context.Context, settings config.Settings, daemon bool) (*app.App, error) {
	if err := s.reconfigureLogging(settings); err != nil {
		logger.Pl.W("Could not apply logging settings, keeping defaults: %v", err)
	}

	logger.Pl.D(1, "Database: %s, log file: %s, cache: %s", settings.DBPath, settings.LogPath, settings.CacheDir)

	a, err := app.Open(settings, app.Options{})
	if err != nil {
		return nil, fmt.Errorf("error initializing Zeku: %w", err)
	}
	s.app = a

	if !daemon {
		return a, nil
	}

	// Start controller
	pc := repo.NewProgController(a.DB.DB)
	if _, err := pc.Start(ctx); err != nil {
		return nil, err
	}
	s.progControl = pc

	logger.Pl.I("Zeku (PID: %d) started at: %v",
		pc.ProcessID, s.startTime.Format("2006-01-02 15:04:05.00 MST"))

	// run heartbeat goroutine
	s.heartbeatDone = make(chan struct{})
	go func() {
		startHeartbeat(s.ctx, pc)
		close(s.heartbeatDone)
	}()
	return a, nil
}

// reconfigureLogging replaces the startup logger with one built from settings.
func (s *session) reconfigureLogging(settings config.Settings) error {
	pl, err := logging.SetupLogging(logging.LoggingConfig{
		LogFilePath: settings.LogPath,
		MaxSizeMB:   settings.LogMaxSizeMB,
		MaxBackups:  settings.LogMaxBackups,
		Console:     os.Stdout,
		Program:     consts.ProgramName,
		DebugLevel:  settings.DebugLevel,
	})
	if err != nil {
		return err
	}
	old := logger.Pl
	logger.Pl = pl
	return old.Close()
}
