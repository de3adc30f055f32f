// Package main is the entrypoint of Zeku.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zeku/internal/cfg"
	"zeku/internal/domain/consts"
	"zeku/internal/domain/logger"
	"zeku/internal/domain/paths"
	"zeku/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	startTime := time.Now()

	if err := paths.InitProgFilesDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Zeku exiting with error: %v\n", err)
		return 1
	}

	// Setup Zeku logging
	pl, err := logging.SetupLogging(logging.LoggingConfig{
		LogFilePath: paths.LogFilePath,
		MaxSizeMB:   1,
		MaxBackups:  3,
		Console:     os.Stdout,
		Program:     consts.ProgramName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Zeku exiting with error: %v\n", err)
		return 1
	}
	logger.Pl = pl

	// create cancellable context for shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	defer cancel()

	sess := &session{ctx: ctx, startTime: startTime}

	// ---- INIT COMMANDS ----
	if err := cfg.InitCommands(ctx, sess.open); err != nil {
		logger.Pl.E("Error: %v", err)
		return 1
	}

	// ---- RUN PROGRAM ----
	runErr := cfg.Execute()

	// ---- SHUTDOWN ----
	cancel()
	sess.cleanup()
	defer logger.Pl.Close()

	if runErr != nil {
		logger.Pl.E("Error: %v", runErr)
		return 1
	}
	return 0
}
