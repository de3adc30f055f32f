// Package logging provides the program's leveled logger.
//
// Messages go to a colored console writer and, when a log file path is set, to a
// size-rotated JSON log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"zeku/internal/domain/consts"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggingConfig holds the settings used to build a ProgramLogger.
type LoggingConfig struct {
	LogFilePath string
	MaxSizeMB   int
	MaxBackups  int
	Console     io.Writer
	Program     string
	DebugLevel  int
}

// ProgramLogger is a printf-style wrapper around zerolog.
type ProgramLogger struct {
	zl         zerolog.Logger
	plain      io.Writer
	debugLevel atomic.Int32
	closer     io.Closer
}

// SetupLogging builds a ProgramLogger from the config.
func SetupLogging(cfg LoggingConfig) (*ProgramLogger, error) {
	var writers []io.Writer

	if cfg.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        cfg.Console,
			TimeFormat: time.TimeOnly,
		})
	}

	var closer io.Closer
	if cfg.LogFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), consts.PermsHomeProgDir); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		writers = append(writers, lj)
		closer = lj
	}

	if len(writers) == 0 {
		return Discard(), nil
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Str("program", cfg.Program).
		Logger()

	pl := &ProgramLogger{zl: zl, plain: cfg.Console, closer: closer}
	pl.debugLevel.Store(int32(cfg.DebugLevel))
	return pl, nil
}

// Discard returns a logger that drops everything.
func Discard() *ProgramLogger {
	return &ProgramLogger{zl: zerolog.Nop(), plain: io.Discard}
}

// SetDebugLevel changes the verbosity threshold of D.
func (pl *ProgramLogger) SetDebugLevel(level int) {
	pl.debugLevel.Store(int32(level))
}

// DebugLevel returns the current verbosity threshold.
func (pl *ProgramLogger) DebugLevel() int {
	return int(pl.debugLevel.Load())
}

// E logs an error with the caller attached.
func (pl *ProgramLogger) E(format string, args ...any) {
	pl.zl.Error().Caller(1).Msgf(format, args...)
}

// W logs a warning.
func (pl *ProgramLogger) W(format string, args ...any) {
	pl.zl.Warn().Msgf(format, args...)
}

// I logs an informational message.
func (pl *ProgramLogger) I(format string, args ...any) {
	pl.zl.Info().Msgf(format, args...)
}

// S logs a success message.
func (pl *ProgramLogger) S(format string, args ...any) {
	pl.zl.Info().Bool("success", true).Msgf(format, args...)
}

// D logs a debug message when level is within the configured threshold.
func (pl *ProgramLogger) D(level int, format string, args ...any) {
	if level > int(pl.debugLevel.Load()) {
		return
	}
	pl.zl.Debug().Int("level", level).Msgf(format, args...)
}

// P prints a plain line to the console without level decoration.
func (pl *ProgramLogger) P(format string, args ...any) {
	if pl.plain == nil {
		return
	}
	fmt.Fprintf(pl.plain, format+"\n", args...)
}

// Close flushes and closes the log file, if any.
func (pl *ProgramLogger) Close() error {
	if pl.closer == nil {
		return nil
	}
	return pl.closer.Close()
}
