package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"zeku/internal/domain/consts"
	"zeku/internal/domain/errs"
	"zeku/internal/domain/logger"

	"github.com/Masterminds/squirrel"
)

// ProgControl holds a pointer to the sql.DB, and program process ID.
//
// Only one daemon may drain the queue of a database at a time. CLI intents
// do not take the lock.
type ProgControl struct {
	DB        *sql.DB
	ProcessID int
	now       func() time.Time
}

// NewProgController returns a program controller for the program row.
func NewProgController(database *sql.DB) *ProgControl {
	return &ProgControl{
		DB:  database,
		now: time.Now,
	}
}

// Start marks the daemon as running, resetting a stale lock first.
func (pc *ProgControl) Start(ctx context.Context) (pid int, err error) {
	id, running, err := pc.checkProgRunning(ctx)
	if err != nil {
		return 0, err
	}
	if running {
		reset, err := pc.resetStaleProcess(ctx)
		if err != nil {
			return 0, fmt.Errorf("could not correct stale process: %w", err)
		}
		if !reset {
			return 0, fmt.Errorf("PID %d: %w", id, errs.ErrProgramRunning)
		}
	}

	pid = os.Getpid()
	host, err := os.Hostname()
	if err != nil {
		logger.Pl.E("Failed to get device hostname: %v", err)
	}

	now := pc.now()
	if _, err := squirrel.
		Update(consts.DBProgram).
		Set(consts.QProgRunning, true).
		Set(consts.QProgPID, pid).
		Set(consts.QProgStartedAt, now).
		Set(consts.QProgHeartbeat, now).
		Set(consts.QProgHost, host).
		Where(squirrel.Eq{consts.QProgID: 1}).
		RunWith(pc.DB).
		ExecContext(ctx); err != nil {
		return pid, fmt.Errorf("failed to mark program running: %w", err)
	}

	pc.ProcessID = pid
	return pid, nil
}

// Quit sets the program exit fields, ready for next run.
func (pc *ProgControl) Quit(ctx context.Context, startTime time.Time) error {
	id, running, err := pc.checkProgRunning(ctx)
	if err != nil {
		return err
	}
	if !running {
		return fmt.Errorf("zeku is not marked as running. Process %d still active?", id)
	}

	now := pc.now()
	if _, err := squirrel.
		Update(consts.DBProgram).
		Set(consts.QProgRunning, false).
		Set(consts.QProgPID, 0).
		Set(consts.QProgHeartbeat, now).
		Where(squirrel.Eq{consts.QProgID: 1}).
		RunWith(pc.DB).
		ExecContext(ctx); err != nil {
		return err
	}

	logger.Pl.I("Zeku finished: %v, time elapsed: %.2f seconds",
		now.Local().Format("2006-01-02 15:04:05.00 MST"),
		now.Sub(startTime).Seconds())
	return nil
}

// UpdateHeartbeat updates the program heartbeat.
//
// Keeps a crashed daemon from locking the database out forever.
func (pc *ProgControl) UpdateHeartbeat(ctx context.Context) error {
	_, err := squirrel.
		Update(consts.DBProgram).
		Set(consts.QProgHeartbeat, pc.now()).
		Where(squirrel.Eq{consts.QProgID: 1}).
		RunWith(pc.DB).
		ExecContext(ctx)
	return err
}

// ******************************** Private ***************************************************************************************

// checkProgRunning checks if the program is already running.
func (pc *ProgControl) checkProgRunning(ctx context.Context) (int, bool, error) {
	var (
		running bool
		pid     sql.NullInt64
	)

	err := squirrel.
		Select(consts.QProgRunning, consts.QProgPID).
		From(consts.DBProgram).
		Where(squirrel.Eq{consts.QProgID: 1}).
		RunWith(pc.DB).
		QueryRowContext(ctx).
		Scan(&running, &pid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to query program running row: %w", err)
	}

	pidValue := 0
	if pid.Valid {
		pidValue = int(pid.Int64)
	}
	return pidValue, running, nil
}

// resetStaleProcess clears the running flag when the heartbeat went stale, e.g. after a power cut.
func (pc *ProgControl) resetStaleProcess(ctx context.Context) (reset bool, err error) {
	var lastHeartbeat time.Time

	if err := squirrel.
		Select(consts.QProgHeartbeat).
		From(consts.DBProgram).
		Where(squirrel.Eq{consts.QProgID: 1}).
		RunWith(pc.DB).
		QueryRowContext(ctx).
		Scan(&lastHeartbeat); err != nil {
		return false, err
	}

	if pc.now().Sub(lastHeartbeat) <= consts.StaleProcessThreshold {
		return false, nil
	}

	logger.Pl.I("Detected stale process, resetting state...")
	if _, err := squirrel.
		Update(consts.DBProgram).
		Set(consts.QProgRunning, false).
		Set(consts.QProgPID, 0).
		Where(squirrel.Eq{consts.QProgID: 1}).
		RunWith(pc.DB).
		ExecContext(ctx); err != nil {
		return false, err
	}
	return true, nil
}
