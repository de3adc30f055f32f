package downloads

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"time"

	"zeku/internal/domain/logger"
)

// Runner starts an external program and streams its merged output line by line.
type Runner interface {
	Run(ctx context.Context, name string, args []string, onLine func(string)) error
}

// ExecRunner runs programs with os/exec. Cancelling the context kills the
// whole process group.
type ExecRunner struct {
	// WaitDelay bounds how long Wait blocks on output pipes after a kill.
	WaitDelay time.Duration
}

const maxLineSize = 64 * 1024 * 1024

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, name string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, name, args...)
	setProcessGroup(cmd)

	// Merge stdout and stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe error: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = 5 * time.Second
	}

	logger.Pl.D(1, "Running command:\n%v", cmd.String())
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start command: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if onLine != nil {
			onLine(scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Pl.W("Stopped reading output of %s: %v", name, err)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
