package testutil

import (
	"context"
	"slices"
	"sync"
)

// RunCall records one FakeRunner invocation.
type RunCall struct {
	Name string
	Args []string
}

// FakeRunner replays Lines to the caller and returns Err. With Block set it
// waits for the context instead of returning.
type FakeRunner struct {
	Lines []string
	Err   error
	Block bool

	// Started receives once per call after the lines are replayed.
	Started chan struct{}

	mu    sync.Mutex
	calls []RunCall
}

// NewFakeRunner returns a runner replaying lines.
func NewFakeRunner(lines ...string) *FakeRunner {
	return &FakeRunner{Lines: lines, Started: make(chan struct{}, 16)}
}

// Run implements the downloader's process runner.
func (f *FakeRunner) Run(ctx context.Context, name string, args []string, onLine func(string)) error {
	f.mu.Lock()
	f.calls = append(f.calls, RunCall{Name: name, Args: slices.Clone(args)})
	f.mu.Unlock()

	for _, l := range f.Lines {
		onLine(l)
	}
	select {
	case f.Started <- struct{}{}:
	default:
	}

	if f.Block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.Err
}

// Calls returns every recorded invocation.
func (f *FakeRunner) Calls() []RunCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}
