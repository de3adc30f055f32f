package scheduler

import (
	"context"
	"sync/atomic"
)

// NetworkMonitor reports whether the current network is metered.
type NetworkMonitor interface {
	Metered(ctx context.Context) bool
}

// StaticNetwork reports a declared metered flag.
type StaticNetwork struct {
	metered atomic.Bool
}

// NewStaticNetwork returns a monitor that reports metered.
func NewStaticNetwork(metered bool) *StaticNetwork {
	n := &StaticNetwork{}
	n.metered.Store(metered)
	return n
}

// Metered implements NetworkMonitor.
func (n *StaticNetwork) Metered(context.Context) bool {
	return n.metered.Load()
}

// SetMetered changes the declared flag.
func (n *StaticNetwork) SetMetered(metered bool) {
	n.metered.Store(metered)
}
