package observe

import (
	"context"
	"reflect"

	"zeku/internal/domain/logger"
)

// Query produces one snapshot of some persisted state.
type Query[T any] func(ctx context.Context) (T, error)

// Watch emits the query result now and again after every committed write,
// skipping results equal to the previous emission. The channel closes when ctx
// is done. Query errors are logged and the previous snapshot is kept.
func Watch[T any](ctx context.Context, n *Notifier, query Query[T]) <-chan T {
	out := make(chan T, 1)
	signal, unsubscribe := n.Subscribe()

	go func() {
		defer close(out)
		defer unsubscribe()

		var (
			last T
			have bool
		)
		emit := func() bool {
			v, err := query(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				logger.Pl.E("Watch query failed: %v", err)
				return true
			}
			if have && reflect.DeepEqual(last, v) {
				return true
			}
			last, have = v, true
			select {
			case out <- v:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
				if !emit() {
					return
				}
			}
		}
	}()
	return out
}
