package testutil

import (
	"errors"
	"slices"
	"sync"

	"zeku/internal/cache"
)

// FakeReconciler records reconciled ids and fails for the ids in Fail.
type FakeReconciler struct {
	mu    sync.Mutex
	Fail  map[int64]bool
	calls [][]int64
}

// NewFakeReconciler returns a reconciler failing for failIDs.
func NewFakeReconciler(failIDs ...int64) *FakeReconciler {
	f := &FakeReconciler{Fail: make(map[int64]bool)}
	for _, id := range failIDs {
		f.Fail[id] = true
	}
	return f
}

// Reconcile implements the queue's cache reconciler.
func (f *FakeReconciler) Reconcile(ids []int64) cache.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, slices.Clone(ids))
	res := cache.Result{Removed: []int64{}, Failed: map[int64]error{}}
	for _, id := range ids {
		if f.Fail[id] {
			res.Failed[id] = errors.New("cache locked")
			continue
		}
		res.Removed = append(res.Removed, id)
	}
	return res
}

// Reconciled returns every id passed to Reconcile, in call order.
func (f *FakeReconciler) Reconciled() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []int64
	for _, c := range f.calls {
		out = append(out, c...)
	}
	return out
}
