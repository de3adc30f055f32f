// Package cache manages the per-download scratch directories that hold
// partial files and exported cookies.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"zeku/internal/domain/consts"
	"zeku/internal/domain/logger"
)

// Result reports the outcome of a reconciliation. A failure for one id never
// prevents the others from being processed.
type Result struct {
	Removed []int64
	Failed  map[int64]error
}

// Reconciler owns the cache root. Each download's artifacts live in a
// subdirectory named by its id.
type Reconciler struct {
	root   string
	remove func(path string) error
}

// NewReconciler returns a Reconciler rooted at root.
func NewReconciler(root string) *Reconciler {
	return &Reconciler{root: root, remove: os.RemoveAll}
}

// Root returns the cache root directory.
func (r *Reconciler) Root() string {
	return r.root
}

// Path returns the cache directory of id without creating it.
func (r *Reconciler) Path(id int64) string {
	return filepath.Join(r.root, strconv.FormatInt(id, 10))
}

// Dir returns the cache directory of id, creating it if needed.
func (r *Reconciler) Dir(id int64) (string, error) {
	dir := r.Path(id)
	if err := os.MkdirAll(dir, consts.PermsCacheDir); err != nil {
		return "", fmt.Errorf("failed to create cache directory for download %d: %w", id, err)
	}
	return dir, nil
}

// Reconcile removes the cache directories of ids. Missing directories count as removed.
func (r *Reconciler) Reconcile(ids []int64) Result {
	res := Result{Removed: make([]int64, 0, len(ids)), Failed: map[int64]error{}}
	for _, id := range ids {
		if err := r.remove(r.Path(id)); err != nil {
			logger.Pl.W("Could not remove cache for download %d: %v", id, err)
			res.Failed[id] = err
			continue
		}
		res.Removed = append(res.Removed, id)
	}
	if len(res.Removed) > 0 {
		logger.Pl.D(2, "Removed cache for downloads %v", res.Removed)
	}
	return res
}
