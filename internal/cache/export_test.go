package cache

// SetRemoveFunc swaps the removal function for tests.
func (r *Reconciler) SetRemoveFunc(fn func(string) error) {
	r.remove = fn
}
