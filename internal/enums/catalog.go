// Package enums holds the closed option sets used by download preferences.
//
// Every option carries a stored value, a display label, and the argument passed
// to the downloader. Parsing an unknown value yields the set's default.
package enums

// Setting is implemented by every option type in this package.
type Setting interface {
	Value() string
	Label() string
	Arg() string
}

type option struct {
	value string
	label string
	arg   string
}

type catalog[T ~string] struct {
	options  []option
	fallback T
}

func newCatalog[T ~string](fallback T, options ...option) catalog[T] {
	return catalog[T]{options: options, fallback: fallback}
}

func (c catalog[T]) parse(s string) T {
	for _, o := range c.options {
		if o.value == s {
			return T(s)
		}
	}
	return c.fallback
}

func (c catalog[T]) find(v T) option {
	for _, o := range c.options {
		if o.value == string(v) {
			return o
		}
	}
	for _, o := range c.options {
		if o.value == string(c.fallback) {
			return o
		}
	}
	return option{}
}

func (c catalog[T]) all() []T {
	out := make([]T, 0, len(c.options))
	for _, o := range c.options {
		out = append(out, T(o.value))
	}
	return out
}

// unmarshal keeps the empty string so zero values survive a round trip.
func (c catalog[T]) unmarshal(b []byte) T {
	if len(b) == 0 {
		return T("")
	}
	return c.parse(string(b))
}
