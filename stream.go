package sim

import "fmt"

// Stream is the universal printer interface spec.md §6 describes:
// anything a scenario wants to render arbitrary descriptive text to
// (matcher/action descriptions, ad-hoc diagnostics) without depending on
// the logger directly. *Builder from logiface already provides exactly
// this shape for structured fields; Stream exists for the plain-text
// case, implemented trivially over a strings.Builder-like sink.
type Stream interface {
	WriteString(s string) (int, error)
}

// StreamFunc adapts a function to Stream.
type StreamFunc func(s string) (int, error)

func (f StreamFunc) WriteString(s string) (int, error) { return f(s) }

// Fprint writes args to s the way fmt.Fprint would to an io.Writer,
// without requiring Stream implementations to also satisfy io.Writer.
func Fprint(s Stream, args ...any) {
	_, _ = s.WriteString(fmt.Sprint(args...))
}

// Fprintf writes a formatted string to s.
func Fprintf(s Stream, format string, args ...any) {
	_, _ = s.WriteString(fmt.Sprintf(format, args...))
}
