package domain

import "fmt"

// Output is the value produced by a single node execution. By convention it
// carries the primary result under the "output" key; executors may attach
// extra metadata fields alongside it.
type Output map[string]any

// TextOutput wraps a plain string as a node output.
func TextOutput(s string) Output {
	return Output{"output": s}
}

// Value returns the primary result, or nil when absent.
func (o Output) Value() any {
	if o == nil {
		return nil
	}
	return o["output"]
}

// Text renders the primary result as a string. Nil results render empty.
func (o Output) Text() string {
	return Stringify(o.Value())
}

// Unwrap extracts the conventional "output" field from a structured value.
// Plain values pass through unchanged. Downstream nodes receive the unwrapped
// form so they never need to know whether their upstream was structured.
func Unwrap(v any) any {
	switch m := v.(type) {
	case Output:
		if inner, ok := m["output"]; ok {
			return inner
		}
	case map[string]any:
		if inner, ok := m["output"]; ok {
			return inner
		}
	}
	return v
}

// Stringify renders an arbitrary value for prompt assembly. Nil renders as
// the empty string rather than "<nil>".
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
