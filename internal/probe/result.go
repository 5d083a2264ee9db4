package probe

// Result is the outcome of one probe. A degraded result still carries a
// concrete value (an error string, an empty list, a placeholder) so the report
// never has to omit a field.
type Result[T any] struct {
	Value  T
	Reason string
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func Degraded[T any](v T, reason string) Result[T] {
	if reason == "" {
		reason = "unavailable"
	}
	return Result[T]{Value: v, Reason: reason}
}

func (r Result[T]) Degraded() bool { return r.Reason != "" }
