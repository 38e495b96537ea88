package dcf

import "fmt"

// ConfigurationError reports malformed or incomplete caller input: a broken
// growth-stage table, a short schedule, or a missing required assumption.
// Not retryable without fixing the input.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
	}
	return "configuration error: " + e.Reason
}

// DomainError reports a mathematically invalid parameter combination. The
// caller must adjust assumptions (e.g. raise WACC above terminal growth).
type DomainError struct {
	Reason string
}

func (e *DomainError) Error() string {
	return "domain error: " + e.Reason
}
