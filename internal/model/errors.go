package model

import "fmt"

// ValidationError reports a value that violates a data-model invariant.
// It is always returned to the caller; values are never coerced into shape.
type ValidationError struct {
	Kind   string // "extraction", "market", "item"
	Field  string // JSON field name that failed
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s: %s", e.Kind, e.Field, e.Reason)
}

func invalid(kind, field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConfigError reports an out-of-range configuration knob.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}
