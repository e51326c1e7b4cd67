// Package errdefs defines the error taxonomy shared by the backup,
// copy, retention and schedule services. All types work with errors.As
// so callers can map failures to HTTP statuses and audit detail.
package errdefs

import "fmt"

// ValidationError is bad input, caught before any side effect.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConfigurationError means a storage backend is misconfigured
// (missing or invalid credentials). Not retryable without operator fix.
type ConfigurationError struct {
	Backend string
	Msg     string
}

func (e *ConfigurationError) Error() string {
	if e.Backend == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s backend: %s", e.Backend, e.Msg)
}

// ExecutionError means a subprocess or primitive returned nonzero or
// timed out. Op names the command, Detail carries its output.
type ExecutionError struct {
	Op      string
	Detail  string
	Timeout bool
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: timeout", e.Op)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s failed: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// UploadError is a transient transport failure during upload, distinct
// from ConfigurationError; safe to retry.
type UploadError struct {
	Backend string
	Err     error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload via %s failed: %v", e.Backend, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// ConcurrencyError is a single-flight violation: another mutating
// operation holds the environment's lock.
type ConcurrencyError struct {
	Environment string
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("operation already running for environment %s", e.Environment)
}

// ContainerError means the container-control collaborator failed.
type ContainerError struct {
	Environment string
	Op          string
	Err         error
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("%s container for %s: %v", e.Op, e.Environment, e.Err)
}

func (e *ContainerError) Unwrap() error { return e.Err }

// NotFoundError marks a missing record or environment.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}
