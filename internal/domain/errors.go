package domain

import "fmt"

// ValidationKind classifies why a field was rejected.
type ValidationKind string

const (
	// NotPositiveInteger means a sizing field parsed to an integer
	// below 1.
	NotPositiveInteger ValidationKind = "not_positive_integer"

	// ExceedsSaneLimit means a sizing field is above its configured
	// ceiling. The value is rejected rather than clamped so unit
	// mix-ups (MB given where GB is expected) surface immediately.
	ExceedsSaneLimit ValidationKind = "exceeds_sane_limit"

	// InvalidNameCharacters means the VM name contains a character
	// outside [A-Za-z0-9_-].
	InvalidNameCharacters ValidationKind = "invalid_name_characters"

	// ShareNotAccessible means a shared host directory does not
	// exist or cannot be read.
	ShareNotAccessible ValidationKind = "share_not_accessible"
)

// ValidationError reports a single rejected input field. Errors from
// different fields are combined with errors.Join so one run reports
// every problem at once.
type ValidationError struct {
	Field string
	Value string
	Kind  ValidationKind
	// Reason is the operator-facing explanation.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Field, e.Value, e.Reason)
}

// BuildError wraps a build backend failure. The backend's own diagnostic
// output has already been streamed to the operator; this error only
// records that the build stage failed and why the process exited.
type BuildError struct {
	// Backend is the command that was invoked.
	Backend string
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("VM build failed (%s): %v", e.Backend, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// GenerationError reports a startup script that could not be written.
// The build has already succeeded at this point, so the message must
// make clear the artifact itself remains usable.
type GenerationError struct {
	Script string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to create startup script %s: %v (the built VM artifact is still usable directly)", e.Script, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
