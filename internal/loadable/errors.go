package loadable

import (
	"errors"
	"fmt"
)

// Sentinel errors. The structured error types below unwrap to these,
// so callers can classify failures with errors.Is.
var (
	ErrConformance       = errors.New("value does not conform to the loadable protocol")
	ErrResolution        = errors.New("cannot resolve type")
	ErrFormat            = errors.New("malformed record")
	ErrVersion           = errors.New("unsupported record format version")
	ErrState             = errors.New("state assignment failed")
	ErrAlreadyRegistered = errors.New("type already registered")
)

// ConformanceError reports a value that cannot participate in the
// protocol: not a primitive, not a Loadable, not a container of either.
type ConformanceError struct {
	TypeName string // Go type of the offending value
	Path     string // location in the graph, when known
	Reason   string
}

// Error implements the error interface.
func (e *ConformanceError) Error() string {
	msg := fmt.Sprintf("type %s does not conform to the loadable protocol", e.TypeName)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	return msg
}

// Unwrap returns the sentinel for errors.Is.
func (e *ConformanceError) Unwrap() error { return ErrConformance }

// ResolutionError reports a (module, qualname) pair that cannot be
// mapped back to a registered type. Retrying cannot succeed; the type
// simply is not registered in this process.
type ResolutionError struct {
	Key  Key
	Path string
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("cannot resolve type %q from module %q: not registered", e.Key.Qualname, e.Key.Module)
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	return msg
}

// Unwrap returns the sentinel for errors.Is.
func (e *ResolutionError) Unwrap() error { return ErrResolution }

// FormatError reports a record with a missing required field or an
// impossible shape. No partial reconstruction is attempted.
type FormatError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	msg := "malformed record: " + e.Reason
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	return msg
}

// Unwrap returns the sentinel for errors.Is.
func (e *FormatError) Unwrap() error { return ErrFormat }

// VersionError reports a record whose format version this engine does
// not support. It is raised before any construction happens.
type VersionError struct {
	Got  string
	Want string
}

// Error implements the error interface.
func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported record format version %q (supported: %q)", e.Got, e.Want)
}

// Unwrap returns the sentinel for errors.Is.
func (e *VersionError) Unwrap() error { return ErrVersion }

// StateError reports a failure while replaying saved mutable state into
// a freshly constructed node (typically a shape or dtype mismatch).
type StateError struct {
	Key  Key
	Path string
	Err  error
}

// Error implements the error interface.
func (e *StateError) Error() string {
	msg := fmt.Sprintf("failed to load state into %s: %v", e.Key, e.Err)
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	return msg
}

// Unwrap returns the sentinel for errors.Is.
func (e *StateError) Unwrap() error { return ErrState }
