/*package lbmerr contains the error taxonomy shared by every stage of a
simulation run. All of these errors are fatal to the run that produced them.
*/
package lbmerr

import (
	"errors"
	"fmt"
)

// Kind classifies the origin of an Error.
type Kind int

const (
	Unknown Kind = iota
	// ConfigError covers missing or invalid parameters.
	ConfigError
	// GeometryError covers unreadable meshes and empty or degenerate
	// triangle sets.
	GeometryError
	// AcceleratorError covers device acquisition, allocation, submission
	// and readback failures.
	AcceleratorError
	// IOError covers failures surfaced by output collaborators.
	IOError
)

var kindNames = [...]string{
	"UnknownError", "ConfigError", "GeometryError",
	"AcceleratorError", "IOError",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[Unknown]
	}
	return kindNames[k]
}

// Error is an error annotated with its Kind and the phase of the run which
// raised it.
type Error struct {
	Kind  Kind
	Phase string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Phase == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s in %s: %s", e.Kind, e.Phase, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, phase, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Phase: phase, Msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a kind and phase. If err is already an *Error it
// is returned unchanged, so the innermost classification wins. Wrap returns
// nil if err is nil.
func Wrap(kind Kind, phase string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kind, Phase: phase, Err: err}
}

// Config returns a ConfigError.
func Config(phase, format string, args ...interface{}) error {
	return newf(ConfigError, phase, format, args...)
}

// Geometry returns a GeometryError.
func Geometry(phase, format string, args ...interface{}) error {
	return newf(GeometryError, phase, format, args...)
}

// Accelerator returns an AcceleratorError.
func Accelerator(phase, format string, args ...interface{}) error {
	return newf(AcceleratorError, phase, format, args...)
}

// IO returns an IOError.
func IO(phase, format string, args ...interface{}) error {
	return newf(IOError, phase, format, args...)
}

// KindOf returns the Kind of the first *Error in err's chain and Unknown if
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is returns true if err carries the given Kind.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }
