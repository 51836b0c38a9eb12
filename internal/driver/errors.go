package driver

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound: an input path resolved against neither the
	// relative base nor any library search path.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnknownFileType: input extension not recognized.
	ErrUnknownFileType = errors.New("unknown file type")
	// ErrTypeNotFound: lookup of an ID the registry never saw.
	ErrTypeNotFound = errors.New("type not found")
	// ErrTypeMismatch: the ID exists but names a type of another kind.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrBadState: a hook fired in a pipeline state that forbids it.
	ErrBadState = errors.New("bad driver state")
)

// lookupError keeps "never registered" and "wrong kind" distinguishable
// for callers that need to branch, including the glue compiler.
type lookupError struct {
	id       string
	want     string
	notFound bool
}

func (e *lookupError) Error() string {
	if e.notFound {
		return fmt.Sprintf("unknown type '%s'", e.id)
	}
	return fmt.Sprintf("'%s' is not of expected type %s", e.id, e.want)
}

func (e *lookupError) Unwrap() error {
	if e.notFound {
		return ErrTypeNotFound
	}
	return ErrTypeMismatch
}

// TypeNotFound implements the glue compiler's NotFound interface.
func (e *lookupError) TypeNotFound() bool { return e.notFound }
