// Package errs defines the error kinds shared by the textgrid packages.
//
// Every fallible operation returns an error that matches exactly one of the
// sentinel values below through errors.Is. Detail is attached by wrapping:
//
//	if errors.Is(err, errs.ErrMalformedInput) {
//	    var me *errs.MalformedError
//	    if errors.As(err, &me) {
//	        fmt.Println(me.Line, me.Expected)
//	    }
//	}
package errs

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrIO wraps a failure of the underlying byte source or sink.
	ErrIO = errors.New("io failure")

	// ErrMalformedInput is returned for format and parse violations: wrong magic,
	// bad prefix, invalid UTF-8, unparsable numbers, missing or extra data.
	ErrMalformedInput = errors.New("malformed input")

	// ErrValidation is returned when a document breaks a semantic invariant.
	ErrValidation = errors.New("validation failure")

	// ErrInvalidRange is returned when a time range or split point is not usable.
	ErrInvalidRange = errors.New("invalid range")

	// ErrOutOfBounds is returned when an interval or point falls outside its tier.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrKindMismatch is returned when an operation does not fit the tier kind.
	ErrKindMismatch = errors.New("tier kind mismatch")

	// ErrIndexOutOfRange is returned for an invalid tier, interval or point index.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotFound is returned when a tier, interval or point lookup misses.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateTier is returned when a tier name is already taken.
	ErrDuplicateTier = errors.New("duplicate tier name")

	// ErrNothingToUndo is returned by Undo on an empty undo stack.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Redo on an empty redo stack.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrChecksumMismatch is returned when a packed payload fails its checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrUnsupportedCompression is returned for an unknown compression type.
	ErrUnsupportedCompression = errors.New("unsupported compression")
)

// MalformedError describes where a decoder rejected its input.
//
// For text input Line is the 1-based line number and Text the offending line;
// for binary input Offset is the byte offset and Line is zero.
type MalformedError struct {
	Line     int
	Offset   int
	Text     string
	Expected string
	Reason   string
}

func (e *MalformedError) Error() string {
	switch {
	case e.Line > 0 && e.Expected != "":
		return fmt.Sprintf("malformed input at line %d: %s: expected %q, got %q", e.Line, e.Reason, e.Expected, e.Text)
	case e.Line > 0:
		return fmt.Sprintf("malformed input at line %d: %s: %q", e.Line, e.Reason, e.Text)
	case e.Expected != "":
		return fmt.Sprintf("malformed input at offset %d: %s: expected %q", e.Offset, e.Reason, e.Expected)
	default:
		return fmt.Sprintf("malformed input at offset %d: %s", e.Offset, e.Reason)
	}
}

// Unwrap makes errors.Is(err, ErrMalformedInput) hold.
func (e *MalformedError) Unwrap() error {
	return ErrMalformedInput
}

// ValidationError reports the first invariant a document breaks.
// Tier is empty for document-level failures; Index is -1 when the failure
// is not tied to a single interval or point.
type ValidationError struct {
	Tier   string
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Tier == "":
		return "validation failure: " + e.Reason
	case e.Index < 0:
		return fmt.Sprintf("validation failure: tier %q: %s", e.Tier, e.Reason)
	default:
		return fmt.Sprintf("validation failure: tier %q element %d: %s", e.Tier, e.Index, e.Reason)
	}
}

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IO wraps err as an ErrIO failure. A nil err stays nil.
func IO(err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrIO, err)
}
