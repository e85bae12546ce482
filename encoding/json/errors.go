package json

import (
	"fmt"
	"strings"
)

// A Code classifies what went wrong while encoding or decoding.
type Code uint8

const (
	// InvalidCharacter is malformed syntax: a bad escape or surrogate, or a
	// control byte that cannot be encoded.
	InvalidCharacter Code = iota + 1

	// DataTooLong means a scratch or output buffer was too small for a string
	// or a number.
	DataTooLong

	// CannotAddData means the sink rejected a write.
	CannotAddData

	// Incomplete means the input ended in the middle of a token.  Unlike
	// InvalidCharacter it says "need more bytes", not "reject".
	Incomplete

	// InvalidData is a structurally impossible request, e.g. an element with
	// no name inside an object.
	InvalidData

	// MaxDepthExceeded means containers are nested deeper than allowed.
	MaxDepthExceeded
)

func (c Code) String() string {
	switch c {
	case InvalidCharacter:
		return "Invalid character"
	case DataTooLong:
		return "Data too long"
	case CannotAddData:
		return "Cannot add data"
	case Incomplete:
		return "Incomplete data"
	case InvalidData:
		return "Invalid data"
	case MaxDepthExceeded:
		return "Max depth exceeded"
	default:
		return "(unknown error)"
	}
}

// An Error is returned by all encoding and decoding operations.  Use
// errors.Is with the Err* values to test the code.
type Error struct {
	Code Code

	// Offset is the position in the decoded input where the error was
	// detected, or -1 when there is no input (encoding errors).
	Offset int64

	Msg string

	// Err is the sink error for CannotAddData.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes any two errors with the same code match, so that
// errors.Is(err, ErrIncomplete) works whatever the offset and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidCharacter = &Error{Code: InvalidCharacter, Offset: -1}
	ErrDataTooLong      = &Error{Code: DataTooLong, Offset: -1}
	ErrCannotAddData    = &Error{Code: CannotAddData, Offset: -1}
	ErrIncomplete       = &Error{Code: Incomplete, Offset: -1}
	ErrInvalidData      = &Error{Code: InvalidData, Offset: -1}
	ErrMaxDepth         = &Error{Code: MaxDepthExceeded, Offset: -1}
)

func newError(code Code, offset int64, format string, args ...any) *Error {
	return &Error{
		Code:   code,
		Offset: offset,
		Msg:    fmt.Sprintf(format, args...),
	}
}
