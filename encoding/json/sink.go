package json

import (
	"io"
)

// The Encoder sends all its output to an io.Writer, the sink.  The sink may
// buffer, write to a stream or accumulate in memory; the encoder only assumes
// that a nil error means the bytes were accepted.  Any error returned by the
// sink is reported as an *Error with code CannotAddData wrapping it, e.g.
//
//	err := enc.AddInt([]byte("n"), 1)
//	if errors.Is(err, syscall.EPIPE) {
//	    // the reader went away
//	}
//
// The encoder never retains the slice passed to Write.

// WriterFunc adapts a function to the io.Writer interface so a closure can be
// used as a sink.
type WriterFunc func(p []byte) error

var _ io.Writer = WriterFunc(nil)

// Write calls f(p) and reports all of p as written if f succeeds.
func (f WriterFunc) Write(p []byte) (int, error) {
	if err := f(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// LimitWriter is a sink that accepts at most N bytes in total and fails with
// ErrSinkFull after that.  It is useful to cap the size of a generated
// document.
type LimitWriter struct {
	W io.Writer
	N int64
}

var _ io.Writer = &LimitWriter{}

func (l *LimitWriter) Write(p []byte) (int, error) {
	if int64(len(p)) > l.N {
		return 0, ErrSinkFull
	}
	n, err := l.W.Write(p)
	l.N -= int64(n)
	return n, err
}

// ErrSinkFull is returned by a LimitWriter that has run out of space.
var ErrSinkFull = &sinkFullError{}

type sinkFullError struct{}

func (*sinkFullError) Error() string {
	return "sink full"
}

func (e *Encoder) write(p []byte) error {
	if _, err := e.w.Write(p); err != nil {
		return &Error{Code: CannotAddData, Offset: -1, Err: err}
	}
	return nil
}
