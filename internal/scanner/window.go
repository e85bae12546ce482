package scanner

import (
	"errors"
	"io"
)

// A Window is a fixed size read-ahead buffer over a reader.  The consumer
// scans Bytes() from some position and regularly calls Advance with that
// position.  When the unread part drops below half of the window, it is moved
// to the start of the buffer and the rest of the buffer is filled from the
// reader.
type Window struct {
	reader io.Reader
	buf    []byte

	// The first unfilled position in buf
	// 0 <= fillIndex <= len(buf)
	fillIndex int

	// Absolute position in the input of buf[0]
	base int64

	// Set when the reader returned io.EOF or failed.  No more bytes will be
	// added to the window after that.
	eof bool

	err error
}

// NewWindow returns a window of the given size (DefaultWindowSize if size is
// not positive).  The window is empty until the first call to Advance.
func NewWindow(reader io.Reader, size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{
		reader: reader,
		buf:    make([]byte, size),
	}
}

// Bytes returns the currently loaded bytes.  The returned slice is only valid
// until the next call to Advance.
func (w *Window) Bytes() []byte {
	return w.buf[:w.fillIndex]
}

// Base is the position in the input of the first byte in Bytes().
func (w *Window) Base() int64 {
	return w.base
}

// EOF returns true when the reader cannot provide more bytes.
func (w *Window) EOF() bool {
	return w.eof
}

// Err returns the read error that ended the input, if any.  Reaching the end
// of the input is not an error.
func (w *Window) Err() error {
	return w.err
}

// Advance tells the window that the bytes before pos in Bytes() have been
// consumed.  It returns the position of the same byte after the window may
// have been refilled, and the read error if one happened during the refill.
// After an error the window behaves as if the input had ended.
func (w *Window) Advance(pos int) (int, error) {
	if w.eof || w.fillIndex-pos >= len(w.buf)/2 {
		return pos, nil
	}
	return w.Slide(pos)
}

// Slide is like Advance but always moves the bytes from pos to the start of
// the buffer and fills the rest, for a consumer that needs more than half a
// window of read-ahead.
func (w *Window) Slide(pos int) (int, error) {
	if w.eof {
		return pos, nil
	}
	if pos > 0 {
		remaining := w.fillIndex - pos
		copy(w.buf, w.buf[pos:w.fillIndex])
		w.base += int64(pos)
		w.fillIndex = remaining
	}
	return 0, w.fill()
}

func (w *Window) fill() error {
	emptyReads := 0
	for w.fillIndex < len(w.buf) {
		n, err := w.reader.Read(w.buf[w.fillIndex:])
		w.fillIndex += n
		if err != nil {
			w.eof = true
			if errors.Is(err, io.EOF) {
				return nil
			}
			w.err = err
			return err
		}
		if n > 0 {
			emptyReads = 0
			continue
		}
		emptyReads++
		if emptyReads >= maxConsecutiveEmptyReads {
			w.eof = true
			w.err = io.ErrNoProgress
			return w.err
		}
	}
	return nil
}

const (
	maxConsecutiveEmptyReads = 100
	DefaultWindowSize        = 1000
)
