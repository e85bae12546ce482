package json

import (
	"bytes"
	"math"
	"strconv"
)

// float32Epsilon is FLT_EPSILON, the gap between 1 and the next float32.
const float32Epsilon = 1.1920928955078125e-07

// FormatInt writes the decimal text of v to dst and returns the number of
// bytes written.  If dst is too small it returns an error with code
// DataTooLong and writes nothing.
func FormatInt(dst []byte, v int64) (int, error) {
	var tmp [20]byte
	return copyNumber(dst, strconv.AppendInt(tmp[:0], v, 10))
}

// FormatUint is like FormatInt for unsigned values.
func FormatUint(dst []byte, v uint64) (int, error) {
	var tmp [20]byte
	return copyNumber(dst, strconv.AppendUint(tmp[:0], v, 10))
}

// FormatFloat writes v to dst as JSON number text.
//
// NaN is written as null and infinities as 1e999 / -1e999.  Values that are
// equal to their float32 conversion (within float32 precision) are written
// with the shortest float32 digits, other values with the shortest float64
// digits.  The text always contains a '.' or an exponent, so integral values
// end in ".0".
func FormatFloat(dst []byte, v float64) (int, error) {
	var tmp [32]byte
	return copyNumber(dst, appendFloat(tmp[:0], v))
}

func appendFloat(b []byte, v float64) []byte {
	switch {
	case math.IsNaN(v):
		return append(b, nullBytes...)
	case math.IsInf(v, 1):
		return append(b, posInfBytes...)
	case math.IsInf(v, -1):
		return append(b, negInfBytes...)
	}
	start := len(b)
	if f := float32(v); math.Abs(v-float64(f)) <= float32Epsilon*math.Abs(v) {
		b = strconv.AppendFloat(b, float64(f), 'g', -1, 32)
	} else {
		b = strconv.AppendFloat(b, v, 'g', -1, 64)
	}
	return tidyFloat(b, start)
}

// tidyFloat makes sure b[start:] reads as a float: ".0" is appended to
// integral text, and trailing zeros after the point are removed.
func tidyFloat(b []byte, start int) []byte {
	text := b[start:]
	dot := bytes.IndexByte(text, '.')
	exp := bytes.IndexAny(text, "eE")
	switch {
	case dot < 0 && exp < 0:
		return append(b, '.', '0')
	case dot >= 0 && exp < 0:
		end := len(b)
		// Keep at least one digit after the point.
		for end > start+dot+2 && b[end-1] == '0' {
			end--
		}
		return b[:end]
	}
	return b
}

func copyNumber(dst, text []byte) (int, error) {
	if len(text) > len(dst) {
		return 0, newError(DataTooLong, -1, "number needs %d bytes, buffer has %d", len(text), len(dst))
	}
	return copy(dst, text), nil
}

var (
	posInfBytes = []byte("1e999")
	negInfBytes = []byte("-1e999")
)
