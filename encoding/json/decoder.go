package json

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/arnodel/jsoncodec/internal/scanner"
)

// A Handler receives the elements found by a Decoder, in document order.
//
// name is the element name when the enclosing container is an object, and nil
// otherwise (an empty name is a non-nil empty slice).  name and string values
// point into the decoder's scratch buffers: they are only valid until the
// method returns and must be copied to be kept.
//
// Returning a non-nil error stops decoding straight away; the same error is
// returned by the decoder.
type Handler interface {
	BeginObject(name []byte) error
	BeginArray(name []byte) error
	EndContainer() error
	Bool(name []byte, value bool) error
	Int(name []byte, value int64) error
	Uint(name []byte, value uint64) error
	Float(name []byte, value float64) error
	String(name, value []byte) error
	Null(name []byte) error
	EndData() error
}

// A Decoder parses one JSON value from a byte window and reports its elements
// to a Handler.  Decoded names and strings are written to the two scratch
// buffers it is given, which limits their length, so they cost no
// allocation.  Numbers with a fraction or an exponent are the exception: they
// are converted with strconv.ParseFloat, which takes a string.
//
// The window can be replaced while decoding (see SetWindow and WithRefill),
// which is how input larger than the window is decoded.
type Decoder struct {
	buf []byte
	pos int

	// Position in the input of buf[0]
	base int64

	// No bytes will follow buf
	final bool

	nameBuf   []byte
	stringBuf []byte

	maxDepth int
	depth    int

	refill func(force bool)
	h      Handler
}

// A DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithDecoderMaxDepth sets how deeply containers can be nested.  The default
// is DefaultMaxDecodeDepth.
func WithDecoderMaxDepth(n int) DecoderOption {
	return func(d *Decoder) {
		if n > 0 {
			d.maxDepth = n
		}
	}
}

// WithRefill registers a function that the decoder calls while the window is
// not final, so that it can slide or extend the window with SetWindow.  The
// bytes from Pos() on must be kept.
//
// refill(false) is called before each token, after skipping white space.
// refill(true) is called when a string or a number runs past the end of the
// window; the function should then provide as many bytes as it can after
// Pos().
func WithRefill(refill func(force bool)) DecoderOption {
	return func(d *Decoder) {
		d.refill = refill
	}
}

const DefaultMaxDecodeDepth = 512

// NewDecoder returns a decoder that writes names to nameBuf and strings (and
// number text) to stringBuf.  The two buffers must not overlap.
func NewDecoder(nameBuf, stringBuf []byte, opts ...DecoderOption) *Decoder {
	if nameBuf == nil {
		nameBuf = []byte{}
	}
	if stringBuf == nil {
		stringBuf = []byte{}
	}
	d := &Decoder{
		nameBuf:   nameBuf,
		stringBuf: stringBuf,
		maxDepth:  DefaultMaxDecodeDepth,
		final:     true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SplitScratch divides one scratch region into a name buffer (a quarter of
// it) and a string buffer (the rest).
func SplitScratch(scratch []byte) (nameBuf, stringBuf []byte) {
	n := len(scratch) / 4
	return scratch[:n:n], scratch[n:]
}

// Decode decodes the single JSON value in data, calling h for each element
// and then h.EndData().  scratch is split with SplitScratch.  The returned
// offset is the position in data reached by the decoder, which is where the
// problem was found when err is not nil.
func Decode(data, scratch []byte, h Handler) (int64, error) {
	nameBuf, stringBuf := SplitScratch(scratch)
	d := NewDecoder(nameBuf, stringBuf)
	d.Reset(data, true)
	err := d.Decode(h)
	return d.Offset(), err
}

// Reset sets the window to buf, starting at offset 0 of the input.  final
// means that buf contains the end of the input.
func (d *Decoder) Reset(buf []byte, final bool) {
	d.SetWindow(buf, 0, 0, final)
	d.depth = 0
}

// SetWindow replaces the window.  pos is where decoding resumes in buf and
// base is the position in the input of buf[0].
func (d *Decoder) SetWindow(buf []byte, pos int, base int64, final bool) {
	d.buf = buf
	d.pos = pos
	d.base = base
	d.final = final
}

// Pos is the position of the cursor in the current window.
func (d *Decoder) Pos() int {
	return d.pos
}

// Offset is the position of the cursor in the input.
func (d *Decoder) Offset() int64 {
	return d.base + int64(d.pos)
}

// Final is true when the window contains the end of the input.
func (d *Decoder) Final() bool {
	return d.final
}

// Decode decodes exactly one value then calls h.EndData().
func (d *Decoder) Decode(h Handler) error {
	if err := d.DecodeValue(nil, h); err != nil {
		return err
	}
	return h.EndData()
}

// DecodeValue decodes exactly one value and reports it to h with the given
// name.  It does not call h.EndData().
func (d *Decoder) DecodeValue(name []byte, h Handler) error {
	d.h = h
	defer func() { d.h = nil }()
	return d.decodeValue(name)
}

func (d *Decoder) fail(code Code, format string, args ...any) error {
	err := newError(code, d.Offset(), format, args...)
	Logger().Debug("decoding failed", zap.Int64("offset", err.Offset), zap.String("reason", err.Msg))
	return err
}

func (d *Decoder) incomplete() error {
	return d.fail(Incomplete, "premature end of data")
}

// skipSpace moves the cursor to the next token, refilling the window after
// the white space so that the token starts with as much read-ahead as the
// refill function gives.
func (d *Decoder) skipSpace() {
	for {
		for d.pos < len(d.buf) && scanner.IsSpace(d.buf[d.pos]) {
			d.pos++
		}
		if d.refill == nil || d.final {
			return
		}
		d.refill(false)
		if d.pos >= len(d.buf) || !scanner.IsSpace(d.buf[d.pos]) {
			return
		}
	}
}

// more asks for the bytes after the end of the window, for the token at the
// cursor.  It returns false if there cannot be any.
func (d *Decoder) more() bool {
	if d.refill == nil || d.final {
		return false
	}
	avail := len(d.buf) - d.pos
	d.refill(true)
	return d.final || len(d.buf)-d.pos > avail
}

func (d *Decoder) decodeValue(name []byte) error {
	d.skipSpace()
	if d.pos >= len(d.buf) {
		return d.incomplete()
	}

	switch c := d.buf[d.pos]; c {
	case '[':
		return d.decodeArray(name)
	case '{':
		return d.decodeObject(name)
	case '"':
		s, err := d.decodeString(d.stringBuf)
		if err != nil {
			return err
		}
		return d.h.String(name, s)
	case 't':
		if err := d.expectLiteral(trueBytes); err != nil {
			return err
		}
		return d.h.Bool(name, true)
	case 'f':
		if err := d.expectLiteral(falseBytes); err != nil {
			return err
		}
		return d.h.Bool(name, false)
	case 'n':
		if err := d.expectLiteral(nullBytes); err != nil {
			return err
		}
		return d.h.Null(name)
	default:
		if c == '-' || scanner.IsDigit(c) {
			return d.decodeNumber(name)
		}
		return d.fail(InvalidCharacter, "invalid character %q", c)
	}
}

func (d *Decoder) enter() error {
	if d.depth >= d.maxDepth {
		return d.fail(MaxDepthExceeded, "cannot nest more than %d containers", d.maxDepth)
	}
	d.depth++
	return nil
}

func (d *Decoder) decodeArray(name []byte) error {
	if err := d.enter(); err != nil {
		return err
	}
	d.pos++
	if err := d.h.BeginArray(name); err != nil {
		return err
	}
	for {
		d.skipSpace()
		if d.pos >= len(d.buf) {
			break
		}
		if d.buf[d.pos] == ']' {
			d.pos++
			d.depth--
			return d.h.EndContainer()
		}
		if err := d.decodeValue(nil); err != nil {
			return err
		}
		d.skipSpace()
		if d.pos >= len(d.buf) {
			break
		}
		if d.buf[d.pos] == ',' {
			d.pos++
		}
	}
	return d.incomplete()
}

func (d *Decoder) decodeObject(name []byte) error {
	if err := d.enter(); err != nil {
		return err
	}
	d.pos++
	if err := d.h.BeginObject(name); err != nil {
		return err
	}
	for {
		d.skipSpace()
		if d.pos >= len(d.buf) {
			break
		}
		if d.buf[d.pos] == '}' {
			d.pos++
			d.depth--
			return d.h.EndContainer()
		}
		key, err := d.decodeString(d.nameBuf)
		if err != nil {
			return err
		}
		d.skipSpace()
		if d.pos >= len(d.buf) {
			break
		}
		if d.buf[d.pos] != ':' {
			return d.fail(InvalidCharacter, "expected ':' but got %q", d.buf[d.pos])
		}
		d.pos++
		if err := d.decodeValue(key); err != nil {
			return err
		}
		d.skipSpace()
		if d.pos >= len(d.buf) {
			break
		}
		if d.buf[d.pos] == ',' {
			d.pos++
		}
	}
	return d.incomplete()
}

// decodeString decodes the string at the cursor into dst and returns the
// decoded bytes.
func (d *Decoder) decodeString(dst []byte) ([]byte, error) {
	if d.pos >= len(d.buf) {
		return nil, d.incomplete()
	}
	if d.buf[d.pos] != '"' {
		return nil, d.fail(InvalidCharacter, "expected '\"' but got %q", d.buf[d.pos])
	}

	end, escaped, found := d.scanString(len(dst))
	for !found && end <= len(dst) && d.more() {
		end, escaped, found = d.scanString(len(dst))
	}
	if end > len(dst) {
		return nil, d.fail(DataTooLong, "string does not fit in %d bytes", len(dst))
	}
	if !found {
		return nil, d.incomplete()
	}
	raw := d.buf[d.pos+1 : d.pos+1+end]

	var s []byte
	if escaped {
		var err error
		if s, err = d.unescape(dst, raw); err != nil {
			return nil, err
		}
	} else {
		s = dst[:copy(dst, raw)]
	}
	d.pos += end + 2
	return s, nil
}

// scanString looks for the closing quote of the string at the cursor and
// returns its index after the opening quote.  It gives up once the string is
// known to be longer than limit.
func (d *Decoder) scanString(limit int) (end int, escaped, found bool) {
	src := d.buf[d.pos+1:]
	for end < len(src) && end <= limit {
		switch src[end] {
		case '"':
			return end, escaped, true
		case '\\':
			escaped = true
			end++
		}
		end++
	}
	return end, escaped, false
}

// unescape decodes raw, which contains at least one escape, into dst.  The
// decoded text is never longer than raw.
func (d *Decoder) unescape(dst, raw []byte) ([]byte, error) {
	n := 0
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			dst[n] = c
			n++
			continue
		}
		// The scan in decodeString guarantees a byte after each backslash.
		i++
		switch raw[i] {
		case '"':
			c = '"'
		case '\\':
			c = '\\'
		case '/':
			c = '/'
		case 'n':
			c = '\n'
		case 'r':
			c = '\r'
		case 't':
			c = '\t'
		case 'b':
			c = '\b'
		case 'f':
			c = '\f'
		case 'u':
			r, width, err := d.decodeUnicodeEscape(raw[i+1:])
			if err != nil {
				return nil, err
			}
			if r > utf8.MaxRune {
				return nil, d.fail(InvalidCharacter, "invalid unicode 0x%04x", r)
			}
			n += utf8.EncodeRune(dst[n:], r)
			i += width
			continue
		default:
			return nil, d.fail(InvalidCharacter, "invalid escape character %q", raw[i])
		}
		dst[n] = c
		n++
	}
	return dst[:n], nil
}

// decodeUnicodeEscape decodes the XXXX part of a \uXXXX escape at the start
// of s, plus the following \uXXXX if the first one is a lead surrogate.  It
// returns the code point and how many bytes of s were used.
func (d *Decoder) decodeUnicodeEscape(s []byte) (rune, int, error) {
	// s stops at the closing quote so missing digits are invalid.
	if len(s) < 4 {
		return 0, 0, d.fail(InvalidCharacter, "invalid unicode sequence %q", s)
	}
	r, ok := hex4(s)
	if !ok {
		return 0, 0, d.fail(InvalidCharacter, "invalid unicode sequence %q", s[:4])
	}
	if r >= 0xDC00 && r <= 0xDFFF {
		return 0, 0, d.fail(InvalidCharacter, "unexpected trail surrogate 0x%04x", r)
	}
	if r < 0xD800 || r > 0xDBFF {
		return r, 4, nil
	}

	// Lead surrogate, a trail surrogate must follow.
	if len(s) < 10 || s[4] != '\\' || s[5] != 'u' {
		return 0, 0, d.fail(InvalidCharacter, "lead surrogate 0x%04x not followed by a trail surrogate", r)
	}
	r2, ok := hex4(s[6:])
	if !ok || r2 < 0xDC00 || r2 > 0xDFFF {
		return 0, 0, d.fail(InvalidCharacter, "invalid trail surrogate %q", s[6:10])
	}
	return ((r-0xD800)<<10 | (r2 - 0xDC00)) + 0x10000, 10, nil
}

func hex4(s []byte) (rune, bool) {
	var r rune
	for _, b := range s[:4] {
		v := scanner.HexValue(b)
		if v < 0 {
			return 0, false
		}
		r = r<<4 | rune(v)
	}
	return r, true
}

// numberEnds is true if the number at the cursor ends inside the window.
func (d *Decoder) numberEnds() bool {
	i := d.pos
	for i < len(d.buf) && scanner.IsFloatChar(d.buf[i]) {
		i++
	}
	return i < len(d.buf)
}

// expectLiteral consumes lit (true, false or null) at the cursor.
func (d *Decoder) expectLiteral(lit []byte) error {
	rest := d.buf[d.pos:]
	n := min(len(rest), len(lit))
	if !bytes.Equal(rest[:n], lit[:n]) {
		return d.fail(InvalidCharacter, "expected %q but got %q", lit, rest[:n])
	}
	if n < len(lit) {
		return d.incomplete()
	}
	d.pos += len(lit)
	return nil
}

func (d *Decoder) decodeNumber(name []byte) error {
	// The whole number has to be in the window.
	for !d.numberEnds() {
		if !d.more() {
			break
		}
	}

	negative := false
	if d.buf[d.pos] == '-' {
		negative = true
		d.pos++
		if d.pos >= len(d.buf) {
			return d.incomplete()
		}
		if !scanner.IsDigit(d.buf[d.pos]) {
			return d.fail(InvalidCharacter, "not a digit: %q", d.buf[d.pos])
		}
	}

	// Try integer conversion.
	start := d.pos
	var accum uint64
	overflow := false
	for ; d.pos < len(d.buf) && scanner.IsDigit(d.buf[d.pos]); d.pos++ {
		digit := uint64(d.buf[d.pos] - '0')
		if accum > math.MaxUint64/10 || accum*10 > math.MaxUint64-digit {
			overflow = true
			break
		}
		accum = accum*10 + digit
	}
	atEnd := d.pos >= len(d.buf)
	if atEnd && !d.final {
		return d.incomplete()
	}

	if !overflow && (atEnd || !scanner.IsFloatChar(d.buf[d.pos])) {
		switch {
		case !negative && accum <= math.MaxInt64:
			return d.h.Int(name, int64(accum))
		case !negative:
			return d.h.Uint(name, accum)
		case accum <= 1<<63:
			return d.h.Int(name, -int64(accum))
		}
		// Too negative for an int64, use floating point.
	}

	for d.pos < len(d.buf) && scanner.IsFloatChar(d.buf[d.pos]) {
		d.pos++
	}
	if d.pos >= len(d.buf) && !d.final {
		return d.incomplete()
	}

	// Copy the text so that it can be parsed on its own.
	text := d.buf[start:d.pos]
	if len(text) >= len(d.stringBuf) {
		return d.fail(DataTooLong, "number of %d bytes does not fit in %d", len(text), len(d.stringBuf))
	}
	n := copy(d.stringBuf, text)
	value, err := strconv.ParseFloat(string(d.stringBuf[:n]), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return d.fail(InvalidCharacter, "invalid number %q", text)
	}
	if negative {
		value = -value
	}
	return d.h.Float(name, value)
}
