package json

import (
	"go.uber.org/zap"

	"github.com/arnodel/jsoncodec/internal/scanner"
)

// Size of the buffer that escaped text is assembled in before being sent to
// the sink.  Input is consumed in slices of half that size since escaping at
// most doubles the length.
const workBufferSize = 512

// writeEscaped sends s to the sink in JSON-escaped form, without quotes.
func (e *Encoder) writeEscaped(s []byte) error {
	for len(s) > 0 {
		n := len(s)
		if n > workBufferSize/2 {
			n = workBufferSize / 2
		}
		if err := e.writeEscapedChunk(s[:n]); err != nil {
			return err
		}
		s = s[n:]
	}
	return nil
}

func (e *Encoder) writeEscapedChunk(s []byte) error {
	dst := e.work[:0]

	// Simple case (no escape or special characters)
	i := 0
	for i < len(s) && s[i] != '\\' && s[i] != '"' && !scanner.IsCtrl(s[i]) {
		i++
	}
	dst = append(dst, s[:i]...)

	for ; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '"':
			dst = append(dst, '\\', c)
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if scanner.IsCtrl(c) {
				Logger().Debug("invalid character in string", zap.Uint8("char", c), zap.ByteString("string", s))
				return newError(InvalidCharacter, -1, "invalid character 0x%02x in string", c)
			}
			dst = append(dst, c)
		}
	}
	return e.write(dst)
}

// writeQuoted sends s quoted and escaped.  The closing quote is written even
// if s could not be escaped, so the output never contains an unterminated
// string.  The escaping error is still returned.
func (e *Encoder) writeQuoted(s []byte) error {
	if err := e.write(quoteBytes); err != nil {
		return err
	}
	err := e.writeEscaped(s)
	closeErr := e.write(quoteBytes)
	if err != nil {
		return err
	}
	return closeErr
}

// writeHex sends data as upper case hexadecimal text.
func (e *Encoder) writeHex(data []byte) error {
	for len(data) > 0 {
		n := len(data)
		if n > workBufferSize/2 {
			n = workBufferSize / 2
		}
		dst := e.work[:0]
		for _, b := range data[:n] {
			dst = append(dst, scanner.UpperHex[b>>4], scanner.UpperHex[b&0xF])
		}
		if err := e.write(dst); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
