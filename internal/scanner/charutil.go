package scanner

func IsDigit[T byte | rune](b T) bool {
	return b >= '0' && b <= '9'
}

func IsCtrl[T byte | rune](b T) bool {
	return b < 32
}

// IsSpace reports whether b is white space in the C locale sense, which is
// slightly wider than the JSON definition (it includes '\v' and '\f').
func IsSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// IsFloatChar reports whether b can be part of the text of a JSON number.
func IsFloatChar(b byte) bool {
	switch b {
	case '.', 'e', 'E', '+', '-':
		return true
	}
	return IsDigit(b)
}

// HexValue returns the value of the hex digit b, or -1 if b is not one.
func HexValue(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	}
	return -1
}

// UpperHex is used to encode bytes as hexadecimal text.
const UpperHex = "0123456789ABCDEF"
