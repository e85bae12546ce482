package json_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/arnodel/jsoncodec/encoding/json"
	"github.com/arnodel/jsoncodec/token"
)

var named = token.Named

func TestDecoderSimpleValues(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected token.Token
	}{
		{"true", "true", &token.Bool{Value: true}},
		{"false", "false", &token.Bool{Value: false}},
		{"null", "null", &token.Null{}},
		{"zero", "0", &token.Int{Value: 0}},
		{"integer", "42", &token.Int{Value: 42}},
		{"negative integer", "-123", &token.Int{Value: -123}},
		{"leading zeros", "007", &token.Int{Value: 7}},
		{"max int64", "9223372036854775807", &token.Int{Value: math.MaxInt64}},
		{"min int64", "-9223372036854775808", &token.Int{Value: math.MinInt64}},
		{"above int64", "9999999999999999999", &token.Uint{Value: 9999999999999999999}},
		{"max uint64", "18446744073709551615", &token.Uint{Value: math.MaxUint64}},
		{"above uint64", "18446744073709551616", &token.Float{Value: 18446744073709551616}},
		{"below int64", "-9223372036854775809", &token.Float{Value: -9223372036854775809}},
		{"float", "3.14", &token.Float{Value: 3.14}},
		{"negative float", "-0.5", &token.Float{Value: -0.5}},
		{"exponent", "1e2", &token.Float{Value: 100}},
		{"negative exponent", "25E-1", &token.Float{Value: 2.5}},
		{"huge exponent", "1e999", &token.Float{Value: math.Inf(1)}},
		{"empty string", `""`, &token.String{Value: ""}},
		{"string", `"hello"`, &token.String{Value: "hello"}},
		{"white space", " \t\n\r\v\f7 ", &token.Int{Value: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokensEqual(t, decode(t, tt.input), []token.Token{tt.expected, &token.EndData{}})
		})
	}
}

func TestDecoderStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple escapes", `"a\"b\\c\/d"`, `a"b\c/d`},
		{"control escapes", `"\n\t\r\b\f"`, "\n\t\r\b\f"},
		{"unicode escape", `"\u0041\u00e9"`, "Aé"},
		{"upper case hex", `"\u00E9"`, "é"},
		{"BMP character", `"\u4e16\u754c"`, "世界"},
		{"surrogate pair", `"\ud83d\ude00"`, "\U0001F600"},
		{"highest code point", `"\udbff\udfff"`, "\U0010FFFF"},
		{"raw UTF-8", `"hello 世界"`, "hello 世界"},
		{"raw control byte", "\"a\x01b\"", "a\x01b"},
		{"escaped quote at end", `"abc\""`, `abc"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected := []token.Token{&token.String{Value: tt.expected}, &token.EndData{}}
			assertTokensEqual(t, decode(t, tt.input), expected)
		})
	}
}

func TestDecoderDocument(t *testing.T) {
	expected := []token.Token{
		&token.StartObject{},
		&token.Int{Name: named("a"), Value: 1},
		&token.StartArray{Name: named("b")},
		&token.Int{Value: 1},
		&token.Int{Value: 2},
		&token.Int{Value: 3},
		&token.EndContainer{},
		&token.EndContainer{},
		&token.EndData{},
	}
	assertTokensEqual(t, decode(t, `{"a":1,"b":[1,2,3]}`), expected)
}

func TestDecoderNestedDocument(t *testing.T) {
	input := `{
    "id": 123,
    "name": "Ann",
    "": null,
    "tags": ["x", true, 1.5],
    "address": {"city": "Paris", "zip": []}
}`
	expected := []token.Token{
		&token.StartObject{},
		&token.Int{Name: named("id"), Value: 123},
		&token.String{Name: named("name"), Value: "Ann"},
		&token.Null{Name: named("")},
		&token.StartArray{Name: named("tags")},
		&token.String{Value: "x"},
		&token.Bool{Value: true},
		&token.Float{Value: 1.5},
		&token.EndContainer{},
		&token.StartObject{Name: named("address")},
		&token.String{Name: named("city"), Value: "Paris"},
		&token.StartArray{Name: named("zip")},
		&token.EndContainer{},
		&token.EndContainer{},
		&token.EndContainer{},
		&token.EndData{},
	}
	assertTokensEqual(t, decode(t, input), expected)
}

func TestDecoderLenientSeparators(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing commas", `[1 2 3]`},
		{"trailing comma", `[1,2,3,]`},
		{"extra spaces", ` [ 1 , 2 ,3 ] `},
	}
	expected := []token.Token{
		&token.StartArray{},
		&token.Int{Value: 1},
		&token.Int{Value: 2},
		&token.Int{Value: 3},
		&token.EndContainer{},
		&token.EndData{},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokensEqual(t, decode(t, tt.input), expected)
		})
	}

	objExpected := []token.Token{
		&token.StartObject{},
		&token.Int{Name: named("a"), Value: 1},
		&token.Int{Name: named("b"), Value: 2},
		&token.EndContainer{},
		&token.EndData{},
	}
	assertTokensEqual(t, decode(t, `{"a":1 "b":2,}`), objExpected)
}

func TestDecoderErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		err    error
		offset int64
	}{
		{"empty input", "", json.ErrIncomplete, 0},
		{"only space", "   ", json.ErrIncomplete, 3},
		{"unfinished object", `{"a":`, json.ErrIncomplete, 5},
		{"unfinished array", `[1,2`, json.ErrIncomplete, 4},
		{"unfinished name", `{"ab`, json.ErrIncomplete, 1},
		{"unfinished string", `"abc`, json.ErrIncomplete, 0},
		{"unfinished escape", `"abc\`, json.ErrIncomplete, 0},
		{"truncated true", `tru`, json.ErrIncomplete, 0},
		{"truncated null in array", `[nul`, json.ErrIncomplete, 1},
		{"lone minus", `-`, json.ErrIncomplete, 1},
		{"bad literal", `trux`, json.ErrInvalidCharacter, 0},
		{"bad false", `fals3`, json.ErrInvalidCharacter, 0},
		{"bad character", `@`, json.ErrInvalidCharacter, 0},
		{"bad character in array", `[1, @]`, json.ErrInvalidCharacter, 4},
		{"missing colon", `{"a" 1}`, json.ErrInvalidCharacter, 5},
		{"unquoted name", `{1:2}`, json.ErrInvalidCharacter, 1},
		{"minus without digit", `-a`, json.ErrInvalidCharacter, 1},
		{"bad exponent", `1.5e`, json.ErrInvalidCharacter, 4},
		{"bad escape", `"\x"`, json.ErrInvalidCharacter, 0},
		{"short unicode escape", `"\u12"`, json.ErrInvalidCharacter, 0},
		{"bad hex", `"\u12g4"`, json.ErrInvalidCharacter, 0},
		{"lone lead surrogate", `"\ud83d"`, json.ErrInvalidCharacter, 0},
		{"lead surrogate then text", `"\ud83dabcdef"`, json.ErrInvalidCharacter, 0},
		{"bad trail surrogate", `"\ud83d\u0041"`, json.ErrInvalidCharacter, 0},
		{"lone trail surrogate", `"\ude00"`, json.ErrInvalidCharacter, 0},
		{"error after string", `["abc", x]`, json.ErrInvalidCharacter, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := token.NewRecorder()
			offset, err := json.Decode([]byte(tt.input), make([]byte, 256), rec)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			var jerr *json.Error
			if !errors.As(err, &jerr) {
				t.Fatalf("expected a *json.Error, got %T", err)
			}
			if jerr.Offset != tt.offset || offset != tt.offset {
				t.Errorf("expected offset %d, got %d (returned %d)", tt.offset, jerr.Offset, offset)
			}
		})
	}
}

func TestDecoderScratchTooSmall(t *testing.T) {
	// A quarter of the scratch space is for names: 4 bytes for names and 12
	// for strings and numbers.
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"string fits", `"abcdefghijkl"`, nil},
		{"string too long", `"abcdefghijklm"`, json.ErrDataTooLong},
		{"name fits", `{"abcd":1}`, nil},
		{"name too long", `{"abcde":1}`, json.ErrDataTooLong},
		{"number fits", `1.000000000`, nil},
		{"number too long", `1.00000000000`, json.ErrDataTooLong},
		{"long integer needs no space", `123456789012345678`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := json.Decode([]byte(tt.input), make([]byte, 16), token.NewRecorder())
			if tt.err == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestDecoderMaxDepth(t *testing.T) {
	nameBuf, stringBuf := json.SplitScratch(make([]byte, 64))
	d := json.NewDecoder(nameBuf, stringBuf, json.WithDecoderMaxDepth(2))
	d.Reset([]byte("[[1]]"), true)
	if err := d.Decode(token.NewRecorder()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.Reset([]byte(`[{"a":[1]}]`), true)
	err := d.Decode(token.NewRecorder())
	if !errors.Is(err, json.ErrMaxDepth) {
		t.Fatalf("expected ErrMaxDepth, got %v", err)
	}
	if d.Offset() != 6 {
		t.Errorf("expected offset 6, got %d", d.Offset())
	}
}

func TestDecoderDefaultMaxDepth(t *testing.T) {
	n := json.DefaultMaxDecodeDepth
	ok := strings.Repeat("[", n) + strings.Repeat("]", n)
	if _, err := json.Decode([]byte(ok), make([]byte, 64), token.NewRecorder()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tooDeep := "[" + ok + "]"
	if _, err := json.Decode([]byte(tooDeep), make([]byte, 64), token.NewRecorder()); !errors.Is(err, json.ErrMaxDepth) {
		t.Fatalf("expected ErrMaxDepth, got %v", err)
	}
}

func TestDecoderOffset(t *testing.T) {
	// Trailing white space is not consumed.
	offset, err := json.Decode([]byte(" 12 "), make([]byte, 64), token.NewRecorder())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offset != 3 {
		t.Errorf("expected offset 3, got %d", offset)
	}
}

func TestDecoderNotFinal(t *testing.T) {
	nameBuf, stringBuf := json.SplitScratch(make([]byte, 64))
	d := json.NewDecoder(nameBuf, stringBuf)

	d.Reset([]byte("123"), false)
	if d.Final() {
		t.Fatalf("window should not be final")
	}
	if err := d.Decode(token.NewRecorder()); !errors.Is(err, json.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}

	d.Reset([]byte("123"), true)
	rec := token.NewRecorder()
	if err := d.Decode(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertTokensEqual(t, rec.Tokens(), []token.Token{&token.Int{Value: 123}, &token.EndData{}})

	// A number followed by a delimiter is complete even if more may come.
	d.Reset([]byte("[123,"), false)
	rec = token.NewRecorder()
	if err := d.Decode(rec); !errors.Is(err, json.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	assertTokensEqual(t, rec.Tokens(), []token.Token{&token.StartArray{}, &token.Int{Value: 123}})
}

// chunkedInput hands out the chunks of an input to a decoder each time it
// runs out of bytes, or earlier when the decoder insists.
type chunkedInput struct {
	d      *json.Decoder
	window []byte
	chunks []string
	base   int64
	calls  int
}

func (c *chunkedInput) refill(force bool) {
	c.calls++
	pos := c.d.Pos()
	if len(c.chunks) == 0 || (!force && pos < len(c.window)) {
		return
	}
	c.base += int64(pos)
	c.window = append(append([]byte(nil), c.window[pos:]...), c.chunks[0]...)
	c.chunks = c.chunks[1:]
	c.d.SetWindow(c.window, 0, c.base, len(c.chunks) == 0)
}

func newChunkedDecoder(chunks ...string) (*json.Decoder, *chunkedInput) {
	in := &chunkedInput{window: []byte(chunks[0]), chunks: chunks[1:]}
	nameBuf, stringBuf := json.SplitScratch(make([]byte, 64))
	in.d = json.NewDecoder(nameBuf, stringBuf, json.WithRefill(in.refill))
	in.d.Reset(in.window, len(in.chunks) == 0)
	return in.d, in
}

func TestDecoderRefill(t *testing.T) {
	d, in := newChunkedDecoder("[1,   ", "    ", "   2]")
	rec := token.NewRecorder()
	if err := d.Decode(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []token.Token{
		&token.StartArray{},
		&token.Int{Value: 1},
		&token.Int{Value: 2},
		&token.EndContainer{},
		&token.EndData{},
	}
	assertTokensEqual(t, rec.Tokens(), expected)
	if d.Offset() != 15 {
		t.Errorf("expected offset 15, got %d", d.Offset())
	}
	if in.calls == 0 {
		t.Errorf("refill was never called")
	}
}

func TestDecoderRefillSplitTokens(t *testing.T) {
	d, _ := newChunkedDecoder(`{"n`, `ame": "ab`, `cd", "x": 12`, `34, "y": 1.`, `5e1}`)
	rec := token.NewRecorder()
	if err := d.Decode(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []token.Token{
		&token.StartObject{},
		&token.String{Name: named("name"), Value: "abcd"},
		&token.Int{Name: named("x"), Value: 1234},
		&token.Float{Name: named("y"), Value: 15},
		&token.EndContainer{},
		&token.EndData{},
	}
	assertTokensEqual(t, rec.Tokens(), expected)
	if !d.Final() {
		t.Errorf("expected the last window to be final")
	}
}

func TestDecoderRefillStringTooLong(t *testing.T) {
	// 48 bytes of string scratch, the string is still open after 50.
	d, _ := newChunkedDecoder(`["`+strings.Repeat("x", 30), strings.Repeat("x", 30), `"]`)
	if err := d.Decode(token.NewRecorder()); !errors.Is(err, json.ErrDataTooLong) {
		t.Fatalf("expected ErrDataTooLong, got %v", err)
	}
}

func TestDecoderRefillErrorOffset(t *testing.T) {
	d, _ := newChunkedDecoder("[1,   ", "    ", "   @]")
	err := d.Decode(token.NewRecorder())
	var jerr *json.Error
	if !errors.As(err, &jerr) || jerr.Code != json.InvalidCharacter {
		t.Fatalf("expected an invalid character error, got %v", err)
	}
	if jerr.Offset != 13 {
		t.Errorf("expected offset 13, got %d", jerr.Offset)
	}
}

func TestDecoderRefillRunsOut(t *testing.T) {
	d, _ := newChunkedDecoder("[1,   ", "    ")
	// The last chunk is final, so the array is incomplete.
	if err := d.Decode(token.NewRecorder()); !errors.Is(err, json.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}

type failingHandler struct {
	*token.Recorder
	err error
}

func (h failingHandler) Int(name []byte, value int64) error {
	if value == 2 {
		return h.err
	}
	return h.Recorder.Int(name, value)
}

func TestDecoderHandlerError(t *testing.T) {
	errStop := errors.New("stop")
	h := failingHandler{Recorder: token.NewRecorder(), err: errStop}
	_, err := json.Decode([]byte("[1, 2, 3]"), make([]byte, 64), h)
	if err != errStop {
		t.Fatalf("expected errStop, got %v", err)
	}
	assertTokensEqual(t, h.Tokens(), []token.Token{&token.StartArray{}, &token.Int{Value: 1}})
}

func TestDecodeValueWithName(t *testing.T) {
	nameBuf, stringBuf := json.SplitScratch(make([]byte, 64))
	d := json.NewDecoder(nameBuf, stringBuf)
	d.Reset([]byte(`[true]`), true)
	rec := token.NewRecorder()
	if err := d.DecodeValue([]byte("inner"), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []token.Token{
		&token.StartArray{Name: named("inner")},
		&token.Bool{Value: true},
		&token.EndContainer{},
	}
	assertTokensEqual(t, rec.Tokens(), expected)
}

// stringValues records whether string values were nil.
type stringValues struct {
	*token.Recorder
	nils int
}

func (h *stringValues) String(name, value []byte) error {
	if value == nil {
		h.nils++
	}
	return h.Recorder.String(name, value)
}

func TestDecoderWithoutScratch(t *testing.T) {
	h := &stringValues{Recorder: token.NewRecorder()}
	if _, err := json.Decode([]byte(`["", {"": ""}]`), nil, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.nils != 0 {
		t.Errorf("got %d nil string values", h.nils)
	}
	if _, err := json.Decode([]byte(`"a"`), nil, h); !errors.Is(err, json.ErrDataTooLong) {
		t.Errorf("expected ErrDataTooLong, got %v", err)
	}
}

func TestSplitScratch(t *testing.T) {
	nameBuf, stringBuf := json.SplitScratch(make([]byte, 100))
	if len(nameBuf) != 25 || len(stringBuf) != 75 {
		t.Errorf("unexpected split: %d / %d", len(nameBuf), len(stringBuf))
	}
	if cap(nameBuf) != 25 {
		t.Errorf("name buffer can grow into the string buffer")
	}
}

func decode(t *testing.T, input string) []token.Token {
	t.Helper()
	rec := token.NewRecorder()
	if _, err := json.Decode([]byte(input), make([]byte, 1024), rec); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return rec.Tokens()
}

func assertTokensEqual(t *testing.T, got, want []token.Token) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("token count mismatch: got %d, want %d", len(got), len(want))
		t.Logf("got:  %v", got)
		t.Logf("want: %v", want)
		return
	}
	for i := range got {
		if !token.Equal(got[i], want[i]) {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
