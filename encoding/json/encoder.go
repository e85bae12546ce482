package json

import (
	"io"

	"go.uber.org/zap"
)

type containerKind uint8

const (
	arrayKind containerKind = iota
	objectKind
)

// An Encoder writes a JSON document to a sink, one element at a time.
//
// Elements are added with the Add* and Begin* methods.  Inside an object every
// element needs a name; elsewhere (inside arrays or at the top level) names
// are ignored and may be nil.  Each method returns an error as soon as the
// sink fails or the request is invalid.  The encoder state has been updated
// by then, so after an error the only sensible thing left is to call Finish
// to close what can be closed.
//
// An Encoder must not be used from several goroutines at the same time.
type Encoder struct {
	w          io.Writer
	stack      []containerKind
	maxDepth   int
	firstEntry bool
	pretty     bool
	colorizer  *Colorizer

	work [workBufferSize]byte
	num  [64]byte
}

// An EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithPrettyPrint turns on newlines and indentation (four spaces per level).
func WithPrettyPrint(on bool) EncoderOption {
	return func(e *Encoder) {
		e.pretty = on
	}
}

// WithEncoderMaxDepth sets how deeply containers can be nested.  The default
// is DefaultMaxEncodeDepth.
func WithEncoderMaxDepth(n int) EncoderOption {
	return func(e *Encoder) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithColorizer makes the encoder surround names and scalars with the
// colorizer's escape codes.  A nil colorizer means no colors.
func WithColorizer(c *Colorizer) EncoderOption {
	return func(e *Encoder) {
		e.colorizer = c
	}
}

const DefaultMaxEncodeDepth = 100

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer, opts ...EncoderOption) *Encoder {
	e := &Encoder{
		w:          w,
		maxDepth:   DefaultMaxEncodeDepth,
		firstEntry: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Depth is the number of currently open containers.
func (e *Encoder) Depth() int {
	return len(e.stack)
}

// InObject is true if the innermost open container is an object.
func (e *Encoder) InObject() bool {
	return len(e.stack) > 0 && e.stack[len(e.stack)-1] == objectKind
}

// beginElement writes what comes before any element: a separating comma,
// indentation and the element name when inside an object.
func (e *Encoder) beginElement(name []byte) error {
	if e.firstEntry {
		e.firstEntry = false
	} else if err := e.write(commaBytes); err != nil {
		return err
	}

	depth := len(e.stack)
	if e.pretty && depth > 0 {
		if err := e.newLine(depth); err != nil {
			return err
		}
	}

	if e.InObject() {
		if name == nil {
			Logger().Debug("name was nil inside an object")
			return newError(InvalidData, -1, "name was nil inside an object")
		}
		if err := e.colorizer.startKey(e); err != nil {
			return err
		}
		if err := e.writeQuoted(name); err != nil {
			return err
		}
		if err := e.colorizer.reset(e); err != nil {
			return err
		}
		sep := nameSeparatorBytes
		if e.pretty {
			sep = prettyNameSeparatorBytes
		}
		if err := e.write(sep); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) newLine(depth int) error {
	if err := e.write(newLineBytes); err != nil {
		return err
	}
	for i := 0; i < depth; i++ {
		if err := e.write(indentBytes); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) addScalar(name []byte, tp ScalarType, text []byte) error {
	if err := e.beginElement(name); err != nil {
		return err
	}
	if err := e.colorizer.startScalar(e, tp); err != nil {
		return err
	}
	if err := e.write(text); err != nil {
		return err
	}
	return e.colorizer.reset(e)
}

// AddBool adds a true or false element.
func (e *Encoder) AddBool(name []byte, value bool) error {
	if value {
		return e.addScalar(name, Boolean, trueBytes)
	}
	return e.addScalar(name, Boolean, falseBytes)
}

// AddInt adds an integer element.
func (e *Encoder) AddInt(name []byte, value int64) error {
	n, err := FormatInt(e.num[:], value)
	if err != nil {
		return err
	}
	return e.addScalar(name, Number, e.num[:n])
}

// AddUint adds an unsigned integer element.
func (e *Encoder) AddUint(name []byte, value uint64) error {
	n, err := FormatUint(e.num[:], value)
	if err != nil {
		return err
	}
	return e.addScalar(name, Number, e.num[:n])
}

// AddFloat adds a floating point element, formatted with FormatFloat.
func (e *Encoder) AddFloat(name []byte, value float64) error {
	n, err := FormatFloat(e.num[:], value)
	if err != nil {
		return err
	}
	return e.addScalar(name, Number, e.num[:n])
}

// AddNull adds a null element.
func (e *Encoder) AddNull(name []byte) error {
	return e.addScalar(name, Null, nullBytes)
}

// AddString adds a string element.  A nil value adds null instead.
func (e *Encoder) AddString(name, value []byte) error {
	if value == nil {
		return e.AddNull(name)
	}
	if err := e.beginElement(name); err != nil {
		return err
	}
	if err := e.colorizer.startScalar(e, String); err != nil {
		return err
	}
	if err := e.writeQuoted(value); err != nil {
		return err
	}
	return e.colorizer.reset(e)
}

// BeginString starts a string element whose contents are then sent in pieces
// with AppendString.  EndString must be called to close it.
func (e *Encoder) BeginString(name []byte) error {
	if err := e.beginElement(name); err != nil {
		return err
	}
	if err := e.colorizer.startScalar(e, String); err != nil {
		return err
	}
	return e.write(quoteBytes)
}

// AppendString adds a piece to the string started with BeginString.
func (e *Encoder) AppendString(value []byte) error {
	return e.writeEscaped(value)
}

// EndString closes the string started with BeginString.
func (e *Encoder) EndString() error {
	if err := e.write(quoteBytes); err != nil {
		return err
	}
	return e.colorizer.reset(e)
}

// AddData adds a string element containing data encoded as upper case
// hexadecimal.
func (e *Encoder) AddData(name, data []byte) error {
	if err := e.BeginData(name); err != nil {
		return err
	}
	if err := e.AppendData(data); err != nil {
		return err
	}
	return e.EndData()
}

// BeginData starts a hexadecimal string element, see AddData.
func (e *Encoder) BeginData(name []byte) error {
	return e.BeginString(name)
}

// AppendData adds more bytes to the element started with BeginData.
func (e *Encoder) AppendData(data []byte) error {
	return e.writeHex(data)
}

// EndData closes the element started with BeginData.
func (e *Encoder) EndData() error {
	return e.EndString()
}

// AddRaw adds an element whose text is already encoded JSON.  The text is
// written verbatim.
func (e *Encoder) AddRaw(name, text []byte) error {
	if err := e.beginElement(name); err != nil {
		return err
	}
	return e.write(text)
}

// WriteRaw sends p to the sink as is, without any separator or name.  It's up
// to the caller to keep the output valid.
func (e *Encoder) WriteRaw(p []byte) error {
	return e.write(p)
}

// BeginObject opens an object element.
func (e *Encoder) BeginObject(name []byte) error {
	return e.beginContainer(name, objectKind)
}

// BeginArray opens an array element.
func (e *Encoder) BeginArray(name []byte) error {
	return e.beginContainer(name, arrayKind)
}

func (e *Encoder) beginContainer(name []byte, kind containerKind) error {
	if len(e.stack) >= e.maxDepth {
		Logger().Debug("max depth exceeded", zap.Int("maxDepth", e.maxDepth))
		return newError(MaxDepthExceeded, -1, "cannot nest more than %d containers", e.maxDepth)
	}
	if err := e.beginElement(name); err != nil {
		return err
	}
	e.stack = append(e.stack, kind)
	e.firstEntry = true
	if kind == objectKind {
		return e.write(openObjectBytes)
	}
	return e.write(openArrayBytes)
}

// EndContainer closes the innermost open container.  When no container is
// open, it does nothing and returns nil.
func (e *Encoder) EndContainer() error {
	depth := len(e.stack)
	if depth == 0 {
		return nil
	}
	kind := e.stack[depth-1]
	e.stack = e.stack[:depth-1]

	if e.pretty && !e.firstEntry {
		if err := e.newLine(depth - 1); err != nil {
			return err
		}
	}
	e.firstEntry = false
	if kind == objectKind {
		return e.write(closeObjectBytes)
	}
	return e.write(closeArrayBytes)
}

// Finish closes all open containers, innermost first.  Calling it when no
// container is open does nothing.
func (e *Encoder) Finish() error {
	for len(e.stack) > 0 {
		if err := e.EndContainer(); err != nil {
			return err
		}
	}
	return nil
}

var (
	openObjectBytes          = []byte("{")
	closeObjectBytes         = []byte("}")
	openArrayBytes           = []byte("[")
	closeArrayBytes          = []byte("]")
	commaBytes               = []byte(",")
	quoteBytes               = []byte(`"`)
	nameSeparatorBytes       = []byte(":")
	prettyNameSeparatorBytes = []byte(": ")
	newLineBytes             = []byte("\n")
	indentBytes              = []byte("    ")
	trueBytes                = []byte("true")
	falseBytes               = []byte("false")
	nullBytes                = []byte("null")
)
