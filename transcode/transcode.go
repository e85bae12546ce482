// Package transcode decodes a JSON document and re-encodes it inside a
// document that is being built with a json.Encoder.  This is how an existing
// JSON file is spliced into a larger report without holding either of them
// in memory.
//
// The last container of the source document can be left open
// (closeLast=false), so that the caller can add more elements to it
// afterwards.  For example, transcoding
//
//	{"a": 1}
//
// with closeLast=false into an encoder that is inside an object, under the
// name "doc", and then adding "b": 2 and finishing produces
//
//	{"doc":{"a":1,"b":2}}
package transcode

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/arnodel/jsoncodec/encoding/json"
	"github.com/arnodel/jsoncodec/internal/scanner"
	"github.com/arnodel/jsoncodec/token"
)

// AddJSON decodes the JSON value in data and adds it to enc as an element
// called name.  If closeLast is false, the outermost container of data is
// left open in enc.
//
// Whatever happens, containers opened in enc by the call are closed again
// (except the outermost one when closeLast is false), so that enc is left at
// a predictable depth.
func AddJSON(enc *json.Encoder, name, data []byte, closeLast bool, opts ...Option) error {
	cfg := newConfig(DefaultMemoryNameSize, DefaultMemoryStringSize, opts)
	dec := cfg.newDecoder()
	dec.Reset(data, true)
	return run(enc, dec, name, closeLast, cfg)
}

// AddJSONFromReader is like AddJSON but reads the JSON value from r through a
// fixed size window (see WithBufferSize).  Strings and numbers must fit in
// the window.  A read error is logged and
// treated as the end of the input; it generally results in an Incomplete
// error.
func AddJSONFromReader(enc *json.Encoder, name []byte, r io.Reader, closeLast bool, opts ...Option) error {
	return addFromReader(enc, name, r, "reader", closeLast, opts)
}

// AddJSONFromFile opens the file at path and transcodes its contents with
// AddJSONFromReader.
func AddJSONFromFile(enc *json.Encoder, name []byte, path string, closeLast bool, opts ...Option) error {
	f, err := os.Open(path)
	if err != nil {
		Logger().Error("cannot open JSON file", zap.String("path", path), zap.Error(err))
		return err
	}
	defer f.Close()
	if err := addFromReader(enc, name, f, path, closeLast, opts); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func addFromReader(enc *json.Encoder, name []byte, r io.Reader, source string, closeLast bool, opts []Option) error {
	cfg := newConfig(DefaultReaderNameSize, DefaultReaderStringSize, opts)
	w := scanner.NewWindow(r, cfg.bufferSize)

	var dec *json.Decoder
	load := func(pos int, force bool) {
		advance := w.Advance
		if force {
			advance = w.Slide
		}
		pos, err := advance(pos)
		if err != nil {
			Logger().Error("error reading JSON source",
				zap.String("source", source),
				zap.Int64("offset", w.Base()+int64(len(w.Bytes()))),
				zap.Error(err))
		}
		dec.SetWindow(w.Bytes(), pos, w.Base(), w.EOF())
	}
	dec = cfg.newDecoder(json.WithRefill(func(force bool) { load(dec.Pos(), force) }))
	load(0, false)
	return run(enc, dec, name, closeLast, cfg)
}

func (c *config) newDecoder(opts ...json.DecoderOption) *json.Decoder {
	if c.maxDepth > 0 {
		opts = append(opts, json.WithDecoderMaxDepth(c.maxDepth))
	}
	return json.NewDecoder(make([]byte, c.nameSize), make([]byte, c.stringSize), opts...)
}

func run(enc *json.Encoder, dec *json.Decoder, name []byte, closeLast bool, cfg *config) error {
	b := &bridge{
		enc:        enc,
		entryDepth: enc.Depth(),
		closeLast:  closeLast,
	}
	var h json.Handler = b
	if cfg.tracer != nil {
		h = token.NewTracer(b, cfg.tracer)
	}
	err := dec.DecodeValue(name, h)
	if closeErr := b.closeContainers(); err == nil {
		err = closeErr
	}
	return err
}

// bridge is the json.Handler that sends decoded events to the encoder.
type bridge struct {
	enc        *json.Encoder
	entryDepth int
	closeLast  bool
}

var _ json.Handler = &bridge{}

func (b *bridge) BeginObject(name []byte) error {
	return b.enc.BeginObject(name)
}

func (b *bridge) BeginArray(name []byte) error {
	return b.enc.BeginArray(name)
}

// EndContainer is not forwarded for the outermost container of the source
// when closeLast is false.
func (b *bridge) EndContainer() error {
	if b.closeLast || b.enc.Depth() > b.entryDepth+1 {
		return b.enc.EndContainer()
	}
	return nil
}

func (b *bridge) Bool(name []byte, value bool) error {
	return b.enc.AddBool(name, value)
}

func (b *bridge) Int(name []byte, value int64) error {
	return b.enc.AddInt(name, value)
}

func (b *bridge) Uint(name []byte, value uint64) error {
	return b.enc.AddUint(name, value)
}

func (b *bridge) Float(name []byte, value float64) error {
	return b.enc.AddFloat(name, value)
}

func (b *bridge) String(name, value []byte) error {
	return b.enc.AddString(name, value)
}

func (b *bridge) Null(name []byte) error {
	return b.enc.AddNull(name)
}

func (b *bridge) EndData() error {
	return nil
}

// closeContainers brings the encoder back to the depth it was at, plus the
// container that was kept open if closeLast is false.
func (b *bridge) closeContainers() error {
	target := b.entryDepth
	if !b.closeLast {
		target++
	}
	for b.enc.Depth() > target {
		if err := b.enc.EndContainer(); err != nil {
			return err
		}
	}
	return nil
}
