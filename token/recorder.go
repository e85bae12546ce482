package token

import (
	"fmt"

	"github.com/arnodel/jsoncodec/encoding/json"
)

// A Recorder is a json.Handler that accumulates the tokens it receives.
type Recorder struct {
	toks []Token
}

var _ json.Handler = &Recorder{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Tokens returns the tokens recorded so far.
func (r *Recorder) Tokens() []Token {
	return r.toks
}

func (r *Recorder) put(tok Token) error {
	r.toks = append(r.toks, tok)
	return nil
}

func (r *Recorder) BeginObject(name []byte) error {
	return r.put(&StartObject{Name: NameOf(name)})
}

func (r *Recorder) BeginArray(name []byte) error {
	return r.put(&StartArray{Name: NameOf(name)})
}

func (r *Recorder) EndContainer() error {
	return r.put(&EndContainer{})
}

func (r *Recorder) Bool(name []byte, value bool) error {
	return r.put(&Bool{Name: NameOf(name), Value: value})
}

func (r *Recorder) Int(name []byte, value int64) error {
	return r.put(&Int{Name: NameOf(name), Value: value})
}

func (r *Recorder) Uint(name []byte, value uint64) error {
	return r.put(&Uint{Name: NameOf(name), Value: value})
}

func (r *Recorder) Float(name []byte, value float64) error {
	return r.put(&Float{Name: NameOf(name), Value: value})
}

func (r *Recorder) String(name, value []byte) error {
	return r.put(&String{Name: NameOf(name), Value: string(value)})
}

func (r *Recorder) Null(name []byte) error {
	return r.put(&Null{Name: NameOf(name)})
}

func (r *Recorder) EndData() error {
	return r.put(&EndData{})
}

// Replay sends the tokens to h, stopping at the first error.
func Replay(toks []Token, h json.Handler) error {
	for _, tok := range toks {
		if err := replayToken(tok, h); err != nil {
			return err
		}
	}
	return nil
}

func replayToken(tok Token, h json.Handler) error {
	switch t := tok.(type) {
	case *StartObject:
		return h.BeginObject(t.Name.Bytes())
	case *StartArray:
		return h.BeginArray(t.Name.Bytes())
	case *EndContainer:
		return h.EndContainer()
	case *EndData:
		return h.EndData()
	case *Bool:
		return h.Bool(t.Name.Bytes(), t.Value)
	case *Int:
		return h.Int(t.Name.Bytes(), t.Value)
	case *Uint:
		return h.Uint(t.Name.Bytes(), t.Value)
	case *Float:
		return h.Float(t.Name.Bytes(), t.Value)
	case *String:
		return h.String(t.Name.Bytes(), []byte(t.Value))
	case *Null:
		return h.Null(t.Name.Bytes())
	default:
		return fmt.Errorf("invalid token: %#v", tok)
	}
}

// Encode replays the tokens into an encoder, which gives back the JSON text
// of a recorded value.  EndData tokens are ignored.
func Encode(toks []Token, enc *json.Encoder) error {
	return Replay(toks, encoderHandler{enc})
}

type encoderHandler struct {
	*json.Encoder
}

func (h encoderHandler) Bool(name []byte, value bool) error { return h.AddBool(name, value) }
func (h encoderHandler) Int(name []byte, value int64) error { return h.AddInt(name, value) }
func (h encoderHandler) Uint(name []byte, value uint64) error { return h.AddUint(name, value) }
func (h encoderHandler) Float(name []byte, value float64) error { return h.AddFloat(name, value) }
func (h encoderHandler) String(name, value []byte) error { return h.AddString(name, value) }
func (h encoderHandler) Null(name []byte) error { return h.AddNull(name) }
func (h encoderHandler) EndData() error { return nil }
