package token

import (
	"go.uber.org/zap"

	"github.com/arnodel/jsoncodec/encoding/json"
)

// Tracer is a json.Handler that logs every event and then passes it on to
// Next.  Next may be nil, in which case events are only logged.  It's useful
// for debugging.
type Tracer struct {
	Next json.Handler
	Log  *zap.SugaredLogger
}

var _ json.Handler = &Tracer{}

// NewTracer returns a tracer logging to log at debug level.  A nil log
// discards everything.
func NewTracer(next json.Handler, log *zap.SugaredLogger) *Tracer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Tracer{Next: next, Log: log}
}

func (t *Tracer) trace(tok Token) {
	t.Log.Debugf("%s", tok)
}

func (t *Tracer) BeginObject(name []byte) error {
	t.trace(&StartObject{Name: NameOf(name)})
	if t.Next == nil {
		return nil
	}
	return t.Next.BeginObject(name)
}

func (t *Tracer) BeginArray(name []byte) error {
	t.trace(&StartArray{Name: NameOf(name)})
	if t.Next == nil {
		return nil
	}
	return t.Next.BeginArray(name)
}

func (t *Tracer) EndContainer() error {
	t.trace(&EndContainer{})
	if t.Next == nil {
		return nil
	}
	return t.Next.EndContainer()
}

func (t *Tracer) Bool(name []byte, value bool) error {
	t.trace(&Bool{Name: NameOf(name), Value: value})
	if t.Next == nil {
		return nil
	}
	return t.Next.Bool(name, value)
}

func (t *Tracer) Int(name []byte, value int64) error {
	t.trace(&Int{Name: NameOf(name), Value: value})
	if t.Next == nil {
		return nil
	}
	return t.Next.Int(name, value)
}

func (t *Tracer) Uint(name []byte, value uint64) error {
	t.trace(&Uint{Name: NameOf(name), Value: value})
	if t.Next == nil {
		return nil
	}
	return t.Next.Uint(name, value)
}

func (t *Tracer) Float(name []byte, value float64) error {
	t.trace(&Float{Name: NameOf(name), Value: value})
	if t.Next == nil {
		return nil
	}
	return t.Next.Float(name, value)
}

func (t *Tracer) String(name, value []byte) error {
	t.trace(&String{Name: NameOf(name), Value: string(value)})
	if t.Next == nil {
		return nil
	}
	return t.Next.String(name, value)
}

func (t *Tracer) Null(name []byte) error {
	t.trace(&Null{Name: NameOf(name)})
	if t.Next == nil {
		return nil
	}
	return t.Next.Null(name)
}

func (t *Tracer) EndData() error {
	t.trace(&EndData{})
	if t.Next == nil {
		return nil
	}
	return t.Next.EndData()
}
