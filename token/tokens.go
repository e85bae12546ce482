package token

import (
	"fmt"
	"strconv"
)

// A Token is one element reported by the decoder.  For example, decoding
//
//	{"id": 123, "tags": ["important", "new"]}
//
// produces the tokens (using their String() form)
//
//	StartObject(null)
//	Int("id", 123)
//	StartArray("tags")
//	String(null, "important")
//	String(null, "new")
//	EndContainer
//	EndContainer
//	EndData
//
// Tokens own their data, unlike the slices passed to a json.Handler.
type Token interface {
	fmt.Stringer
}

// Name is the name of an element.  It is only valid for elements of an
// object.
type Name struct {
	Value string
	Valid bool
}

// NameOf converts a name as received by a json.Handler.
func NameOf(b []byte) Name {
	if b == nil {
		return Name{}
	}
	return Name{Value: string(b), Valid: true}
}

// Named returns a valid name.
func Named(s string) Name {
	return Name{Value: s, Valid: true}
}

// Bytes converts the name back into the form expected by json.Encoder, i.e.
// nil when the name is not valid.
func (n Name) Bytes() []byte {
	if !n.Valid {
		return nil
	}
	return []byte(n.Value)
}

func (n Name) String() string {
	if !n.Valid {
		return "null"
	}
	return strconv.Quote(n.Value)
}

type StartObject struct {
	Name Name
}

func (s *StartObject) String() string {
	return fmt.Sprintf("StartObject(%s)", s.Name)
}

var _ Token = &StartObject{}

type StartArray struct {
	Name Name
}

func (s *StartArray) String() string {
	return fmt.Sprintf("StartArray(%s)", s.Name)
}

var _ Token = &StartArray{}

// EndContainer closes the last StartObject or StartArray.
type EndContainer struct{}

func (e *EndContainer) String() string {
	return "EndContainer"
}

var _ Token = &EndContainer{}

// EndData comes after the last element of the decoded value.
type EndData struct{}

func (e *EndData) String() string {
	return "EndData"
}

var _ Token = &EndData{}

type Bool struct {
	Name  Name
	Value bool
}

func (b *Bool) String() string {
	return fmt.Sprintf("Bool(%s, %t)", b.Name, b.Value)
}

var _ Token = &Bool{}

type Int struct {
	Name  Name
	Value int64
}

func (i *Int) String() string {
	return fmt.Sprintf("Int(%s, %d)", i.Name, i.Value)
}

var _ Token = &Int{}

type Uint struct {
	Name  Name
	Value uint64
}

func (u *Uint) String() string {
	return fmt.Sprintf("Uint(%s, %d)", u.Name, u.Value)
}

var _ Token = &Uint{}

type Float struct {
	Name  Name
	Value float64
}

func (f *Float) String() string {
	return fmt.Sprintf("Float(%s, %s)", f.Name, strconv.FormatFloat(f.Value, 'g', -1, 64))
}

var _ Token = &Float{}

type String struct {
	Name  Name
	Value string
}

func (s *String) String() string {
	return fmt.Sprintf("String(%s, %q)", s.Name, s.Value)
}

var _ Token = &String{}

type Null struct {
	Name Name
}

func (n *Null) String() string {
	return fmt.Sprintf("Null(%s)", n.Name)
}

var _ Token = &Null{}

// Equal compares two tokens by value.  Floats are compared with ==, so NaN
// is never equal to anything.
func Equal(a, b Token) bool {
	switch x := a.(type) {
	case *StartObject:
		y, ok := b.(*StartObject)
		return ok && x.Name == y.Name
	case *StartArray:
		y, ok := b.(*StartArray)
		return ok && x.Name == y.Name
	case *EndContainer:
		_, ok := b.(*EndContainer)
		return ok
	case *EndData:
		_, ok := b.(*EndData)
		return ok
	case *Bool:
		y, ok := b.(*Bool)
		return ok && *x == *y
	case *Int:
		y, ok := b.(*Int)
		return ok && *x == *y
	case *Uint:
		y, ok := b.(*Uint)
		return ok && *x == *y
	case *Float:
		y, ok := b.(*Float)
		return ok && *x == *y
	case *String:
		y, ok := b.(*String)
		return ok && *x == *y
	case *Null:
		y, ok := b.(*Null)
		return ok && *x == *y
	default:
		panic(fmt.Sprintf("invalid token: %#v", a))
	}
}
