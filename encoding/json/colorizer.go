package json

// A Colorizer holds the ANSI escape codes that an Encoder writes around
// element names and scalar values.  The output is then meant for a terminal,
// it is no longer plain JSON.
type Colorizer struct {
	KeyColorCode []byte

	// Indexed by ScalarType
	ScalarColorCodes [4][]byte
	ResetCode        []byte
}

// ScalarType is the type of a scalar value, used to choose its color.
type ScalarType uint8

const (
	Null ScalarType = iota
	Boolean
	Number
	String
)

func (c *Colorizer) startScalar(e *Encoder, tp ScalarType) error {
	if c == nil || len(c.ScalarColorCodes[tp]) == 0 {
		return nil
	}
	return e.write(c.ScalarColorCodes[tp])
}

func (c *Colorizer) startKey(e *Encoder) error {
	if c == nil || len(c.KeyColorCode) == 0 {
		return nil
	}
	return e.write(c.KeyColorCode)
}

func (c *Colorizer) reset(e *Encoder) error {
	if c == nil || len(c.ResetCode) == 0 {
		return nil
	}
	return e.write(c.ResetCode)
}
