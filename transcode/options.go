package transcode

import "go.uber.org/zap"

// An Option configures a transcoding call.
type Option func(*config)

type config struct {
	bufferSize int
	nameSize   int
	stringSize int
	maxDepth   int
	tracer     *zap.SugaredLogger
}

// Defaults for AddJSON, where the whole input is already in memory.
const (
	DefaultMemoryNameSize   = 100
	DefaultMemoryStringSize = 5000
)

// Defaults for AddJSONFromReader and AddJSONFromFile.
const (
	DefaultBufferSize       = 1000
	DefaultReaderNameSize   = 100
	DefaultReaderStringSize = 500
)

func newConfig(nameSize, stringSize int, opts []Option) *config {
	cfg := &config{
		bufferSize: DefaultBufferSize,
		nameSize:   nameSize,
		stringSize: stringSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithBufferSize sets the size of the read window used when decoding from a
// reader.  It bounds the length of the strings and numbers that can be
// decoded.
func WithBufferSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.bufferSize = n
		}
	}
}

// WithScratchSizes sets the size of the buffers that decoded names and
// strings are written to, which limits their lengths.  Numbers with a
// fraction or an exponent also need to fit in the string buffer.
func WithScratchSizes(name, str int) Option {
	return func(c *config) {
		if name > 0 {
			c.nameSize = name
		}
		if str > 0 {
			c.stringSize = str
		}
	}
}

// WithMaxDepth limits how deeply the decoded document can be nested.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		c.maxDepth = n
	}
}

// WithTracer logs every decoded event to log at debug level.
func WithTracer(log *zap.SugaredLogger) Option {
	return func(c *config) {
		c.tracer = log
	}
}
