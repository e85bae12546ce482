package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/arnodel/jsoncodec/encoding/json"
	"github.com/arnodel/jsoncodec/token"
	"github.com/arnodel/jsoncodec/transcode"
)

func main() {
	// Do not handle SIGPIPE, we'll do it ourselves (see the end of run).
	signal.Ignore(syscall.SIGPIPE)

	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	pretty    bool
	compact   bool
	colorMode string
	name      string
	closeLast bool
	wrap      string
	events    bool
	window    int
	encoding  string
	verbose   bool
	trace     bool
	maxBytes  int64
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	terminal := isTerminal(stdout)

	var opts options
	flags := flag.NewFlagSet("jtc", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { printUsage(stderr) }
	flags.BoolVar(&opts.pretty, "pretty", terminal, "indent the output (default when writing to a terminal)")
	flags.BoolVar(&opts.compact, "compact", false, "output the document on a single line")
	flags.StringVar(&opts.colorMode, "color", "auto", "colorize output: auto, always, never")
	flags.StringVar(&opts.name, "name", "", "name of the element when there is a single input")
	flags.BoolVar(&opts.closeLast, "close-last", true, "close the outermost container of each input")
	flags.StringVar(&opts.wrap, "wrap", "object", "how inputs are combined: object, array, none")
	flags.BoolVar(&opts.events, "events", false, "print the decoding events instead of JSON")
	flags.IntVar(&opts.window, "window", transcode.DefaultBufferSize, "size of the read window for files")
	flags.StringVar(&opts.encoding, "encoding", "auto", "input encoding: auto, utf8, utf16le, utf16be")
	flags.BoolVar(&opts.verbose, "v", false, "log decoding problems to stderr")
	flags.BoolVar(&opts.trace, "trace", false, "log every decoding event to stderr")
	flags.Int64Var(&opts.maxBytes, "max-bytes", 0, "fail if the output is longer than this (0 for no limit)")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := opts.validate(len(flags.Args())); err != nil {
		fmt.Fprintf(stderr, "jtc: %s\n", err)
		return 2
	}

	logger := zap.NewNop()
	if opts.verbose || opts.trace {
		logger = newLogger(stderr)
	}
	json.SetLogger(logger)
	transcode.SetLogger(logger)
	defer func() {
		_ = logger.Sync()
		json.SetLogger(nil)
		transcode.SetLogger(nil)
	}()

	var colorizer *json.Colorizer
	switch opts.colorMode {
	case "always":
		colorizer = &defaultColorizer
	case "auto":
		if terminal {
			colorizer = &defaultColorizer
		}
	}

	// Set up stdout for handling colors
	if f, ok := stdout.(*os.File); ok && colorizer != nil {
		stdout = colorable.NewColorable(f)
	}

	out := bufio.NewWriter(stdout)
	var err error
	if opts.events {
		err = printEvents(out, flags.Args(), stdin, &opts)
	} else {
		err = buildDocument(out, flags.Args(), stdin, &opts, colorizer, logger)
	}
	if flushErr := out.Flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		if errors.Is(err, syscall.EPIPE) {
			// stdout is a pipe and something closed it (e.g. 'head' or 'less').
			// In this case we don't want to complain.
			return 0
		}
		fmt.Fprintf(stderr, "jtc: %s\n", err)
		return 1
	}
	return 0
}

func (o *options) validate(inputCount int) error {
	switch o.colorMode {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid -color value: %q (use auto, always, or never)", o.colorMode)
	}
	switch o.wrap {
	case "object", "array":
	case "none":
		if inputCount > 1 {
			return errors.New("-wrap none needs at most one input")
		}
	default:
		return fmt.Errorf("invalid -wrap value: %q (use object, array, or none)", o.wrap)
	}
	switch o.encoding {
	case "auto", "utf8", "utf16le", "utf16be":
	default:
		return fmt.Errorf("invalid -encoding value: %q", o.encoding)
	}
	if o.name != "" && inputCount > 1 {
		return errors.New("-name needs a single input")
	}
	if o.compact {
		o.pretty = false
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func newLogger(w io.Writer) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

func buildDocument(w io.Writer, paths []string, stdin io.Reader, opts *options, colorizer *json.Colorizer, logger *zap.Logger) error {
	var sink io.Writer = w
	if opts.maxBytes > 0 {
		sink = &json.LimitWriter{W: w, N: opts.maxBytes}
	}
	enc := json.NewEncoder(sink, json.WithPrettyPrint(opts.pretty), json.WithColorizer(colorizer))

	topts := []transcode.Option{transcode.WithBufferSize(opts.window)}
	if opts.trace {
		topts = append(topts, transcode.WithTracer(logger.Sugar()))
	}

	var err error
	switch opts.wrap {
	case "object":
		err = enc.BeginObject(nil)
	case "array":
		err = enc.BeginArray(nil)
	}
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		paths = []string{"-"}
	}
	for _, path := range paths {
		if err := addInput(enc, path, stdin, opts, topts); err != nil {
			_ = enc.Finish()
			return err
		}
	}
	if err := enc.Finish(); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func addInput(enc *json.Encoder, path string, stdin io.Reader, opts *options, topts []transcode.Option) error {
	var name []byte
	if enc.InObject() {
		name = []byte(entryName(path, opts.name))
	}

	if path == "-" {
		data, err := readInput(path, stdin, opts.encoding)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		return transcode.AddJSON(enc, name, data, opts.closeLast, topts...)
	}

	if opts.encoding == "utf8" {
		return transcode.AddJSONFromFile(enc, name, path, opts.closeLast, topts...)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	r, err := decodeInput(f, opts.encoding)
	if err != nil {
		return err
	}
	if err := transcode.AddJSONFromReader(enc, name, r, opts.closeLast, topts...); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// entryName is the name of an input inside the top level object: the
// -name flag if given, otherwise the base name of the file without its
// extension.
func entryName(path, override string) string {
	if override != "" {
		return override
	}
	if path == "-" {
		return "stdin"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// decodeInput converts the input to UTF-8.  In auto mode the encoding is
// guessed from the start of the input (byte order mark, or valid UTF-8) and
// a byte order mark is removed.
func decodeInput(r io.Reader, encoding string) (io.Reader, error) {
	switch encoding {
	case "utf8":
		return r, nil
	case "utf16le":
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	case "utf16be":
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	}

	br := bufio.NewReaderSize(r, sniffSize)
	start, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	e, _, _ := charset.DetermineEncoding(start, "application/json")
	return transform.NewReader(br, unicode.BOMOverride(e.NewDecoder())), nil
}

const sniffSize = 1024

func printEvents(w io.Writer, paths []string, stdin io.Reader, opts *options) error {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	scratch := make([]byte, transcode.DefaultMemoryNameSize+transcode.DefaultMemoryStringSize)
	for _, path := range paths {
		data, err := readInput(path, stdin, opts.encoding)
		if err != nil {
			return err
		}
		rec := token.NewRecorder()
		_, decodeErr := json.Decode(data, scratch, rec)
		for _, tok := range rec.Tokens() {
			if _, err := fmt.Fprintln(w, tok); err != nil {
				return err
			}
		}
		if decodeErr != nil {
			return decodeErr
		}
	}
	return nil
}

func readInput(path string, stdin io.Reader, encoding string) ([]byte, error) {
	in := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	r, err := decodeInput(in, encoding)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// Some color ANSI codes
var (
	Reset = []byte("\033[0m")

	Green  = []byte("\033[32m")
	Yellow = []byte("\033[33m")
	White  = []byte("\033[37m")

	DimWhite = []byte("\033[37;2m")

	BrightBlue = []byte("\033[34;1m")
)

var defaultColorizer = json.Colorizer{
	ScalarColorCodes: [4][]byte{
		json.Null:    DimWhite,
		json.Boolean: Yellow,
		json.Number:  White,
		json.String:  Green,
	},
	KeyColorCode: BrightBlue,
	ResetCode:    Reset,
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `jtc - JSON transcoder

USAGE:
  jtc [options] [file ...]

DESCRIPTION:
  jtc decodes each input file and writes it back into a single document on
  stdout, without loading files in memory.  With no file, stdin is read.

  By default the inputs are added to a top level object, each under the base
  name of its file:
    jtc a.json b.json    ->  {"a": ..., "b": ...}

OPTIONS:
  -wrap MODE       How inputs are combined (default: object)
                   object  - one element per input, named after the file
                   array   - one unnamed element per input
                   none    - the single input makes up the document
  -name NAME       Element name for a single input
  -close-last      Close the outermost container of each input (default: true)
                   With -close-last=false the following inputs are added
                   inside it.
  -pretty          Indent the output (default when writing to a terminal)
  -compact         Output on a single line
  -color MODE      Control color output: auto, always, never (default: auto)
  -encoding ENC    Input encoding: auto, utf8, utf16le, utf16be (default: auto)
  -window N        Read window size in bytes (default: 1000)
  -max-bytes N     Fail if the output gets longer than N bytes
  -events          Print decoding events, one per line, instead of JSON
  -v               Log decoding problems to stderr
  -trace           Log every decoding event to stderr

EXAMPLES:
  # Pretty-print a file
  jtc -wrap none -pretty data.json

  # Collect reports into an array
  jtc -wrap array reports/*.json

  # See how a document is decoded
  echo '{"a": [1, 2]}' | jtc -events
`)
}
