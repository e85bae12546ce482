// Package jsoncodec implements a streaming JSON codec with a small, fixed
// memory footprint.
//
// The package is organized into several sub-packages:
//
// - encoding/json: push encoder writing to a sink, and callback decoder
// - transcode: decode a JSON document into a document being encoded
// - token: decoding events as values, for recording, replaying and tracing
//
// The encoder is driven one element at a time:
//
//	enc := json.NewEncoder(w, json.WithPrettyPrint(true))
//	enc.BeginObject(nil)
//	enc.AddInt([]byte("id"), 123)
//	enc.AddString([]byte("name"), []byte("Ann"))
//	enc.Finish()
//
// The decoder reports every element to a json.Handler as it is found.  It
// works from a byte window and two scratch buffers given by the caller, so
// the memory it uses does not depend on the size of its input.  Decoding a
// file larger than the window is done by the transcode package, which slides
// the window as decoding progresses:
//
//	err := transcode.AddJSONFromFile(enc, []byte("previous"), "report.json", true)
//
// There is no facility for marshaling or unmarshaling Go structures, unlike
// the standard library encoding/json package.
//
// The CLI utility is in the directory cmd/jtc. You can install it with:
//
//	go install github.com/arnodel/jsoncodec/cmd/jtc
package jsoncodec
