// Package streamenc implements a streaming, backpressure-aware JSON
// encoder.
//
// Unlike encoding/json's Marshal, which requires the whole value graph to
// be resolved and the whole output to be materialized before any byte is
// produced, streamenc walks the graph lazily, one container at a time, and
// hands bytes to its consumer through the standard io.Reader contract. The
// value graph may itself be partially asynchronous: a field can be a
// Deferred that resolves later, or a RecordSource/ByteSource that produces
// its contents incrementally. The encoder suspends when it runs out of
// ready data and resumes automatically once more arrives, with no
// intermediate buffering of the whole document.
//
// A single Encoder emits exactly one well-formed JSON value. Construct one
// with New and read from it like any other io.Reader:
//
//	enc := streamenc.New(value, streamenc.WithIndentSpaces(2))
//	_, err := io.Copy(w, enc)
//
// The package deliberately does not parse JSON, validate schemas, or
// support output formats other than JSON.
package streamenc
