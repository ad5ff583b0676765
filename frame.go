package streamenc

import "reflect"

// kind tags a frame's variant: the stack holds one sum type over Root,
// Object, Array, RecordStream, ByteStream, AwaitingDeferred and
// TrailingEmit, rather than a handler closure per kind, and a single
// step dispatches on it.
type kind int

const (
	kindRoot kind = iota
	kindObject
	kindArray
	kindRecordStream
	kindByteStream
	kindAwaitingDeferred
	kindTrailingEmit
)

// sepKind picks which separator behavior a pending submit call should
// use once its value has been classified.
type sepKind int

const (
	sepNone sepKind = iota
	sepArray
	sepObject
)

// separator captures everything a pending Submit call needs in order to
// run the right separator handler once its value has been classified: a
// comma before every element but the first, a newline plus indent unit
// at the current depth, and — for object elements — the quoted key and
// colon. first points at whichever bool tracks "has anything been
// emitted into this container yet": a container frame's own first
// field for object/array containers, or the shared streamState's for a
// record-stream reader, so all three contexts share one emit
// implementation.
type separator struct {
	kind  sepKind
	first *bool
	key   string // object key; unused for sepArray/sepNone
}

// emit writes the separator ahead of a value about to be submitted, and
// flips *first once done. A nil first (sepNone, the document root) is a
// no-op.
func (s separator) emit(e *Encoder) {
	if s.first == nil {
		return
	}
	if *s.first {
		e.buf.writeByte(',')
	}
	*s.first = true
	e.indent.newLine(&e.buf, e.depth)
	if s.kind == sepObject {
		writeJSONString(&e.buf, s.key)
		e.buf.writeByte(':')
		e.indent.afterColon(&e.buf)
	}
}

// streamState is shared between a record-stream reader frame and its
// trailing-bracket-emit frame, since the closing "]" must know whether
// any element was ever emitted, but is only written once the reader
// frame has already popped itself.
type streamState struct {
	first bool
}

// frame is one node of the encoder's explicit stack. One struct serves
// every kind rather than a handler closure per kind, since the payload
// differs enough per kind that a closure would just capture these same
// fields anyway.
type frame struct {
	kind kind
	prev *frame

	awaiting bool
	first    bool
	index    int
	path     string

	// kindObject
	obj      objectAccessor
	objKeys  []string
	cycleTyp reflect.Type
	cyclePtr uintptr
	hasCycle bool

	// kindArray
	arr arrayAccessor

	// kindRecordStream / kindByteStream
	recordSrc RecordSource
	byteSrc   ByteSource
	shared    *streamState

	// kindAwaitingDeferred
	resolved any
	sep      separator
}

// stack is the Encoder's explicit frame stack: it is non-empty exactly
// while encoding is in progress, and replaces native recursion so
// arbitrarily deep containers never grow the Go call stack.
type stack struct {
	top *frame
}

func (s *stack) push(f *frame) {
	f.prev = s.top
	s.top = f
}

func (s *stack) pop() {
	s.top = s.top.prev
}

func (s *stack) empty() bool {
	return s.top == nil
}
