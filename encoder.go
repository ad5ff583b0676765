package streamenc

import (
	"io"
	"reflect"
	"strconv"
	"sync"

	"github.com/tachyon-beep/streamenc/internal/trace"
)

// Option configures an Encoder at construction time.
type Option func(*Encoder)

// WithReplacerFunc installs a transform function run on every (key,
// value) pair before classification.
func WithReplacerFunc(fn ReplacerFunc) Option {
	return func(e *Encoder) { e.ensureReplacer().Func = fn }
}

// WithAllowList installs an allow-list of object keys; only these keys
// are emitted from any object value, in the list's own order.
func WithAllowList(keys []string) Option {
	return func(e *Encoder) { e.ensureReplacer().Allow = keys }
}

// WithIndentSpaces enables pretty-printing with n spaces per nesting
// level (clamped to 10).
func WithIndentSpaces(n int) Option {
	return func(e *Encoder) { e.indent = IndentSpaces(n) }
}

// WithIndentString enables pretty-printing with a literal indent unit per
// nesting level (truncated to 10 runes).
func WithIndentString(s string) Option {
	return func(e *Encoder) { e.indent = IndentString(s) }
}

// visitKey identifies a currently-open container for cycle detection:
// its concrete type paired with the address of its backing map, slice or
// pointer — the same shape the standard library's own encoding/json uses
// internally to detect cycles, generalized here to cover record-stream
// sources as well as object and array values.
type visitKey struct {
	typ reflect.Type
	ptr uintptr
}

// Encoder pulls bytes of a single JSON value out of an arbitrary value
// graph, under consumer backpressure. It implements io.Reader: Read
// blocks until it can return at least one byte, EOF, or the instance's
// one and only error.
//
// An Encoder must not be read from concurrently by more than one
// goroutine; Deferred and stream callbacks may legitimately arrive on
// other goroutines, and are internally synchronized against Read.
type Encoder struct {
	mu       sync.Mutex
	stk      stack
	buf      buffer
	indent   Indent
	replacer *Replacer
	depth    int
	visited  map[visitKey]struct{}
	wakeCh   chan struct{}
	err      error
	root     any
}

var _ io.Reader = (*Encoder)(nil)

// New constructs an Encoder for value. The root value, and every value
// it transitively contains, is walked lazily as the returned Encoder is
// read from; nothing is encoded until the first call to Read.
func New(value any, opts ...Option) *Encoder {
	e := &Encoder{
		wakeCh:  make(chan struct{}, 1),
		visited: make(map[visitKey]struct{}),
		root:    value,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.stk.push(&frame{kind: kindRoot})
	return e
}

func (e *Encoder) ensureReplacer() *Replacer {
	if e.replacer == nil {
		e.replacer = &Replacer{}
	}
	return e.replacer
}

// Read implements io.Reader. It runs the state machine that advances
// the top frame until the output buffer has accumulated at least
// len(p) bytes, the stack empties (the document is complete), or the
// top frame parks itself awaiting an external event — in which case
// Read blocks on that event internally rather than returning a "try
// again later" status, the idiomatic Go rendering of a pull API.
func (e *Encoder) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		if e.buf.len() > 0 && (e.buf.len() >= len(p) || e.err != nil || e.stk.empty()) {
			return e.buf.drainInto(p), nil
		}
		if e.err != nil {
			return 0, e.err
		}
		if e.stk.empty() {
			return 0, io.EOF
		}
		top := e.stk.top
		if top.awaiting {
			waitCh := e.waitChannelFor(top)
			e.mu.Unlock()
			<-waitCh
			e.mu.Lock()
			top.awaiting = false
			continue
		}
		e.step()
	}
}

// waitChannelFor resolves which channel Read should block on while top
// is parked: the Encoder's own wake channel for a deferred frame
// (settled by an arbitrary goroutine calling the resolve/reject
// callbacks passed to Deferred.Subscribe), or the stream's own Wait
// channel for a record-stream/byte-stream frame.
func (e *Encoder) waitChannelFor(f *frame) <-chan struct{} {
	switch f.kind {
	case kindRecordStream:
		return f.recordSrc.Wait()
	case kindByteStream:
		return f.byteSrc.Wait()
	default:
		return e.wakeCh
	}
}

// step advances the top frame by exactly one unit of work — one emitted
// key/value pair, one array element, one stream record, or one
// housekeeping transition (closing a container, resubmitting a resolved
// deferred). Called only while mu is held and the top frame is not
// awaiting.
func (e *Encoder) step() {
	f := e.stk.top
	trace.Printf("streamenc: step kind=%d depth=%d path=%q", f.kind, e.depth, f.path)
	switch f.kind {
	case kindRoot:
		e.stk.pop()
		e.submit("", e.root, separator{kind: sepNone})
	case kindObject:
		e.stepObject(f)
	case kindArray:
		e.stepArray(f)
	case kindRecordStream:
		e.stepRecordStream(f)
	case kindByteStream:
		e.stepByteStream(f)
	case kindAwaitingDeferred:
		e.stepAwaitingDeferred(f)
	case kindTrailingEmit:
		e.stepTrailingEmit(f)
	}
}

// destroy transitions the Encoder to its terminal, failed state: the
// first error observed wins; the stack and visited set are discarded
// immediately, and any bytes already buffered are not retracted — they
// will still be handed to the consumer by a subsequent Read before the
// error surfaces, so partially emitted output may already be observed
// downstream.
func (e *Encoder) destroy(err error) {
	if e.err != nil {
		return
	}
	e.err = err
	e.stk = stack{}
	e.visited = nil
}

func (e *Encoder) signalWake() {
	select {
	case e.wakeCh <- struct{}{}:
	default:
	}
}

// closeBracket writes a container's closing delimiter, dedenting first
// if (and only if) at least one element was ever emitted. The rule
// applies uniformly to every closing frame, including the
// trailing-bracket-emit frame for record streams.
func (e *Encoder) closeBracket(hadItems bool, closeByte byte) {
	e.depth--
	if hadItems {
		e.indent.newLine(&e.buf, e.depth)
	}
	e.buf.writeByte(closeByte)
}

func (e *Encoder) releaseCycle(f *frame) {
	if f.hasCycle {
		delete(e.visited, visitKey{f.cycleTyp, f.cyclePtr})
	}
}

// submit is the recursive entry point of the state machine: it runs the
// replacer pipeline, classifies the result, and dispatches to the
// handler for the value's category. sep is resolved lazily by the
// caller and is only actually invoked once a category is known, so that
// an undefined value in object context can be elided without ever
// emitting a separator.
func (e *Encoder) submit(key string, value any, sep separator) {
	replaced, err := e.runReplacer(key, value)
	if err != nil {
		e.destroy(err)
		return
	}

	switch classify(replaced) {
	case CategoryPrimitive:
		if sep.kind == sepObject && isUndefined(replaced) {
			return
		}
		sep.emit(e)
		if err := writePrimitive(&e.buf, key, replaced); err != nil {
			e.destroy(err)
		}
	case CategoryObject:
		e.pushObject(key, replaced, sep)
	case CategoryArray:
		e.pushArray(key, replaced, sep)
	case CategoryDeferred:
		e.pushDeferred(key, replaced.(Deferred), sep)
	case CategoryRecordStream:
		e.pushRecordStream(key, replaced.(RecordSource), sep)
	case CategoryByteStream:
		e.pushByteStream(key, replaced.(ByteSource), sep)
	}
}

func (e *Encoder) runReplacer(key string, value any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = newError(ReplacerFailure, key, panicToError(r))
		}
	}()
	return e.replacer.apply(key, value), nil
}

func panicToError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicValue{r}
}

type panicValue struct{ v any }

func (p *panicValue) Error() string { return stringify(p.v) }

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "panic: " + typeName(v)
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}

// pushObject opens an object value: emits the caller's separator first
// (so a key that leads into a cycle is still visible to the consumer
// before the failure surfaces), then checks for a cycle, writes "{",
// and pushes a frame snapshotting the (possibly allow-list-filtered)
// key order at this exact moment.
func (e *Encoder) pushObject(key string, value any, sep separator) {
	sep.emit(e)

	typ, ptr, hasCycle := identity(value)
	if hasCycle {
		vk := visitKey{typ, ptr}
		if _, seen := e.visited[vk]; seen {
			e.destroy(newError(CircularStructure, key, nil))
			return
		}
		e.visited[vk] = struct{}{}
	}

	e.buf.writeByte('{')
	e.depth++

	acc := newObjectAccessor(value)
	f := &frame{
		kind:     kindObject,
		obj:      acc,
		objKeys:  e.replacer.filterKeys(acc.keys),
		path:     key,
		cycleTyp: typ,
		cyclePtr: ptr,
		hasCycle: hasCycle,
	}
	e.stk.push(f)
}

func (e *Encoder) stepObject(f *frame) {
	if f.index == len(f.objKeys) {
		e.closeBracket(f.first, '}')
		e.releaseCycle(f)
		e.stk.pop()
		return
	}
	key := f.objKeys[f.index]
	f.index++
	val := f.obj.get(key)
	e.submit(key, val, separator{kind: sepObject, first: &f.first, key: key})
}

// pushArray is the array analogue of pushObject.
func (e *Encoder) pushArray(key string, value any, sep separator) {
	sep.emit(e)

	typ, ptr, hasCycle := identity(value)
	if hasCycle {
		vk := visitKey{typ, ptr}
		if _, seen := e.visited[vk]; seen {
			e.destroy(newError(CircularStructure, key, nil))
			return
		}
		e.visited[vk] = struct{}{}
	}

	e.buf.writeByte('[')
	e.depth++

	f := &frame{
		kind:     kindArray,
		arr:      newArrayAccessor(value),
		path:     key,
		cycleTyp: typ,
		cyclePtr: ptr,
		hasCycle: hasCycle,
	}
	e.stk.push(f)
}

func (e *Encoder) stepArray(f *frame) {
	if f.index == f.arr.length {
		e.closeBracket(f.first, ']')
		e.releaseCycle(f)
		e.stk.pop()
		return
	}
	idx := f.index
	f.index++
	val := f.arr.get(idx)
	e.submit(strconv.Itoa(idx), val, separator{kind: sepArray, first: &f.first})
}

// pushDeferred parks a deferred value: it pushes an awaiting no-op frame
// and subscribes to the deferred's resolution. The encoder's mutex is
// released for the duration of Subscribe, since a
// Deferred is free to settle synchronously from within the call — if it
// did so while mu was held, onDeferredSettle's own locking would
// deadlock against this very call.
func (e *Encoder) pushDeferred(key string, d Deferred, sep separator) {
	f := &frame{kind: kindAwaitingDeferred, awaiting: true, path: key, sep: sep}
	e.stk.push(f)

	e.mu.Unlock()
	d.Subscribe(
		func(v any) { e.onDeferredSettle(f, v, nil) },
		func(err error) { e.onDeferredSettle(f, nil, err) },
	)
	e.mu.Lock()
}

func (e *Encoder) onDeferredSettle(f *frame, value any, rejectErr error) {
	e.mu.Lock()
	if e.err != nil {
		e.mu.Unlock()
		return
	}
	if rejectErr != nil {
		e.destroy(newError(DeferredRejected, f.path, rejectErr))
		e.mu.Unlock()
		e.signalWake()
		return
	}
	f.resolved = value
	f.awaiting = false
	e.mu.Unlock()
	e.signalWake()
}

func (e *Encoder) stepAwaitingDeferred(f *frame) {
	e.stk.pop()
	e.submit(f.path, f.resolved, f.sep)
}

// pushRecordStream opens a record-stream value: emits the caller's
// separator first, then validates the stream is neither already
// exhausted nor in flowing mode, writes "[", and pushes a pair of
// frames — a trailing-bracket-emit frame (so "]" is written at the
// right depth no matter how the reader frame eventually pops)
// underneath a stream-reader frame.
func (e *Encoder) pushRecordStream(key string, src RecordSource, sep separator) {
	sep.emit(e)

	if src.Flowing() {
		e.destroy(newError(StreamStateInvalid, key, nil))
		return
	}
	if done, streamErr := src.Ended(); done {
		if streamErr != nil {
			e.destroy(newError(StreamError, key, streamErr))
		} else {
			e.destroy(newError(StreamEnded, key, nil))
		}
		return
	}

	typ, ptr, hasCycle := identity(src)
	if hasCycle {
		vk := visitKey{typ, ptr}
		if _, seen := e.visited[vk]; seen {
			e.destroy(newError(CircularStructure, key, nil))
			return
		}
		e.visited[vk] = struct{}{}
	}

	e.buf.writeByte('[')
	e.depth++

	state := &streamState{}
	trailing := &frame{
		kind: kindTrailingEmit, shared: state, path: key,
		cycleTyp: typ, cyclePtr: ptr, hasCycle: hasCycle,
	}
	e.stk.push(trailing)
	reader := &frame{kind: kindRecordStream, recordSrc: src, shared: state, path: key}
	e.stk.push(reader)
}

func (e *Encoder) stepRecordStream(f *frame) {
	val, ok := f.recordSrc.ReadRecord()
	if ok {
		idx := f.index
		f.index++
		e.submit(strconv.Itoa(idx), val, separator{kind: sepArray, first: &f.shared.first})
		return
	}
	done, err := f.recordSrc.Ended()
	if !done {
		// No data right now, and the source is not finished: park
		// until its Wait channel fires again.
		f.awaiting = true
		return
	}
	if err != nil {
		e.destroy(newError(StreamError, f.path, err))
		return
	}
	// Exhausted with no error: pop the reader frame. If nothing was
	// ever emitted, the trailing frame below will close with a bare
	// "[]" regardless of whether any readable event ever fired.
	e.stk.pop()
}

func (e *Encoder) stepTrailingEmit(f *frame) {
	e.closeBracket(f.shared.first, ']')
	e.releaseCycle(f)
	e.stk.pop()
}

// pushByteStream opens a byte-stream value: same preconditions as
// pushRecordStream, but no brackets are emitted — the source's chunks
// are spliced verbatim, so it is up to the producer to make their
// concatenation valid JSON in context.
func (e *Encoder) pushByteStream(key string, src ByteSource, sep separator) {
	sep.emit(e)

	if src.Flowing() {
		e.destroy(newError(StreamStateInvalid, key, nil))
		return
	}
	if done, streamErr := src.Ended(); done {
		if streamErr != nil {
			e.destroy(newError(StreamError, key, streamErr))
		} else {
			e.destroy(newError(StreamEnded, key, nil))
		}
		return
	}

	e.stk.push(&frame{kind: kindByteStream, byteSrc: src, path: key})
}

func (e *Encoder) stepByteStream(f *frame) {
	chunk, ok := f.byteSrc.ReadChunk()
	if ok {
		e.buf.writeBytes(chunk)
		return
	}
	done, err := f.byteSrc.Ended()
	if !done {
		f.awaiting = true
		return
	}
	if err != nil {
		e.destroy(newError(StreamError, f.path, err))
		return
	}
	e.stk.pop()
}
