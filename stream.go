package streamenc

import "sync"

// Deferred is a single-shot asynchronous result: a value that eventually
// resolves with exactly one value, or rejects with an error.
type Deferred interface {
	// Subscribe registers the completion callbacks. Exactly one of
	// onResolve or onReject is invoked, exactly once, possibly from a
	// different goroutine than the one that called Subscribe.
	Subscribe(onResolve func(value any), onReject func(err error))
}

// RecordSource is a paused-mode, pull-based source of values to be
// encoded as JSON array elements.
//
// A stream contract conventionally exposes three separate events:
// readable, end and error. This implementation folds all three into a
// single Wait() wake channel plus an Ended query: the encoder reacts
// identically to "more data might be ready" and "the stream ended",
// since both simply mean "try reading again, then re-check state".
type RecordSource interface {
	// ReadRecord performs a non-blocking read. ok is false if no
	// record is currently available; the caller should wait on Wait
	// and retry.
	ReadRecord() (value any, ok bool)
	// Wait returns a channel that receives a value once the source's
	// state may have changed — more data, or the end. The channel is
	// single-use: call Wait again after it fires to obtain the next
	// one.
	Wait() <-chan struct{}
	// Ended reports whether the source has no more records to
	// deliver, and the terminal error, if any. Err is only meaningful
	// once done is true.
	Ended() (done bool, err error)
	// Flowing reports whether the source is already delivering data in
	// push mode. A source that answers true is rejected with
	// StreamStateInvalid.
	Flowing() bool
}

// ByteSource is a paused-mode, pull-based source of raw text chunks to be
// spliced verbatim into the output. The producer is responsible for the
// JSON-validity of its chunks in context; the encoder performs no
// escaping on them.
type ByteSource interface {
	ReadChunk() (chunk []byte, ok bool)
	Wait() <-chan struct{}
	Ended() (done bool, err error)
	Flowing() bool
}

// chanSource is the shared implementation behind NewChannelRecordSource
// and NewChannelByteSource: a paused-mode adapter over a plain Go
// channel that synthesizes the Wait/Ended pull contract a bare channel
// does not offer on its own.
type chanSource struct {
	mu      sync.Mutex
	pending any
	hasItem bool
	done    bool
	err     error
	waiters []chan struct{}
	started bool
}

func newChanSource() *chanSource {
	return &chanSource{}
}

// feed runs in its own goroutine, draining items until it closes, handing
// each item to the chanSource and waking any pending Wait() callers.
func (c *chanSource) feed(items <-chan any, errs <-chan error) {
	for item := range items {
		c.push(item)
	}
	var err error
	if errs != nil {
		err = <-errs
	}
	c.finish(err)
}

func (c *chanSource) push(item any) {
	c.mu.Lock()
	// A paused-mode source holds at most one pending item; producers
	// that outrun the consumer block on the channel send, which is the
	// correct backpressure behavior for a feed goroutine.
	for c.hasItem && !c.done {
		ch := make(chan struct{})
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()
		<-ch
		c.mu.Lock()
	}
	c.pending = item
	c.hasItem = true
	c.wakeLocked()
	c.mu.Unlock()
}

func (c *chanSource) finish(err error) {
	c.mu.Lock()
	c.done = true
	c.err = err
	c.wakeLocked()
	c.mu.Unlock()
}

func (c *chanSource) wakeLocked() {
	waiters := c.waiters
	c.waiters = nil
	for _, ch := range waiters {
		close(ch)
	}
}

func (c *chanSource) wait() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan struct{})
	if c.hasItem || c.done {
		close(ch)
		return ch
	}
	c.waiters = append(c.waiters, ch)
	return ch
}

func (c *chanSource) ended() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasItem {
		return false, nil
	}
	return c.done, c.err
}

func (c *chanSource) takeRecord() (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasItem {
		return nil, false
	}
	v := c.pending
	c.pending = nil
	c.hasItem = false
	c.wakeLocked()
	return v, true
}

// ChannelRecordSource adapts a plain Go channel of values into a
// RecordSource, so existing producer goroutines (e.g. a database cursor
// or a paginated API client) can feed an Encoder without implementing
// the pull interface by hand.
type ChannelRecordSource struct {
	src *chanSource
}

// NewChannelRecordSource starts a feed goroutine draining items until it
// is closed, and optionally reading a single terminal error from errs (a
// nil errs means the source never fails).
func NewChannelRecordSource(items <-chan any, errs <-chan error) *ChannelRecordSource {
	src := newChanSource()
	go src.feed(items, errs)
	return &ChannelRecordSource{src: src}
}

func (s *ChannelRecordSource) ReadRecord() (any, bool) { return s.src.takeRecord() }
func (s *ChannelRecordSource) Wait() <-chan struct{}   { return s.src.wait() }
func (s *ChannelRecordSource) Ended() (bool, error)    { return s.src.ended() }
func (s *ChannelRecordSource) Flowing() bool           { return false }

// ChannelByteSource adapts a plain Go channel of byte chunks into a
// ByteSource, the byte-stream analogue of ChannelRecordSource.
type ChannelByteSource struct {
	src *chanSource
}

// NewChannelByteSource is the ByteSource counterpart of
// NewChannelRecordSource.
func NewChannelByteSource(chunks <-chan []byte, errs <-chan error) *ChannelByteSource {
	src := newChanSource()
	go func() {
		for c := range chunks {
			src.push(c)
		}
		var err error
		if errs != nil {
			err = <-errs
		}
		src.finish(err)
	}()
	return &ChannelByteSource{src: src}
}

func (s *ChannelByteSource) ReadChunk() ([]byte, bool) {
	v, ok := s.src.takeRecord()
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}
func (s *ChannelByteSource) Wait() <-chan struct{} { return s.src.wait() }
func (s *ChannelByteSource) Ended() (bool, error)  { return s.src.ended() }
func (s *ChannelByteSource) Flowing() bool         { return false }

// future is a minimal Deferred implementation built on a mutex, used by
// NewDeferred. Resolution may race with Subscribe: whichever happens
// last triggers the callback, exactly once.
type future struct {
	mu         sync.Mutex
	settled    bool
	rejected   bool
	value      any
	err        error
	onResolve  func(any)
	onReject   func(error)
}

// NewDeferred returns a Deferred and the resolve/reject functions that
// settle it. Calling either function more than once, or both, has no
// effect beyond the first call.
func NewDeferred() (d Deferred, resolve func(any), reject func(error)) {
	f := &future{}
	return f, f.resolve, f.reject
}

func (f *future) Subscribe(onResolve func(any), onReject func(error)) {
	f.mu.Lock()
	if f.settled {
		settledValue, settledErr, rejected := f.value, f.err, f.rejected
		f.mu.Unlock()
		if rejected {
			onReject(settledErr)
		} else {
			onResolve(settledValue)
		}
		return
	}
	f.onResolve = onResolve
	f.onReject = onReject
	f.mu.Unlock()
}

func (f *future) resolve(v any) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return
	}
	f.settled = true
	f.value = v
	cb := f.onResolve
	f.mu.Unlock()
	if cb != nil {
		cb(v)
	}
}

func (f *future) reject(err error) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return
	}
	f.settled = true
	f.rejected = true
	f.err = err
	cb := f.onReject
	f.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}
