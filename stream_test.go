package streamenc

import (
	"errors"
	"testing"
	"time"
)

func TestDeferredResolve(t *testing.T) {
	d, resolve, _ := NewDeferred()
	var got any
	done := make(chan struct{})
	d.Subscribe(func(v any) {
		got = v
		close(done)
	}, func(err error) {
		t.Errorf("unexpected reject: %v", err)
		close(done)
	})
	resolve(42)
	<-done
	if got != 42 {
		t.Errorf("resolved value = %v, want 42", got)
	}
}

func TestDeferredResolveBeforeSubscribe(t *testing.T) {
	d, resolve, _ := NewDeferred()
	resolve("early")
	var got any
	d.Subscribe(func(v any) { got = v }, func(err error) { t.Errorf("unexpected reject: %v", err) })
	if got != "early" {
		t.Errorf("resolved value = %v, want early", got)
	}
}

func TestDeferredRejectOnlyFiresOnce(t *testing.T) {
	d, resolve, reject := NewDeferred()
	var resolveCount, rejectCount int
	d.Subscribe(func(any) { resolveCount++ }, func(error) { rejectCount++ })
	reject(errors.New("boom"))
	resolve("too late")
	reject(errors.New("also too late"))
	if rejectCount != 1 || resolveCount != 0 {
		t.Errorf("resolveCount=%d rejectCount=%d, want 0 and 1", resolveCount, rejectCount)
	}
}

func TestChannelRecordSource(t *testing.T) {
	items := make(chan any, 2)
	items <- "a"
	items <- "b"
	close(items)

	src := NewChannelRecordSource(items, nil)

	var got []any
	for {
		v, ok := src.ReadRecord()
		if ok {
			got = append(got, v)
			continue
		}
		done, err := src.Ended()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if done {
			break
		}
		<-src.Wait()
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v, want [a b]", got)
	}
}

func TestChannelRecordSourcePropagatesError(t *testing.T) {
	items := make(chan any)
	errs := make(chan error, 1)
	close(items)
	boom := errors.New("boom")
	errs <- boom

	src := NewChannelRecordSource(items, errs)
	for {
		if _, ok := src.ReadRecord(); ok {
			continue
		}
		done, err := src.Ended()
		if done {
			if !errors.Is(err, boom) {
				t.Errorf("Ended() err = %v, want %v", err, boom)
			}
			return
		}
		<-src.Wait()
	}
}

func TestChannelByteSource(t *testing.T) {
	chunks := make(chan []byte, 2)
	chunks <- []byte("ab")
	chunks <- []byte("cd")
	close(chunks)

	src := NewChannelByteSource(chunks, nil)

	var got []byte
	for {
		chunk, ok := src.ReadChunk()
		if ok {
			got = append(got, chunk...)
			continue
		}
		done, err := src.Ended()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if done {
			break
		}
		<-src.Wait()
	}
	if string(got) != "abcd" {
		t.Errorf("got %q, want abcd", got)
	}
}

func TestChannelRecordSourceBackpressure(t *testing.T) {
	items := make(chan any)
	src := NewChannelRecordSource(items, nil)

	go func() {
		items <- "first"
		items <- "second"
		close(items)
	}()

	<-src.Wait()
	v, ok := src.ReadRecord()
	if !ok || v != "first" {
		t.Fatalf("first read = %v, %t, want first, true", v, ok)
	}

	select {
	case <-time.After(20 * time.Millisecond):
	}
	<-src.Wait()
	v, ok = src.ReadRecord()
	if !ok || v != "second" {
		t.Fatalf("second read = %v, %t, want second, true", v, ok)
	}
}
