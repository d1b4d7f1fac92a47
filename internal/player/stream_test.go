package player

import (
	"testing"
)

func TestEmitAfterCloseIsDropped(t *testing.T) {
	o := NewStreamOutput()
	if err := o.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// A play attempt still in flight when the device closes may raise its
	// events afterwards. These must be dropped, never sent.
	o.emit(Event{Kind: EventCanPlay})
	o.emit(Event{Kind: EventError})

	if _, open := <-o.Events(); open {
		t.Error("events channel still open after Close")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	o := NewStreamOutput()
	if err := o.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestStaleTeardownDoesNotClearSuccessor(t *testing.T) {
	o := NewStreamOutput()
	defer o.Close()

	o.mu.Lock()
	o.streamGen = 1
	o.mu.Unlock()
	gen := 1

	// A newer stream takes over before the old teardown goroutine runs.
	o.mu.Lock()
	o.streamGen++
	o.mu.Unlock()

	if o.clearIfCurrent(gen) {
		t.Error("stale teardown must not clear the active stream")
	}
	if !o.clearIfCurrent(2) {
		t.Error("the active stream's own teardown must clear")
	}
}

func TestEmitDropsWhenChannelFull(t *testing.T) {
	o := NewStreamOutput()
	defer o.Close()

	for i := 0; i < cap(o.events)+4; i++ {
		o.emit(Event{Kind: EventBuffering})
	}

	if got := len(o.events); got != cap(o.events) {
		t.Errorf("len(events) = %d, want full buffer %d", got, cap(o.events))
	}
}
