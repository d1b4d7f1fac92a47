package player

import "context"

// EventKind identifies an output-device lifecycle event.
type EventKind int

const (
	// EventBuffering fires when the device starts fetching/buffering a
	// freshly set source.
	EventBuffering EventKind = iota
	// EventCanPlay fires once the device has confirmed it can produce
	// audio for the current source.
	EventCanPlay
	// EventStalled fires when an established stream stops delivering data.
	EventStalled
	// EventError fires when the source failed. Err carries the cause.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventBuffering:
		return "BUFFERING"
	case EventCanPlay:
		return "CANPLAY"
	case EventStalled:
		return "STALLED"
	case EventError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is a single output-device lifecycle notification.
type Event struct {
	Kind EventKind
	Err  error
}

// Output is the single audio output device owned exclusively by the Engine.
// No other component may call its control operations; everything else
// observes playback through the Engine's state subscription.
//
// The device reports its own lifecycle through the Events channel; the
// Engine never guesses buffering state. Play starts playback of the most
// recently set source and returns once playback is established or failed;
// cancelling its context is the abort path used when the Engine switches
// sources mid-flight.
type Output interface {
	SetSource(url string)
	Load()
	Play(ctx context.Context) error
	Pause()
	Resume()
	SetVolume(v float64)
	Events() <-chan Event
	Close() error
}
