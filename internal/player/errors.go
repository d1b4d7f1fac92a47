package player

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind categorizes a playback failure. Abort-class failures are the
// engine's own doing (a source switch interrupting an in-flight play
// attempt) and are suppressed entirely; every other kind maps to a fixed
// user-facing message.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAborted
	KindNetwork
	KindDecode
	KindUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindAborted:
		return "ABORTED"
	case KindNetwork:
		return "NETWORK"
	case KindDecode:
		return "DECODE"
	case KindUnsupported:
		return "UNSUPPORTED"
	default:
		return "UNKNOWN"
	}
}

// Message returns the user-facing text for the category. Aborted failures
// have no message because they are never surfaced.
func (k ErrorKind) Message() string {
	switch k {
	case KindAborted:
		return ""
	case KindNetwork:
		return "Stream connection failed. Check your network and try again."
	case KindDecode:
		return "This stream could not be decoded."
	case KindUnsupported:
		return "This stream format is not supported."
	default:
		return "Cannot play this stream right now."
	}
}

// PlayError is a categorized playback failure produced by an Output.
type PlayError struct {
	Kind ErrorKind
	Err  error
}

func (e *PlayError) Error() string {
	return fmt.Sprintf("playback failed (%s): %v", e.Kind, e.Err)
}

func (e *PlayError) Unwrap() error {
	return e.Err
}

// classifyError maps an arbitrary play failure onto an ErrorKind. Outputs
// that know better wrap their failures in *PlayError; everything else is
// classified by inspection, with context cancellation counting as an
// engine-initiated abort.
func classifyError(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var playErr *PlayError
	if errors.As(err, &playErr) {
		return playErr.Kind
	}

	if errors.Is(err, context.Canceled) {
		return KindAborted
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	return KindUnknown
}
