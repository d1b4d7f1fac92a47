// Package player implements the playback engine: the state machine that
// owns the single audio output device and maps application intents (play
// station X, toggle, skip) onto device operations.
package player

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sonicwave-radio/sonicwave/internal/config"
	"github.com/sonicwave-radio/sonicwave/internal/station"
)

// Status is the engine's position in the playback state machine.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusPlaying
	StatusPaused
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusLoading:
		return "LOADING"
	case StatusPlaying:
		return "PLAYING"
	case StatusPaused:
		return "PAUSED"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// State is the read-only derived playback state handed to subscribers.
// IsPlaying true implies Station is set.
type State struct {
	Station   *station.Station
	Status    Status
	IsPlaying bool
	IsLoading bool
	Err       string
	Volume    float64
}

// Engine owns the output device. All transitions happen synchronously inside
// its lock in response to discrete calls and device events; subscribers are
// notified after every change.
type Engine struct {
	mu      sync.Mutex
	out     Output
	prefs   *config.Prefs
	status  Status
	station *station.Station
	errMsg  string
	volume  float64
	queue   []station.Station
	subs    []func(State)

	playCancel context.CancelFunc
	generation int

	wg sync.WaitGroup
}

// NewEngine creates an engine over the given output device, restoring the
// persisted volume and consuming the device's lifecycle events until Close.
func NewEngine(out Output, prefs *config.Prefs) *Engine {
	e := &Engine{
		out:    out,
		prefs:  prefs,
		status: StatusIdle,
		volume: prefs.Volume(),
	}
	out.SetVolume(e.volume)

	e.wg.Add(1)
	go e.consumeEvents()

	return e
}

// State returns the current playback snapshot.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	return State{
		Station:   e.station,
		Status:    e.status,
		IsPlaying: e.status == StatusPlaying,
		IsLoading: e.status == StatusLoading,
		Err:       e.errMsg,
		Volume:    e.volume,
	}
}

// Subscribe registers a callback invoked with a state snapshot after every
// transition. Subscribers must not call back into the engine synchronously.
func (e *Engine) Subscribe(fn func(State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, fn)
}

func (e *Engine) notifyLocked() (State, []func(State)) {
	st := e.stateLocked()
	subs := make([]func(State), len(e.subs))
	copy(subs, e.subs)
	return st, subs
}

func notify(st State, subs []func(State)) {
	for _, fn := range subs {
		fn(st)
	}
}

// SelectStation plays a station. Selecting the station that is already
// current is a pure toggle (Playing and Paused swap, the source is never
// touched); selecting it while in error retries from loading. Any other
// station always re-enters loading: set source, reload, clear the prior
// error, then attempt to play optimistically.
func (e *Engine) SelectStation(s station.Station) {
	e.mu.Lock()

	if e.station != nil && e.station.UUID == s.UUID {
		switch e.status {
		case StatusPlaying:
			e.out.Pause()
			e.status = StatusPaused
		case StatusPaused:
			e.out.Resume()
			e.status = StatusPlaying
		case StatusError:
			e.startLocked(s)
		default:
			// Still loading; the pending attempt stands.
			e.mu.Unlock()
			return
		}
		st, subs := e.notifyLocked()
		e.mu.Unlock()
		notify(st, subs)
		return
	}

	e.startLocked(s)
	st, subs := e.notifyLocked()
	e.mu.Unlock()
	notify(st, subs)
}

// startLocked switches the device to a new source and kicks off an
// optimistic play attempt. Any in-flight attempt is cancelled first; its
// failure will classify as an abort and stay silent.
func (e *Engine) startLocked(s station.Station) {
	if e.playCancel != nil {
		e.playCancel()
		e.playCancel = nil
	}

	st := s
	e.station = &st
	e.errMsg = ""
	e.status = StatusLoading

	e.out.SetSource(st.PlaybackURL())
	e.out.Load()

	ctx, cancel := context.WithCancel(context.Background())
	e.playCancel = cancel
	e.generation++
	gen := e.generation

	log.Debug().Str("station", st.Name).Str("url", st.PlaybackURL()).Msg("Starting playback")

	e.wg.Add(1)
	go e.play(ctx, gen)
}

func (e *Engine) play(ctx context.Context, gen int) {
	defer e.wg.Done()

	err := e.out.Play(ctx)
	if err == nil {
		return
	}

	kind := classifyError(err)
	if kind == KindAborted {
		// Expected churn from our own source switch, not a user-facing
		// failure.
		log.Debug().Err(err).Msg("Play attempt aborted by source switch")
		return
	}

	e.mu.Lock()
	if gen != e.generation {
		// A newer attempt has superseded this one.
		e.mu.Unlock()
		return
	}
	log.Warn().Err(err).Str("kind", kind.String()).Msg("Playback failed")
	e.errMsg = kind.Message()
	e.status = StatusError
	st, subs := e.notifyLocked()
	e.mu.Unlock()
	notify(st, subs)
}

// TogglePlayPause flips Playing and Paused without touching the source.
// It is a no-op when no station is selected or a load is in flight.
func (e *Engine) TogglePlayPause() {
	e.mu.Lock()
	if e.station == nil {
		e.mu.Unlock()
		return
	}

	switch e.status {
	case StatusPlaying:
		e.out.Pause()
		e.status = StatusPaused
	case StatusPaused:
		e.out.Resume()
		e.status = StatusPlaying
	default:
		e.mu.Unlock()
		return
	}

	st, subs := e.notifyLocked()
	e.mu.Unlock()
	notify(st, subs)
}

// Stop clears the current station and returns to idle. The queue is kept.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.playCancel != nil {
		e.playCancel()
		e.playCancel = nil
	}
	e.generation++
	e.out.Pause()
	e.station = nil
	e.errMsg = ""
	e.status = StatusIdle
	st, subs := e.notifyLocked()
	e.mu.Unlock()
	notify(st, subs)
}

// SetQueue replaces the active list Skip operates over: the station list
// of whichever view is currently displayed.
func (e *Engine) SetQueue(stations []station.Station) {
	e.mu.Lock()
	e.queue = make([]station.Station, len(stations))
	copy(e.queue, stations)
	e.mu.Unlock()
}

// Skip moves through the active queue: +1 for next, -1 for previous, with
// wrap-around in both directions. When the current station is not in the
// queue the first entry plays.
func (e *Engine) Skip(direction int) {
	e.mu.Lock()
	if len(e.queue) == 0 {
		e.mu.Unlock()
		return
	}

	idx := -1
	if e.station != nil {
		for i, s := range e.queue {
			if s.UUID == e.station.UUID {
				idx = i
				break
			}
		}
	}

	var next station.Station
	if idx < 0 {
		next = e.queue[0]
	} else {
		n := len(e.queue)
		next = e.queue[((idx+direction)%n+n)%n]
	}
	e.mu.Unlock()

	e.SelectStation(next)
}

// SetVolume clamps v into [0, 1], applies it to the live device immediately
// and persists it synchronously.
func (e *Engine) SetVolume(v float64) {
	v = config.ClampVolume(v)

	e.mu.Lock()
	e.volume = v
	e.out.SetVolume(v)
	e.prefs.SetVolume(v)
	st, subs := e.notifyLocked()
	e.mu.Unlock()
	notify(st, subs)
}

// Volume returns the current volume.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// consumeEvents drives the loading/playing sub-states from the device's own
// lifecycle signals. The engine never guesses buffering state.
func (e *Engine) consumeEvents() {
	defer e.wg.Done()

	for ev := range e.out.Events() {
		e.mu.Lock()
		if e.station == nil {
			e.mu.Unlock()
			continue
		}

		changed := false
		switch ev.Kind {
		case EventBuffering, EventStalled:
			if e.status == StatusPlaying || e.status == StatusLoading {
				e.status = StatusLoading
				changed = true
			}
		case EventCanPlay:
			if e.status == StatusLoading {
				e.status = StatusPlaying
				e.errMsg = ""
				changed = true
			}
		case EventError:
			kind := classifyError(ev.Err)
			if kind == KindAborted {
				break
			}
			log.Warn().Err(ev.Err).Str("kind", kind.String()).Msg("Output reported stream failure")
			e.errMsg = kind.Message()
			e.status = StatusError
			changed = true
		}

		if !changed {
			e.mu.Unlock()
			continue
		}
		st, subs := e.notifyLocked()
		e.mu.Unlock()
		notify(st, subs)
	}
}

// Close cancels any in-flight play attempt and shuts the device down.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.playCancel != nil {
		e.playCancel()
		e.playCancel = nil
	}
	e.generation++
	e.mu.Unlock()

	err := e.out.Close()
	e.wg.Wait()
	return err
}
