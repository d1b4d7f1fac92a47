// Package visualizer derives bar heights from live frequency snapshots for
// presentation. It only reads playback state; nothing here may feed back
// into the engine.
package visualizer

import (
	"math"
	"sync"
	"time"
)

// MinBarHeight is the baseline height of a silent bar. Bars never collapse
// to zero so the row stays visible.
const MinBarHeight = 1

// FrameInterval is the redraw cadence of the Loop.
const FrameInterval = 33 * time.Millisecond

// Analyzer supplies the most recent frequency-magnitude snapshot, one byte
// per bin in [0, 255].
type Analyzer interface {
	FrequencyData() []byte
}

// Frame derives bar heights for one redraw.
//
// When playback is off or no analyzer is available every bar sits at the
// baseline, a clear "silent" signal rather than a frozen last frame. A
// snapshot summing to exactly zero while playback is active means the
// analysis path is blocked (the degraded mode seen behind cross-origin
// restrictions), so a synthetic phase-shifted sine keeps the row alive;
// that fallback never applies to genuine silence, which is only signalled
// by isPlaying being false.
func Frame(a Analyzer, isPlaying bool, bars, height int, now time.Time) []int {
	if bars <= 0 || height <= 0 {
		return nil
	}

	out := make([]int, bars)

	if !isPlaying || a == nil {
		for i := range out {
			out[i] = MinBarHeight
		}
		return out
	}

	data := a.FrequencyData()

	sum := 0
	for _, v := range data {
		sum += int(v)
	}

	if sum == 0 {
		phase := float64(now.UnixMilli()) / 200
		for i := range out {
			h := (math.Sin(phase+float64(i)) + 1) / 2 * float64(height)
			out[i] = clampBar(int(h), height)
		}
		return out
	}

	for i := range out {
		// Map bars over the lower half of the spectrum, where music lives
		idx := i * len(data) / 2 / bars
		h := int(data[idx]) * height / 255
		out[i] = clampBar(h, height)
	}
	return out
}

func clampBar(h, height int) int {
	if h < MinBarHeight {
		return MinBarHeight
	}
	if h > height {
		return height
	}
	return h
}

// Loop drives a render callback at the display cadence with fresh frames.
type Loop struct {
	analyzer  Analyzer
	isPlaying func() bool
	bars      int
	height    int
	render    func([]int)

	mu   sync.Mutex
	stop chan struct{}
}

// NewLoop creates a render loop. isPlaying is polled every frame; render
// receives the derived bar heights and runs on the loop's goroutine.
func NewLoop(a Analyzer, isPlaying func() bool, bars, height int, render func([]int)) *Loop {
	return &Loop{
		analyzer:  a,
		isPlaying: isPlaying,
		bars:      bars,
		height:    height,
		render:    render,
	}
}

// Start begins the redraw loop. Starting a running loop is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stop != nil {
		return
	}
	l.stop = make(chan struct{})
	stop := l.stop

	go func() {
		ticker := time.NewTicker(FrameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				l.render(Frame(l.analyzer, l.isPlaying(), l.bars, l.height, now))
			}
		}
	}()
}

// Stop halts the redraw loop. Stopping a stopped loop is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stop == nil {
		return
	}
	close(l.stop)
	l.stop = nil
}
