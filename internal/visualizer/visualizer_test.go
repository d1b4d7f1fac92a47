package visualizer

import (
	"sync"
	"testing"
	"time"
)

type stubAnalyzer struct {
	data []byte
}

func (s *stubAnalyzer) FrequencyData() []byte {
	return s.data
}

func loudSnapshot() []byte {
	data := make([]byte, 32)
	for i := range data {
		data[i] = byte(255 - i*4)
	}
	return data
}

func TestFrameBaselineWhenNotPlaying(t *testing.T) {
	a := &stubAnalyzer{data: loudSnapshot()}

	// Analyzer content is irrelevant when playback is off
	frame := Frame(a, false, 32, 40, time.Now())
	if len(frame) != 32 {
		t.Fatalf("len = %d, want 32", len(frame))
	}
	for i, h := range frame {
		if h != MinBarHeight {
			t.Errorf("bar %d = %d, want baseline %d", i, h, MinBarHeight)
		}
	}
}

func TestFrameBaselineWithoutAnalyzer(t *testing.T) {
	frame := Frame(nil, true, 8, 40, time.Now())
	for i, h := range frame {
		if h != MinBarHeight {
			t.Errorf("bar %d = %d, want baseline %d", i, h, MinBarHeight)
		}
	}
}

func TestFrameRealData(t *testing.T) {
	a := &stubAnalyzer{data: loudSnapshot()}

	frame := Frame(a, true, 16, 40, time.Now())

	var above int
	for _, h := range frame {
		if h < MinBarHeight || h > 40 {
			t.Fatalf("bar height %d out of range", h)
		}
		if h > MinBarHeight {
			above++
		}
	}
	if above == 0 {
		t.Error("loud snapshot produced only baseline bars")
	}
}

func TestFrameSyntheticFallbackOnZeroSnapshot(t *testing.T) {
	// All-zero magnitudes while playing: blocked analysis, not silence
	a := &stubAnalyzer{data: make([]byte, 32)}

	now := time.UnixMilli(1_700_000_000_000)
	frame := Frame(a, true, 16, 40, now)

	var moving int
	for _, h := range frame {
		if h < MinBarHeight || h > 40 {
			t.Fatalf("bar height %d out of range", h)
		}
		if h > MinBarHeight {
			moving++
		}
	}
	if moving == 0 {
		t.Error("synthetic fallback produced a flat frame")
	}

	// The synthetic wave moves over time
	later := Frame(a, true, 16, 40, now.Add(300*time.Millisecond))
	same := true
	for i := range frame {
		if frame[i] != later[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("synthetic fallback frames identical across time")
	}
}

func TestFrameDegenerateDimensions(t *testing.T) {
	if got := Frame(nil, false, 0, 40, time.Now()); got != nil {
		t.Errorf("Frame with zero bars = %v, want nil", got)
	}
	if got := Frame(nil, false, 8, 0, time.Now()); got != nil {
		t.Errorf("Frame with zero height = %v, want nil", got)
	}
}

func TestLoopRendersFrames(t *testing.T) {
	a := &stubAnalyzer{data: loudSnapshot()}

	var mu sync.Mutex
	frames := 0
	loop := NewLoop(a, func() bool { return true }, 8, 20, func(frame []int) {
		mu.Lock()
		frames++
		mu.Unlock()
		if len(frame) != 8 {
			t.Errorf("frame length = %d, want 8", len(frame))
		}
	})

	loop.Start()
	defer loop.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := frames
		mu.Unlock()
		if n >= 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("loop never rendered two frames")
}

func TestLoopStartStopIdempotent(t *testing.T) {
	loop := NewLoop(nil, func() bool { return false }, 4, 10, func([]int) {})
	loop.Start()
	loop.Start()
	loop.Stop()
	loop.Stop()
}
