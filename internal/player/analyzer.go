package player

import (
	"math"
	"sync"
)

const (
	// AnalyzerBins is the number of frequency-magnitude bins exposed to
	// the visualizer.
	AnalyzerBins = 32
	// analyzerWindow is how many recent mono samples feed one snapshot.
	analyzerWindow = 1024

	analyzerMinFreq = 60.0
	analyzerMaxFreq = 8000.0
	analyzerGain    = 4.0
)

// SampleAnalyzer derives frequency magnitudes from the most recent decoded
// audio samples. It is fed by the stream output's sample tap and read by
// the visualizer; it never influences playback.
type SampleAnalyzer struct {
	mu         sync.Mutex
	ring       [analyzerWindow]float64
	pos        int
	sampleRate int
}

// NewSampleAnalyzer creates an analyzer with no signal yet.
func NewSampleAnalyzer() *SampleAnalyzer {
	return &SampleAnalyzer{}
}

// SetSampleRate records the sample rate of the stream being tapped.
func (a *SampleAnalyzer) SetSampleRate(rate int) {
	a.mu.Lock()
	a.sampleRate = rate
	a.mu.Unlock()
}

// Push mixes stereo samples down to mono into the ring buffer.
func (a *SampleAnalyzer) Push(samples [][2]float64) {
	a.mu.Lock()
	for _, s := range samples {
		a.ring[a.pos] = (s[0] + s[1]) / 2
		a.pos = (a.pos + 1) % analyzerWindow
	}
	a.mu.Unlock()
}

// Reset clears the captured window, returning the analyzer to silence.
func (a *SampleAnalyzer) Reset() {
	a.mu.Lock()
	a.ring = [analyzerWindow]float64{}
	a.mu.Unlock()
}

// FrequencyData returns AnalyzerBins magnitudes in [0, 255], computed with
// a Goertzel filter bank over log-spaced frequencies. With no signal (or no
// known sample rate) every bin is zero.
func (a *SampleAnalyzer) FrequencyData() []byte {
	a.mu.Lock()
	var window [analyzerWindow]float64
	// Oldest sample first so the filter sees time order.
	for i := 0; i < analyzerWindow; i++ {
		window[i] = a.ring[(a.pos+i)%analyzerWindow]
	}
	rate := a.sampleRate
	a.mu.Unlock()

	out := make([]byte, AnalyzerBins)
	if rate == 0 {
		return out
	}

	maxFreq := math.Min(analyzerMaxFreq, float64(rate)/2)
	logMin := math.Log(analyzerMinFreq)
	logMax := math.Log(maxFreq)

	for bin := 0; bin < AnalyzerBins; bin++ {
		frac := float64(bin) / float64(AnalyzerBins-1)
		freq := math.Exp(logMin + frac*(logMax-logMin))
		mag := goertzel(window[:], rate, freq)

		v := mag * analyzerGain * 255
		if v > 255 {
			v = 255
		}
		out[bin] = byte(v)
	}
	return out
}

// goertzel returns the normalized magnitude of one frequency component,
// roughly the amplitude of a pure tone at that frequency.
func goertzel(samples []float64, sampleRate int, freq float64) float64 {
	w := 2 * math.Pi * freq / float64(sampleRate)
	coeff := 2 * math.Cos(w)

	var s1, s2 float64
	for _, x := range samples {
		s0 := x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}

	power := s1*s1 + s2*s2 - coeff*s1*s2
	if power < 0 {
		power = 0
	}
	return 2 * math.Sqrt(power) / float64(len(samples))
}
