package player

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog/log"
)

const (
	speakerBufferSize   = 250 * time.Millisecond
	volumeCurveExponent = 0.5
	minVolumeDB         = -10.0
	userAgent           = "SonicWave/1.0"
)

// StreamOutput is the real Output: it fetches an MP3 stream over HTTP,
// decodes it and plays it through the system speaker. One instance exists
// per process and is owned by the Engine.
type StreamOutput struct {
	mu           sync.Mutex
	httpClient   *http.Client
	sourceURL    string
	ctrl         *beep.Ctrl
	volume       *effects.Volume
	volumeLevel  float64
	speakerInit  bool
	sampleRate   beep.SampleRate
	cancelStream context.CancelFunc
	streamGen    int
	analyzer     *SampleAnalyzer
	closed       bool

	// eventMu guards events delivery against Close. It is a separate lock
	// because emit runs inside speaker callbacks while mu can be held by
	// callers waiting on the speaker lock.
	eventMu      sync.Mutex
	events       chan Event
	eventsClosed bool
}

// NewStreamOutput creates the speaker-backed output device.
func NewStreamOutput() *StreamOutput {
	return &StreamOutput{
		httpClient: &http.Client{
			Timeout: 0, // No overall timeout, streams are long-lived
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 15 * time.Second,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
				DisableCompression:    true,
			},
		},
		events:      make(chan Event, 16),
		volumeLevel: 1,
		analyzer:    NewSampleAnalyzer(),
	}
}

// Analyzer returns the frequency analyzer fed by the live sample stream.
func (o *StreamOutput) Analyzer() *SampleAnalyzer {
	return o.analyzer
}

// Events returns the device lifecycle channel. It closes on Close.
func (o *StreamOutput) Events() <-chan Event {
	return o.events
}

// SetSource records the stream URL the next Play will fetch.
func (o *StreamOutput) SetSource(url string) {
	o.mu.Lock()
	o.sourceURL = url
	o.mu.Unlock()
}

// Load tears down any current stream so the next Play starts clean.
func (o *StreamOutput) Load() {
	o.mu.Lock()
	if o.cancelStream != nil {
		o.cancelStream()
		o.cancelStream = nil
	}
	if o.speakerInit {
		speaker.Clear()
	}
	o.ctrl = nil
	o.mu.Unlock()

	o.analyzer.Reset()
}

// emit delivers a lifecycle event without blocking. It holds eventMu so a
// concurrent Close cannot close the channel mid-send; events raised after
// Close are dropped.
func (o *StreamOutput) emit(ev Event) {
	o.eventMu.Lock()
	defer o.eventMu.Unlock()
	if o.eventsClosed {
		log.Debug().Str("kind", ev.Kind.String()).Msg("Dropping output event, device closed")
		return
	}
	select {
	case o.events <- ev:
	default:
		log.Debug().Str("kind", ev.Kind.String()).Msg("Dropping output event, channel full")
	}
}

// clearIfCurrent drops the speaker queue only when gen still identifies the
// active stream. A stale teardown must never clear a successor's playback.
func (o *StreamOutput) clearIfCurrent(gen int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.streamGen {
		return false
	}
	speaker.Clear()
	return true
}

// Play fetches and decodes the current source and starts speaker playback.
// It returns once playback is established or classification-ready failed;
// cancelling ctx aborts the attempt and the stream it started.
func (o *StreamOutput) Play(ctx context.Context) error {
	o.mu.Lock()
	url := o.sourceURL
	o.mu.Unlock()

	if url == "" {
		return &PlayError{Kind: KindUnknown, Err: fmt.Errorf("no source set")}
	}

	o.emit(Event{Kind: EventBuffering})

	streamCtx, cancel := context.WithCancel(context.Background())
	o.mu.Lock()
	if o.cancelStream != nil {
		o.cancelStream()
	}
	o.cancelStream = cancel
	o.streamGen++
	gen := o.streamGen
	o.mu.Unlock()

	// The play attempt is bounded by ctx; the established stream lives on
	// under streamCtx until the next Load/Close.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, url, nil)
	if err != nil {
		return &PlayError{Kind: KindUnknown, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &PlayError{Kind: KindAborted, Err: ctx.Err()}
		}
		return &PlayError{Kind: KindNetwork, Err: fmt.Errorf("failed to fetch stream: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return &PlayError{Kind: KindNetwork, Err: fmt.Errorf("stream returned status %d: %s", resp.StatusCode, resp.Status)}
	}

	contentType := resp.Header.Get("Content-Type")
	if unsupportedContentType(contentType) {
		resp.Body.Close()
		return &PlayError{Kind: KindUnsupported, Err: fmt.Errorf("unsupported stream content type %q", contentType)}
	}

	streamer, format, err := mp3.Decode(resp.Body)
	if err != nil {
		resp.Body.Close()
		if ctx.Err() != nil {
			return &PlayError{Kind: KindAborted, Err: ctx.Err()}
		}
		return &PlayError{Kind: KindDecode, Err: fmt.Errorf("failed to decode stream: %w", err)}
	}

	if err := o.initSpeaker(format.SampleRate); err != nil {
		streamer.Close()
		return &PlayError{Kind: KindUnknown, Err: err}
	}

	o.analyzer.SetSampleRate(int(format.SampleRate))

	o.mu.Lock()
	tap := &analyzerTap{streamer: streamer, analyzer: o.analyzer}
	level, silent := volumeExponent(o.volumeLevel)
	o.volume = &effects.Volume{
		Streamer: tap,
		Base:     2,
		Volume:   level,
		Silent:   silent,
	}
	o.ctrl = &beep.Ctrl{Streamer: o.volume}
	ctrl := o.ctrl
	o.mu.Unlock()

	ended := beep.Callback(func() {
		// speaker.Clear on a source switch never reaches this callback;
		// getting here means the stream itself died.
		if streamCtx.Err() == nil {
			o.emit(Event{Kind: EventError, Err: &PlayError{
				Kind: KindNetwork,
				Err:  fmt.Errorf("stream ended unexpectedly"),
			}})
		}
	})
	speaker.Play(beep.Seq(ctrl, ended))

	// Reclaim the body and decoder when the stream is torn down. By the
	// time this goroutine is scheduled a successor stream may already be
	// playing; the speaker is only cleared when gen still names the active
	// stream.
	go func() {
		<-streamCtx.Done()
		o.clearIfCurrent(gen)
		streamer.Close()
		resp.Body.Close()
	}()

	log.Debug().Str("url", url).Int("sampleRate", int(format.SampleRate)).Msg("Stream playing")
	o.emit(Event{Kind: EventCanPlay})
	return nil
}

// Pause halts speaker consumption without dropping the stream.
func (o *StreamOutput) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ctrl == nil {
		return
	}
	speaker.Lock()
	o.ctrl.Paused = true
	speaker.Unlock()
}

// Resume continues a paused stream.
func (o *StreamOutput) Resume() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ctrl == nil {
		return
	}
	speaker.Lock()
	o.ctrl.Paused = false
	speaker.Unlock()
}

// SetVolume applies a linear [0, 1] volume to the live stream. The value is
// remembered for streams started later.
func (o *StreamOutput) SetVolume(v float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.volumeLevel = v
	if o.volume == nil {
		return
	}
	level, silent := volumeExponent(v)
	speaker.Lock()
	o.volume.Volume = level
	o.volume.Silent = silent
	speaker.Unlock()
}

// Close tears down the current stream and closes the event channel.
func (o *StreamOutput) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	if o.cancelStream != nil {
		o.cancelStream()
		o.cancelStream = nil
	}
	if o.speakerInit {
		speaker.Clear()
	}
	o.mu.Unlock()

	o.eventMu.Lock()
	o.eventsClosed = true
	close(o.events)
	o.eventMu.Unlock()
	return nil
}

func (o *StreamOutput) initSpeaker(sampleRate beep.SampleRate) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.speakerInit || sampleRate != o.sampleRate {
		if err := speaker.Init(sampleRate, sampleRate.N(speakerBufferSize)); err != nil {
			return fmt.Errorf("failed to initialize audio output: %w", err)
		}
		o.sampleRate = sampleRate
		o.speakerInit = true
		log.Debug().Int("sampleRate", int(sampleRate)).Msg("Speaker initialized")
	}
	return nil
}

// volumeExponent maps a linear [0, 1] volume onto the dB exponent the
// effects.Volume streamer expects, with a perceptual curve.
func volumeExponent(v float64) (level float64, silent bool) {
	if v <= 0 {
		return minVolumeDB, true
	}
	if v >= 1 {
		return 0, false
	}
	return (1.0 - math.Pow(v, volumeCurveExponent)) * minVolumeDB, false
}

func unsupportedContentType(contentType string) bool {
	if contentType == "" {
		return false // Plenty of stream servers omit it; let the decoder try
	}
	ct := strings.ToLower(contentType)
	for _, ok := range []string{"audio/mpeg", "audio/mp3", "application/octet-stream", "audio/aacp", "audio/aac"} {
		if strings.HasPrefix(ct, ok) {
			return false
		}
	}
	return strings.HasPrefix(ct, "text/") || strings.HasPrefix(ct, "application/json") ||
		strings.HasPrefix(ct, "video/")
}

// analyzerTap forwards decoded samples to the frequency analyzer on their
// way to the speaker.
type analyzerTap struct {
	streamer beep.Streamer
	analyzer *SampleAnalyzer
}

func (t *analyzerTap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.streamer.Stream(samples)
	if n > 0 {
		t.analyzer.Push(samples[:n])
	}
	return n, ok
}

func (t *analyzerTap) Err() error {
	if s, ok := t.streamer.(interface{ Err() error }); ok {
		return s.Err()
	}
	return nil
}
