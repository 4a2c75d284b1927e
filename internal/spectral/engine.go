// SPDX-License-Identifier: MIT
/*
Package spectral implements a streaming spectral analysis engine. Raw
interleaved PCM arrives in arbitrarily sized byte buffers; the engine
decodes them into per-channel ring buffers, runs windowed FFTs over a
sliding nfft-frame window, and emits one averaged magnitude (and
optionally phase) spectrum per configured interval, with sample-accurate
interval timing even when the interval is not an integer number of
sample periods.

The engine owns no goroutines: Push processes a buffer to completion
before returning, and a single mutex serializes Push against Configure
so reconfiguration can never race an in-flight block copy.
*/
package spectral

import (
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/dsp/fourier"

	applog "spectro/internal/log"
)

const nsPerSecond = uint64(time.Second)

// Config holds the immutable analysis parameters. A successful Configure
// call discards all channel state and restarts interval timing; partial
// reconfiguration is deliberately not supported.
type Config struct {
	SampleRate   int           // input rate in Hz, > 0
	Channels     int           // interleaved channel count, > 0
	Encoding     Encoding      // wire format of the raw samples
	Bands        int           // frequency bands per spectrum, >= 2
	MultiChannel bool          // emit one spectrum per channel instead of a downmix
	ThresholdDB  float64       // dB floor, <= 0; magnitudes are clamped here
	Interval     time.Duration // time between emitted spectra, > 0
	Window       WindowFunc    // FFT window, default Hamming
	TrackPhase   bool          // accumulate per-band phase alongside magnitude
}

// NFFT returns the FFT window length in frames, 2*bands-2.
func (c Config) NFFT() int { return 2*c.Bands - 2 }

// Validate checks the configuration the way Configure will.
func (c Config) Validate() error {
	if c.Bands < 2 {
		return fmt.Errorf("%w: bands must be >= 2, got %d", ErrInvalidConfig, c.Bands)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("%w: channel count must be positive, got %d", ErrInvalidConfig, c.Channels)
	}
	if !c.Encoding.valid() {
		return fmt.Errorf("%w: unknown sample encoding %d", ErrInvalidConfig, int(c.Encoding))
	}
	if c.ThresholdDB > 0 {
		return fmt.Errorf("%w: threshold must be <= 0 dB, got %g", ErrInvalidConfig, c.ThresholdDB)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %s", ErrInvalidConfig, c.Interval)
	}
	return nil
}

// Buffer is one chunk of raw input. Data length must be an exact
// multiple of the frame size (sample width times channel count).
// Discont signals that stream time jumped (e.g. after a seek) and
// restarts the interval/FFT counters without touching channel buffers.
type Buffer struct {
	Data    []byte
	Discont bool
	Time    time.Duration // stream time of the first frame
	HasTime bool
}

// Spectrum is one completed analysis interval. Magnitudes holds one
// array per output channel (a single downmixed array unless the engine
// runs multi-channel); values are dB averaged over the FFT runs of the
// interval. Phases is nil unless phase tracking is enabled.
type Spectrum struct {
	EndTime    time.Duration `json:"endTime"`
	HasTime    bool          `json:"hasTime"`
	Duration   time.Duration `json:"duration"`
	FFTRuns    int           `json:"fftRuns"`
	Magnitudes [][]float64   `json:"magnitude"`
	Phases     [][]float64   `json:"phase,omitempty"`
}

// Sink receives completed intervals, strictly in completion order, on
// the goroutine that called Push. Implementations that need to block
// should hand the spectrum off and return.
type Sink interface {
	Emit(s *Spectrum) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(s *Spectrum) error

func (f SinkFunc) Emit(s *Spectrum) error { return f(s) }

// Analyzer is the streaming engine instance. The zero value is unusable;
// call Configure before the first Push.
type Analyzer struct {
	mu         sync.Mutex
	cfg        Config
	configured bool
	sink       Sink

	// Derived at Configure time.
	nfft        int
	outputChans int
	sampleWidth int
	frameSize   int
	fullScale   float64
	read        readerFunc
	fft         *fourier.FFT
	window      []float64
	channels    []*channelState

	// Scheduler state.
	writePos          int    // ring write position, 0..nfft-1
	numFrames         uint64 // frames consumed since the last emission
	numFFT            int    // FFT runs since the last emission
	framesPerInterval uint64 // floor(interval * rate / 1s), at least 1
	framesTodo        uint64 // frame budget of the current interval
	errPerInterval    uint64 // ns-scaled remainder of the floor division
	accumError        uint64 // accumulated remainder, drained one frame per second
	intervalStart     time.Duration
	hasIntervalStart  bool
}

// NewAnalyzer returns an unconfigured analyzer that will emit to sink.
// A nil sink is allowed; completed intervals are then dropped.
func NewAnalyzer(sink Sink) *Analyzer {
	return &Analyzer{sink: sink}
}

// SetSink replaces the emission target. Safe to call between pushes.
func (a *Analyzer) SetSink(sink Sink) {
	a.mu.Lock()
	a.sink = sink
	a.mu.Unlock()
}

// Configure validates cfg, discards all channel state, and derives the
// interval timing. It must be called before the first Push and may be
// called again at any time; it never runs concurrently with Push.
func (a *Analyzer) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.cfg = cfg
	a.nfft = cfg.NFFT()
	a.outputChans = 1
	if cfg.MultiChannel {
		a.outputChans = cfg.Channels
	}
	a.sampleWidth = cfg.Encoding.SampleWidth()
	a.frameSize = a.sampleWidth * cfg.Channels
	a.fullScale = cfg.Encoding.fullScale()
	a.read = cfg.Encoding.reader(!cfg.MultiChannel)
	a.fft = fourier.NewFFT(a.nfft)
	a.window = windowCoefficients(a.nfft, cfg.Window)

	a.channels = make([]*channelState, a.outputChans)
	for c := range a.channels {
		a.channels[c] = newChannelState(a.nfft, cfg.Bands)
	}

	// Frames per interval by floor division; the nanosecond remainder
	// accumulates and is drained one extra frame per accumulated second,
	// so the average interval length converges on the configured one.
	total := uint64(cfg.Interval) * uint64(cfg.SampleRate)
	a.framesPerInterval = total / nsPerSecond
	a.errPerInterval = total % nsPerSecond
	if a.framesPerInterval == 0 {
		a.framesPerInterval = 1
	}
	a.framesTodo = a.framesPerInterval

	a.writePos = 0
	a.flushLocked()
	a.hasIntervalStart = false
	a.configured = true

	applog.Infof("spectral: configured bands=%d nfft=%d rate=%d channels=%d/%d enc=%s interval=%s fpi=%d err=%dns",
		cfg.Bands, a.nfft, cfg.SampleRate, cfg.Channels, a.outputChans,
		cfg.Encoding, cfg.Interval, a.framesPerInterval, a.errPerInterval)
	return nil
}

// Flush restarts the interval/FFT counters, as a discontinuity does.
// Channel buffers and configuration are kept.
func (a *Analyzer) Flush() {
	a.mu.Lock()
	a.flushLocked()
	a.mu.Unlock()
}

func (a *Analyzer) flushLocked() {
	a.numFrames = 0
	a.numFFT = 0
	a.accumError = 0
}

// FramesPerInterval reports the derived integer frame budget.
func (a *Analyzer) FramesPerInterval() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.framesPerInterval
}

// FramesSinceEmit reports how many frames of the current interval have
// been consumed. Exposed for tests and diagnostics.
func (a *Analyzer) FramesSinceEmit() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.numFrames
}

// Push feeds one buffer through the engine, triggering FFT runs and
// interval emissions at the appropriate frame boundaries before it
// returns. The error is ErrNotConfigured or ErrMalformedBuffer for bad
// calls (engine state is untouched in both cases), or the first error
// returned by the sink while processing this buffer; sink errors do not
// stop frame accounting.
func (a *Analyzer) Push(b Buffer) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.configured {
		return ErrNotConfigured
	}
	if len(b.Data)%a.frameSize != 0 {
		return fmt.Errorf("%w: %d bytes with %d-byte frames",
			ErrMalformedBuffer, len(b.Data), a.frameSize)
	}

	if b.Discont {
		applog.Debugf("spectral: discontinuity, restarting interval")
		a.flushLocked()
	}
	if a.numFrames == 0 {
		a.intervalStart = b.Time
		a.hasIntervalStart = b.HasTime
	}

	data := b.Data
	var emitErr error
	for len(data) >= a.frameSize {
		// The block processed next is the minimum of: frames until the
		// FFT window fills, frames until the interval completes, and
		// frames left in this buffer. This respects all three
		// boundaries without overrun or leftover partial frames.
		block := a.framesTodo - a.numFrames
		if avail := uint64(len(data) / a.frameSize); block > avail {
			block = avail
		}
		if fftTodo := uint64(a.nfft) - a.numFrames%uint64(a.nfft); block > fftTodo {
			block = fftTodo
		}

		for c := 0; c < a.outputChans; c++ {
			cs := a.channels[c]
			a.read(data[c*a.sampleWidth:], cs.ring, int(block),
				a.cfg.Channels, a.fullScale, a.writePos, a.nfft)
		}
		data = data[int(block)*a.frameSize:]
		a.writePos = (a.writePos + int(block)) % a.nfft
		a.numFrames += block

		fullInterval := a.numFrames == a.framesTodo

		// Run an FFT at every filled window, or once at interval end if
		// none has run yet, so even an interval shorter than one FFT
		// window emits a spectrum.
		if a.numFrames%uint64(a.nfft) == 0 || (fullInterval && a.numFFT == 0) {
			for _, cs := range a.channels {
				a.runFFT(cs, a.writePos)
			}
			a.numFFT++
		}

		if fullInterval {
			if err := a.closeInterval(); err != nil && emitErr == nil {
				emitErr = err
			}
		}
	}

	return emitErr
}

// closeInterval emits the accumulated spectrum, refreshes the frame
// budget of the next interval (draining accumulated rounding error), and
// advances the interval timestamp by the frames just processed.
func (a *Analyzer) closeInterval() error {
	a.framesTodo = a.framesPerInterval
	if a.accumError >= nsPerSecond {
		a.accumError -= nsPerSecond
		a.framesTodo++
	}
	a.accumError += a.errPerInterval

	elapsed := time.Duration(a.numFrames * nsPerSecond / uint64(a.cfg.SampleRate))
	s := &Spectrum{
		HasTime:    a.hasIntervalStart,
		Duration:   elapsed,
		FFTRuns:    a.numFFT,
		Magnitudes: make([][]float64, a.outputChans),
	}
	if a.hasIntervalStart {
		s.EndTime = a.intervalStart + elapsed
		a.intervalStart = s.EndTime
	}
	if a.cfg.TrackPhase {
		s.Phases = make([][]float64, a.outputChans)
	}

	// One documented accumulation policy for every output path: the
	// per-run dB sums are averaged over the number of FFT runs in the
	// interval, so an interval value is the time-averaged dB spectrum.
	runs := float64(a.numFFT)
	for c, cs := range a.channels {
		mags := make([]float64, a.cfg.Bands)
		for i, v := range cs.magnitude {
			mags[i] = v / runs
		}
		s.Magnitudes[c] = mags
		if a.cfg.TrackPhase {
			phases := make([]float64, a.cfg.Bands)
			for i, v := range cs.phase {
				phases[i] = v / runs
			}
			s.Phases[c] = phases
		}
		cs.resetAccumulators()
	}
	a.numFrames = 0
	a.numFFT = 0

	if a.sink == nil {
		return nil
	}
	return a.sink.Emit(s)
}
