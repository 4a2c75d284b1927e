// SPDX-License-Identifier: MIT
package source

import (
	"encoding/binary"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"spectro/internal/config"
	applog "spectro/internal/log"
	"spectro/internal/spectral"
)

// Capture streams live PortAudio input into a spectral analyzer. Each
// callback packs the int32 samples into a preallocated byte buffer and
// pushes it with the running stream time; the analyzer handles framing
// from there. The capture encoding is always spectral.Int32Max.
type Capture struct {
	analyzer *spectral.Analyzer

	device  *portaudio.DeviceInfo
	latency time.Duration
	stream  *portaudio.Stream

	channels   int
	sampleRate int
	packed     []byte // framesPerBuffer*channels*4 bytes, reused per callback
	framesDone uint64
	discont    bool // mark the first buffer after (re)start

	// Recording tee, guarded by the atomic flag.
	isRecording int32
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer
}

// NewCapture resolves the input device and preallocates buffers.
// PortAudio must already be initialized.
func NewCapture(cfg *config.Config, analyzer *spectral.Analyzer) (*Capture, error) {
	device, err := InputDevice(cfg.Audio.Device)
	if err != nil {
		return nil, err
	}

	c := &Capture{
		analyzer:   analyzer,
		device:     device,
		channels:   cfg.Audio.Channels,
		sampleRate: int(cfg.Audio.SampleRate),
		packed:     make([]byte, cfg.Audio.FramesPerBuffer*cfg.Audio.Channels*4),
	}
	if cfg.Audio.LowLatency {
		c.latency = device.DefaultLowInputLatency
	} else {
		c.latency = device.DefaultHighInputLatency
	}
	return c, nil
}

// Encoding returns the sample encoding Capture delivers.
func (c *Capture) Encoding() spectral.Encoding { return spectral.Int32Max }

// Start opens and starts the input stream. The first pushed buffer is
// flagged discontinuous so interval counters restart cleanly.
func (c *Capture) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: c.channels,
			Device:   c.device,
			Latency:  c.latency,
		},
		FramesPerBuffer: len(c.packed) / (c.channels * 4),
		SampleRate:      float64(c.sampleRate),
	}

	stream, err := portaudio.OpenStream(params, c.processInput)
	if err != nil {
		return err
	}
	c.stream = stream
	c.discont = true
	c.framesDone = 0

	if err := c.stream.Start(); err != nil {
		c.stream.Close()
		c.stream = nil
		return err
	}
	applog.Infof("source: capturing from %q at %d Hz, %d channel(s)",
		c.device.Name, c.sampleRate, c.channels)
	return nil
}

// Stop stops and closes the input stream.
func (c *Capture) Stop() error {
	if c.stream == nil {
		return nil
	}
	if err := c.stream.Stop(); err != nil {
		return err
	}
	if err := c.stream.Close(); err != nil {
		return err
	}
	c.stream = nil
	return nil
}

// processInput is the PortAudio callback. Performance critical: only
// preallocated buffers, no dynamic allocation.
func (c *Capture) processInput(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	n := len(in) * 4
	for i, s := range in {
		binary.LittleEndian.PutUint32(c.packed[i*4:], uint32(s))
	}

	frames := uint64(len(in) / c.channels)
	err := c.analyzer.Push(spectral.Buffer{
		Data:    c.packed[:n],
		Discont: c.discont,
		Time:    time.Duration(c.framesDone * uint64(time.Second) / uint64(c.sampleRate)),
		HasTime: true,
	})
	c.discont = false
	c.framesDone += frames
	if err != nil {
		applog.Errorf("source: push failed: %v", err)
	}

	if atomic.LoadInt32(&c.isRecording) == 1 && c.wavEncoder != nil {
		c.sampleBuf.Data = c.sampleBuf.Data[:cap(c.sampleBuf.Data)][:len(in)]
		for i, s := range in {
			c.sampleBuf.Data[i] = int(s)
		}
		if err := c.wavEncoder.Write(c.sampleBuf); err != nil {
			applog.Errorf("source: WAV write failed: %v", err)
		}
	}
}

// Close stops any recording and the input stream.
func (c *Capture) Close() error {
	if atomic.LoadInt32(&c.isRecording) == 1 {
		if err := c.StopRecording(); err != nil {
			return err
		}
	}
	return c.Stop()
}
