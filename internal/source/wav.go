// SPDX-License-Identifier: MIT
package source

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "spectro/internal/log"
	"spectro/internal/spectral"
)

// WAVInfo describes a WAV file well enough to configure an analyzer
// before streaming it.
type WAVInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
	Encoding   spectral.Encoding
}

// ProbeWAV reads the file header and reports format and duration.
func ProbeWAV(path string) (WAVInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return WAVInfo{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	d.ReadInfo()
	if !d.IsValidFile() {
		return WAVInfo{}, fmt.Errorf("%s is not a valid WAV file", path)
	}

	enc, err := encodingForDepth(int(d.BitDepth))
	if err != nil {
		return WAVInfo{}, err
	}
	dur, err := d.Duration()
	if err != nil {
		return WAVInfo{}, fmt.Errorf("reading duration of %s: %w", path, err)
	}

	return WAVInfo{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
		Duration:   dur,
		Encoding:   enc,
	}, nil
}

func encodingForDepth(depth int) (spectral.Encoding, error) {
	switch depth {
	case 16:
		return spectral.Int16Max, nil
	case 24:
		return spectral.Int24Max, nil
	case 32:
		return spectral.Int32Max, nil
	default:
		return 0, fmt.Errorf("unsupported WAV bit depth: %d", depth)
	}
}

// StreamWAV pushes the PCM content of a WAV file through the analyzer
// in chunks of chunkFrames frames, carrying stream time derived from
// the frame count. The analyzer must already be configured to match
// ProbeWAV's result. The first buffer is flagged discontinuous.
func StreamWAV(path string, a *spectral.Analyzer, chunkFrames int) error {
	info, err := ProbeWAV(path)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	d.ReadInfo()

	width := info.BitDepth / 8
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: info.Channels,
			SampleRate:  info.SampleRate,
		},
		Data: make([]int, chunkFrames*info.Channels),
	}
	packed := make([]byte, chunkFrames*info.Channels*width)

	var framesDone uint64
	first := true
	for {
		n, err := d.PCMBuffer(buf)
		if err != nil {
			return fmt.Errorf("reading PCM from %s: %w", path, err)
		}
		if n == 0 {
			break
		}
		if n%info.Channels != 0 {
			return fmt.Errorf("%s: decoder returned %d samples, not frame aligned", path, n)
		}

		for i := 0; i < n; i++ {
			packSample(packed[i*width:], buf.Data[i], width)
		}

		pushErr := a.Push(spectral.Buffer{
			Data:    packed[:n*width],
			Discont: first,
			Time:    time.Duration(framesDone * uint64(time.Second) / uint64(info.SampleRate)),
			HasTime: true,
		})
		if pushErr != nil {
			return pushErr
		}
		first = false
		framesDone += uint64(n / info.Channels)
	}

	applog.Debugf("source: streamed %d frames from %s", framesDone, path)
	return nil
}

// packSample writes one sample little-endian at the given width.
func packSample(out []byte, v, width int) {
	switch width {
	case 2:
		binary.LittleEndian.PutUint16(out, uint16(int16(v)))
	case 3:
		out[0] = byte(v)
		out[1] = byte(v >> 8)
		out[2] = byte(v >> 16)
	case 4:
		binary.LittleEndian.PutUint32(out, uint32(int32(v)))
	}
}
