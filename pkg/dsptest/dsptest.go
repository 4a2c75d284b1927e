// SPDX-License-Identifier: MIT
//
// Package dsptest provides signal generators and collection helpers for
// testing the analysis pipeline. Generators emit packed little-endian
// bytes, the same shape the analyzer ingests.
package dsptest

import (
	"encoding/binary"
	"math"

	"spectro/internal/spectral"
)

// CollectSink implements spectral.Sink and stores every emitted
// spectrum for later inspection.
type CollectSink struct {
	Spectra []*spectral.Spectrum
}

// Emit deep-copies the spectrum; the analyzer reuses its buffers.
func (c *CollectSink) Emit(s *spectral.Spectrum) error {
	cp := &spectral.Spectrum{
		EndTime:  s.EndTime,
		HasTime:  s.HasTime,
		Duration: s.Duration,
		FFTRuns:  s.FFTRuns,
	}
	cp.Magnitudes = make([][]float64, len(s.Magnitudes))
	for i, m := range s.Magnitudes {
		cp.Magnitudes[i] = append([]float64(nil), m...)
	}
	// Keep a nil Phases nil; phase tracking off means no phase data.
	if s.Phases != nil {
		cp.Phases = make([][]float64, len(s.Phases))
		for i, p := range s.Phases {
			cp.Phases[i] = append([]float64(nil), p...)
		}
	}
	c.Spectra = append(c.Spectra, cp)
	return nil
}

// Reset discards collected spectra.
func (c *CollectSink) Reset() { c.Spectra = nil }

// SineInt16 generates frames of a sine wave at the given frequency,
// packed as little-endian int16 across channels (same signal on every
// channel), at 90% of full scale.
func SineInt16(frames, channels int, sampleRate, frequency float64) []byte {
	out := make([]byte, frames*channels*2)
	for i := 0; i < frames; i++ {
		t := float64(i) / sampleRate
		v := int16(math.Sin(2*math.Pi*frequency*t) * math.MaxInt16 * 0.9)
		for c := 0; c < channels; c++ {
			binary.LittleEndian.PutUint16(out[(i*channels+c)*2:], uint16(v))
		}
	}
	return out
}

// SineFloat64 generates frames of a sine wave packed as little-endian
// float64 at the given amplitude.
func SineFloat64(frames, channels int, sampleRate, frequency, amplitude float64) []byte {
	out := make([]byte, frames*channels*8)
	for i := 0; i < frames; i++ {
		t := float64(i) / sampleRate
		v := math.Sin(2*math.Pi*frequency*t) * amplitude
		for c := 0; c < channels; c++ {
			binary.LittleEndian.PutUint64(out[(i*channels+c)*8:], math.Float64bits(v))
		}
	}
	return out
}

// SilenceInt16 generates frames of packed int16 silence.
func SilenceInt16(frames, channels int) []byte {
	return make([]byte, frames*channels*2)
}

// FindPeakBand returns the index of the largest magnitude.
func FindPeakBand(magnitudes []float64) int {
	peak := 0
	for i, m := range magnitudes {
		if m > magnitudes[peak] {
			peak = i
		}
	}
	return peak
}
