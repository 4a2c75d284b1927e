// SPDX-License-Identifier: MIT
package spectral

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the FFT window function applied to every analysis
// snapshot. The default for spectrogram analysis is Hamming.
type WindowFunc int

const (
	Hamming WindowFunc = iota
	Hann
	Blackman
	BlackmanNuttall
	BartlettHann
	Lanczos
	Nuttall
)

func (w WindowFunc) String() string {
	switch w {
	case Hamming:
		return "hamming"
	case Hann:
		return "hann"
	case Blackman:
		return "blackman"
	case BlackmanNuttall:
		return "blackmannuttall"
	case BartlettHann:
		return "bartletthann"
	case Lanczos:
		return "lanczos"
	case Nuttall:
		return "nuttall"
	default:
		return "unknown"
	}
}

// ParseWindowFunc converts a string name (case-insensitive) to a
// WindowFunc. Returns Hamming and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "hamming", "":
		return Hamming, nil
	case "hann", "hanning":
		return Hann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "bartletthann":
		return BartlettHann, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hamming, fmt.Errorf("unknown FFT window function name: %q", name)
	}
}

// windowCoefficients precomputes the window as a coefficient slice so
// the hot path multiplies instead of re-evaluating the window function.
// The slice is initialized to 1.0 first because the gonum window
// functions scale the values already present.
func windowCoefficients(n int, w WindowFunc) []float64 {
	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch w {
	case Hann:
		window.Hann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		window.Hamming(coeffs)
	}
	return coeffs
}

// runFFT analyzes the latest nfft frames of one channel. The ring is
// linearized into scratch starting at pos (the current write position,
// so the newest sample lands at the end of the window), windowed, and
// transformed. Per-band magnitude in dB is clamped at the configured
// threshold and accumulated; log10(0) yields -Inf, which the clamp
// catches, so silence accumulates exactly the threshold value.
func (a *Analyzer) runFFT(cs *channelState, pos int) {
	nfft := a.nfft
	for i := 0; i < nfft; i++ {
		cs.scratch[i] = cs.ring[(pos+i)%nfft] * a.window[i]
	}

	a.fft.Coefficients(cs.bins, cs.scratch)

	norm := float64(nfft) * float64(nfft)
	threshold := a.cfg.ThresholdDB
	for i, bin := range cs.bins {
		re, im := real(bin), imag(bin)
		v := 10 * math.Log10((re*re+im*im)/norm)
		if v < threshold {
			v = threshold
		}
		cs.magnitude[i] += v
	}
	if a.cfg.TrackPhase {
		for i, bin := range cs.bins {
			cs.phase[i] += math.Atan2(imag(bin), real(bin))
		}
	}
}

// BandFrequency returns the center frequency in Hz of band index i for
// the given configuration. Band spacing is sampleRate/nfft.
func (c Config) BandFrequency(i int) float64 {
	nfft := 2*c.Bands - 2
	if nfft <= 0 || i < 0 || i >= c.Bands {
		return 0
	}
	return float64(i) * float64(c.SampleRate) / float64(nfft)
}
