// SPDX-License-Identifier: MIT
package spectral

// channelState holds the mutable per-channel analysis buffers: the
// circular input ring, the linear window scratch copy, the complex
// spectrum and the magnitude/phase accumulators. All buffers are sized
// at allocation time and never grow; a configuration change that affects
// their sizes discards the whole set and allocates fresh state.
type channelState struct {
	ring      []float64    // circular input, nfft frames
	scratch   []float64    // linearized + windowed snapshot, nfft frames
	bins      []complex128 // forward FFT output, bands bins
	magnitude []float64    // accumulated dB per band, across FFT runs of one interval
	phase     []float64    // accumulated phase per band
}

func newChannelState(nfft, bands int) *channelState {
	return &channelState{
		ring:      make([]float64, nfft),
		scratch:   make([]float64, nfft),
		bins:      make([]complex128, bands),
		magnitude: make([]float64, bands),
		phase:     make([]float64, bands),
	}
}

// resetAccumulators zeroes the magnitude and phase sums for the next
// interval. The input ring is deliberately left alone: the FFT window
// keeps sliding over the latest nfft frames across interval boundaries.
func (cs *channelState) resetAccumulators() {
	for i := range cs.magnitude {
		cs.magnitude[i] = 0
	}
	for i := range cs.phase {
		cs.phase[i] = 0
	}
}
