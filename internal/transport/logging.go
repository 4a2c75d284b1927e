// SPDX-License-Identifier: MIT
package transport

import (
	applog "spectro/internal/log"
	"spectro/internal/spectral"
)

// LoggingSink logs a one-line summary per interval at debug level.
// Useful as a stand-in sink while wiring a pipeline.
type LoggingSink struct{}

var _ spectral.Sink = (*LoggingSink)(nil)

// NewLoggingSink returns a sink that only logs.
func NewLoggingSink() *LoggingSink {
	return &LoggingSink{}
}

// Emit logs the interval and never fails.
func (s *LoggingSink) Emit(sp *spectral.Spectrum) error {
	if len(sp.Magnitudes) == 0 {
		return nil
	}
	mags := sp.Magnitudes[0]
	peak, peakBand := mags[0], 0
	for i, v := range mags {
		if v > peak {
			peak, peakBand = v, i
		}
	}
	applog.Debugf("transport: interval end=%s runs=%d channels=%d peak=%.1fdB@band%d",
		sp.EndTime, sp.FFTRuns, len(sp.Magnitudes), peak, peakBand)
	return nil
}

// Close is a no-op.
func (s *LoggingSink) Close() error { return nil }
