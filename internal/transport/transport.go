// SPDX-License-Identifier: MIT
// Package transport publishes completed spectral intervals to the
// outside world. Every sink implements spectral.Sink; emission happens
// on the goroutine driving the analyzer, so sinks hand data off and
// return instead of blocking.
package transport

import (
	"errors"

	"spectro/internal/spectral"
)

// Fanout broadcasts each spectrum to several sinks. All sinks receive
// the spectrum even when one fails; the errors are joined.
type Fanout []spectral.Sink

var _ spectral.Sink = (Fanout)(nil)

// Emit forwards s to every sink in order.
func (f Fanout) Emit(s *spectral.Spectrum) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Emit(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Closer pairs a sink with resource cleanup.
type Closer interface {
	Close() error
}

// CloseAll closes every sink that has a Close method, joining errors.
func CloseAll(sinks ...spectral.Sink) error {
	var errs []error
	for _, s := range sinks {
		if c, ok := s.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
