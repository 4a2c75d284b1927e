// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"testing"

	"spectro/internal/spectral"
)

type recordingSink struct {
	emitted []*spectral.Spectrum
	err     error
	closed  bool
}

func (r *recordingSink) Emit(s *spectral.Spectrum) error {
	r.emitted = append(r.emitted, s)
	return r.err
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}

func TestFanoutDeliversToAll(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	f := Fanout{a, b}

	s := &spectral.Spectrum{FFTRuns: 3}
	if err := f.Emit(s); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(a.emitted) != 1 || len(b.emitted) != 1 {
		t.Errorf("expected both sinks to receive the spectrum: %d, %d",
			len(a.emitted), len(b.emitted))
	}
	if a.emitted[0] != s {
		t.Error("sink received a different spectrum")
	}
}

func TestFanoutContinuesPastFailures(t *testing.T) {
	failure := errors.New("sink down")
	a := &recordingSink{err: failure}
	b := &recordingSink{}
	f := Fanout{a, b}

	err := f.Emit(&spectral.Spectrum{})
	if !errors.Is(err, failure) {
		t.Errorf("expected the sink error to surface, got %v", err)
	}
	if len(b.emitted) != 1 {
		t.Error("later sink skipped after an earlier failure")
	}
}

func TestFanoutEmpty(t *testing.T) {
	if err := (Fanout{}).Emit(&spectral.Spectrum{}); err != nil {
		t.Errorf("empty fanout: %v", err)
	}
}

func TestCloseAll(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	plain := spectral.SinkFunc(func(*spectral.Spectrum) error { return nil })

	if err := CloseAll(a, plain, b); err != nil {
		t.Fatalf("CloseAll: %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("expected both closers to be closed")
	}
}

func TestLoggingSink(t *testing.T) {
	s := NewLoggingSink()
	if err := s.Emit(&spectral.Spectrum{}); err != nil {
		t.Errorf("empty spectrum: %v", err)
	}
	if err := s.Emit(&spectral.Spectrum{
		Magnitudes: [][]float64{{-60, -20, -40}},
	}); err != nil {
		t.Errorf("Emit: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
