// SPDX-License-Identifier: MIT
package spectral

import (
	"math"
	"testing"
	"time"
)

func TestParseWindowFunc(t *testing.T) {
	tests := []struct {
		name string
		want WindowFunc
	}{
		{"hamming", Hamming},
		{"", Hamming}, // empty picks the default
		{"Hann", Hann},
		{"hanning", Hann},
		{"BLACKMAN", Blackman},
		{"blackmannuttall", BlackmanNuttall},
		{"bartletthann", BartlettHann},
		{"lanczos", Lanczos},
		{"nuttall", Nuttall},
	}
	for _, tt := range tests {
		got, err := ParseWindowFunc(tt.name)
		if err != nil {
			t.Errorf("ParseWindowFunc(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWindowFunc(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}

	if _, err := ParseWindowFunc("kaiser"); err == nil {
		t.Error("expected error for unsupported window name")
	}
}

func TestWindowCoefficients(t *testing.T) {
	coeffs := windowCoefficients(254, Hamming)
	if len(coeffs) != 254 {
		t.Fatalf("expected 254 coefficients, got %d", len(coeffs))
	}
	// Hamming never reaches zero; its endpoints sit near 0.08.
	if coeffs[0] < 0.05 || coeffs[0] > 0.1 {
		t.Errorf("Hamming endpoint %g outside the expected range", coeffs[0])
	}
	for i, c := range coeffs {
		if c <= 0 || c > 1 {
			t.Fatalf("coefficient %d = %g outside (0, 1]", i, c)
		}
	}
	// Symmetric window: first and last coefficients match.
	if math.Abs(coeffs[0]-coeffs[len(coeffs)-1]) > 1e-9 {
		t.Errorf("window not symmetric: %g vs %g", coeffs[0], coeffs[len(coeffs)-1])
	}

	hann := windowCoefficients(64, Hann)
	if hann[0] > 1e-9 {
		t.Errorf("Hann endpoint %g, want 0", hann[0])
	}
}

func TestBandFrequency(t *testing.T) {
	cfg := Config{SampleRate: 44100, Bands: 129, Interval: time.Second} // nfft = 256
	if got := cfg.BandFrequency(0); got != 0 {
		t.Errorf("band 0 at %g Hz, want 0", got)
	}
	if got := cfg.BandFrequency(1); math.Abs(got-44100.0/256) > 1e-9 {
		t.Errorf("band 1 at %g Hz, want %g", got, 44100.0/256)
	}
	// The top band sits at half the sample rate.
	if got := cfg.BandFrequency(128); math.Abs(got-22050) > 1e-9 {
		t.Errorf("band 128 at %g Hz, want 22050", got)
	}
	if got := cfg.BandFrequency(129); got != 0 {
		t.Errorf("out-of-range band reported %g Hz, want 0", got)
	}
}

func BenchmarkRunFFT(b *testing.B) {
	a := NewAnalyzer(nil)
	err := a.Configure(Config{
		SampleRate:  44100,
		Channels:    1,
		Encoding:    Float64,
		Bands:       128,
		ThresholdDB: -60,
		Interval:    100 * time.Millisecond,
	})
	if err != nil {
		b.Fatal(err)
	}
	cs := a.channels[0]
	for i := range cs.ring {
		cs.ring[i] = math.Sin(float64(i) / 10)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		a.runFFT(cs, 0)
	}
}
