// SPDX-License-Identifier: MIT
// Package render turns completed spectral intervals into pixel columns
// of a scrolling spectrogram image. The shading curve lives here as a
// standalone function; it is shared by every rendering path and is
// testable without any audio or FFT machinery.
package render

// Curve is the two-segment perceptual shading curve. A dB value is
// first normalized against Floor into a 0..1 level; levels below the
// breakpoint Tx are de-emphasized with a parabolic segment (pushing
// background noise toward black) and levels at or above Tx map
// near-linearly so foreground detail keeps its contrast. The segments
// meet exactly at (Tx, Ty).
type Curve struct {
	Floor float64 // noise floor in dB, < 0
	Tx    float64 // inflection level, in (0,1)
	Ty    float64 // curve value at Tx, in (0,1)
}

// DefaultCurve matches the reference spectrogram rendering: a -60 dB
// floor with the inflection at (0.6, 0.85).
var DefaultCurve = Curve{Floor: -60, Tx: 0.6, Ty: 0.85}

// Shade maps a dB value to a visual intensity in [0,1]. Values at or
// below the floor map to 0, values at or above 0 dB map to 1, and the
// function is continuous and non-decreasing in between.
func (c Curve) Shade(db float64) float64 {
	level := (db - c.Floor) / abs(c.Floor)
	if level <= 0 {
		return 0
	}
	if level > 1 {
		level = 1
	}

	var shade float64
	if level < c.Tx {
		shade = c.Ty / (c.Tx * c.Tx) * level * level
	} else {
		m := (1 - c.Ty) / (1 - c.Tx)
		b := c.Ty - m*c.Tx
		shade = m*level + b
	}

	if shade < 0 {
		return 0
	}
	if shade > 1 {
		return 1
	}
	return shade
}

// Byte returns the shade scaled to an 8-bit intensity.
func (c Curve) Byte(db float64) uint8 {
	return uint8(c.Shade(db) * 0xff)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
