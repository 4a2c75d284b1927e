// SPDX-License-Identifier: MIT
package render

import (
	"math"
	"testing"
)

func TestShadeBounds(t *testing.T) {
	c := DefaultCurve
	tests := []struct {
		name string
		db   float64
		want float64
	}{
		{"at the floor", -60, 0},
		{"below the floor", -120, 0},
		{"at zero dB", 0, 1},
		{"above zero dB", 6, 1},
	}
	for _, tt := range tests {
		if got := c.Shade(tt.db); got != tt.want {
			t.Errorf("%s: Shade(%g) = %g, want %g", tt.name, tt.db, got, tt.want)
		}
	}
}

func TestShadeContinuousAtBreakpoint(t *testing.T) {
	c := DefaultCurve
	// The parabolic and linear segments must meet at (Tx, Ty).
	atTx := c.Floor + c.Tx*abs(c.Floor) // dB value whose level is exactly Tx
	if got := c.Shade(atTx); math.Abs(got-c.Ty) > 1e-12 {
		t.Errorf("Shade at breakpoint = %g, want %g", got, c.Ty)
	}

	eps := 1e-9
	below := c.Shade(atTx - eps)
	above := c.Shade(atTx + eps)
	if math.Abs(above-below) > 1e-6 {
		t.Errorf("discontinuity at breakpoint: %g vs %g", below, above)
	}
}

func TestShadeMonotonic(t *testing.T) {
	c := DefaultCurve
	prev := -1.0
	for db := -70.0; db <= 5.0; db += 0.1 {
		s := c.Shade(db)
		if s < prev {
			t.Fatalf("Shade decreases at %g dB: %g < %g", db, s, prev)
		}
		prev = s
	}
}

func TestShadeDeEmphasizesLowLevels(t *testing.T) {
	c := DefaultCurve
	// At half the breakpoint level the parabola sits well below the
	// straight line through the origin and (Tx, Ty).
	level := c.Tx / 2
	db := c.Floor + level*abs(c.Floor)
	linear := c.Ty / c.Tx * level
	if got := c.Shade(db); got >= linear {
		t.Errorf("Shade(%g dB) = %g, expected below the linear %g", db, got, linear)
	}
}

func TestShadeCustomFloor(t *testing.T) {
	c := Curve{Floor: -100, Tx: 0.6, Ty: 0.85}
	if got := c.Shade(-100); got != 0 {
		t.Errorf("Shade at -100 dB floor = %g, want 0", got)
	}
	if got := c.Shade(0); got != 1 {
		t.Errorf("Shade(0) = %g, want 1", got)
	}
	// A value dim under the default floor is visible with the deeper one.
	if got := c.Shade(-80); got <= 0 {
		t.Errorf("Shade(-80) = %g, want > 0 with a -100 dB floor", got)
	}
}

func TestByte(t *testing.T) {
	c := DefaultCurve
	if got := c.Byte(-60); got != 0 {
		t.Errorf("Byte at floor = %d, want 0", got)
	}
	if got := c.Byte(0); got != 255 {
		t.Errorf("Byte at 0 dB = %d, want 255", got)
	}
}

func BenchmarkShade(b *testing.B) {
	c := DefaultCurve
	db := -23.5
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Shade(db)
	}
}
