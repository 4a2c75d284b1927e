// SPDX-License-Identifier: MIT
package spectral

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestSampleWidth(t *testing.T) {
	tests := []struct {
		enc  Encoding
		want int
	}{
		{Int16, 2},
		{Int16Max, 2},
		{Int24, 3},
		{Int24Max, 3},
		{Int32, 4},
		{Int32Max, 4},
		{Float32, 4},
		{Float64, 8},
	}
	for _, tt := range tests {
		if got := tt.enc.SampleWidth(); got != tt.want {
			t.Errorf("%s: width %d, want %d", tt.enc, got, tt.want)
		}
	}
	if got := Encoding(99).SampleWidth(); got != 0 {
		t.Errorf("invalid encoding: width %d, want 0", got)
	}
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		name string
		want Encoding
	}{
		{"int16max", Int16Max},
		{"S16", Int16},
		{"f32", Float32},
		{"FLOAT64", Float64},
		{"s24max", Int24Max},
	}
	for _, tt := range tests {
		got, err := ParseEncoding(tt.name)
		if err != nil {
			t.Errorf("ParseEncoding(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEncoding(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
	if _, err := ParseEncoding("pcm"); err == nil {
		t.Error("expected error for unknown encoding name")
	}
}

// putInt16 packs a signed sample little-endian. Conversions of negative
// values to unsigned are only legal on variables, not constants.
func putInt16(b []byte, v int16) { binary.LittleEndian.PutUint16(b, uint16(v)) }

func putInt32(b []byte, v int32) { binary.LittleEndian.PutUint32(b, uint32(v)) }

func TestReadInt16Max(t *testing.T) {
	// Full scale, negative full scale, zero.
	in := make([]byte, 6)
	putInt16(in[0:], 32767)
	putInt16(in[2:], -32767)
	binary.LittleEndian.PutUint16(in[4:], 0)

	out := make([]float64, 4)
	read := Int16Max.reader(false)
	read(in, out, 3, 1, Int16Max.fullScale(), 0, 4)

	want := []float64{1, -1, 0}
	for i, w := range want {
		if math.Abs(out[i]-w) > 1e-12 {
			t.Errorf("sample %d: got %g, want %g", i, out[i], w)
		}
	}
}

func TestReadInt16_ValueMapping(t *testing.T) {
	// The non-max variant maps v to v*2+1.
	in := make([]byte, 4)
	putInt16(in[0:], 100)
	putInt16(in[2:], -5)

	out := make([]float64, 2)
	read := Int16.reader(false)
	read(in, out, 2, 1, 1, 0, 2)

	if out[0] != 201 {
		t.Errorf("got %g, want 201", out[0])
	}
	if out[1] != -9 {
		t.Errorf("got %g, want -9", out[1])
	}
}

func TestReadInt24_SignExtension(t *testing.T) {
	// 0xFFFFFF is -1, 0x800000 is the most negative 24-bit value, and
	// 0x7FFFFF is full positive scale.
	in := []byte{
		0xff, 0xff, 0xff,
		0x00, 0x00, 0x80,
		0xff, 0xff, 0x7f,
	}
	out := make([]float64, 4)
	read := Int24Max.reader(false)
	read(in, out, 3, 1, Int24Max.fullScale(), 0, 4)

	full := float64(1<<23 - 1)
	want := []float64{-1 / full, -(1 << 23) / full, 1}
	for i, w := range want {
		if math.Abs(out[i]-w) > 1e-12 {
			t.Errorf("sample %d: got %g, want %g", i, out[i], w)
		}
	}
}

func TestReadInt32Max(t *testing.T) {
	in := make([]byte, 8)
	putInt32(in[0:], math.MaxInt32-1)
	putInt32(in[4:], math.MinInt32)

	out := make([]float64, 2)
	read := Int32Max.reader(false)
	read(in, out, 2, 1, Int32Max.fullScale(), 0, 2)

	full := float64(1<<31 - 1)
	if math.Abs(out[0]-float64(math.MaxInt32-1)/full) > 1e-12 {
		t.Errorf("got %g", out[0])
	}
	if math.Abs(out[1]-float64(math.MinInt32)/full) > 1e-12 {
		t.Errorf("got %g", out[1])
	}
}

func TestReadFloats(t *testing.T) {
	in := make([]byte, 12)
	binary.LittleEndian.PutUint32(in[0:], math.Float32bits(0.5))
	binary.LittleEndian.PutUint32(in[4:], math.Float32bits(-0.25))
	out := make([]float64, 2)
	Float32.reader(false)(in, out, 2, 1, 1, 0, 2)
	if out[0] != 0.5 || out[1] != -0.25 {
		t.Errorf("float32: got %v", out[:2])
	}

	in64 := make([]byte, 16)
	binary.LittleEndian.PutUint64(in64[0:], math.Float64bits(0.125))
	binary.LittleEndian.PutUint64(in64[8:], math.Float64bits(-1))
	Float64.reader(false)(in64, out, 2, 1, 1, 0, 2)
	if out[0] != 0.125 || out[1] != -1 {
		t.Errorf("float64: got %v", out[:2])
	}
}

func TestReadMixed_AveragesChannels(t *testing.T) {
	// Two interleaved float64 channels; the mixed reader averages them.
	in := make([]byte, 32)
	binary.LittleEndian.PutUint64(in[0:], math.Float64bits(1.0))
	binary.LittleEndian.PutUint64(in[8:], math.Float64bits(0.0))
	binary.LittleEndian.PutUint64(in[16:], math.Float64bits(-0.5))
	binary.LittleEndian.PutUint64(in[24:], math.Float64bits(0.5))

	out := make([]float64, 2)
	Float64.reader(true)(in, out, 2, 2, 1, 0, 2)

	if out[0] != 0.5 {
		t.Errorf("frame 0: got %g, want 0.5", out[0])
	}
	if out[1] != 0 {
		t.Errorf("frame 1: got %g, want 0", out[1])
	}
}

func TestReadPerChannel_Stride(t *testing.T) {
	// Two int16 channels; decoding channel 1 starts two bytes in and
	// must skip channel 0's samples.
	in := make([]byte, 8)
	putInt16(in[0:], 111) // frame 0 ch 0
	putInt16(in[2:], 222) // frame 0 ch 1
	putInt16(in[4:], 333) // frame 1 ch 0
	putInt16(in[6:], 444) // frame 1 ch 1

	out := make([]float64, 2)
	read := Int16Max.reader(false)
	read(in[2:], out, 2, 2, 1, 0, 2)

	if out[0] != 222 || out[1] != 444 {
		t.Errorf("got %v, want [222 444]", out[:2])
	}
}

func TestRead_CircularWraparound(t *testing.T) {
	// Writing four frames at pos 2 of a 4-slot ring lands them at
	// 2, 3, 0, 1.
	in := make([]byte, 8)
	for i := 0; i < 4; i++ {
		putInt16(in[i*2:], int16(i+1))
	}
	out := make([]float64, 4)
	Int16Max.reader(false)(in, out, 4, 1, 1, 2, 4)

	want := []float64{3, 4, 1, 2}
	for i, w := range want {
		if out[i] != w {
			t.Errorf("slot %d: got %g, want %g", i, out[i], w)
		}
	}
}

func TestRead_ZeroFrames(t *testing.T) {
	out := []float64{7, 7}
	Int16Max.reader(false)(nil, out, 0, 1, 1, 0, 2)
	if out[0] != 7 || out[1] != 7 {
		t.Errorf("zero frames must not touch the ring, got %v", out)
	}
}
