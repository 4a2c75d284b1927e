// SPDX-License-Identifier: MIT
package spectral

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Encoding identifies the wire format of the raw interleaved samples
// delivered to the analyzer. The *Max variants treat the full-scale
// integer as amplitude 1.0; the plain integer variants map the raw value
// through value*2+1, matching how full-range signed samples compare to
// floating-point input. All formats are little-endian.
type Encoding int

const (
	Int16 Encoding = iota
	Int16Max
	Int24
	Int24Max
	Int32
	Int32Max
	Float32
	Float64
)

// SampleWidth returns the number of bytes one sample occupies.
func (e Encoding) SampleWidth() int {
	switch e {
	case Int16, Int16Max:
		return 2
	case Int24, Int24Max:
		return 3
	case Int32, Int32Max:
		return 4
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// fullScale returns the largest positive sample value for the *Max
// variants, and 1 for encodings that are not max-normalized.
func (e Encoding) fullScale() float64 {
	switch e {
	case Int16Max:
		return float64(1<<15 - 1)
	case Int24Max:
		return float64(1<<23 - 1)
	case Int32Max:
		return float64(1<<31 - 1)
	default:
		return 1
	}
}

func (e Encoding) valid() bool {
	return e >= Int16 && e <= Float64
}

func (e Encoding) String() string {
	switch e {
	case Int16:
		return "int16"
	case Int16Max:
		return "int16max"
	case Int24:
		return "int24"
	case Int24Max:
		return "int24max"
	case Int32:
		return "int32"
	case Int32Max:
		return "int32max"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// ParseEncoding converts a name (case-insensitive) to an Encoding.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(name) {
	case "int16", "s16":
		return Int16, nil
	case "int16max", "s16max":
		return Int16Max, nil
	case "int24", "s24":
		return Int24, nil
	case "int24max", "s24max":
		return Int24Max, nil
	case "int32", "s32":
		return Int32, nil
	case "int32max", "s32max":
		return Int32Max, nil
	case "float32", "f32":
		return Float32, nil
	case "float64", "f64":
		return Float64, nil
	default:
		return Int16Max, fmt.Errorf("unknown sample encoding: %q", name)
	}
}

// readerFunc decodes frames raw sample frames from in and writes one
// normalized float64 per frame into the circular target out, starting at
// pos and wrapping modulo nfft. For per-channel readers in starts at the
// first sample of the channel being decoded; for mixed readers it starts
// at the first sample of the frame. max is the full-scale divisor and is
// ignored by readers that don't normalize. Readers never read beyond
// frames full frames.
type readerFunc func(in []byte, out []float64, frames, channels int, max float64, pos, nfft int)

// reader resolves the encoding and channel mode to a concrete decoder
// exactly once; Push then calls it per block with no per-sample dispatch.
func (e Encoding) reader(mixed bool) readerFunc {
	if mixed {
		switch e {
		case Int16:
			return readMixedInt16
		case Int16Max:
			return readMixedInt16Max
		case Int24:
			return readMixedInt24
		case Int24Max:
			return readMixedInt24Max
		case Int32:
			return readMixedInt32
		case Int32Max:
			return readMixedInt32Max
		case Float32:
			return readMixedFloat32
		case Float64:
			return readMixedFloat64
		}
		return nil
	}
	switch e {
	case Int16:
		return readInt16
	case Int16Max:
		return readInt16Max
	case Int24:
		return readInt24
	case Int24Max:
		return readInt24Max
	case Int32:
		return readInt32
	case Int32Max:
		return readInt32Max
	case Float32:
		return readFloat32
	case Float64:
		return readFloat64
	}
	return nil
}

func int16At(in []byte) float64 {
	return float64(int16(binary.LittleEndian.Uint16(in)))
}

// int24At sign-extends a 3-byte little-endian sample.
func int24At(in []byte) float64 {
	return float64(int32(in[0]) | int32(in[1])<<8 | int32(int8(in[2]))<<16)
}

func int32At(in []byte) float64 {
	return float64(int32(binary.LittleEndian.Uint32(in)))
}

func float32At(in []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(in)))
}

func float64At(in []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(in))
}

/* mixed readers: average all channels of a frame into one sample */

func readMixedInt16Max(in []byte, out []float64, frames, channels int, max float64, pos, nfft int) {
	ip := 0
	for j := 0; j < frames; j++ {
		v := int16At(in[ip:]) / max
		ip += 2
		for c := 1; c < channels; c++ {
			v += int16At(in[ip:]) / max
			ip += 2
		}
		out[pos] = v / float64(channels)
		pos = (pos + 1) % nfft
	}
}

func readMixedInt16(in []byte, out []float64, frames, channels int, _ float64, pos, nfft int) {
	ip := 0
	for j := 0; j < frames; j++ {
		v := int16At(in[ip:])*2 + 1
		ip += 2
		for c := 1; c < channels; c++ {
			v += int16At(in[ip:])*2 + 1
			ip += 2
		}
		out[pos] = v / float64(channels)
		pos = (pos + 1) % nfft
	}
}

func readMixedInt24Max(in []byte, out []float64, frames, channels int, max float64, pos, nfft int) {
	ip := 0
	for j := 0; j < frames; j++ {
		v := int24At(in[ip:]) / max
		ip += 3
		for c := 1; c < channels; c++ {
			v += int24At(in[ip:]) / max
			ip += 3
		}
		out[pos] = v / float64(channels)
		pos = (pos + 1) % nfft
	}
}

func readMixedInt24(in []byte, out []float64, frames, channels int, _ float64, pos, nfft int) {
	ip := 0
	for j := 0; j < frames; j++ {
		v := int24At(in[ip:])*2 + 1
		ip += 3
		for c := 1; c < channels; c++ {
			v += int24At(in[ip:])*2 + 1
			ip += 3
		}
		out[pos] = v / float64(channels)
		pos = (pos + 1) % nfft
	}
}

func readMixedInt32Max(in []byte, out []float64, frames, channels int, max float64, pos, nfft int) {
	ip := 0
	for j := 0; j < frames; j++ {
		v := int32At(in[ip:]) / max
		ip += 4
		for c := 1; c < channels; c++ {
			v += int32At(in[ip:]) / max
			ip += 4
		}
		out[pos] = v / float64(channels)
		pos = (pos + 1) % nfft
	}
}

func readMixedInt32(in []byte, out []float64, frames, channels int, _ float64, pos, nfft int) {
	ip := 0
	for j := 0; j < frames; j++ {
		v := int32At(in[ip:])*2 + 1
		ip += 4
		for c := 1; c < channels; c++ {
			v += int32At(in[ip:])*2 + 1
			ip += 4
		}
		out[pos] = v / float64(channels)
		pos = (pos + 1) % nfft
	}
}

func readMixedFloat32(in []byte, out []float64, frames, channels int, _ float64, pos, nfft int) {
	ip := 0
	for j := 0; j < frames; j++ {
		v := float32At(in[ip:])
		ip += 4
		for c := 1; c < channels; c++ {
			v += float32At(in[ip:])
			ip += 4
		}
		out[pos] = v / float64(channels)
		pos = (pos + 1) % nfft
	}
}

func readMixedFloat64(in []byte, out []float64, frames, channels int, _ float64, pos, nfft int) {
	ip := 0
	for j := 0; j < frames; j++ {
		v := float64At(in[ip:])
		ip += 8
		for c := 1; c < channels; c++ {
			v += float64At(in[ip:])
			ip += 8
		}
		out[pos] = v / float64(channels)
		pos = (pos + 1) % nfft
	}
}

/* per-channel readers: pick one interleaved slot per frame */

func readInt16Max(in []byte, out []float64, frames, channels int, max float64, pos, nfft int) {
	stride := 2 * channels
	for j := 0; j < frames; j++ {
		out[pos] = int16At(in[j*stride:]) / max
		pos = (pos + 1) % nfft
	}
}

func readInt16(in []byte, out []float64, frames, channels int, _ float64, pos, nfft int) {
	stride := 2 * channels
	for j := 0; j < frames; j++ {
		out[pos] = int16At(in[j*stride:])*2 + 1
		pos = (pos + 1) % nfft
	}
}

func readInt24Max(in []byte, out []float64, frames, channels int, max float64, pos, nfft int) {
	stride := 3 * channels
	for j := 0; j < frames; j++ {
		out[pos] = int24At(in[j*stride:]) / max
		pos = (pos + 1) % nfft
	}
}

func readInt24(in []byte, out []float64, frames, channels int, _ float64, pos, nfft int) {
	stride := 3 * channels
	for j := 0; j < frames; j++ {
		out[pos] = int24At(in[j*stride:])*2 + 1
		pos = (pos + 1) % nfft
	}
}

func readInt32Max(in []byte, out []float64, frames, channels int, max float64, pos, nfft int) {
	stride := 4 * channels
	for j := 0; j < frames; j++ {
		out[pos] = int32At(in[j*stride:]) / max
		pos = (pos + 1) % nfft
	}
}

func readInt32(in []byte, out []float64, frames, channels int, _ float64, pos, nfft int) {
	stride := 4 * channels
	for j := 0; j < frames; j++ {
		out[pos] = int32At(in[j*stride:])*2 + 1
		pos = (pos + 1) % nfft
	}
}

func readFloat32(in []byte, out []float64, frames, channels int, _ float64, pos, nfft int) {
	stride := 4 * channels
	for j := 0; j < frames; j++ {
		out[pos] = float32At(in[j*stride:])
		pos = (pos + 1) % nfft
	}
}

func readFloat64(in []byte, out []float64, frames, channels int, _ float64, pos, nfft int) {
	stride := 8 * channels
	for j := 0; j < frames; j++ {
		out[pos] = float64At(in[j*stride:])
		pos = (pos + 1) % nfft
	}
}
