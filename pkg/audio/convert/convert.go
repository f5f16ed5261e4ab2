// ABOUTME: Per-sample conversions and the render fill operation
// ABOUTME: Packs int32 source samples into device buffers without allocating
package convert

import (
	"encoding/binary"
	"math"
)

// maxSample is float32(MaxInt32), the float normalization divisor
const maxSample = float32(math.MaxInt32)

// ToFloat32 normalizes a sample to -1..1
func ToFloat32(s int32) float32 {
	return float32(s) / maxSample
}

// ToInt16 keeps the top 16 bits of a sample
func ToInt16(s int32) int16 {
	return int16(s >> 16)
}

// ToInt24 places a sample in a 32-bit container, in the top 24 bits when
// alignedHigh is set and in the low 24 bits otherwise
func ToInt24(s int32, alignedHigh bool) int32 {
	var shift uint = 8
	if alignedHigh {
		shift = 0
	}
	return s >> shift
}

// ToInt32 is the identity conversion
func ToInt32(s int32) int32 {
	return s
}

// Fill converts src[cursor:] into dst in the encoding described by f and
// returns the number of samples written. It stops at whichever of dst or
// src runs out first. Bytes after the last written slot are not touched.
// An unsupported format writes nothing.
//
// Samples are written in native byte order, as device buffers expect.
func Fill(dst []byte, f Format, src []int32, cursor int) int {
	if cursor < 0 || cursor >= len(src) {
		return 0
	}

	n := f.Slots(len(dst))
	if remaining := len(src) - cursor; n > remaining {
		n = remaining
	}
	samples := src[cursor : cursor+n]

	switch f.Encoding() {
	case Float32:
		for i, s := range samples {
			binary.NativeEndian.PutUint32(dst[i*4:], math.Float32bits(ToFloat32(s)))
		}
	case Int16:
		for i, s := range samples {
			binary.NativeEndian.PutUint16(dst[i*2:], uint16(ToInt16(s)))
		}
	case Int24:
		alignedHigh := f.AlignedHigh
		for i, s := range samples {
			binary.NativeEndian.PutUint32(dst[i*4:], uint32(ToInt24(s, alignedHigh)))
		}
	case Int32:
		for i, s := range samples {
			binary.NativeEndian.PutUint32(dst[i*4:], uint32(ToInt32(s)))
		}
	default:
		return 0
	}

	return n
}
