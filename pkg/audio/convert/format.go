// ABOUTME: Output format descriptor
// ABOUTME: Describes bit width, float flag and alignment of a device stream
package convert

import "fmt"

// Encoding is one of the supported output sample representations
type Encoding int

const (
	Unsupported Encoding = iota
	Float32
	Int16
	Int24
	Int32
)

func (e Encoding) String() string {
	switch e {
	case Float32:
		return "Float32"
	case Int16:
		return "Int16"
	case Int24:
		return "Int24"
	case Int32:
		return "Int32"
	default:
		return "Unsupported"
	}
}

// Format is the virtual format of a device output stream.
// Samples are laid out in a single interleaved buffer.
type Format struct {
	SampleRate     float64
	Channels       int
	BitsPerChannel int
	Float          bool
	AlignedHigh    bool // only meaningful for 24-bit
}

// Encoding resolves the descriptor to a supported encoding
func (f Format) Encoding() Encoding {
	switch {
	case f.BitsPerChannel == 32 && f.Float:
		return Float32
	case f.Float:
		return Unsupported
	case f.BitsPerChannel == 16:
		return Int16
	case f.BitsPerChannel == 24:
		return Int24
	case f.BitsPerChannel == 32:
		return Int32
	default:
		return Unsupported
	}
}

// Supported reports whether Fill can write this format
func (f Format) Supported() bool {
	return f.Encoding() != Unsupported
}

// BytesPerSlot returns the container size of one output sample.
// 24-bit samples occupy a 32-bit container.
func (f Format) BytesPerSlot() int {
	switch f.Encoding() {
	case Int16:
		return 2
	case Float32, Int24, Int32:
		return 4
	default:
		return 0
	}
}

// Slots returns how many output samples fit in a buffer of n bytes
func (f Format) Slots(n int) int {
	size := f.BytesPerSlot()
	if size == 0 {
		return 0
	}
	return n / size
}

func (f Format) String() string {
	kind := "int"
	if f.Float {
		kind = "float"
	}
	align := ""
	if f.BitsPerChannel == 24 {
		align = " aligned-low"
		if f.AlignedHigh {
			align = " aligned-high"
		}
	}
	return fmt.Sprintf("%.0fHz %dch %d-bit %s%s", f.SampleRate, f.Channels, f.BitsPerChannel, kind, align)
}
