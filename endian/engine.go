// Package endian provides the byte order used by the binary batch format.
//
// EndianEngine combines binary.ByteOrder with binary.AppendByteOrder so that
// encoders can append fixed-width values without scratch buffers. Batches are
// always written little-endian; the big-endian engine exists for tests and for
// readers on foreign hosts.
package endian

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortBuffer is returned when a buffer holds fewer bytes than requested.
var ErrShortBuffer = errors.New("endian: short buffer")

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// AppendFloat64s appends the IEEE-754 bits of values to dst.
func AppendFloat64s(engine EndianEngine, dst []byte, values ...float64) []byte {
	for _, v := range values {
		dst = engine.AppendUint64(dst, math.Float64bits(v))
	}

	return dst
}

// ReadFloat64s decodes n float64 values from the front of src and returns the
// values together with the remaining bytes.
func ReadFloat64s(engine EndianEngine, src []byte, n int) ([]float64, []byte, error) {
	if n < 0 || len(src) < n*8 {
		return nil, src, ErrShortBuffer
	}

	values := make([]float64, n)
	for i := range values {
		values[i] = math.Float64frombits(engine.Uint64(src[i*8:]))
	}

	return values, src[n*8:], nil
}
