package compress

import (
	"fmt"

	"github.com/arloliu/zne/errs"
)

// MaxDecodedSize bounds the output of every Decompress call.
const MaxDecodedSize = 256 << 20

func errTooLarge(codec string, n int) error {
	return fmt.Errorf("%w: %s payload of %d bytes exceeds %d", errs.ErrInvalidPayload, codec, n, MaxDecodedSize)
}

// Compressor compresses a complete payload.
//
// The input is not modified. The result may alias it (NoOpCompressor).
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same algorithm.
//
// Corrupted input or input produced by another algorithm yields an error.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// Stats describes the effect of compressing one payload.
type Stats struct {
	Algorithm      Type
	OriginalSize   int64
	CompressedSize int64
}

// CompressionRatio returns compressed size / original size, or 0 for an empty original.
func (s Stats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the saved space as a percentage.
func (s Stats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec returns the codec for t.
func CreateCodec(t Type) (Codec, error) {
	switch t {
	case None:
		return NewNoOpCompressor(), nil
	case Zstd:
		return NewZstdCompressor(), nil
	case S2:
		return NewS2Compressor(), nil
	case LZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: compression type %d", errs.ErrInvalidValue, uint8(t))
	}
}

// Measure compresses data with t and reports the resulting sizes.
func Measure(t Type, data []byte) (Stats, error) {
	codec, err := CreateCodec(t)
	if err != nil {
		return Stats{}, err
	}

	out, err := codec.Compress(data)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Algorithm:      t,
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(len(out)),
	}, nil
}
