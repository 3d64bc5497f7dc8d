package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Batch payloads are small and produced in bursts, so single-threaded coders are
// pooled instead of keeping one concurrent coder per process.
var (
	zstdEncoders = sync.Pool{
		New: func() any {
			enc, err := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
				zstd.WithEncoderConcurrency(1),
				zstd.WithEncoderCRC(true),
			)
			if err != nil {
				panic(fmt.Sprintf("zstd encoder: %v", err))
			}

			return enc
		},
	}
	zstdDecoders = sync.Pool{
		New: func() any {
			dec, err := zstd.NewReader(nil,
				zstd.WithDecoderConcurrency(1),
				zstd.WithDecoderMaxMemory(MaxDecodedSize),
			)
			if err != nil {
				panic(fmt.Sprintf("zstd decoder: %v", err))
			}

			return dec
		},
	}
)

// ZstdCompressor writes single Zstandard frames with a content checksum.
type ZstdCompressor struct{}

var _ Codec = ZstdCompressor{}

func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

func (ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	enc, _ := zstdEncoders.Get().(*zstd.Encoder)
	defer zstdEncoders.Put(enc)

	return enc.EncodeAll(data, make([]byte, 0, len(data)/4)), nil
}

func (ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dec, _ := zstdDecoders.Get().(*zstd.Decoder)
	defer zstdDecoders.Put(dec)

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}

	return out, nil
}
