package compress

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/zne/errs"
)

var lz4Compressors = sync.Pool{
	New: func() any { return new(lz4.Compressor) },
}

// LZ4Compressor uses the LZ4 block format. The raw block does not carry its
// decoded size, so every payload starts with a uvarint of the original length.
type LZ4Compressor struct{}

var _ Codec = LZ4Compressor{}

func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

func (LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	out := binary.AppendUvarint(nil, uint64(len(data)))
	prefix := len(out)
	out = append(out, make([]byte, lz4.CompressBlockBound(len(data)))...)

	c, _ := lz4Compressors.Get().(*lz4.Compressor)
	defer lz4Compressors.Put(c)

	n, err := c.CompressBlock(data, out[prefix:])
	if err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}

	return out[:prefix+n], nil
}

func (LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	size, k := binary.Uvarint(data)
	if k <= 0 {
		return nil, fmt.Errorf("%w: lz4 size prefix", errs.ErrInvalidPayload)
	}
	if size > MaxDecodedSize {
		return nil, errTooLarge("lz4", int(min(size, uint64(MaxDecodedSize)+1)))
	}

	out := make([]byte, size)
	n, err := lz4.UncompressBlock(data[k:], out)
	if err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	if uint64(n) != size {
		return nil, fmt.Errorf("%w: lz4 decoded %d of %d bytes", errs.ErrInvalidPayload, n, size)
	}

	return out, nil
}
