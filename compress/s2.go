package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// S2Compressor uses the S2 block format in "better" mode: folded batches repeat
// long runs of identical operations, which the better matcher collapses well.
type S2Compressor struct{}

var _ Codec = S2Compressor{}

func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

func (S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.EncodeBetter(nil, data), nil
}

// Decompress checks the declared length against MaxDecodedSize before allocating.
func (S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2: %w", err)
	}
	if n > MaxDecodedSize {
		return nil, errTooLarge("s2", n)
	}

	out, err := s2.Decode(make([]byte, n), data)
	if err != nil {
		return nil, fmt.Errorf("s2: %w", err)
	}

	return out, nil
}
