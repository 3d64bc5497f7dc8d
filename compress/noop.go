package compress

// NoOpCompressor stores batches uncompressed; the result aliases the input.
type NoOpCompressor struct{}

var _ Codec = NoOpCompressor{}

func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

func (NoOpCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return data, nil
}

// Decompress enforces MaxDecodedSize like the other codecs.
func (NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) > MaxDecodedSize {
		return nil, errTooLarge("none", len(data))
	}

	return data, nil
}
