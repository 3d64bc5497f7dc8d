package pool

import "sync"

const (
	// KeyBufferDefaultSize is the default capacity of buffers used to build
	// canonical sequence encodings for fingerprints.
	KeyBufferDefaultSize  = 1024      // 1KiB
	KeyBufferMaxThreshold = 1024 * 64 // 64KiB

	// BatchBufferDefaultSize is the default capacity of buffers used to encode
	// whole batches of amplified sequences.
	BatchBufferDefaultSize  = 1024 * 16       // 16KiB
	BatchBufferMaxThreshold = 1024 * 1024 * 4 // 4MiB
)

// ByteBuffer wraps a byte slice that callers grow with append-style encoders
// (binary.AppendUvarint, Sequence.AppendCanonical).
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps its capacity.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// ByteBufferPool is a sync.Pool of ByteBuffers that drops buffers which grew
// beyond maxThreshold.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	keyDefaultPool   = NewByteBufferPool(KeyBufferDefaultSize, KeyBufferMaxThreshold)
	batchDefaultPool = NewByteBufferPool(BatchBufferDefaultSize, BatchBufferMaxThreshold)
)

// GetKeyBuffer retrieves a buffer for canonical sequence encodings.
func GetKeyBuffer() *ByteBuffer {
	return keyDefaultPool.Get()
}

// PutKeyBuffer returns a key buffer to its pool.
func PutKeyBuffer(bb *ByteBuffer) {
	keyDefaultPool.Put(bb)
}

// GetBatchBuffer retrieves a buffer for batch payload encoding.
func GetBatchBuffer() *ByteBuffer {
	return batchDefaultPool.Get()
}

// PutBatchBuffer returns a batch buffer to its pool.
func PutBatchBuffer(bb *ByteBuffer) {
	batchDefaultPool.Put(bb)
}
