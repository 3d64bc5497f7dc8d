package circuit

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arloliu/zne/compress"
	"github.com/arloliu/zne/endian"
	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/internal/pool"
)

const (
	batchMagic   = "ZNEB"
	batchVersion = 1
	headerSize   = len(batchMagic) + 2

	// maxDecodeCount bounds every uvarint count read from a payload.
	maxDecodeCount = 1 << 24
)

// EncodeBatch serializes seqs into a self-describing binary payload.
//
// The payload starts with the magic "ZNEB", a version byte and the compression
// byte; the rest is the compressed body: a uvarint sequence count followed by
// the canonical encoding of each sequence.
func EncodeBatch(seqs []Sequence, compression compress.Type) ([]byte, error) {
	codec, err := compress.CreateCodec(compression)
	if err != nil {
		return nil, err
	}

	body := pool.GetBatchBuffer()
	defer pool.PutBatchBuffer(body)

	body.B = binary.AppendUvarint(body.B, uint64(len(seqs)))
	for _, seq := range seqs {
		body.B = seq.AppendCanonical(body.B)
	}

	compressed, err := codec.Compress(body.B)
	if err != nil {
		return nil, fmt.Errorf("compress batch: %w", err)
	}

	out := make([]byte, 0, headerSize+len(compressed))
	out = append(out, batchMagic...)
	out = append(out, batchVersion, byte(compression))
	out = append(out, compressed...)

	return out, nil
}

// DecodeBatch parses a payload produced by EncodeBatch.
func DecodeBatch(data []byte) ([]Sequence, error) {
	if len(data) < headerSize || string(data[:len(batchMagic)]) != batchMagic {
		return nil, fmt.Errorf("%w: missing batch header", errs.ErrInvalidPayload)
	}
	if v := data[len(batchMagic)]; v != batchVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidPayload, v)
	}

	codec, err := compress.CreateCodec(compress.Type(data[len(batchMagic)+1]))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidPayload, err)
	}
	body, err := codec.Decompress(data[headerSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidPayload, err)
	}

	r := reader{buf: body}
	count := r.count()
	seqs := make([]Sequence, 0, min(count, 1024))
	for range count {
		seq, err := r.sequence()
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
	}
	if r.err != nil {
		return nil, r.err
	}
	if len(r.buf) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidPayload, len(r.buf))
	}

	return seqs, nil
}

// reader consumes a canonical encoding; the first failure sticks in err.
type reader struct {
	buf []byte
	err error
}

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: "+format, append([]any{errs.ErrInvalidPayload}, args...)...)
	}
}

func (r *reader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.buf)
	if n <= 0 {
		r.fail("truncated varint")
		return 0
	}
	r.buf = r.buf[n:]

	return v
}

func (r *reader) count() int {
	v := r.uvarint()
	if v > maxDecodeCount {
		r.fail("count %d too large", v)
		return 0
	}

	return int(v)
}

func (r *reader) name() string {
	n := r.count()
	if r.err != nil {
		return ""
	}
	if len(r.buf) < n {
		r.fail("truncated name")
		return ""
	}
	s := string(r.buf[:n])
	r.buf = r.buf[n:]

	return s
}

func (r *reader) floats() []float64 {
	n := r.count()
	if r.err != nil || n == 0 {
		return nil
	}
	values, rest, err := endian.ReadFloat64s(byteOrder, r.buf, n)
	if err != nil {
		r.fail("truncated parameters")
		return nil
	}
	r.buf = rest

	return values
}

func (r *reader) operation() (Operation, error) {
	name := r.name()
	nsites := r.count()
	var sites []int
	if nsites > 0 {
		sites = make([]int, nsites)
		for i := range sites {
			site := r.uvarint()
			if site > math.MaxInt32 {
				r.fail("site %d out of range", site)
			}
			sites[i] = int(site)
		}
	}
	params := r.floats()
	if r.err != nil {
		return Operation{}, r.err
	}

	op, err := NewOperation(name, sites, params...)
	if err != nil {
		return Operation{}, fmt.Errorf("%w: %w", errs.ErrInvalidPayload, err)
	}

	return op, nil
}

func (r *reader) sequence() (Sequence, error) {
	numSites := r.count()
	nops := r.count()
	if r.err != nil {
		return Sequence{}, r.err
	}

	ops := make([]Operation, 0, min(nops, 4096))
	for range nops {
		op, err := r.operation()
		if err != nil {
			return Sequence{}, err
		}
		ops = append(ops, op)
	}

	seq, err := New(numSites, ops...)
	if err != nil {
		return Sequence{}, fmt.Errorf("%w: %w", errs.ErrInvalidPayload, err)
	}

	return seq, nil
}
