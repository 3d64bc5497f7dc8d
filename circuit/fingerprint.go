package circuit

import (
	"encoding/binary"

	"github.com/arloliu/zne/endian"
	"github.com/arloliu/zne/internal/hash"
	"github.com/arloliu/zne/internal/pool"
)

var byteOrder = endian.GetLittleEndianEngine()

// Key identifies a sequence structurally: two sequences with the same canonical
// encoding are interchangeable everywhere in this module.
type Key struct {
	Fingerprint uint64
	Canonical   string
}

// AppendCanonical appends the canonical binary encoding of s to dst.
//
// Layout: uvarint sites, uvarint op count, then per operation a uvarint-prefixed
// name, uvarint-prefixed site list and uvarint-prefixed little-endian float64 params.
func (s Sequence) AppendCanonical(dst []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(s.numSites))
	dst = binary.AppendUvarint(dst, uint64(len(s.ops)))
	for _, op := range s.ops {
		dst = op.appendCanonical(dst)
	}

	return dst
}

func (o Operation) appendCanonical(dst []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(o.name)))
	dst = append(dst, o.name...)
	dst = binary.AppendUvarint(dst, uint64(len(o.sites)))
	for _, site := range o.sites {
		dst = binary.AppendUvarint(dst, uint64(site))
	}
	dst = binary.AppendUvarint(dst, uint64(len(o.params)))

	return endian.AppendFloat64s(byteOrder, dst, o.params...)
}

// Canonical returns the canonical encoding of s as a string.
func (s Sequence) Canonical() string {
	buf := pool.GetKeyBuffer()
	defer pool.PutKeyBuffer(buf)

	buf.B = s.AppendCanonical(buf.B)

	return string(buf.B)
}

// Fingerprint returns the xxHash64 of the canonical encoding.
func (s Sequence) Fingerprint() uint64 {
	buf := pool.GetKeyBuffer()
	defer pool.PutKeyBuffer(buf)

	buf.B = s.AppendCanonical(buf.B)

	return hash.Sum(buf.B)
}

// Key returns the fingerprint together with the canonical encoding it was computed from.
func (s Sequence) Key() Key {
	buf := pool.GetKeyBuffer()
	defer pool.PutKeyBuffer(buf)

	buf.B = s.AppendCanonical(buf.B)

	return Key{Fingerprint: hash.Sum(buf.B), Canonical: string(buf.B)}
}
