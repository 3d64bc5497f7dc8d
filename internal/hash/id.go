// Package hash provides the xxHash64 primitive used for structural fingerprints.
package hash

import "github.com/cespare/xxhash/v2"

// Sum computes the xxHash64 of the given bytes.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
