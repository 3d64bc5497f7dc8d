package compress

import (
	"fmt"
	"strings"

	"github.com/arloliu/zne/errs"
)

// Type identifies a compression algorithm. It is stored as one byte in batch headers.
type Type uint8

const (
	None Type = iota + 1
	Zstd
	S2
	LZ4
)

var typeNames = map[Type]string{
	None: "none",
	Zstd: "zstd",
	S2:   "s2",
	LZ4:  "lz4",
}

// String returns the lower-case algorithm name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return "unknown"
}

// Valid reports whether t names a supported algorithm.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseType converts an algorithm name to a Type. Matching is case-insensitive.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}

	return 0, fmt.Errorf("%w: compression %q", errs.ErrUnknownName, name)
}
