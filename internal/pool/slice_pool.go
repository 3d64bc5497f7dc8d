package pool

import "sync"

var intSlicePool = sync.Pool{
	New: func() any { return &[]int{} },
}

// GetIntSlice retrieves a zeroed int slice of the given length from the pool.
//
// The caller must call the returned cleanup function to return the slice to the pool.
//
// Example:
//
//	counts, cleanup := pool.GetIntSlice(len(ops))
//	defer cleanup()
func GetIntSlice(size int) ([]int, func()) {
	ptr, _ := intSlicePool.Get().(*[]int)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]int, size)
	} else {
		slice = slice[:size]
		clear(slice)
	}
	*ptr = slice

	return slice, func() { intSlicePool.Put(ptr) }
}
