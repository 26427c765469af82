package utils

import "sync"

// BufferPool is a pool of reusable byte slices to reduce allocations
var BufferPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 128)
		return &b
	},
}

// GetBuffer retrieves an empty byte slice from the pool
func GetBuffer() *[]byte {
	b := BufferPool.Get().(*[]byte)
	*b = (*b)[:0]
	return b
}

// PutBuffer returns a byte slice to the pool
func PutBuffer(b *[]byte) {
	BufferPool.Put(b)
}
