package utils

import "testing"

func TestGetBufferIsEmpty(t *testing.T) {
	b := GetBuffer()
	*b = append(*b, 1, 2, 3)
	PutBuffer(b)

	if b = GetBuffer(); len(*b) != 0 {
		t.Fatalf("expected empty buffer, got %d bytes", len(*b))
	}
	PutBuffer(b)
}
