package chunkpool

import "unsafe"

// sliceAddr returns the address of a byte slice's backing array. Used only
// for OwnsChunk's provenance check (address-range membership), never
// dereferenced as a pointer into Go-managed memory beyond the slice itself.
func sliceAddr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}
