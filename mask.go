package hangar

import (
	"unsafe"

	"github.com/TheBitDrifter/mask"
)

// ComponentMask is the fixed-width bitmap identifying which component
// types an archetype holds (spec §3). It is backed directly by
// TheBitDrifter/mask.Mask — the same bitset the teacher uses for its own
// archetype masks — giving us Mark/Unmark/ContainsAll/ContainsAny/
// ContainsNone and value-equality (usable as a map key) for free.
type ComponentMask = mask.Mask

func maskWithBit(bit uint32) ComponentMask {
	var m ComponentMask
	m.Mark(bit)
	return m
}

func maskUnion(a, b ComponentMask) ComponentMask {
	out := a
	for bit := uint32(0); bit < maxComponentsHint; bit++ {
		single := maskWithBit(bit)
		if b.ContainsAll(single) {
			out.Mark(bit)
		}
	}
	return out
}

// maxComponentsHint bounds the bit scan in maskUnion/maskBits; it mirrors
// registry.MaxComponents without importing the internal registry package
// here (kept in sync manually since both are spec-mandated constants).
const maxComponentsHint = 64

// maskBits returns the list of set bit positions in m, in ascending order.
func maskBits(m ComponentMask) []uint32 {
	bits := make([]uint32, 0, 8)
	for bit := uint32(0); bit < maxComponentsHint; bit++ {
		if m.ContainsAll(maskWithBit(bit)) {
			bits = append(bits, bit)
		}
	}
	return bits
}

// maskHash derives a stable hash of a ComponentMask's bit pattern by
// hashing its raw in-memory representation. ComponentMask is a fixed-size
// value type — the same property that lets it be used directly as a map
// key — so hashing its bytes is safe and stable for the process lifetime.
func maskHash(m ComponentMask) uint64 {
	const offset = 14695981039346656037
	const prime = 1099511628211
	h := uint64(offset)
	size := unsafe.Sizeof(m)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&m)), size)
	for _, c := range b {
		h ^= uint64(c)
		h *= prime
	}
	return h
}
