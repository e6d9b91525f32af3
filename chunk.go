package hangar

import (
	"sort"
	"unsafe"

	"github.com/foundryforge/hangar/internal/chunkpool"
)

// packedLocation encodes (chunkIndex, entityIndexInChunk) using the owning
// archetype's chunk shift (spec §3 PackedLocation).
type packedLocation uint32

const invalidPackedLocation packedLocation = 0xFFFFFFFF

func newPackedLocation(chunkIdx, entityIdx uint32, shift uint32) packedLocation {
	return packedLocation(chunkIdx<<shift | entityIdx)
}

func (l packedLocation) valid() bool { return l != invalidPackedLocation }

func (l packedLocation) decode(shift, mask uint32) (chunkIdx, entityIdx uint32) {
	v := uint32(l)
	return v >> shift, v & mask
}

// chunkHeaderReserve accounts for the "small header" spec §3 describes a
// chunk as partitioning off the front of its 16KiB block. Hangar tracks
// per-chunk bookkeeping (live count) as an ordinary Go struct field rather
// than serializing it into the byte block itself — there is no benefit to
// hand-rolling that when a struct field is simpler and exactly as fast —
// but the capacity arithmetic below still reserves this many bytes so the
// entities-per-chunk result matches the spec's formula.
const chunkHeaderReserve = 16

// chunkLayout describes how an archetype's component arrays are packed
// into each of its 16KiB chunks: one contiguous Entity[] array plus one
// contiguous array per component, each aligned to its component's
// alignment (spec §4.4).
type chunkLayout struct {
	descriptors  []*ComponentDescriptor // sorted by ID — archetype's canonical order
	offsets      []uintptr              // offsets[i] matches descriptors[i]
	entityOffset uintptr
	capacity     uint32 // N, entities per chunk (power of two)
	shift        uint32 // log2(capacity)
	mask         uint32 // capacity - 1
}

// computeChunkLayout lays out entityOffset and one array per descriptor
// within a ChunkSize-byte block, largest-aligned arrays first to minimize
// padding (spec §9 "Chunk alignment"), while descriptors itself stays
// sorted by component id for deterministic archetype ordering.
func computeChunkLayout(descriptors []*ComponentDescriptor) chunkLayout {
	sorted := append([]*ComponentDescriptor(nil), descriptors...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byAlignment := append([]*ComponentDescriptor(nil), sorted...)
	sort.SliceStable(byAlignment, func(i, j int) bool {
		if byAlignment[i].Alignment != byAlignment[j].Alignment {
			return byAlignment[i].Alignment > byAlignment[j].Alignment
		}
		return byAlignment[i].ID < byAlignment[j].ID
	})

	entitySize := uintptr(unsafe.Sizeof(Entity(0)))
	entityAlign := uintptr(unsafe.Alignof(Entity(0)))

	capacity := largestFittingCapacity(entitySize, entityAlign, byAlignment)
	if capacity == 0 {
		capacity = 1
	}

	offset := uintptr(chunkHeaderReserve)
	offset = alignUp(offset, entityAlign)
	entityOffset := offset
	offset += entitySize * uintptr(capacity)

	offsetByDescriptor := make(map[*ComponentDescriptor]uintptr, len(byAlignment))
	for _, d := range byAlignment {
		if d.Size == 0 {
			offsetByDescriptor[d] = offset
			continue
		}
		offset = alignUp(offset, d.Alignment)
		offsetByDescriptor[d] = offset
		offset += d.Size * uintptr(capacity)
	}

	offsets := make([]uintptr, len(sorted))
	for i, d := range sorted {
		offsets[i] = offsetByDescriptor[d]
	}

	shift := uint32(0)
	for (uint32(1) << shift) < capacity {
		shift++
	}

	return chunkLayout{
		descriptors:  sorted,
		offsets:      offsets,
		entityOffset: entityOffset,
		capacity:     capacity,
		shift:        shift,
		mask:         capacity - 1,
	}
}

// largestFittingCapacity finds the largest power-of-two entity count N
// such that header + N*(entitySize + sum(componentSizes) + alignment
// slack) <= ChunkSize (spec §3's Chunk capacity formula).
func largestFittingCapacity(entitySize, entityAlign uintptr, descriptors []*ComponentDescriptor) uint32 {
	fits := func(n uint32) bool {
		offset := uintptr(chunkHeaderReserve)
		offset = alignUp(offset, entityAlign)
		offset += entitySize * uintptr(n)
		for _, d := range descriptors {
			if d.Size == 0 {
				continue
			}
			offset = alignUp(offset, d.Alignment)
			offset += d.Size * uintptr(n)
		}
		return offset <= chunkpool.ChunkSize
	}

	if !fits(1) {
		return 1 // degenerate case: still allow single-entity chunks.
	}
	n := uint32(1)
	for fits(n * 2) {
		n *= 2
	}
	return n
}

func alignUp(v, align uintptr) uintptr {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// chunk is one 16KiB memory block owned by an archetype, holding up to
// layout.capacity entities and their component data (spec §3 Chunk).
type chunk struct {
	buf    []byte
	layout *chunkLayout
	count  uint32
}

func newChunk(buf []byte, layout *chunkLayout) *chunk {
	return &chunk{buf: buf, layout: layout}
}

func (c *chunk) full() bool { return c.count >= c.layout.capacity }

func (c *chunk) entityPtr(idx uint32) *Entity {
	off := c.layout.entityOffset + uintptr(idx)*unsafe.Sizeof(Entity(0))
	return (*Entity)(unsafe.Pointer(&c.buf[off]))
}

func (c *chunk) entityAt(idx uint32) Entity { return *c.entityPtr(idx) }

func (c *chunk) setEntityAt(idx uint32, e Entity) { *c.entityPtr(idx) = e }

// componentPtr returns a pointer to the slot for descriptor index
// descIdx (position within layout.descriptors) at entity index idx.
func (c *chunk) componentPtr(descIdx int, idx uint32) unsafe.Pointer {
	d := c.layout.descriptors[descIdx]
	if d.Size == 0 {
		// Empty/zero-sized component: any stable non-nil pointer works,
		// since nothing is ever read from or written to it.
		return unsafe.Pointer(&c.buf[c.layout.offsets[descIdx]])
	}
	off := c.layout.offsets[descIdx] + uintptr(idx)*d.Size
	return unsafe.Pointer(&c.buf[off])
}
