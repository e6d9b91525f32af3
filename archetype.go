package hangar

import (
	"sort"
	"unsafe"

	"github.com/foundryforge/hangar/internal/chunkpool"
)

// archetypeID is a stable handle for an Archetype within a single Manager
// (spec §3 Archetype).
type archetypeID uint32

// Archetype owns every entity sharing one exact ComponentMask, storing
// their component data as structure-of-arrays chunks (spec §4.4). It
// plays the role the teacher's archetype struct plays over table.Table,
// but owns its storage directly instead of delegating to an external
// columnar-table package.
type Archetype struct {
	id          archetypeID
	mask        ComponentMask
	descriptors []*ComponentDescriptor // sorted by ID
	indexOf     map[ComponentTypeID]int
	layout      chunkLayout
	pool        *chunkpool.Pool

	chunks       []*chunk
	firstNonFull int
	entityCount  int

	peakEntityCount     int
	emptySinceGeneration int64 // -1 while non-empty
}

func newArchetype(id archetypeID, m ComponentMask, descriptors []*ComponentDescriptor, pool *chunkpool.Pool) *Archetype {
	layout := computeChunkLayout(descriptors)
	indexOf := make(map[ComponentTypeID]int, len(layout.descriptors))
	for i, d := range layout.descriptors {
		indexOf[d.ID] = i
	}
	return &Archetype{
		id:                   id,
		mask:                 m,
		descriptors:          layout.descriptors,
		indexOf:              indexOf,
		layout:               layout,
		pool:                 pool,
		emptySinceGeneration: -1,
	}
}

// ID returns the archetype's stable handle.
func (a *Archetype) ID() archetypeID { return a.id }

// Mask returns the exact component signature this archetype stores.
func (a *Archetype) Mask() ComponentMask { return a.mask }

// Descriptors returns the archetype's component descriptors, sorted by
// component id.
func (a *Archetype) Descriptors() []*ComponentDescriptor { return a.descriptors }

// EntityCount returns the number of live entities currently stored.
func (a *Archetype) EntityCount() int { return a.entityCount }

// PeakEntityCount returns the largest EntityCount ever observed.
func (a *Archetype) PeakEntityCount() int { return a.peakEntityCount }

// EmptyDuration reports how many structural-change generations this
// archetype has been continuously empty, 0 if it is not empty or has
// never held an entity.
func (a *Archetype) EmptyDuration(currentGeneration int64) int64 {
	if a.emptySinceGeneration < 0 {
		return 0
	}
	return currentGeneration - a.emptySinceGeneration
}

// ChunkCount returns the number of 16KiB chunks currently allocated.
func (a *Archetype) ChunkCount() int { return len(a.chunks) }

// MemoryUsage returns the total bytes committed to this archetype's
// chunks.
func (a *Archetype) MemoryUsage() int { return len(a.chunks) * chunkpool.ChunkSize }

func (a *Archetype) chunkForInsert() (*chunk, int) {
	for a.firstNonFull < len(a.chunks) {
		c := a.chunks[a.firstNonFull]
		if !c.full() {
			return c, a.firstNonFull
		}
		a.firstNonFull++
	}
	buf := a.pool.Acquire()
	if buf == nil {
		return nil, 0
	}
	c := newChunk(buf, &a.layout)
	a.chunks = append(a.chunks, c)
	return c, len(a.chunks) - 1
}

func (a *Archetype) noteInserted(gen int64) {
	a.entityCount++
	if a.entityCount > a.peakEntityCount {
		a.peakEntityCount = a.entityCount
	}
	if a.entityCount == 1 {
		a.emptySinceGeneration = -1
	}
	_ = gen
}

func (a *Archetype) noteRemoved(gen int64) {
	a.entityCount--
	if a.entityCount == 0 {
		a.emptySinceGeneration = gen
	}
}

// AddEntityNoConstruct reserves a slot for e without running any
// component constructors — used by structural migration, where every
// component slot is about to be filled by a move from the source
// archetype or by an explicit Set call.
func (a *Archetype) AddEntityNoConstruct(e Entity, gen int64) (packedLocation, error) {
	c, chunkIdx := a.chunkForInsert()
	if c == nil {
		return invalidPackedLocation, ResourceExhaustionError{Resource: "chunk pool"}
	}
	idx := c.count
	c.setEntityAt(idx, e)
	c.count++
	a.noteInserted(gen)
	return newPackedLocation(uint32(chunkIdx), idx, a.layout.shift), nil
}

// AddEntity reserves a slot for e and default-constructs every component
// column (spec §4.4 AddEntity).
func (a *Archetype) AddEntity(e Entity, gen int64) (packedLocation, error) {
	loc, err := a.AddEntityNoConstruct(e, gen)
	if err != nil {
		return invalidPackedLocation, err
	}
	chunkIdx, idx := loc.decode(a.layout.shift, a.layout.mask)
	c := a.chunks[chunkIdx]
	for i, d := range a.descriptors {
		if d.DefaultConstruct != nil {
			d.DefaultConstruct(c.componentPtr(i, idx))
		}
	}
	return loc, nil
}

// AddEntities reserves and default-constructs a slot for every entity in
// es in one pass, appending each new location to locsOut and returning
// it (spec §4.4 AddEntities). It calls AddEntity once per entity; chunk
// capacity is not reserved ahead of the span, so chunks are acquired one
// at a time as each fills.
func (a *Archetype) AddEntities(es []Entity, gen int64, locsOut []packedLocation) ([]packedLocation, error) {
	for _, e := range es {
		loc, err := a.AddEntity(e, gen)
		if err != nil {
			return locsOut, err
		}
		locsOut = append(locsOut, loc)
	}
	return locsOut, nil
}

// removeEntityRaw does the swap-and-destruct work of removing loc without
// touching firstNonFull, so a batch caller can fix that up once after the
// whole span is processed instead of on every individual removal.
func (a *Archetype) removeEntityRaw(loc packedLocation, gen int64) Entity {
	chunkIdx, idx := loc.decode(a.layout.shift, a.layout.mask)
	c := a.chunks[chunkIdx]
	lastIdx := c.count - 1

	moved := NullEntity
	if idx != lastIdx {
		moved = c.entityAt(lastIdx)
		for i, d := range a.descriptors {
			dst := c.componentPtr(i, idx)
			src := c.componentPtr(i, lastIdx)
			if d.MoveAssign != nil {
				d.MoveAssign(dst, src)
			}
		}
		c.setEntityAt(idx, moved)
	}

	for i, d := range a.descriptors {
		if d.Destruct != nil {
			d.Destruct(c.componentPtr(i, lastIdx))
		}
	}
	c.count--
	a.noteRemoved(gen)
	return moved
}

func (a *Archetype) fixupFirstNonFull(chunkIdx uint32) {
	if int(chunkIdx) < a.firstNonFull {
		a.firstNonFull = int(chunkIdx)
	}
}

// RemoveEntity destroys the entity at loc, swapping the chunk's last
// live entity into the vacated slot (spec §4.4 RemoveEntity). It
// returns the swapped-in entity so the caller can update its location
// record, or NullEntity if the removed slot was already last.
func (a *Archetype) RemoveEntity(loc packedLocation, gen int64) Entity {
	chunkIdx, _ := loc.decode(a.layout.shift, a.layout.mask)
	moved := a.removeEntityRaw(loc, gen)
	a.fixupFirstNonFull(chunkIdx)
	return moved
}

// RemoveEntities removes every entity at the given locations in one
// batch (spec §4.4 RemoveEntities / deferCleanup). Locations are
// processed in descending slot order regardless of the order given, so
// a swap triggered by removing one location in the batch can never
// invalidate another location still waiting to be processed — the same
// hazard the original engine avoids by pre-sorting the batch before
// removal. moved[i] reports the entity (if any) swapped into locs[i]'s
// old slot, aligned to locs' input order; onRemoved, if non-nil, is
// additionally invoked once per removal in actual processing order
// (descending), which callers that repair an external location index
// must use instead of ranging over the returned slice in input order —
// a later swap in the same batch can make an earlier entry in the
// returned slice stale. When deferCleanup is true, firstNonFull is only
// fixed up once at the end instead of after every removal.
func (a *Archetype) RemoveEntities(locs []packedLocation, gen int64, deferCleanup bool, onRemoved func(i int, moved Entity)) []Entity {
	order := make([]int, len(locs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(x, y int) bool { return locs[order[x]] > locs[order[y]] })

	moved := make([]Entity, len(locs))
	minChunk := uint32(0)
	haveMin := false
	for _, i := range order {
		chunkIdx, _ := locs[i].decode(a.layout.shift, a.layout.mask)
		moved[i] = a.removeEntityRaw(locs[i], gen)
		if onRemoved != nil {
			onRemoved(i, moved[i])
		}
		if !haveMin || chunkIdx < minChunk {
			minChunk = chunkIdx
			haveMin = true
		}
		if !deferCleanup {
			a.fixupFirstNonFull(chunkIdx)
		}
	}
	if deferCleanup && haveMin {
		a.fixupFirstNonFull(minChunk)
	}
	return moved
}

// GetComponentPointer returns a type-erased pointer to the storage slot
// for component id at loc, or false if this archetype does not carry
// that component.
func (a *Archetype) GetComponentPointer(id ComponentTypeID, loc packedLocation) (unsafe.Pointer, bool) {
	descIdx, ok := a.indexOf[id]
	if !ok {
		return nil, false
	}
	chunkIdx, idx := loc.decode(a.layout.shift, a.layout.mask)
	return a.chunks[chunkIdx].componentPtr(descIdx, idx), true
}

// archetypeGetComponent is the typed accessor ComponentHandle relies on.
// Go forbids new type parameters on methods, so this lives as a free
// function alongside the Archetype type it operates on (mirroring the
// free-function generics pattern used for component access elsewhere in
// the ecosystem).
func archetypeGetComponent[T any](a *Archetype, id ComponentTypeID, loc packedLocation) *T {
	ptr, ok := a.GetComponentPointer(id, loc)
	if !ok {
		return nil
	}
	return (*T)(ptr)
}

// moveEntityFrom relocates e from src at srcLoc into dst, default-
// constructing any component dst carries that src did not, and
// move-constructing every component the two archetypes share. It
// returns e's new location in dst and the entity (if any) that got
// swapped into e's old slot in src.
func moveEntityFrom(dst, src *Archetype, srcLoc packedLocation, e Entity, gen int64) (packedLocation, Entity, error) {
	newLoc, err := dst.AddEntityNoConstruct(e, gen)
	if err != nil {
		return invalidPackedLocation, NullEntity, err
	}

	for _, d := range dst.descriptors {
		dstPtr, _ := dst.GetComponentPointer(d.ID, newLoc)
		if srcPtr, ok := src.GetComponentPointer(d.ID, srcLoc); ok {
			if d.MoveConstruct != nil {
				d.MoveConstruct(dstPtr, srcPtr)
			}
		} else if d.DefaultConstruct != nil {
			d.DefaultConstruct(dstPtr)
		}
	}

	moved := src.RemoveEntity(srcLoc, gen)
	return newLoc, moved, nil
}

// BatchMoveEntitiesFrom allocates a slot in dst for every entity in es
// and move-constructs each component dst shares with src from src's
// data at the matching srcLocs, default-constructing any component dst
// carries that src does not (spec §4.4 BatchMoveEntitiesFrom). Unlike
// moveEntityFrom it does NOT remove the entities from src — src's data
// and srcLocs stay valid for the whole span, so the caller issues one
// RemoveEntities(srcLocs, deferCleanup=true) against src once every
// entity in the batch has a new home, instead of invalidating srcLocs
// one swap-removal at a time mid-batch.
func (a *Archetype) BatchMoveEntitiesFrom(src *Archetype, es []Entity, srcLocs []packedLocation, gen int64) ([]packedLocation, error) {
	newLocs := make([]packedLocation, 0, len(es))
	for i, e := range es {
		newLoc, err := a.AddEntityNoConstruct(e, gen)
		if err != nil {
			return newLocs, err
		}
		for _, d := range a.descriptors {
			dstPtr, _ := a.GetComponentPointer(d.ID, newLoc)
			if srcPtr, ok := src.GetComponentPointer(d.ID, srcLocs[i]); ok {
				if d.MoveConstruct != nil {
					d.MoveConstruct(dstPtr, srcPtr)
				}
			} else if d.DefaultConstruct != nil {
				d.DefaultConstruct(dstPtr)
			}
		}
		newLocs = append(newLocs, newLoc)
	}
	return newLocs, nil
}

// BatchSetComponent assigns the same value to component id at every
// given location (spec §4.4 BatchSetComponent), e.g. stamping a shared
// value onto every entity an AddComponents call just migrated.
func BatchSetComponent[T any](a *Archetype, id ComponentTypeID, locs []packedLocation, value T) {
	for _, loc := range locs {
		if ptr := archetypeGetComponent[T](a, id, loc); ptr != nil {
			*ptr = value
		}
	}
}

// release returns every chunk this archetype owns back to the chunk
// pool. Called once an archetype is torn down during cleanup.
func (a *Archetype) release() {
	for _, c := range a.chunks {
		a.pool.Release(c.buf)
	}
	a.chunks = nil
	a.firstNonFull = 0
	a.entityCount = 0
}

// CoalesceChunks packs entities from the tail of the chunk list into the
// first available slot of an earlier, non-full chunk, freeing any chunk
// left completely empty by the move back to the pool (spec §4.4
// "Metrics & coalescing"). relocated is invoked once per entity actually
// moved with its new location, so the caller can repair an external
// entity-location index; it may be nil. Returns the number of chunks
// freed.
func (a *Archetype) CoalesceChunks(relocated func(e Entity, newLoc packedLocation)) int {
	freed := 0
	dst := 0
	for dst < len(a.chunks) {
		dc := a.chunks[dst]
		if dc.full() {
			dst++
			continue
		}
		src := len(a.chunks) - 1
		if src <= dst {
			break
		}
		sc := a.chunks[src]
		if sc.count == 0 {
			a.pool.Release(sc.buf)
			a.chunks = a.chunks[:src]
			freed++
			continue
		}

		srcIdx := sc.count - 1
		e := sc.entityAt(srcIdx)
		dstIdx := dc.count
		for i, d := range a.descriptors {
			dstPtr := dc.componentPtr(i, dstIdx)
			srcPtr := sc.componentPtr(i, srcIdx)
			if d.MoveConstruct != nil {
				d.MoveConstruct(dstPtr, srcPtr)
			}
			if d.Destruct != nil {
				d.Destruct(srcPtr)
			}
		}
		dc.setEntityAt(dstIdx, e)
		dc.count++
		sc.count--

		if relocated != nil {
			relocated(e, newPackedLocation(uint32(dst), dstIdx, a.layout.shift))
		}

		if sc.count == 0 {
			a.pool.Release(sc.buf)
			a.chunks = a.chunks[:src]
			freed++
		}
	}
	a.firstNonFull = 0
	for a.firstNonFull < len(a.chunks) && a.chunks[a.firstNonFull].full() {
		a.firstNonFull++
	}
	return freed
}

// forEachChunk invokes fn once per chunk currently holding live
// entities, passing its live count — the hot loop a View iterates to
// resolve component array pointers once per chunk (spec §4.7 ForEach).
func (a *Archetype) forEachChunk(fn func(c *chunk)) {
	for _, c := range a.chunks {
		if c.count == 0 {
			continue
		}
		fn(c)
	}
}
