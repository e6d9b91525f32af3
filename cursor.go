package hangar

// Cursor walks every live entity matching a Query, one entity at a
// time. It mirrors the teacher's Cursor/iCursor device: Initialize
// locks the manager and compiles the matching archetype list, Next
// advances, and CurrentEntity/the ComponentHandle accessors read the
// entity currently under the cursor.
type Cursor struct {
	m     *Manager
	query *Query

	archetypes []*Archetype
	cacheGen   int64

	started bool
	archIdx int

	currentArchetype *Archetype
	chunkIdx         int
	entityIdx        int

	lockBit uint32
	locked  bool

	totalMatched int
}

// NewCursor compiles q against m. Most callers go through
// Factory.NewCursor.
func NewCursor(m *Manager, q *Query) *Cursor {
	return &Cursor{m: m, query: q}
}

func (cur *Cursor) refresh() {
	if cur.archetypes != nil && cur.cacheGen == cur.m.structuralChangeCounter {
		return
	}
	cur.archetypes = cur.archetypes[:0]
	total := 0
	for _, a := range cur.m.archetypes {
		if cur.query.Matches(a.mask) {
			cur.archetypes = append(cur.archetypes, a)
			total += a.EntityCount()
		}
	}
	cur.cacheGen = cur.m.structuralChangeCounter
	cur.totalMatched = total
}

// Initialize (re)compiles the matching archetype list and locks the
// manager against structural edits for the duration of iteration.
func (cur *Cursor) Initialize() {
	cur.refresh()
	if !cur.locked {
		cur.lockBit = cur.m.Lock()
		cur.locked = true
	}
	cur.Reset()
}

// Reset rewinds the cursor to just before the first matching entity,
// without re-locking or recompiling the archetype list.
func (cur *Cursor) Reset() {
	cur.started = false
	cur.archIdx = 0
	cur.chunkIdx = 0
	cur.entityIdx = -1
	cur.currentArchetype = nil
}

// Release unlocks the manager, allowing deferred structural edits to
// apply. Safe to call more than once.
func (cur *Cursor) Release() []error {
	if !cur.locked {
		return nil
	}
	cur.locked = false
	return cur.m.Unlock(cur.lockBit)
}

// Next advances to the next live entity, returning false once
// exhausted.
func (cur *Cursor) Next() bool {
	cur.started = true
	for cur.archIdx < len(cur.archetypes) {
		a := cur.archetypes[cur.archIdx]
		cur.currentArchetype = a
		for cur.chunkIdx < len(a.chunks) {
			c := a.chunks[cur.chunkIdx]
			cur.entityIdx++
			if uint32(cur.entityIdx) < c.count {
				return true
			}
			cur.chunkIdx++
			cur.entityIdx = -1
		}
		cur.chunkIdx = 0
		cur.entityIdx = -1
		cur.archIdx++
	}
	cur.currentArchetype = nil
	return false
}

// CurrentEntity returns the entity at the cursor's current position.
// Only valid after a Next call that returned true.
func (cur *Cursor) CurrentEntity() Entity {
	c := cur.currentArchetype.chunks[cur.chunkIdx]
	return c.entityAt(uint32(cur.entityIdx))
}

func (cur *Cursor) currentLocation() packedLocation {
	return newPackedLocation(uint32(cur.chunkIdx), uint32(cur.entityIdx), cur.currentArchetype.layout.shift)
}

// TotalMatched returns the entity count across every archetype matched
// as of the last Initialize/refresh.
func (cur *Cursor) TotalMatched() int { return cur.totalMatched }

// RemainingInArchetype returns how many entities are left to visit in
// the archetype currently under the cursor.
func (cur *Cursor) RemainingInArchetype() int {
	if cur.currentArchetype == nil {
		return 0
	}
	a := cur.currentArchetype
	remaining := int(a.chunks[cur.chunkIdx].count) - cur.entityIdx - 1
	for i := cur.chunkIdx + 1; i < len(a.chunks); i++ {
		remaining += int(a.chunks[i].count)
	}
	return remaining
}
