package hangar

import (
	"github.com/TheBitDrifter/mask"
	"github.com/kamstrup/intmap"

	"github.com/foundryforge/hangar/internal/chunkpool"
	"github.com/foundryforge/hangar/internal/idpool"
	"github.com/foundryforge/hangar/internal/registry"
)

// locationMapSizeHint is the initial bucket count handed to intmap.New for
// a fresh Manager's entity-location index — small enough not to waste
// memory on short-lived worlds, large enough to avoid early regrowth.
const locationMapSizeHint = 256

// location pins an entity to its current archetype and slot within it
// (spec §3 Entity-location map).
type location struct {
	archetype *Archetype
	packed    packedLocation
}

// Manager owns every entity, component registry, archetype, and chunk in
// one world (spec component F, the Archetype manager). It plays the role
// the teacher's storage struct plays, but owns chunk/archetype storage
// directly instead of delegating to an external table package.
type Manager struct {
	config   Config
	registry *registry.Registry
	ids      *idpool.Pool
	chunks   *chunkpool.Pool
	graph    *archetypeGraph

	archetypes      map[archetypeID]*Archetype
	byMask          map[ComponentMask]archetypeID
	nextArchetypeID archetypeID

	locations *intmap.Map[uint32, location]

	generation              int64
	structuralChangeCounter int64

	locks       mask.Mask256
	nextLockBit uint32
	opQueue     operationQueue
}

// NewManager constructs an empty Manager. Most callers go through
// Factory.NewManager instead.
func NewManager(cfg Config) *Manager {
	return &Manager{
		config:     cfg,
		registry:   registry.New(),
		ids:        idpool.New(cfg.idPoolConfig()),
		chunks:     chunkpool.New(cfg.chunkPoolConfig()),
		graph:      newArchetypeGraph(),
		archetypes: make(map[archetypeID]*Archetype),
		byMask:     make(map[ComponentMask]archetypeID),
		locations:  intmap.New[uint32, location](locationMapSizeHint),
	}
}

func (m *Manager) locationOf(e Entity) (location, bool) {
	if !m.IsValid(e) {
		return location{}, false
	}
	return m.locations.Get(e.ID())
}

func (m *Manager) setLocation(e Entity, a *Archetype, loc packedLocation) {
	m.locations.Put(e.ID(), location{archetype: a, packed: loc})
}

func (m *Manager) bumpGeneration() {
	m.generation++
	m.structuralChangeCounter++
}

func (m *Manager) descriptorsForMask(mk ComponentMask) []*ComponentDescriptor {
	bits := maskBits(mk)
	descs := make([]*ComponentDescriptor, 0, len(bits))
	for _, b := range bits {
		if d, ok := m.registry.Lookup(ComponentTypeID(b)); ok {
			descs = append(descs, d)
		}
	}
	return descs
}

func (m *Manager) getOrCreateArchetypeForMask(mk ComponentMask) *Archetype {
	if id, ok := m.byMask[mk]; ok {
		return m.archetypes[id]
	}
	id := m.nextArchetypeID
	m.nextArchetypeID++
	a := newArchetype(id, mk, m.descriptorsForMask(mk), m.chunks)
	m.archetypes[id] = a
	m.byMask[mk] = id
	return a
}

func (m *Manager) archetypeWithAdded(from *Archetype, bit uint32) *Archetype {
	if toID, ok := m.graph.addEdge(from.id, bit); ok {
		if to, ok := m.archetypes[toID]; ok {
			return to
		}
	}
	newMask := from.mask
	newMask.Mark(bit)
	to := m.getOrCreateArchetypeForMask(newMask)
	m.graph.setAddEdge(from.id, bit, to.id)
	m.graph.setRemoveEdge(to.id, bit, from.id)
	return to
}

func (m *Manager) archetypeWithRemoved(from *Archetype, bit uint32) *Archetype {
	if toID, ok := m.graph.removeEdge(from.id, bit); ok {
		if to, ok := m.archetypes[toID]; ok {
			return to
		}
	}
	newMask := from.mask
	newMask.Unmark(bit)
	to := m.getOrCreateArchetypeForMask(newMask)
	m.graph.setRemoveEdge(from.id, bit, to.id)
	m.graph.setAddEdge(to.id, bit, from.id)
	return to
}

// CreateEntity allocates a new entity in the empty (zero-component)
// archetype.
func (m *Manager) CreateEntity() (Entity, error) {
	if m.Locked() {
		return NullEntity, LockedManagerError{}
	}
	id, version := m.ids.Create()
	e := NewEntity(id, version)
	root := m.getOrCreateArchetypeForMask(ComponentMask{})
	loc, err := root.AddEntity(e, m.generation)
	if err != nil {
		m.ids.Destroy(id, version)
		return NullEntity, err
	}
	m.setLocation(e, root, loc)
	m.bumpGeneration()
	return e, nil
}

// CreateEntities allocates n entities in a single batch, appending them
// to out and returning it (spec §4.1 CreateBatch / §4.4 AddEntities).
func (m *Manager) CreateEntities(n int, out []Entity) ([]Entity, error) {
	if m.Locked() {
		return out, LockedManagerError{}
	}
	root := m.getOrCreateArchetypeForMask(ComponentMask{})
	for i := 0; i < n; i++ {
		id, version := m.ids.Create()
		e := NewEntity(id, version)
		loc, err := root.AddEntity(e, m.generation)
		if err != nil {
			m.ids.Destroy(id, version)
			return out, err
		}
		m.setLocation(e, root, loc)
		out = append(out, e)
	}
	m.bumpGeneration()
	return out, nil
}

// DestroyEntity recycles e's identifier and removes it from its
// archetype.
func (m *Manager) DestroyEntity(e Entity) error {
	if m.Locked() {
		return LockedManagerError{}
	}
	loc, ok := m.locationOf(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	moved := loc.archetype.RemoveEntity(loc.packed, m.generation)
	if !moved.IsNull() {
		m.setLocation(moved, loc.archetype, loc.packed)
	}
	m.locations.Del(e.ID())
	m.ids.Destroy(e.ID(), e.Version())
	m.bumpGeneration()
	return nil
}

// DestroyEntities destroys every entity in es, continuing past
// already-invalid entries.
func (m *Manager) DestroyEntities(es []Entity) error {
	if m.Locked() {
		return LockedManagerError{}
	}
	for _, e := range es {
		loc, ok := m.locationOf(e)
		if !ok {
			continue
		}
		moved := loc.archetype.RemoveEntity(loc.packed, m.generation)
		if !moved.IsNull() {
			m.setLocation(moved, loc.archetype, loc.packed)
		}
		m.locations.Del(e.ID())
		m.ids.Destroy(e.ID(), e.Version())
	}
	m.bumpGeneration()
	return nil
}

// IsValid reports whether e currently identifies a live entity.
func (m *Manager) IsValid(e Entity) bool {
	return m.ids.IsValid(e.ID(), e.Version())
}

// addComponent attaches a new component value to e, migrating it into
// the archetype with d's bit added.
func addComponent[T any](m *Manager, d *ComponentDescriptor, e Entity, value T) (*T, error) {
	if m.Locked() {
		return nil, LockedManagerError{}
	}
	loc, ok := m.locationOf(e)
	if !ok {
		return nil, InvalidEntityError{Entity: e}
	}
	if loc.archetype.mask.ContainsAll(maskWithBit(uint32(d.ID))) {
		return nil, DuplicateComponentError{ComponentName: d.Name}
	}
	to := m.archetypeWithAdded(loc.archetype, uint32(d.ID))
	newLoc, moved, err := moveEntityFrom(to, loc.archetype, loc.packed, e, m.generation)
	if err != nil {
		return nil, err
	}
	if !moved.IsNull() {
		m.setLocation(moved, loc.archetype, loc.packed)
	}
	m.setLocation(e, to, newLoc)
	ptr := archetypeGetComponent[T](to, d.ID, newLoc)
	*ptr = value
	m.bumpGeneration()
	return ptr, nil
}

// removeComponent detaches d from e, migrating it into the archetype
// with d's bit removed.
func removeComponent(m *Manager, d *ComponentDescriptor, e Entity) error {
	if m.Locked() {
		return LockedManagerError{}
	}
	loc, ok := m.locationOf(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	if !loc.archetype.mask.ContainsAll(maskWithBit(uint32(d.ID))) {
		return MissingComponentError{ComponentName: d.Name}
	}
	to := m.archetypeWithRemoved(loc.archetype, uint32(d.ID))
	newLoc, moved, err := moveEntityFrom(to, loc.archetype, loc.packed, e, m.generation)
	if err != nil {
		return err
	}
	if !moved.IsNull() {
		m.setLocation(moved, loc.archetype, loc.packed)
	}
	m.setLocation(e, to, newLoc)
	m.bumpGeneration()
	return nil
}

// archetypeBatch groups a span of entities by their current archetype,
// the fan-out step spec §4.6's batch AddComponents/RemoveComponents
// share — grouping first lets each archetype-to-archetype migration run
// as one BatchMoveEntitiesFrom/RemoveEntities pair instead of N
// single-entity moves.
type archetypeBatch struct {
	entities []Entity
	locs     []packedLocation
}

func (m *Manager) groupByArchetype(es []Entity, skip func(a *Archetype) bool) ([]*Archetype, map[*Archetype]*archetypeBatch) {
	groups := make(map[*Archetype]*archetypeBatch)
	var order []*Archetype
	for _, e := range es {
		loc, ok := m.locationOf(e)
		if !ok {
			continue
		}
		if skip != nil && skip(loc.archetype) {
			continue
		}
		g, exists := groups[loc.archetype]
		if !exists {
			g = &archetypeBatch{}
			groups[loc.archetype] = g
			order = append(order, loc.archetype)
		}
		g.entities = append(g.entities, e)
		g.locs = append(g.locs, loc.packed)
	}
	return order, groups
}

// addComponents attaches value as component d to every entity in es,
// grouping by each entity's current archetype so entities that share a
// source archetype migrate in one batch instead of one move per entity
// (spec §4.6 AddComponents). Entities already carrying d, or not
// currently valid, are silently skipped, matching the single-entity
// Add's all-or-nothing-per-entity semantics applied across the span.
func addComponents[T any](m *Manager, d *ComponentDescriptor, es []Entity, value T) ([]Entity, error) {
	if m.Locked() {
		return nil, LockedManagerError{}
	}
	bit := uint32(d.ID)
	order, groups := m.groupByArchetype(es, func(a *Archetype) bool {
		return a.mask.ContainsAll(maskWithBit(bit))
	})
	added := make([]Entity, 0, len(es))
	for _, src := range order {
		g := groups[src]
		dst := m.archetypeWithAdded(src, bit)
		newLocs, err := dst.BatchMoveEntitiesFrom(src, g.entities, g.locs, m.generation)
		if err != nil {
			return added, err
		}
		BatchSetComponent[T](dst, d.ID, newLocs, value)
		for i, e := range g.entities {
			m.setLocation(e, dst, newLocs[i])
		}
		src.RemoveEntities(g.locs, m.generation, true, func(i int, moved Entity) {
			if !moved.IsNull() {
				m.setLocation(moved, src, g.locs[i])
			}
		})
		added = append(added, g.entities...)
	}
	if len(added) > 0 {
		m.bumpGeneration()
	}
	return added, nil
}

// removeComponents detaches component d from every entity in es,
// grouping by source archetype the same way addComponents does (spec
// §4.6 RemoveComponents). Returns the entities that actually had d
// removed.
func removeComponents(m *Manager, d *ComponentDescriptor, es []Entity) ([]Entity, error) {
	if m.Locked() {
		return nil, LockedManagerError{}
	}
	bit := uint32(d.ID)
	order, groups := m.groupByArchetype(es, func(a *Archetype) bool {
		return !a.mask.ContainsAll(maskWithBit(bit))
	})
	removed := make([]Entity, 0, len(es))
	for _, src := range order {
		g := groups[src]
		dst := m.archetypeWithRemoved(src, bit)
		newLocs, err := dst.BatchMoveEntitiesFrom(src, g.entities, g.locs, m.generation)
		if err != nil {
			return removed, err
		}
		for i, e := range g.entities {
			m.setLocation(e, dst, newLocs[i])
		}
		src.RemoveEntities(g.locs, m.generation, true, func(i int, moved Entity) {
			if !moved.IsNull() {
				m.setLocation(moved, src, g.locs[i])
			}
		})
		removed = append(removed, g.entities...)
	}
	if len(removed) > 0 {
		m.bumpGeneration()
	}
	return removed, nil
}

// CreateEntitiesWithGenerator allocates n entities in the empty
// archetype, then invokes generator once per entity with its index and
// identity before returning — e.g. to immediately attach components via
// ComponentHandle.Add (spec §6 "CreateEntities(n, out, generator)",
// scenario 4's typed batch spawn). Entities are appended to out.
func (m *Manager) CreateEntitiesWithGenerator(n int, out []Entity, generator func(i int, e Entity)) ([]Entity, error) {
	out, err := m.CreateEntities(n, out)
	if err != nil {
		return out, err
	}
	if generator != nil {
		start := len(out) - n
		for i := 0; i < n; i++ {
			generator(i, out[start+i])
		}
	}
	return out, nil
}

// Lock marks one View iteration as active, returning a token Unlock
// needs. Structural edits (Add/RemoveComponent, Destroy) are rejected
// with LockedManagerError while any lock is outstanding, mirroring the
// teacher's single reentrant lock bit generalized to as many
// concurrently-iterating Views as mask.Mask256 has bits for.
func (m *Manager) Lock() uint32 {
	bit := m.nextLockBit
	m.nextLockBit++
	m.locks.Mark(bit)
	return bit
}

// Unlock releases a lock token obtained from Lock. Once every
// outstanding lock is released, any operations queued via Enqueue while
// locked are replayed.
func (m *Manager) Unlock(bit uint32) []error {
	m.locks.Unmark(bit)
	if m.Locked() {
		return nil
	}
	m.nextLockBit = 0
	return m.opQueue.drain(m)
}

// Locked reports whether any View iteration currently holds a lock.
func (m *Manager) Locked() bool { return !m.locks.IsEmpty() }

// Enqueue defers op until every outstanding lock is released, for
// callers that want a structural edit to apply as soon as iteration
// completes instead of failing with LockedManagerError.
func (m *Manager) Enqueue(op func(*Manager) error) {
	m.opQueue.enqueue(op)
}

// GetComponentRegistry exposes the manager's component registry, e.g.
// for deserialization code resolving persisted component hashes.
func (m *Manager) GetComponentRegistry() *registry.Registry { return m.registry }

// GetArchetypeCount returns the number of distinct archetypes currently
// tracked, including empty ones not yet reclaimed.
func (m *Manager) GetArchetypeCount() int { return len(m.archetypes) }

// DefaultCleanupOptions derives CleanupEmptyArchetypes options from the
// Config this manager was constructed with, so routine maintenance
// callers don't have to restate the tuning values themselves.
func (m *Manager) DefaultCleanupOptions() CleanupOptions {
	return CleanupOptions{
		MinEmptyGenerations:  int64(m.config.MinEmptyCleanupPasses),
		MaxToRemove:          m.config.MaxArchetypesToRemove,
		MinArchetypesToKeep:  m.config.MinArchetypesToKeep,
	}
}

// ArchetypeStats summarizes one archetype for diagnostics/tuning (spec
// §4.6 "archetype statistics").
type ArchetypeStats struct {
	Mask             ComponentMask
	MaskHash         uint64
	EntityCount      int
	PeakEntityCount  int
	ChunkCount       int
	MemoryUsageBytes int
	EmptyDuration    int64
}

// GetArchetypeStats returns a snapshot of every tracked archetype.
func (m *Manager) GetArchetypeStats() []ArchetypeStats {
	out := make([]ArchetypeStats, 0, len(m.archetypes))
	for _, a := range m.archetypes {
		out = append(out, ArchetypeStats{
			Mask:             a.mask,
			MaskHash:         maskHash(a.mask),
			EntityCount:      a.EntityCount(),
			PeakEntityCount:  a.PeakEntityCount(),
			ChunkCount:       a.ChunkCount(),
			MemoryUsageBytes: a.MemoryUsage(),
			EmptyDuration:    a.EmptyDuration(m.generation),
		})
	}
	return out
}

// GetArchetypeMemoryUsage returns the total bytes committed across every
// archetype's chunks.
func (m *Manager) GetArchetypeMemoryUsage() int {
	total := 0
	for _, a := range m.archetypes {
		total += a.MemoryUsage()
	}
	return total
}

// CleanupOptions tunes CleanupEmptyArchetypes (spec §4.6 "archetype
// reclamation").
type CleanupOptions struct {
	// MinEmptyGenerations is how long an archetype must have been
	// continuously empty before it becomes eligible for removal.
	MinEmptyGenerations int64
	// MaxToRemove caps how many archetypes a single call reclaims.
	MaxToRemove int
	// MinArchetypesToKeep stops reclamation once this many archetypes
	// remain, even if more are otherwise eligible.
	MinArchetypesToKeep int
}

// CleanupEmptyArchetypes reclaims archetypes that have held zero
// entities for at least MinEmptyGenerations generations, releasing
// their chunks back to the pool and invalidating any graph edges that
// pointed at them. The zero-component root archetype is never removed.
func (m *Manager) CleanupEmptyArchetypes(opts CleanupOptions) int {
	removed := 0
	for id, a := range m.archetypes {
		if opts.MaxToRemove > 0 && removed >= opts.MaxToRemove {
			break
		}
		if opts.MinArchetypesToKeep > 0 && len(m.archetypes) <= opts.MinArchetypesToKeep {
			break
		}
		if a.mask.IsEmpty() {
			continue // keep the root archetype entities are created into
		}
		if a.EntityCount() != 0 {
			continue
		}
		if a.EmptyDuration(m.generation) < opts.MinEmptyGenerations {
			continue
		}
		a.release()
		delete(m.archetypes, id)
		delete(m.byMask, a.mask)
		m.graph.forget(id)
		removed++
	}
	if removed > 0 {
		m.bumpGeneration()
	}
	return removed
}

// FindArchetype returns the archetype with exactly mk's component set, if
// one has been created yet (spec §4.6 FindArchetype).
func (m *Manager) FindArchetype(mk ComponentMask) (*Archetype, bool) {
	id, ok := m.byMask[mk]
	if !ok {
		return nil, false
	}
	return m.archetypes[id], true
}

// QueryArchetypes returns every archetype whose mask carries at least
// every bit set in mk (spec §4.6 QueryArchetypes), for callers building
// their own iteration on top of the archetype set instead of a Query.
func (m *Manager) QueryArchetypes(mk ComponentMask) []*Archetype {
	out := make([]*Archetype, 0, len(m.archetypes))
	for _, a := range m.archetypes {
		if a.mask.ContainsAll(mk) {
			out = append(out, a)
		}
	}
	return out
}

// CoalesceArchetype packs a's chunks toward peak fill, freeing any chunk
// left empty by the move, and repairs m.locations for every entity the
// coalesce relocated (spec §4.4 CoalesceChunks / §4.6 "Metrics &
// coalescing"). Returns the number of chunks freed.
func (m *Manager) CoalesceArchetype(a *Archetype) int {
	freed := a.CoalesceChunks(func(e Entity, newLoc packedLocation) {
		m.setLocation(e, a, newLoc)
	})
	if freed > 0 {
		m.bumpGeneration()
	}
	return freed
}
