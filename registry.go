package hangar

import (
	"github.com/TheBitDrifter/bark"
	"github.com/foundryforge/hangar/internal/registry"
)

// ComponentTypeID is a process-local identifier assigned on first use per
// distinct component type (spec §3).
type ComponentTypeID = registry.TypeID

// ComponentTypeHash is a stable 64-bit hash derived from a component's
// compile-time type name, used for cross-run/cross-process identification
// of persisted payloads (spec §3).
type ComponentTypeHash = registry.TypeHash

// ComponentDescriptor is the immutable registry record for one component
// type (spec §3/§4.2).
type ComponentDescriptor = registry.Descriptor

// MaxComponents bounds the number of distinct component types a process may
// register, sizing ComponentMask (spec §3).
const MaxComponents = registry.MaxComponents

// ComponentHandle is a typed accessor for component type T, obtained once
// via FactoryNewComponent and reused across entities — the same role the
// teacher's AccessibleComponent[T] plays over table.Accessor[T].
type ComponentHandle[T any] struct {
	descriptor *registry.Descriptor
}

// FactoryNewComponent registers T with the manager's component registry
// and returns a reusable handle for it.
func FactoryNewComponent[T any](m *Manager) ComponentHandle[T] {
	d, err := registry.Register[T](m.registry)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	return ComponentHandle[T]{descriptor: d}
}

// ID returns the process-local type id for this component.
func (c ComponentHandle[T]) ID() ComponentTypeID { return c.descriptor.ID }

// Descriptor exposes the full registry record for this component.
func (c ComponentHandle[T]) Descriptor() *ComponentDescriptor { return c.descriptor }

func (c ComponentHandle[T]) bit() uint32 { return uint32(c.descriptor.ID) }

// Add attaches component T with the given value to e, migrating it to the
// archetype with T added. Fails with DuplicateComponentError if e already
// owns T.
func (c ComponentHandle[T]) Add(m *Manager, e Entity, value T) (*T, error) {
	return addComponent(m, c.descriptor, e, value)
}

// Remove detaches component T from e, migrating it to the archetype with T
// removed. Fails with MissingComponentError if e does not own T.
func (c ComponentHandle[T]) Remove(m *Manager, e Entity) error {
	return removeComponent(m, c.descriptor, e)
}

// AddBatch attaches component T with the same shared value to every
// entity in es, grouping the migration by each entity's current
// archetype (spec §4.6 AddComponents). Entities already owning T, or no
// longer valid, are skipped rather than erroring. Returns the entities
// that were actually migrated.
func (c ComponentHandle[T]) AddBatch(m *Manager, es []Entity, value T) ([]Entity, error) {
	return addComponents(m, c.descriptor, es, value)
}

// RemoveBatch detaches component T from every entity in es, grouping
// the migration by each entity's current archetype (spec §4.6
// RemoveComponents). Returns the entities that actually had T removed.
func (c ComponentHandle[T]) RemoveBatch(m *Manager, es []Entity) ([]Entity, error) {
	return removeComponents(m, c.descriptor, es)
}

// Get returns a pointer to e's T value, or nil if e does not own T or is
// not valid.
func (c ComponentHandle[T]) Get(m *Manager, e Entity) *T {
	loc, ok := m.locationOf(e)
	if !ok {
		return nil
	}
	return archetypeGetComponent[T](loc.archetype, c.descriptor.ID, loc.packed)
}

// Has reports whether e currently owns component T.
func (c ComponentHandle[T]) Has(m *Manager, e Entity) bool {
	loc, ok := m.locationOf(e)
	if !ok {
		return false
	}
	return loc.archetype.mask.ContainsAll(maskWithBit(c.bit()))
}

// GetFromCursor retrieves T for the entity at the cursor's current
// position — the hot-path accessor used inside Cursor-driven iteration.
func (c ComponentHandle[T]) GetFromCursor(cur *Cursor) *T {
	return archetypeGetComponent[T](cur.currentArchetype, c.descriptor.ID, cur.currentLocation())
}
