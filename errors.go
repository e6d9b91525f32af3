package hangar

import "fmt"

// LockedManagerError is returned when a structural edit is attempted while
// one or more Views hold an active iteration lock (spec §5's external-lock
// hook, generalized from the teacher's single Storage lock bit).
type LockedManagerError struct{}

func (e LockedManagerError) Error() string {
	return "hangar: manager is locked by an active view iteration"
}

// InvalidEntityError is returned whenever an operation is given an entity
// that is not currently valid (spec §7 InvalidEntity).
type InvalidEntityError struct {
	Entity Entity
}

func (e InvalidEntityError) Error() string {
	return fmt.Sprintf("hangar: entity %v is not valid", e.Entity)
}

// DuplicateComponentError is returned by AddComponent when the entity
// already owns the component type (spec §7 DuplicateComponent).
type DuplicateComponentError struct {
	ComponentName string
}

func (e DuplicateComponentError) Error() string {
	return fmt.Sprintf("hangar: component %s already present on entity", e.ComponentName)
}

// MissingComponentError is returned by RemoveComponent when the entity
// does not own the component type (spec §7 MissingComponent). Getting a
// missing component returns nil instead of an error.
type MissingComponentError struct {
	ComponentName string
}

func (e MissingComponentError) Error() string {
	return fmt.Sprintf("hangar: component %s not present on entity", e.ComponentName)
}

// ResourceExhaustionError is returned when the chunk pool or the entity id
// space is exhausted (spec §7 ResourceExhaustion). Side-effect free: the
// caller may retry after releasing resources.
type ResourceExhaustionError struct {
	Resource string
}

func (e ResourceExhaustionError) Error() string {
	return fmt.Sprintf("hangar: %s exhausted", e.Resource)
}
