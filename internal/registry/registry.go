// Package registry implements the process-scoped component registry
// described by spec component B: per-component-type metadata (size,
// alignment, lifecycle operations) required for type-erased storage.
package registry

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sync"
	"unsafe"
)

// TypeID is a process-local identifier assigned on first use per distinct
// component type.
type TypeID uint16

// TypeHash is a stable 64-bit hash of the component's compile-time type
// name, used for cross-run/cross-process identification of persisted
// payloads.
type TypeHash uint64

// MaxComponents bounds the number of distinct component types a single
// process may register, which in turn sizes ComponentMask.
const MaxComponents = 64

// Descriptor is the immutable record the registry owns for one component
// type.
type Descriptor struct {
	ID                  TypeID
	Hash                TypeHash
	Name                string
	Size                uintptr
	Alignment           uintptr
	Version             uint32
	MinSupportedVersion uint32

	TriviallyCopyable bool
	EmptyType         bool

	// Lifecycle operations over opaque byte pointers into chunk storage.
	DefaultConstruct func(ptr unsafe.Pointer)
	Destruct         func(ptr unsafe.Pointer)
	CopyConstruct    func(dst, src unsafe.Pointer)
	MoveConstruct    func(dst, src unsafe.Pointer)
	MoveAssign       func(dst, src unsafe.Pointer)
	CopyAssign       func(dst, src unsafe.Pointer)

	goType reflect.Type
}

// GoType exposes the reflect.Type backing this descriptor, for callers
// that need to allocate reflect-typed arrays (chunk component columns).
func (d *Descriptor) GoType() reflect.Type { return d.goType }

// Registry maps component-type ids/hashes to their descriptors. Safe for
// concurrent read-only use after registration (see spec §5): mutation
// (Register) is expected to happen during single-threaded setup, but the
// registry guards itself with a mutex so a shared registry across manager
// instances in the same address space (spec §4.2) is never corrupted.
type Registry struct {
	mu         sync.RWMutex
	byID       []*Descriptor
	idOf       map[reflect.Type]TypeID
	idByHash   map[TypeHash]TypeID
	nextID     TypeID
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		idOf:     make(map[reflect.Type]TypeID),
		idByHash: make(map[TypeHash]TypeID),
	}
}

// Register records a component type T, returning its descriptor.
// Registration is idempotent: a second call for the same type returns the
// original descriptor unchanged.
func Register[T any](r *Registry) (*Descriptor, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("registry: cannot register nil interface type")
	}
	return RegisterType(r, t)
}

// RegisterType is the non-generic form of Register, used when the caller
// only has a reflect.Type (e.g. deserialization).
func RegisterType(r *Registry, t reflect.Type) (*Descriptor, error) {
	r.mu.RLock()
	if id, ok := r.idOf[t]; ok {
		d := r.byID[id]
		r.mu.RUnlock()
		return d, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check under write lock: another goroutine may have registered it.
	if id, ok := r.idOf[t]; ok {
		return r.byID[id], nil
	}
	if int(r.nextID) >= MaxComponents {
		return nil, fmt.Errorf("registry: component type cap (%d) exceeded registering %s", MaxComponents, t)
	}

	id := r.nextID
	r.nextID++
	d := &Descriptor{
		ID:                  id,
		Hash:                hashTypeName(t),
		Name:                t.String(),
		Size:                t.Size(),
		Alignment:           uintptr(t.Align()),
		Version:             1,
		MinSupportedVersion: 1,
		TriviallyCopyable:   isTriviallyCopyable(t),
		EmptyType:           t.Size() == 0,
		goType:              t,
	}
	synthesizeLifecycle(d, t)

	r.byID = append(r.byID, d)
	r.idOf[t] = id
	r.idByHash[d.Hash] = id
	return d, nil
}

// Lookup returns the descriptor for id, if registered.
func (r *Registry) Lookup(id TypeID) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.byID) {
		return nil, false
	}
	return r.byID[id], true
}

// LookupHash resolves a persisted component hash back to a local id,
// rejecting unknown hashes (spec §6 serialization boundary).
func (r *Registry) LookupHash(h TypeHash) (TypeID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByHash[h]
	return id, ok
}

// IDFor returns the id already assigned to T, registering it first if
// necessary.
func IDFor[T any](r *Registry) (TypeID, error) {
	d, err := Register[T](r)
	if err != nil {
		return 0, err
	}
	return d.ID, nil
}

// Count returns the number of distinct registered component types.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func hashTypeName(t reflect.Type) TypeHash {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.String()))
	return TypeHash(h.Sum64())
}

// isTriviallyCopyable approximates the C++ trait: no pointers reachable
// from the type mean a flat byte copy is safe for move/copy alike.
func isTriviallyCopyable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Interface, reflect.Func, reflect.String:
		return false
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !isTriviallyCopyable(t.Field(i).Type) {
				return false
			}
		}
		return true
	case reflect.Array:
		return isTriviallyCopyable(t.Elem())
	default:
		return true
	}
}

// synthesizeLifecycle builds the function-pointer table for a descriptor.
// Trivially-copyable types get raw memmove-style copies for everything;
// non-trivial types route through reflect so embedded pointers/slices are
// honored correctly.
func synthesizeLifecycle(d *Descriptor, t reflect.Type) {
	size := t.Size()

	if d.TriviallyCopyable {
		d.DefaultConstruct = func(ptr unsafe.Pointer) { zeroBytes(ptr, size) }
		d.Destruct = func(unsafe.Pointer) {}
		d.CopyConstruct = func(dst, src unsafe.Pointer) { copyBytes(dst, src, size) }
		d.MoveConstruct = func(dst, src unsafe.Pointer) { copyBytes(dst, src, size) }
		d.MoveAssign = func(dst, src unsafe.Pointer) { copyBytes(dst, src, size) }
		d.CopyAssign = func(dst, src unsafe.Pointer) { copyBytes(dst, src, size) }
		return
	}

	zero := reflect.New(t).Elem()
	d.DefaultConstruct = func(ptr unsafe.Pointer) {
		reflect.NewAt(t, ptr).Elem().Set(zero)
	}
	d.Destruct = func(ptr unsafe.Pointer) {
		reflect.NewAt(t, ptr).Elem().Set(zero)
	}
	d.CopyConstruct = func(dst, src unsafe.Pointer) {
		reflect.NewAt(t, dst).Elem().Set(reflect.NewAt(t, src).Elem())
	}
	d.MoveConstruct = func(dst, src unsafe.Pointer) {
		srcVal := reflect.NewAt(t, src).Elem()
		reflect.NewAt(t, dst).Elem().Set(srcVal)
		srcVal.Set(zero)
	}
	d.MoveAssign = d.MoveConstruct
	d.CopyAssign = d.CopyConstruct
}

func zeroBytes(ptr unsafe.Pointer, size uintptr) {
	b := unsafe.Slice((*byte)(ptr), size)
	for i := range b {
		b[i] = 0
	}
}

func copyBytes(dst, src unsafe.Pointer, size uintptr) {
	if size == 0 {
		return
	}
	dstSlice := unsafe.Slice((*byte)(dst), size)
	srcSlice := unsafe.Slice((*byte)(src), size)
	copy(dstSlice, srcSlice)
}
