package hangar

import (
	"iter"
	"unsafe"
)

// viewBase holds the compiled archetype list shared by every ViewN
// generic wrapper, refreshed lazily against the manager's structural
// change counter so repeated ForEach calls skip re-matching archetypes
// when nothing has changed (spec §4.7 "cached query results").
type viewBase struct {
	m          *Manager
	query      *Query
	archetypes []*Archetype
	cacheGen   int64
}

func newViewBase(m *Manager, q *Query) viewBase {
	return viewBase{m: m, query: q}
}

func (v *viewBase) refresh() {
	if v.archetypes != nil && v.cacheGen == v.m.structuralChangeCounter {
		return
	}
	v.archetypes = v.archetypes[:0]
	for _, a := range v.m.archetypes {
		if v.query.Matches(a.mask) {
			v.archetypes = append(v.archetypes, a)
		}
	}
	v.cacheGen = v.m.structuralChangeCounter
}

func (v *viewBase) begin() uint32 {
	v.refresh()
	return v.m.Lock()
}

func (v *viewBase) end(bit uint32) []error {
	return v.m.Unlock(bit)
}

// Count returns the total number of live entities across every
// matching archetype, without locking or iterating entity-by-entity.
func (v *viewBase) count() int {
	v.refresh()
	n := 0
	for _, a := range v.archetypes {
		n += a.EntityCount()
	}
	return n
}

// empty reports whether every matching archetype currently holds zero
// entities (spec §4.7 / §6 Empty()).
func (v *viewBase) empty() bool {
	v.refresh()
	for _, a := range v.archetypes {
		if a.EntityCount() > 0 {
			return false
		}
	}
	return true
}

func componentBasePtr(a *Archetype, id ComponentTypeID, c *chunk) unsafe.Pointer {
	descIdx, ok := a.indexOf[id]
	if !ok {
		return nil
	}
	return c.componentPtr(descIdx, 0)
}

// View1 iterates every entity carrying component A (plus whatever
// Query it was built with) — the generic ergonomic layer over
// Archetype.forEachChunk, following the arity-suffixed generic free-
// function convention (ComponentID/Add2/Add3/... in the wider
// ecosystem) since Go cannot add new type parameters to a method.
type View1[A any] struct {
	base viewBase
	a    ComponentHandle[A]
}

// NewView1 compiles q, automatically requiring component A in addition
// to whatever the query already specifies.
func NewView1[A any](m *Manager, q *Query) *View1[A] {
	ah := handleFor[A](m)
	merged := q.clone()
	merged.required.Mark(ah.bit())
	return &View1[A]{base: newViewBase(m, merged), a: ah}
}

// ForEach visits every matching entity, resolving each chunk's
// component array base pointer once (spec §4.7 ForEach hot path).
func (v *View1[A]) ForEach(fn func(e Entity, a *A)) {
	bit := v.base.begin()
	defer v.base.end(bit)
	var zero A
	size := unsafe.Sizeof(zero)
	for _, arch := range v.base.archetypes {
		arch.forEachChunk(func(c *chunk) {
			base := componentBasePtr(arch, v.a.ID(), c)
			for i := uint32(0); i < c.count; i++ {
				e := c.entityAt(i)
				ap := (*A)(unsafe.Add(base, uintptr(i)*size))
				fn(e, ap)
			}
		})
	}
}

// Count returns the number of entities this view currently matches.
func (v *View1[A]) Count() int { return v.base.count() }

// Empty reports whether this view currently matches zero entities.
func (v *View1[A]) Empty() bool { return v.base.empty() }

// First returns the first matching entity and its component, or false
// if the view is empty (spec §4.7 / §6 First()).
func (v *View1[A]) First() (Entity, *A, bool) {
	bit := v.base.begin()
	defer v.base.end(bit)
	var e Entity
	var ap *A
	found := false
	for _, arch := range v.base.archetypes {
		arch.forEachChunk(func(c *chunk) {
			if found || c.count == 0 {
				return
			}
			base := componentBasePtr(arch, v.a.ID(), c)
			e = c.entityAt(0)
			ap = (*A)(base)
			found = true
		})
		if found {
			break
		}
	}
	return e, ap, found
}

// All returns a range-over-func sequence yielding every matching entity
// and its component, for `for e, a := range view.All()` iteration (spec
// §4.7 / §6 range iteration). Entity/*A is within the native two-
// parameter yield shape range-over-func supports directly.
func (v *View1[A]) All() iter.Seq2[Entity, *A] {
	return func(yield func(Entity, *A) bool) {
		bit := v.base.begin()
		defer v.base.end(bit)
		var zero A
		size := unsafe.Sizeof(zero)
		for _, arch := range v.base.archetypes {
			stop := false
			arch.forEachChunk(func(c *chunk) {
				if stop {
					return
				}
				base := componentBasePtr(arch, v.a.ID(), c)
				for i := uint32(0); i < c.count; i++ {
					e := c.entityAt(i)
					ap := (*A)(unsafe.Add(base, uintptr(i)*size))
					if !yield(e, ap) {
						stop = true
						return
					}
				}
			})
			if stop {
				return
			}
		}
	}
}

// View2 iterates every entity carrying components A and B.
type View2[A, B any] struct {
	base viewBase
	a    ComponentHandle[A]
	b    ComponentHandle[B]
}

func NewView2[A, B any](m *Manager, q *Query) *View2[A, B] {
	ah := handleFor[A](m)
	bh := handleFor[B](m)
	merged := q.clone()
	merged.required.Mark(ah.bit())
	merged.required.Mark(bh.bit())
	return &View2[A, B]{base: newViewBase(m, merged), a: ah, b: bh}
}

func (v *View2[A, B]) ForEach(fn func(e Entity, a *A, b *B)) {
	bit := v.base.begin()
	defer v.base.end(bit)
	var zeroA A
	var zeroB B
	sizeA, sizeB := unsafe.Sizeof(zeroA), unsafe.Sizeof(zeroB)
	for _, arch := range v.base.archetypes {
		arch.forEachChunk(func(c *chunk) {
			baseA := componentBasePtr(arch, v.a.ID(), c)
			baseB := componentBasePtr(arch, v.b.ID(), c)
			for i := uint32(0); i < c.count; i++ {
				e := c.entityAt(i)
				ap := (*A)(unsafe.Add(baseA, uintptr(i)*sizeA))
				bp := (*B)(unsafe.Add(baseB, uintptr(i)*sizeB))
				fn(e, ap, bp)
			}
		})
	}
}

func (v *View2[A, B]) Count() int { return v.base.count() }

// Empty reports whether this view currently matches zero entities.
func (v *View2[A, B]) Empty() bool { return v.base.empty() }

// First returns the first matching entity and its components, or false
// if the view is empty.
func (v *View2[A, B]) First() (Entity, *A, *B, bool) {
	bit := v.base.begin()
	defer v.base.end(bit)
	var e Entity
	var ap *A
	var bp *B
	found := false
	for _, arch := range v.base.archetypes {
		arch.forEachChunk(func(c *chunk) {
			if found || c.count == 0 {
				return
			}
			ap = (*A)(componentBasePtr(arch, v.a.ID(), c))
			bp = (*B)(componentBasePtr(arch, v.b.ID(), c))
			e = c.entityAt(0)
			found = true
		})
		if found {
			break
		}
	}
	return e, ap, bp, found
}

// Pair2 packs a matching entity with two component pointers — the
// tuple View2.All() yields, since range-over-func's native yield shapes
// only go up to two parameters (func(K, V) bool) and a 2-component view
// already needs three values (entity plus both components).
type Pair2[A, B any] struct {
	Entity Entity
	A      *A
	B      *B
}

// All returns a range-over-func sequence yielding one Pair2 per
// matching entity (spec §4.7 / §6 range iteration).
func (v *View2[A, B]) All() iter.Seq[Pair2[A, B]] {
	return func(yield func(Pair2[A, B]) bool) {
		bit := v.base.begin()
		defer v.base.end(bit)
		var zeroA A
		var zeroB B
		sizeA, sizeB := unsafe.Sizeof(zeroA), unsafe.Sizeof(zeroB)
		for _, arch := range v.base.archetypes {
			stop := false
			arch.forEachChunk(func(c *chunk) {
				if stop {
					return
				}
				baseA := componentBasePtr(arch, v.a.ID(), c)
				baseB := componentBasePtr(arch, v.b.ID(), c)
				for i := uint32(0); i < c.count; i++ {
					p := Pair2[A, B]{
						Entity: c.entityAt(i),
						A:      (*A)(unsafe.Add(baseA, uintptr(i)*sizeA)),
						B:      (*B)(unsafe.Add(baseB, uintptr(i)*sizeB)),
					}
					if !yield(p) {
						stop = true
						return
					}
				}
			})
			if stop {
				return
			}
		}
	}
}

// View3 iterates every entity carrying components A, B and C.
type View3[A, B, C any] struct {
	base viewBase
	a    ComponentHandle[A]
	b    ComponentHandle[B]
	c    ComponentHandle[C]
}

func NewView3[A, B, C any](m *Manager, q *Query) *View3[A, B, C] {
	ah := handleFor[A](m)
	bh := handleFor[B](m)
	ch := handleFor[C](m)
	merged := q.clone()
	merged.required.Mark(ah.bit())
	merged.required.Mark(bh.bit())
	merged.required.Mark(ch.bit())
	return &View3[A, B, C]{base: newViewBase(m, merged), a: ah, b: bh, c: ch}
}

func (v *View3[A, B, C]) ForEach(fn func(e Entity, a *A, b *B, c *C)) {
	bit := v.base.begin()
	defer v.base.end(bit)
	var zeroA A
	var zeroB B
	var zeroC C
	sizeA, sizeB, sizeC := unsafe.Sizeof(zeroA), unsafe.Sizeof(zeroB), unsafe.Sizeof(zeroC)
	for _, arch := range v.base.archetypes {
		arch.forEachChunk(func(chk *chunk) {
			baseA := componentBasePtr(arch, v.a.ID(), chk)
			baseB := componentBasePtr(arch, v.b.ID(), chk)
			baseC := componentBasePtr(arch, v.c.ID(), chk)
			for i := uint32(0); i < chk.count; i++ {
				e := chk.entityAt(i)
				ap := (*A)(unsafe.Add(baseA, uintptr(i)*sizeA))
				bp := (*B)(unsafe.Add(baseB, uintptr(i)*sizeB))
				cp := (*C)(unsafe.Add(baseC, uintptr(i)*sizeC))
				fn(e, ap, bp, cp)
			}
		})
	}
}

func (v *View3[A, B, C]) Count() int { return v.base.count() }

// Empty reports whether this view currently matches zero entities.
func (v *View3[A, B, C]) Empty() bool { return v.base.empty() }

// First returns the first matching entity and its components, or false
// if the view is empty.
func (v *View3[A, B, C]) First() (Entity, *A, *B, *C, bool) {
	bit := v.base.begin()
	defer v.base.end(bit)
	var e Entity
	var ap *A
	var bp *B
	var cp *C
	found := false
	for _, arch := range v.base.archetypes {
		arch.forEachChunk(func(chk *chunk) {
			if found || chk.count == 0 {
				return
			}
			ap = (*A)(componentBasePtr(arch, v.a.ID(), chk))
			bp = (*B)(componentBasePtr(arch, v.b.ID(), chk))
			cp = (*C)(componentBasePtr(arch, v.c.ID(), chk))
			e = chk.entityAt(0)
			found = true
		})
		if found {
			break
		}
	}
	return e, ap, bp, cp, found
}

// Pair3 packs a matching entity with three component pointers, the
// tuple View3.All() yields.
type Pair3[A, B, C any] struct {
	Entity Entity
	A      *A
	B      *B
	C      *C
}

// All returns a range-over-func sequence yielding one Pair3 per
// matching entity.
func (v *View3[A, B, C]) All() iter.Seq[Pair3[A, B, C]] {
	return func(yield func(Pair3[A, B, C]) bool) {
		bit := v.base.begin()
		defer v.base.end(bit)
		var zeroA A
		var zeroB B
		var zeroC C
		sizeA, sizeB, sizeC := unsafe.Sizeof(zeroA), unsafe.Sizeof(zeroB), unsafe.Sizeof(zeroC)
		for _, arch := range v.base.archetypes {
			stop := false
			arch.forEachChunk(func(chk *chunk) {
				if stop {
					return
				}
				baseA := componentBasePtr(arch, v.a.ID(), chk)
				baseB := componentBasePtr(arch, v.b.ID(), chk)
				baseC := componentBasePtr(arch, v.c.ID(), chk)
				for i := uint32(0); i < chk.count; i++ {
					p := Pair3[A, B, C]{
						Entity: chk.entityAt(i),
						A:      (*A)(unsafe.Add(baseA, uintptr(i)*sizeA)),
						B:      (*B)(unsafe.Add(baseB, uintptr(i)*sizeB)),
						C:      (*C)(unsafe.Add(baseC, uintptr(i)*sizeC)),
					}
					if !yield(p) {
						stop = true
						return
					}
				}
			})
			if stop {
				return
			}
		}
	}
}

// View4 iterates every entity carrying components A, B, C and D.
type View4[A, B, C, D any] struct {
	base viewBase
	a    ComponentHandle[A]
	b    ComponentHandle[B]
	c    ComponentHandle[C]
	d    ComponentHandle[D]
}

func NewView4[A, B, C, D any](m *Manager, q *Query) *View4[A, B, C, D] {
	ah := handleFor[A](m)
	bh := handleFor[B](m)
	ch := handleFor[C](m)
	dh := handleFor[D](m)
	merged := q.clone()
	merged.required.Mark(ah.bit())
	merged.required.Mark(bh.bit())
	merged.required.Mark(ch.bit())
	merged.required.Mark(dh.bit())
	return &View4[A, B, C, D]{base: newViewBase(m, merged), a: ah, b: bh, c: ch, d: dh}
}

func (v *View4[A, B, C, D]) ForEach(fn func(e Entity, a *A, b *B, c *C, d *D)) {
	bit := v.base.begin()
	defer v.base.end(bit)
	var zeroA A
	var zeroB B
	var zeroC C
	var zeroD D
	sizeA, sizeB, sizeC, sizeD := unsafe.Sizeof(zeroA), unsafe.Sizeof(zeroB), unsafe.Sizeof(zeroC), unsafe.Sizeof(zeroD)
	for _, arch := range v.base.archetypes {
		arch.forEachChunk(func(chk *chunk) {
			baseA := componentBasePtr(arch, v.a.ID(), chk)
			baseB := componentBasePtr(arch, v.b.ID(), chk)
			baseC := componentBasePtr(arch, v.c.ID(), chk)
			baseD := componentBasePtr(arch, v.d.ID(), chk)
			for i := uint32(0); i < chk.count; i++ {
				e := chk.entityAt(i)
				ap := (*A)(unsafe.Add(baseA, uintptr(i)*sizeA))
				bp := (*B)(unsafe.Add(baseB, uintptr(i)*sizeB))
				cp := (*C)(unsafe.Add(baseC, uintptr(i)*sizeC))
				dp := (*D)(unsafe.Add(baseD, uintptr(i)*sizeD))
				fn(e, ap, bp, cp, dp)
			}
		})
	}
}

func (v *View4[A, B, C, D]) Count() int { return v.base.count() }

// Empty reports whether this view currently matches zero entities.
func (v *View4[A, B, C, D]) Empty() bool { return v.base.empty() }

// First returns the first matching entity and its components, or false
// if the view is empty.
func (v *View4[A, B, C, D]) First() (Entity, *A, *B, *C, *D, bool) {
	bit := v.base.begin()
	defer v.base.end(bit)
	var e Entity
	var ap *A
	var bp *B
	var cp *C
	var dp *D
	found := false
	for _, arch := range v.base.archetypes {
		arch.forEachChunk(func(chk *chunk) {
			if found || chk.count == 0 {
				return
			}
			ap = (*A)(componentBasePtr(arch, v.a.ID(), chk))
			bp = (*B)(componentBasePtr(arch, v.b.ID(), chk))
			cp = (*C)(componentBasePtr(arch, v.c.ID(), chk))
			dp = (*D)(componentBasePtr(arch, v.d.ID(), chk))
			e = chk.entityAt(0)
			found = true
		})
		if found {
			break
		}
	}
	return e, ap, bp, cp, dp, found
}

// Pair4 packs a matching entity with four component pointers, the
// tuple View4.All() yields.
type Pair4[A, B, C, D any] struct {
	Entity Entity
	A      *A
	B      *B
	C      *C
	D      *D
}

// All returns a range-over-func sequence yielding one Pair4 per
// matching entity.
func (v *View4[A, B, C, D]) All() iter.Seq[Pair4[A, B, C, D]] {
	return func(yield func(Pair4[A, B, C, D]) bool) {
		bit := v.base.begin()
		defer v.base.end(bit)
		var zeroA A
		var zeroB B
		var zeroC C
		var zeroD D
		sizeA, sizeB, sizeC, sizeD := unsafe.Sizeof(zeroA), unsafe.Sizeof(zeroB), unsafe.Sizeof(zeroC), unsafe.Sizeof(zeroD)
		for _, arch := range v.base.archetypes {
			stop := false
			arch.forEachChunk(func(chk *chunk) {
				if stop {
					return
				}
				baseA := componentBasePtr(arch, v.a.ID(), chk)
				baseB := componentBasePtr(arch, v.b.ID(), chk)
				baseC := componentBasePtr(arch, v.c.ID(), chk)
				baseD := componentBasePtr(arch, v.d.ID(), chk)
				for i := uint32(0); i < chk.count; i++ {
					p := Pair4[A, B, C, D]{
						Entity: chk.entityAt(i),
						A:      (*A)(unsafe.Add(baseA, uintptr(i)*sizeA)),
						B:      (*B)(unsafe.Add(baseB, uintptr(i)*sizeB)),
						C:      (*C)(unsafe.Add(baseC, uintptr(i)*sizeC)),
						D:      (*D)(unsafe.Add(baseD, uintptr(i)*sizeD)),
					}
					if !yield(p) {
						stop = true
						return
					}
				}
			})
			if stop {
				return
			}
		}
	}
}

// optionalPtr resolves a nullable component pointer for slot i within
// c, returning nil when base itself is nil — i.e. when the archetype
// this chunk belongs to doesn't carry the optional component at all
// (spec §4.7 Optional<T>, grounded on plus3-ooftn/ecs/view.go's
// matchesArchetype skipping optional types and Get returning the zero
// value when absent — here surfaced as a nil pointer instead, since
// hangar already hands out live pointers rather than copied values).
func optionalPtr[T any](base unsafe.Pointer, i uint32, size uintptr) *T {
	if base == nil {
		return nil
	}
	return (*T)(unsafe.Add(base, uintptr(i)*size))
}

// View1Opt1 iterates every entity carrying required component A,
// yielding a nullable pointer to optional component O — present only
// when the matching archetype happens to carry O too (spec §4.7
// Optional<T>).
type View1Opt1[A, O any] struct {
	base viewBase
	a    ComponentHandle[A]
	o    ComponentHandle[O]
}

// NewView1Opt1 compiles q, requiring A and recording O as optional.
func NewView1Opt1[A, O any](m *Manager, q *Query) *View1Opt1[A, O] {
	ah := handleFor[A](m)
	oh := handleFor[O](m)
	merged := q.clone()
	merged.required.Mark(ah.bit())
	merged.Optional(oh)
	return &View1Opt1[A, O]{base: newViewBase(m, merged), a: ah, o: oh}
}

// ForEach visits every matching entity; o is nil for entities whose
// archetype does not carry O.
func (v *View1Opt1[A, O]) ForEach(fn func(e Entity, a *A, o *O)) {
	bit := v.base.begin()
	defer v.base.end(bit)
	var zeroA A
	var zeroO O
	sizeA, sizeO := unsafe.Sizeof(zeroA), unsafe.Sizeof(zeroO)
	for _, arch := range v.base.archetypes {
		arch.forEachChunk(func(c *chunk) {
			baseA := componentBasePtr(arch, v.a.ID(), c)
			baseO := componentBasePtr(arch, v.o.ID(), c)
			for i := uint32(0); i < c.count; i++ {
				e := c.entityAt(i)
				ap := (*A)(unsafe.Add(baseA, uintptr(i)*sizeA))
				op := optionalPtr[O](baseO, i, sizeO)
				fn(e, ap, op)
			}
		})
	}
}

// Count returns the number of entities this view currently matches.
func (v *View1Opt1[A, O]) Count() int { return v.base.count() }

// Empty reports whether this view currently matches zero entities.
func (v *View1Opt1[A, O]) Empty() bool { return v.base.empty() }

// View2Opt1 iterates every entity carrying required components A and B,
// yielding a nullable pointer to optional component O.
type View2Opt1[A, B, O any] struct {
	base viewBase
	a    ComponentHandle[A]
	b    ComponentHandle[B]
	o    ComponentHandle[O]
}

// NewView2Opt1 compiles q, requiring A and B and recording O as
// optional.
func NewView2Opt1[A, B, O any](m *Manager, q *Query) *View2Opt1[A, B, O] {
	ah := handleFor[A](m)
	bh := handleFor[B](m)
	oh := handleFor[O](m)
	merged := q.clone()
	merged.required.Mark(ah.bit())
	merged.required.Mark(bh.bit())
	merged.Optional(oh)
	return &View2Opt1[A, B, O]{base: newViewBase(m, merged), a: ah, b: bh, o: oh}
}

// ForEach visits every matching entity; o is nil for entities whose
// archetype does not carry O.
func (v *View2Opt1[A, B, O]) ForEach(fn func(e Entity, a *A, b *B, o *O)) {
	bit := v.base.begin()
	defer v.base.end(bit)
	var zeroA A
	var zeroB B
	var zeroO O
	sizeA, sizeB, sizeO := unsafe.Sizeof(zeroA), unsafe.Sizeof(zeroB), unsafe.Sizeof(zeroO)
	for _, arch := range v.base.archetypes {
		arch.forEachChunk(func(c *chunk) {
			baseA := componentBasePtr(arch, v.a.ID(), c)
			baseB := componentBasePtr(arch, v.b.ID(), c)
			baseO := componentBasePtr(arch, v.o.ID(), c)
			for i := uint32(0); i < c.count; i++ {
				e := c.entityAt(i)
				ap := (*A)(unsafe.Add(baseA, uintptr(i)*sizeA))
				bp := (*B)(unsafe.Add(baseB, uintptr(i)*sizeB))
				op := optionalPtr[O](baseO, i, sizeO)
				fn(e, ap, bp, op)
			}
		})
	}
}

// Count returns the number of entities this view currently matches.
func (v *View2Opt1[A, B, O]) Count() int { return v.base.count() }

// Empty reports whether this view currently matches zero entities.
func (v *View2Opt1[A, B, O]) Empty() bool { return v.base.empty() }

// View3Opt1 iterates every entity carrying required components A, B and
// C, yielding a nullable pointer to optional component O.
type View3Opt1[A, B, C, O any] struct {
	base viewBase
	a    ComponentHandle[A]
	b    ComponentHandle[B]
	c    ComponentHandle[C]
	o    ComponentHandle[O]
}

// NewView3Opt1 compiles q, requiring A, B and C and recording O as
// optional.
func NewView3Opt1[A, B, C, O any](m *Manager, q *Query) *View3Opt1[A, B, C, O] {
	ah := handleFor[A](m)
	bh := handleFor[B](m)
	ch := handleFor[C](m)
	oh := handleFor[O](m)
	merged := q.clone()
	merged.required.Mark(ah.bit())
	merged.required.Mark(bh.bit())
	merged.required.Mark(ch.bit())
	merged.Optional(oh)
	return &View3Opt1[A, B, C, O]{base: newViewBase(m, merged), a: ah, b: bh, c: ch, o: oh}
}

// ForEach visits every matching entity; o is nil for entities whose
// archetype does not carry O.
func (v *View3Opt1[A, B, C, O]) ForEach(fn func(e Entity, a *A, b *B, c *C, o *O)) {
	bit := v.base.begin()
	defer v.base.end(bit)
	var zeroA A
	var zeroB B
	var zeroC C
	var zeroO O
	sizeA, sizeB, sizeC, sizeO := unsafe.Sizeof(zeroA), unsafe.Sizeof(zeroB), unsafe.Sizeof(zeroC), unsafe.Sizeof(zeroO)
	for _, arch := range v.base.archetypes {
		arch.forEachChunk(func(chk *chunk) {
			baseA := componentBasePtr(arch, v.a.ID(), chk)
			baseB := componentBasePtr(arch, v.b.ID(), chk)
			baseC := componentBasePtr(arch, v.c.ID(), chk)
			baseO := componentBasePtr(arch, v.o.ID(), chk)
			for i := uint32(0); i < chk.count; i++ {
				e := chk.entityAt(i)
				ap := (*A)(unsafe.Add(baseA, uintptr(i)*sizeA))
				bp := (*B)(unsafe.Add(baseB, uintptr(i)*sizeB))
				cp := (*C)(unsafe.Add(baseC, uintptr(i)*sizeC))
				op := optionalPtr[O](baseO, i, sizeO)
				fn(e, ap, bp, cp, op)
			}
		})
	}
}

// Count returns the number of entities this view currently matches.
func (v *View3Opt1[A, B, C, O]) Count() int { return v.base.count() }

// Empty reports whether this view currently matches zero entities.
func (v *View3Opt1[A, B, C, O]) Empty() bool { return v.base.empty() }
