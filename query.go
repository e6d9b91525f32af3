package hangar

// componentBit is implemented by ComponentHandle[T] (bit is unexported,
// so only this package can satisfy it) and lets Query build masks
// without knowing any concrete component type.
type componentBit interface {
	bit() uint32
}

// Query is a compiled required/forbidden/any-of component mask matched
// against archetype masks (spec §4.7 Query/view). Build one with
// NewQuery and the With/Without/Any builder methods, then hand it to
// NewCursor or a ViewN constructor.
type Query struct {
	required  ComponentMask
	forbidden ComponentMask
	optional  ComponentMask
	anyOf     []ComponentMask
}

// NewQuery returns an empty Query matching every archetype.
func NewQuery() *Query {
	return &Query{}
}

// With requires every given component to be present.
func (q *Query) With(handles ...componentBit) *Query {
	for _, h := range handles {
		q.required.Mark(h.bit())
	}
	return q
}

// Without forbids every given component from being present.
func (q *Query) Without(handles ...componentBit) *Query {
	for _, h := range handles {
		q.forbidden.Mark(h.bit())
	}
	return q
}

// Any adds an any-of group: a matching archetype must carry at least
// one of the given components. Calling Any multiple times ANDs the
// groups together (each group must independently have a match).
func (q *Query) Any(handles ...componentBit) *Query {
	if len(handles) == 0 {
		return q
	}
	var group ComponentMask
	for _, h := range handles {
		group.Mark(h.bit())
	}
	q.anyOf = append(q.anyOf, group)
	return q
}

// Optional records that handles may or may not be present on a matching
// archetype (spec §4.7 Optional<T>): unlike With, it never adds to
// required, so archetypes lacking the component still match — a
// ViewNOpt1 constructor uses this purely for TouchedMask bookkeeping,
// since the nullable-pointer behavior itself comes from the optional
// component never being marked required.
func (q *Query) Optional(handles ...componentBit) *Query {
	for _, h := range handles {
		q.optional.Mark(h.bit())
	}
	return q
}

// TouchedMask returns the union of every component bit this query
// references — required, forbidden, optional, and every any-of group —
// for callers introspecting what a query reads without duplicating its
// builder calls.
func (q *Query) TouchedMask() ComponentMask {
	out := maskUnion(q.required, q.forbidden)
	out = maskUnion(out, q.optional)
	for _, group := range q.anyOf {
		out = maskUnion(out, group)
	}
	return out
}

// Matches reports whether an archetype carrying m satisfies the query.
func (q *Query) Matches(m ComponentMask) bool {
	if !m.ContainsAll(q.required) {
		return false
	}
	if !q.forbidden.IsEmpty() && m.ContainsAny(q.forbidden) {
		return false
	}
	for _, group := range q.anyOf {
		if !m.ContainsAny(group) {
			return false
		}
	}
	return true
}

func (q *Query) clone() *Query {
	c := &Query{required: q.required, forbidden: q.forbidden, optional: q.optional}
	c.anyOf = append([]ComponentMask(nil), q.anyOf...)
	return c
}

// handleFor registers T if necessary and returns a handle for it —
// ViewN constructors use this so callers don't have to separately call
// FactoryNewComponent for every component they iterate.
func handleFor[T any](m *Manager) ComponentHandle[T] {
	return FactoryNewComponent[T](m)
}
