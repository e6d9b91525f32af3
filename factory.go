package hangar

// factory is the package's single entry point for constructing
// Managers, Queries and Cursors — mirroring the teacher's package-level
// Factory singleton. Component and view constructors stay as free
// generic functions (FactoryNewComponent, NewView1..NewView4) since Go
// does not allow a method to introduce type parameters its receiver
// doesn't already have.
type factory struct{}

// Factory is the package's constructor entry point: hangar.Factory.NewManager(...).
var Factory factory

// NewManager constructs a new, empty Manager using cfg.
func (factory) NewManager(cfg Config) *Manager {
	return NewManager(cfg)
}

// NewQuery returns a new, empty Query.
func (factory) NewQuery() *Query {
	return NewQuery()
}

// NewCursor compiles q against m into a reusable Cursor.
func (factory) NewCursor(m *Manager, q *Query) *Cursor {
	return NewCursor(m, q)
}
