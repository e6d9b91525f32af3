package hangar

import "testing"

func TestView1ForEachVisitsMatchingEntities(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)

	for i := 0; i < 4; i++ {
		e, _ := m.CreateEntity()
		position.Add(m, e, Position{X: float64(i)})
	}

	view := NewView1[Position](m, NewQuery())
	seen := 0
	view.ForEach(func(e Entity, p *Position) {
		seen++
	})
	if seen != 4 {
		t.Fatalf("ForEach visited %d entities, want 4", seen)
	}
}

func TestView2ForEachMutatesComponents(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)
	velocity := FactoryNewComponent[Velocity](m)

	e, _ := m.CreateEntity()
	position.Add(m, e, Position{X: 0, Y: 0})
	velocity.Add(m, e, Velocity{X: 1, Y: 2})

	view := NewView2[Position, Velocity](m, NewQuery())
	view.ForEach(func(e Entity, pos *Position, vel *Velocity) {
		pos.X += vel.X
		pos.Y += vel.Y
	})

	got := position.Get(m, e)
	if got.X != 1 || got.Y != 2 {
		t.Fatalf("Position after ForEach = %v, want {1 2}", *got)
	}
}

func TestView2ExcludesEntitiesMissingEitherComponent(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)
	velocity := FactoryNewComponent[Velocity](m)

	both, _ := m.CreateEntity()
	position.Add(m, both, Position{})
	velocity.Add(m, both, Velocity{})

	onlyPosition, _ := m.CreateEntity()
	position.Add(m, onlyPosition, Position{})

	view := NewView2[Position, Velocity](m, NewQuery())
	count := 0
	view.ForEach(func(e Entity, pos *Position, vel *Velocity) {
		if e == onlyPosition {
			t.Fatalf("ForEach visited an entity missing Velocity")
		}
		count++
	})
	if count != 1 {
		t.Fatalf("ForEach visited %d entities, want 1", count)
	}
}

func TestViewCountMatchesForEach(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)
	for i := 0; i < 7; i++ {
		e, _ := m.CreateEntity()
		position.Add(m, e, Position{})
	}

	view := NewView1[Position](m, NewQuery())
	if view.Count() != 7 {
		t.Fatalf("Count() = %d, want 7", view.Count())
	}
	visited := 0
	view.ForEach(func(e Entity, p *Position) { visited++ })
	if visited != view.Count() {
		t.Fatalf("ForEach visited %d entities, Count() = %d", visited, view.Count())
	}
}

func TestView1EmptyAndFirst(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)

	empty := NewView1[Position](m, NewQuery())
	if !empty.Empty() {
		t.Fatalf("Empty() = false on a view with no matching entities")
	}
	if _, _, ok := empty.First(); ok {
		t.Fatalf("First() = ok on an empty view")
	}

	e, _ := m.CreateEntity()
	position.Add(m, e, Position{X: 3})

	view := NewView1[Position](m, NewQuery())
	if view.Empty() {
		t.Fatalf("Empty() = true on a view with a matching entity")
	}
	gotE, gotP, ok := view.First()
	if !ok || gotE != e || gotP.X != 3 {
		t.Fatalf("First() = (%v, %v, %v), want (%v, {X:3}, true)", gotE, gotP, ok, e)
	}
}

func TestView1AllRangesEveryMatch(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)

	want := map[Entity]float64{}
	for i := 0; i < 4; i++ {
		e, _ := m.CreateEntity()
		position.Add(m, e, Position{X: float64(i)})
		want[e] = float64(i)
	}

	view := NewView1[Position](m, NewQuery())
	got := map[Entity]float64{}
	for e, p := range view.All() {
		got[e] = p.X
	}
	if len(got) != len(want) {
		t.Fatalf("All() yielded %d entities, want %d", len(got), len(want))
	}
	for e, x := range want {
		if got[e] != x {
			t.Fatalf("entity %v: All() X = %v, want %v", e, got[e], x)
		}
	}
}

func TestView2AllYieldsPairs(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)
	velocity := FactoryNewComponent[Velocity](m)

	e, _ := m.CreateEntity()
	position.Add(m, e, Position{X: 1})
	velocity.Add(m, e, Velocity{X: 2})

	view := NewView2[Position, Velocity](m, NewQuery())
	count := 0
	for pair := range view.All() {
		if pair.Entity != e || pair.A.X != 1 || pair.B.X != 2 {
			t.Fatalf("pair = %+v, want Entity=%v A.X=1 B.X=2", pair, e)
		}
		count++
	}
	if count != 1 {
		t.Fatalf("All() yielded %d pairs, want 1", count)
	}
}

func TestView1Opt1YieldsNilForMissingOptional(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)
	velocity := FactoryNewComponent[Velocity](m)

	withVel, _ := m.CreateEntity()
	position.Add(m, withVel, Position{X: 1})
	velocity.Add(m, withVel, Velocity{X: 9})

	withoutVel, _ := m.CreateEntity()
	position.Add(m, withoutVel, Position{X: 2})

	view := NewView1Opt1[Position, Velocity](m, NewQuery())
	seen := map[Entity]*Velocity{}
	view.ForEach(func(e Entity, p *Position, v *Velocity) {
		seen[e] = v
	})

	if len(seen) != 2 {
		t.Fatalf("ForEach visited %d entities, want 2", len(seen))
	}
	if seen[withVel] == nil || seen[withVel].X != 9 {
		t.Fatalf("entity with Velocity got %v, want non-nil X=9", seen[withVel])
	}
	if seen[withoutVel] != nil {
		t.Fatalf("entity without Velocity got non-nil optional pointer %v, want nil", seen[withoutVel])
	}
}
