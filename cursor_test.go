package hangar

import "testing"

func TestCursorVisitsEveryMatchingEntity(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)

	want := map[Entity]bool{}
	for i := 0; i < 5; i++ {
		e, _ := m.CreateEntity()
		position.Add(m, e, Position{X: float64(i)})
		want[e] = true
	}

	q := NewQuery().With(position)
	cur := NewCursor(m, q)
	cur.Initialize()
	defer cur.Release()

	got := map[Entity]bool{}
	for cur.Next() {
		got[cur.CurrentEntity()] = true
	}

	if len(got) != len(want) {
		t.Fatalf("cursor visited %d entities, want %d", len(got), len(want))
	}
	for e := range want {
		if !got[e] {
			t.Fatalf("cursor never visited entity %v", e)
		}
	}
}

func TestCursorSkipsNonMatchingArchetypes(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)
	health := FactoryNewComponent[Health](m)

	e1, _ := m.CreateEntity()
	position.Add(m, e1, Position{})

	e2, _ := m.CreateEntity()
	health.Add(m, e2, Health{HP: 10})

	q := NewQuery().With(position)
	cur := NewCursor(m, q)
	cur.Initialize()
	defer cur.Release()

	count := 0
	for cur.Next() {
		if cur.CurrentEntity() == e2 {
			t.Fatalf("cursor visited an entity that doesn't match the query")
		}
		count++
	}
	if count != 1 {
		t.Fatalf("cursor visited %d entities, want 1", count)
	}
}

func TestCursorLocksManagerDuringIteration(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)
	e, _ := m.CreateEntity()
	position.Add(m, e, Position{})

	q := NewQuery().With(position)
	cur := NewCursor(m, q)
	cur.Initialize()

	if !m.Locked() {
		t.Fatalf("manager should be locked while a cursor is iterating")
	}
	cur.Release()
	if m.Locked() {
		t.Fatalf("manager should be unlocked after Release")
	}
}

func TestCursorResetRevisitsSameEntities(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)
	for i := 0; i < 3; i++ {
		e, _ := m.CreateEntity()
		position.Add(m, e, Position{})
	}

	q := NewQuery().With(position)
	cur := NewCursor(m, q)
	cur.Initialize()
	defer cur.Release()

	first := 0
	for cur.Next() {
		first++
	}
	cur.Reset()
	second := 0
	for cur.Next() {
		second++
	}
	if first != second {
		t.Fatalf("Reset produced a different entity count: %d vs %d", first, second)
	}
}
