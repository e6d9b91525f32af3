package hangar

import "testing"

func TestQueryWithRequiresAllComponents(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)
	velocity := FactoryNewComponent[Velocity](m)

	q := NewQuery().With(position, velocity)

	var withBoth ComponentMask
	withBoth.Mark(position.bit())
	withBoth.Mark(velocity.bit())
	if !q.Matches(withBoth) {
		t.Fatalf("query should match an archetype with both components")
	}

	var withOne ComponentMask
	withOne.Mark(position.bit())
	if q.Matches(withOne) {
		t.Fatalf("query should not match an archetype missing a required component")
	}
}

func TestQueryWithoutExcludesForbidden(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)
	health := FactoryNewComponent[Health](m)

	q := NewQuery().With(position).Without(health)

	var ok ComponentMask
	ok.Mark(position.bit())
	if !q.Matches(ok) {
		t.Fatalf("query should match an archetype without the forbidden component")
	}

	var excluded ComponentMask
	excluded.Mark(position.bit())
	excluded.Mark(health.bit())
	if q.Matches(excluded) {
		t.Fatalf("query should not match an archetype carrying a forbidden component")
	}
}

func TestQueryAnyRequiresAtLeastOne(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)
	velocity := FactoryNewComponent[Velocity](m)
	health := FactoryNewComponent[Health](m)

	q := NewQuery().Any(velocity, health)

	var onlyVelocity ComponentMask
	onlyVelocity.Mark(velocity.bit())
	if !q.Matches(onlyVelocity) {
		t.Fatalf("query should match when one any-of component is present")
	}

	var onlyPosition ComponentMask
	onlyPosition.Mark(position.bit())
	if q.Matches(onlyPosition) {
		t.Fatalf("query should not match when no any-of component is present")
	}
}

func TestQueryOptionalNeverAddsToRequired(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)
	velocity := FactoryNewComponent[Velocity](m)

	q := NewQuery().With(position).Optional(velocity)

	var positionOnly ComponentMask
	positionOnly.Mark(position.bit())
	if !q.Matches(positionOnly) {
		t.Fatalf("query should match an archetype lacking an optional component")
	}

	var both ComponentMask
	both.Mark(position.bit())
	both.Mark(velocity.bit())
	if !q.Matches(both) {
		t.Fatalf("query should also match an archetype carrying the optional component")
	}
}

func TestQueryTouchedMaskUnionsEveryGroup(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)
	velocity := FactoryNewComponent[Velocity](m)
	health := FactoryNewComponent[Health](m)

	q := NewQuery().With(position).Without(health).Any(velocity)
	touched := q.TouchedMask()

	var want ComponentMask
	want.Mark(position.bit())
	want.Mark(health.bit())
	want.Mark(velocity.bit())

	if !touched.ContainsAll(want) {
		t.Fatalf("TouchedMask() = %v, want to contain every referenced bit %v", touched, want)
	}
}

func TestQueryCloneIsIndependent(t *testing.T) {
	m := newTestManager()
	position := FactoryNewComponent[Position](m)
	velocity := FactoryNewComponent[Velocity](m)

	base := NewQuery().With(position)
	clone := base.clone()
	clone.required.Mark(velocity.bit())

	var positionOnly ComponentMask
	positionOnly.Mark(position.bit())
	if !base.Matches(positionOnly) {
		t.Fatalf("mutating a clone should not affect the original query")
	}
}
