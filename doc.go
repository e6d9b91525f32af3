/*
Package hangar implements an archetype-based Entity Component System (ECS)
storage and query engine.

Hangar keeps entities that share an identical component set packed together
in fixed-size 16KiB chunks, laid out structure-of-arrays for cache-friendly
iteration, and caches the graph of single-component add/remove transitions
between archetypes so structural edits are O(1) after the first traversal of
a given mask.

Core Concepts:

  - Entity: an opaque, versioned identifier for a game object.
  - Component: a plain data type attached to entities via a ComponentHandle.
  - Archetype: the storage object for every entity sharing one component set.
  - Query/View: a compiled component-signature filter over archetypes.

Basic Usage:

	manager := hangar.Factory.NewManager(hangar.DefaultConfig())

	position := hangar.FactoryNewComponent[Position](manager)
	velocity := hangar.FactoryNewComponent[Velocity](manager)

	e, _ := manager.CreateEntity()
	position.Add(manager, e, Position{X: 1, Y: 2})
	velocity.Add(manager, e, Velocity{X: 0, Y: 1})

	query := hangar.Factory.NewQuery()
	view := hangar.NewView2[Position, Velocity](manager, query)
	view.ForEach(func(e hangar.Entity, pos *Position, vel *Velocity) {
		pos.X += vel.X
		pos.Y += vel.Y
	})

Hangar is the storage core of a larger game framework but also works
standalone.
*/
package hangar
