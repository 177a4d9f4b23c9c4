package domain

import "github.com/oklog/ulid/v2"

// Entity is the base for domain objects that are identified by a unique,
// immutable ID. Two entities are the same entity when their IDs match,
// regardless of the rest of their state.
type Entity struct {
	id string
}

// NewEntity creates an entity with the given ID.
func NewEntity(id string) Entity {
	return Entity{id: id}
}

// NewID generates a new unique entity ID.
func NewID() string {
	return ulid.Make().String()
}

// ID returns the entity's identifier.
func (e Entity) ID() string {
	return e.id
}

// Equals reports whether both entities share the same identity.
func (e Entity) Equals(other Entity) bool {
	return e.id != "" && e.id == other.id
}
