package game

// Registry is the ordered set of entities updated and drawn each frame.
// Membership is by identity and is tracked in a set, so lookups during a
// pass do not scan the slice.
type Registry struct {
	entities []Entity
	members  map[Entity]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make([]Entity, 0, 64),
		members:  make(map[Entity]struct{}, 64),
	}
}

// Add appends e. Adding a registered entity is a no-op.
func (r *Registry) Add(e Entity) {
	if _, ok := r.members[e]; ok {
		return
	}
	r.members[e] = struct{}{}
	r.entities = append(r.entities, e)
}

// Remove deletes e and reports whether it was present. Order is preserved.
func (r *Registry) Remove(e Entity) bool {
	if _, ok := r.members[e]; !ok {
		return false
	}
	delete(r.members, e)

	for i, other := range r.entities {
		if other == e {
			copy(r.entities[i:], r.entities[i+1:])
			r.entities[len(r.entities)-1] = nil
			r.entities = r.entities[:len(r.entities)-1]
			break
		}
	}
	return true
}

// Contains reports whether e is registered.
func (r *Registry) Contains(e Entity) bool {
	_, ok := r.members[e]
	return ok
}

// Len returns the number of entities.
func (r *Registry) Len() int {
	return len(r.entities)
}

// Each calls fn for the entities present when the pass starts, in insertion
// order. Entities added by fn are not visited in this pass; entities removed
// by fn are skipped.
func (r *Registry) Each(fn func(Entity)) {
	snapshot := make([]Entity, len(r.entities))
	copy(snapshot, r.entities)
	for _, e := range snapshot {
		if _, ok := r.members[e]; !ok {
			continue
		}
		fn(e)
	}
}

// Entities returns a copy of the registered entities.
func (r *Registry) Entities() []Entity {
	out := make([]Entity, len(r.entities))
	copy(out, r.entities)
	return out
}

// Clear drops every entity and returns them.
func (r *Registry) Clear() []Entity {
	old := r.entities
	r.entities = make([]Entity, 0, cap(old))
	r.members = make(map[Entity]struct{}, cap(old))
	return old
}
