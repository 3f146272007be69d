package game

// RemovalQueue collects entities to remove at the end of the current frame.
// An entity is queued at most once.
type RemovalQueue struct {
	items []Entity
}

// Push queues e and reports whether it was newly queued.
func (q *RemovalQueue) Push(e Entity) bool {
	if e == nil || q.Contains(e) {
		return false
	}
	q.items = append(q.items, e)
	return true
}

// Contains reports whether e is queued.
func (q *RemovalQueue) Contains(e Entity) bool {
	for _, item := range q.items {
		if item == e {
			return true
		}
	}
	return false
}

// Len returns the number of queued entities.
func (q *RemovalQueue) Len() int {
	return len(q.items)
}

// Flush calls fn for each queued entity in order, then empties the queue.
// Entities pushed by fn are kept for the next flush.
func (q *RemovalQueue) Flush(fn func(Entity)) int {
	items := q.items
	q.items = nil
	for _, e := range items {
		fn(e)
	}
	return len(items)
}
