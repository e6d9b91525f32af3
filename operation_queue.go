package hangar

// operationQueue holds structural edits deferred via Manager.Enqueue
// while a View iteration lock is outstanding — the same role the
// teacher's entityOperationsQueue plays for mid-iteration Add/Remove/
// Destroy calls.
type operationQueue struct {
	ops []func(*Manager) error
}

func (q *operationQueue) enqueue(op func(*Manager) error) {
	q.ops = append(q.ops, op)
}

// drain applies every queued operation against m in submission order,
// collecting (rather than stopping on) individual failures.
func (q *operationQueue) drain(m *Manager) []error {
	ops := q.ops
	q.ops = nil
	var errs []error
	for _, op := range ops {
		if err := op(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
