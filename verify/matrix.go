package verify

import "sync"

// matrixSlots is the full check matrix size: 3 operators x 4 predicates.
const matrixSlots = 12

// resultMatrix is the shared check state for one (group kind, test case)
// run: one boolean per (operator, predicate) pair, initialized true and
// folded by logical AND from every participating lane.
//
// The reduction itself already combines across the whole non-uniform group
// before any lane reaches the fold, so every lane of one group folds the
// identical 12-slot vector; the AND here only combines across different
// groups. The source pattern relies on that invariant to write unsynchronized;
// Go gives no benign-race carve-out, so the fold is serialized by a mutex
// while the invariant itself is kept (and asserted in tests).
type resultMatrix struct {
	mu    sync.Mutex
	slots [matrixSlots]bool
}

func newResultMatrix() *resultMatrix {
	m := &resultMatrix{}
	for i := range m.slots {
		m.slots[i] = true
	}
	return m
}

// fold ANDs one lane's per-slot correctness vector into the matrix.
func (m *resultMatrix) fold(local [matrixSlots]bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range local {
		m.slots[i] = m.slots[i] && v
	}
}

// snapshot returns the folded matrix after the launch has completed.
func (m *resultMatrix) snapshot() [matrixSlots]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots
}
