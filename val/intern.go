package val

import (
	"sync"

	"github.com/dchest/siphash"
)

// internTable shares structurally-identical subterms across a run so
// that, e.g., the same symbolic CALLDATALOAD read inserted at many
// memory positions is a single allocation. Sharing is purely a memory
// optimization: every consumer compares values with Equal, never with
// pointer identity, so a hash collision (handled below by re-checking
// Equal before reuse) can only cost an extra allocation, never
// correctness.
var (
	internMu    sync.Mutex
	internTable = map[uint64]*Word{}
)

const internSipKey0, internSipKey1 = 0x726f7453, 0x65676172 // "Stor" "egar", arbitrary fixed key

// Shared returns a pointer to a canonical copy of w, reusing a
// previously interned node with the same structure when one exists.
func Shared(w Word) *Word {
	h := siphash.Hash(internSipKey0, internSipKey1, []byte(w.String()))

	internMu.Lock()
	defer internMu.Unlock()

	if existing, ok := internTable[h]; ok && existing.Equal(w) {
		return existing
	}
	cp := w
	internTable[h] = &cp
	return &cp
}
