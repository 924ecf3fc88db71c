package reconcile

import (
	"sync"

	"github.com/google/uuid"
)

// RefGenerator produces order correlation refs.
type RefGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 refs.
//
// Refs from one batch sort by creation time, which keeps order ids and refs
// in the same relative order when eyeballing the database.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined refs for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu   sync.Mutex
	refs []string
	idx  int
}

// NewFixedGenerator creates a generator that returns refs in order.
//
//	gen := NewFixedGenerator("ref-1", "ref-2")
//	gen.Generate() // "ref-1"
//	gen.Generate() // "ref-2"
//	gen.Generate() // panic: all refs exhausted
func NewFixedGenerator(refs ...string) *FixedGenerator {
	return &FixedGenerator{refs: refs}
}

// Generate returns the next predetermined ref.
//
// Panics if all refs have been consumed: the test asked for more orders than
// it configured.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.refs) {
		panic("FixedGenerator: all refs exhausted")
	}
	ref := g.refs[g.idx]
	g.idx++
	return ref
}
