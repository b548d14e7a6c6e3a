package dimension

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnresolved is returned by Lookup when a natural key has no entry.
var ErrUnresolved = errors.New("dimension entry not found")

// Entry is one row of a dimension table.
// SurrogateKey is system-assigned and stable; NaturalKey is the external identifier.
type Entry struct {
	SurrogateKey int64
	NaturalKey   string
	Attributes   map[string]string
}

// Table is an in-memory dimension table with insert-if-absent semantics.
// Surrogate keys are allocated by a monotonic counter seeded from the current
// maximum. All allocations go through one mutex-guarded owner — surrogate-key
// uniqueness is a hard invariant.
type Table struct {
	name string

	mu      sync.Mutex
	entries map[string]Entry // keyed by natural key
	counter int64            // last allocated surrogate key
}

// NewTable creates an empty dimension table whose counter starts after seed.
// seed is the current maximum surrogate key (0 for a fresh warehouse).
func NewTable(name string, seed int64) *Table {
	return &Table{
		name:    name,
		entries: make(map[string]Entry),
		counter: seed,
	}
}

// Name returns the dimension name (e.g. "driver").
func (t *Table) Name() string { return t.name }

// Resolve maps a natural key to its surrogate key, allocating a new one on
// first sight. Resolving the same natural key twice returns the same surrogate
// key and performs no duplicate insert; attributes of an existing entry are
// NOT updated (first-write-wins).
func (t *Table) Resolve(naturalKey string, attributes map[string]string) (int64, error) {
	if naturalKey == "" {
		return 0, fmt.Errorf("dimension %s: natural key must not be empty", t.name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.entries[naturalKey]; ok {
		return existing.SurrogateKey, nil
	}

	t.counter++
	t.entries[naturalKey] = Entry{
		SurrogateKey: t.counter,
		NaturalKey:   naturalKey,
		Attributes:   attributes,
	}
	return t.counter, nil
}

// Load inserts an already-persisted entry as-is, without advancing the
// counter. Used to hydrate the table from the warehouse before a run so that
// known natural keys resolve to their stored surrogate keys. An existing
// in-memory entry wins.
func (t *Table) Load(entry Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[entry.NaturalKey]; ok {
		return
	}
	t.entries[entry.NaturalKey] = entry
}

// Lookup returns the surrogate key for a natural key, or ErrUnresolved.
// Used by the fact transformer for required dimension references.
func (t *Table) Lookup(naturalKey string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[naturalKey]
	if !ok {
		return 0, fmt.Errorf("dimension %s: natural key %q: %w", t.name, naturalKey, ErrUnresolved)
	}
	return entry.SurrogateKey, nil
}

// Get returns the full entry for a natural key, or ErrUnresolved.
func (t *Table) Get(naturalKey string) (Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[naturalKey]
	if !ok {
		return Entry{}, fmt.Errorf("dimension %s: natural key %q: %w", t.name, naturalKey, ErrUnresolved)
	}
	return entry, nil
}

// Len returns the number of entries. The table only ever grows.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Entries returns a snapshot of all entries, in no particular order.
func (t *Table) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	return out
}
