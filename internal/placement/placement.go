// Package placement maps a shard's LogicalLocation to the BackendAdapter
// that stores it.
//
// Unlike a general load-balancing placer, shard placement here is a fixed
// 1:1 table fixed at startup: backend_locations[i] always stores
// shard_index i for every file. Changing the table at runtime would break
// retrieval for every file already stored (the orchestrator would no
// longer know which backend holds shard i), so the table is built once
// from configuration and never mutated afterwards.
//
// Architecture Role:
// The placement package sits between the service layer (the orchestrator)
// and the repository layer (objectstore adapters). It gives the
// orchestrator a single place to resolve "which backend stores shard i"
// without hardcoding index arithmetic at every call site.
package placement

import (
	"fmt"
	"sync"

	"github.com/zzenonn/zstore/internal/repository/objectstore"
)

// Placer resolves a LogicalLocation (shard index) to the adapter that
// owns it. Implementations must be thread-safe; the table is filled during
// startup (RegisterLocation) and only read afterwards.
type Placer interface {
	// Place returns the adapter for shard index i. i must be in [0, n).
	Place(shardIndex int) (objectstore.BackendAdapter, error)

	// RegisterLocation assigns an adapter to a LogicalLocation. Intended
	// for startup wiring only.
	RegisterLocation(location int, adapter objectstore.BackendAdapter) error

	// Locations returns the Location() string of every registered
	// adapter, in index order, for administrative/listing use.
	Locations() []string

	// Len returns n, the number of registered locations.
	Len() int
}

// FixedTablePlacer implements Placer as a direct index lookup into a
// slice sized at construction time.
type FixedTablePlacer struct {
	mu       sync.RWMutex
	adapters []objectstore.BackendAdapter
}

// NewFixedTablePlacer builds a placer with n empty slots, to be filled by
// RegisterLocation during startup.
func NewFixedTablePlacer(n int) *FixedTablePlacer {
	return &FixedTablePlacer{adapters: make([]objectstore.BackendAdapter, n)}
}

// NewFixedTablePlacerFromAdapters builds a placer already populated in
// index order — adapters[i] stores shard_index i.
func NewFixedTablePlacerFromAdapters(adapters []objectstore.BackendAdapter) *FixedTablePlacer {
	table := make([]objectstore.BackendAdapter, len(adapters))
	copy(table, adapters)
	return &FixedTablePlacer{adapters: table}
}

func (p *FixedTablePlacer) RegisterLocation(location int, adapter objectstore.BackendAdapter) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if location < 0 || location >= len(p.adapters) {
		return fmt.Errorf("location %d out of range [0, %d)", location, len(p.adapters))
	}
	if p.adapters[location] != nil {
		return fmt.Errorf("location %d already registered", location)
	}
	p.adapters[location] = adapter
	return nil
}

func (p *FixedTablePlacer) Place(shardIndex int) (objectstore.BackendAdapter, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if shardIndex < 0 || shardIndex >= len(p.adapters) {
		return nil, fmt.Errorf("shard index %d out of range [0, %d)", shardIndex, len(p.adapters))
	}
	adapter := p.adapters[shardIndex]
	if adapter == nil {
		return nil, fmt.Errorf("no backend registered for location %d", shardIndex)
	}
	return adapter, nil
}

func (p *FixedTablePlacer) Locations() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, len(p.adapters))
	for i, a := range p.adapters {
		if a != nil {
			out[i] = a.Location()
		}
	}
	return out
}

func (p *FixedTablePlacer) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.adapters)
}
