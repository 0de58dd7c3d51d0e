package storage

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Manager owns one LedgerStore per building. Buildings are fully
// independent: no cross-building relationships, no shared connections.
type Manager struct {
	stores map[string]*LedgerStore
}

// OpenBuildings opens the store for every configured building, running
// migrations as needed. The opens run concurrently; the first failure
// wins and already-opened stores are closed again.
func OpenBuildings(buildings []string, pathFor func(building string) string) (*Manager, error) {
	opened := make([]*LedgerStore, len(buildings))

	var g errgroup.Group
	for i, building := range buildings {
		i, building := i, building
		g.Go(func() error {
			store, err := Open(pathFor(building), building)
			if err != nil {
				return fmt.Errorf("open building %s: %w", building, err)
			}
			opened[i] = store
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, store := range opened {
			if store != nil {
				store.Close()
			}
		}
		return nil, err
	}

	stores := make(map[string]*LedgerStore, len(opened))
	for _, store := range opened {
		stores[store.Building()] = store
	}
	return &Manager{stores: stores}, nil
}

// Get returns the store for a building.
func (m *Manager) Get(building string) (*LedgerStore, error) {
	store, ok := m.stores[building]
	if !ok {
		return nil, fmt.Errorf("unknown building %q", building)
	}
	return store, nil
}

// Buildings returns the managed building names, sorted.
func (m *Manager) Buildings() []string {
	names := make([]string, 0, len(m.stores))
	for name := range m.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every store, returning the first error encountered.
func (m *Manager) Close() error {
	var firstErr error
	for _, store := range m.stores {
		if err := store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
