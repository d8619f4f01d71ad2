package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process DataStore used for demos and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	barbers map[int64]Barber
}

// NewMemoryStore seeds a store with the given barbers.
func NewMemoryStore(barbers ...Barber) *MemoryStore {
	m := &MemoryStore{barbers: make(map[int64]Barber, len(barbers))}
	for _, b := range barbers {
		m.barbers[b.ID] = cloneBarber(b)
	}
	return m
}

// DemoBarbers returns the catalog used when SEED_DEMO_DATA is enabled.
func DemoBarbers() []Barber {
	return []Barber{
		{
			ID:       1,
			Name:     "Ahmed Khan",
			Services: []string{"Haircut", "Beard Trim", "Hair Wash"},
			Slots:    []string{"2025-08-15T10:00:00Z", "2025-08-15T14:30:00Z", "2025-08-16T11:00:00Z"},
		},
		{
			ID:       2,
			Name:     "Bilal Hussain",
			Services: []string{"Haircut", "Shave", "Hair Coloring"},
			Slots:    []string{"2025-08-15T09:00:00Z", "2025-08-15T16:00:00Z", "2025-08-17T13:30:00Z"},
		},
		{
			ID:       3,
			Name:     "Usman Tariq",
			Services: []string{"Fade", "Beard Trim", "Facial"},
			Slots:    []string{"2025-08-16T10:30:00Z", "2025-08-18T15:00:00Z"},
		},
	}
}

func (m *MemoryStore) ListBarbers(context.Context) ([]Barber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Barber, 0, len(m.barbers))
	for _, b := range m.barbers {
		out = append(out, cloneBarber(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetBarber(_ context.Context, id int64) (*Barber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.barbers[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := cloneBarber(b)
	return &clone, nil
}

func (m *MemoryStore) UpdateSlots(_ context.Context, id int64, slots []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.barbers[id]
	if !ok {
		return ErrNotFound
	}
	b.Slots = append([]string(nil), slots...)
	m.barbers[id] = b
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func cloneBarber(b Barber) Barber {
	b.Services = append([]string(nil), b.Services...)
	b.Slots = append([]string(nil), b.Slots...)
	return b
}
