package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/domain"
)

// MemoryStore keeps readings per smart meter in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	readings map[string][]domain.ElectricityReading
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{readings: map[string][]domain.ElectricityReading{}}
}

// Readings returns a copy of the meter's readings. A meter registered with an
// empty batch is reported as known with no readings.
func (m *MemoryStore) Readings(_ context.Context, smartMeterID string) ([]domain.ElectricityReading, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rs, ok := m.readings[smartMeterID]
	if !ok {
		return nil, false, nil
	}
	out := make([]domain.ElectricityReading, len(rs))
	copy(out, rs)
	return out, true, nil
}

func (m *MemoryStore) Append(_ context.Context, smartMeterID string, readings []domain.ElectricityReading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.readings[smartMeterID]
	if !ok {
		existing = []domain.ElectricityReading{}
	}
	m.readings[smartMeterID] = append(existing, readings...)
	return nil
}

// Meters lists every registered smart meter id in ascending order.
func (m *MemoryStore) Meters(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.readings))
	for id := range m.readings {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
