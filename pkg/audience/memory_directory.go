package audience

import (
	"context"
	"slices"
	"sync"
)

// MemoryDirectory is an in-memory Directory implementation.
// Suitable for development and testing.
type MemoryDirectory struct {
	mu         sync.RWMutex
	recipients map[string]Recipient
	order      []string
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{recipients: make(map[string]Recipient)}
}

// Add upserts recipients into the directory. Uniqueness is by recipient id,
// matching the guarantee real directories provide.
func (m *MemoryDirectory) Add(recipients ...Recipient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recipients {
		if _, exists := m.recipients[r.ID]; !exists {
			m.order = append(m.order, r.ID)
		}
		m.recipients[r.ID] = r
	}
}

func (m *MemoryDirectory) Query(ctx context.Context, f Filter) ([]Recipient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]Recipient, 0, len(m.order))
	for _, id := range m.order {
		r := m.recipients[id]
		if !matches(r, f) {
			continue
		}
		matched = append(matched, r)
		if f.Limit > 0 && len(matched) >= f.Limit {
			break
		}
	}
	return matched, nil
}

func (m *MemoryDirectory) Count(ctx context.Context, f Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, r := range m.recipients {
		if matches(r, f) {
			n++
		}
	}
	return n, nil
}

// matches applies the filter with AND semantics across dimensions and OR
// within each list.
func matches(r Recipient, f Filter) bool {
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, r.ID) {
		return false
	}
	if len(f.Roles) > 0 && !r.HasRole(f.Roles...) {
		return false
	}
	if len(f.Locales) > 0 && !slices.Contains(f.Locales, r.Locale) {
		return false
	}
	if len(f.Regions) > 0 && !slices.Contains(f.Regions, r.Region) {
		return false
	}
	if f.HasEmail && r.Email == "" {
		return false
	}
	if f.HasPhone && r.Phone == "" {
		return false
	}
	return true
}
