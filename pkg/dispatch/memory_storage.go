package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/channel"
)

// MemoryRecordStore is an in-memory RecordStore implementation. Suitable for
// development and testing.
type MemoryRecordStore struct {
	records map[string]Record
	mu      sync.RWMutex
}

// NewMemoryRecordStore creates an empty in-memory record store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[string]Record)}
}

func (s *MemoryRecordStore) Create(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		return fmt.Errorf("%w: record id is required", ErrInvalidRequest)
	}
	if _, exists := s.records[rec.ID]; exists {
		return fmt.Errorf("%w: duplicate record id %q", ErrInvalidRequest, rec.ID)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryRecordStore) Update(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.records[rec.ID]
	if !exists {
		return ErrRecordNotFound
	}
	if existing.Status != rec.Status && !existing.Status.CanTransitionTo(rec.Status) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, existing.Status, rec.Status)
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryRecordStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.records[id]
	if !exists {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

func (s *MemoryRecordStore) ListDueScheduled(_ context.Context, now time.Time) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	due := make([]Record, 0)
	for _, rec := range s.records {
		if rec.Status != StatusScheduled {
			continue
		}
		if rec.Request.SendAt != nil && rec.Request.SendAt.After(now) {
			continue
		}
		due = append(due, rec)
	}
	return due, nil
}

// MemoryTemplateStore is an in-memory TemplateStore keyed by template id.
type MemoryTemplateStore struct {
	templates map[string]channel.Template
	mu        sync.RWMutex
}

// NewMemoryTemplateStore creates a template store seeded with the given
// templates.
func NewMemoryTemplateStore(templates ...channel.Template) *MemoryTemplateStore {
	s := &MemoryTemplateStore{templates: make(map[string]channel.Template, len(templates))}
	for _, tmpl := range templates {
		s.templates[tmpl.ID] = tmpl
	}
	return s
}

// Put adds or replaces a template.
func (s *MemoryTemplateStore) Put(tmpl channel.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[tmpl.ID] = tmpl
}

func (s *MemoryTemplateStore) GetTemplate(_ context.Context, id string) (channel.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, exists := s.templates[id]
	if !exists {
		return channel.Template{}, ErrTemplateNotFound
	}
	return tmpl, nil
}
