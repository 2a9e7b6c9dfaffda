package audit

import (
	"context"
	"sync"
)

// Memory implements Store in process memory. Used by tests and by API
// instances started without a database DSN.
type Memory struct {
	mu   sync.RWMutex
	recs []Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, *rec)
	return nil
}

func (m *Memory) Search(ctx context.Context, f Filter) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	// Newest first, matching the SQL store's ordering.
	var out []Record
	for i := len(m.recs) - 1; i >= 0 && len(out) < limit; i-- {
		rec := m.recs[i]
		if f.UserID != "" && rec.UserID != f.UserID {
			continue
		}
		if f.OrganizationID != "" && rec.OrganizationID != f.OrganizationID {
			continue
		}
		if !f.From.IsZero() && rec.Timestamp.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && rec.Timestamp.After(f.To) {
			continue
		}
		if f.Granted != nil && rec.AccessGranted != *f.Granted {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Len reports how many records were appended.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.recs)
}
