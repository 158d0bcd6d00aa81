package profile

import (
	"context"
	"sync"
)

// MemoryStore keeps profiles in process; used in development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]Profile)}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyProfile(p), nil
}

func (m *MemoryStore) Insert(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.UserID]; ok {
		return ErrAlreadyExists
	}
	m.profiles[p.UserID] = *copyProfile(*p)
	return nil
}

func (m *MemoryStore) Update(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.profiles[p.UserID]
	if !ok {
		return ErrNotFound
	}
	next := *copyProfile(*p)
	next.CreatedAt = cur.CreatedAt
	m.profiles[p.UserID] = next
	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func copyProfile(p Profile) *Profile {
	p.MedicalHistory = append([]string{}, p.MedicalHistory...)
	p.CurrentMedications = append([]string{}, p.CurrentMedications...)
	return &p
}
