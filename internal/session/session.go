// Package session keeps per-visitor state that lives only as long as the
// browser session: the wizard and the last prediction it produced.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skufu/MedSage/internal/medapi"
	"github.com/Skufu/MedSage/internal/wizard"
)

var (
	ErrNotFound  = errors.New("session not found")
	ErrNoResults = errors.New("no disease data found; complete the symptom assessment first")
)

type Session struct {
	ID     string
	Wizard *wizard.Wizard

	mu          sync.Mutex
	diseaseData []byte
}

// PutDiseaseData serialises the prediction the way the results page will
// read it back.
func (s *Session) PutDiseaseData(data *medapi.DiseaseData) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode disease data: %w", err)
	}
	s.mu.Lock()
	s.diseaseData = buf
	s.mu.Unlock()
	return nil
}

// DiseaseData returns the stored prediction or ErrNoResults.
func (s *Session) DiseaseData() (*medapi.DiseaseData, error) {
	s.mu.Lock()
	buf := s.diseaseData
	s.mu.Unlock()

	if buf == nil {
		return nil, ErrNoResults
	}
	var data medapi.DiseaseData
	if err := json.Unmarshal(buf, &data); err != nil {
		return nil, fmt.Errorf("decode disease data: %w", err)
	}
	return &data, nil
}

// WizardFactory builds the wizard for a new session; the session itself is
// the wizard's result store.
type WizardFactory func(results wizard.ResultStore) *wizard.Wizard

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Store is an in-process session table with idle expiry.
type Store struct {
	ttl       time.Duration
	newWizard WizardFactory
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewStore(ttl time.Duration, newWizard WizardFactory) *Store {
	return &Store{
		ttl:       ttl,
		newWizard: newWizard,
		now:       time.Now,
		sessions:  make(map[string]*entry),
	}
}

func (st *Store) Create() *Session {
	s := &Session{ID: uuid.NewString()}
	s.Wizard = st.newWizard(s)

	st.mu.Lock()
	st.sessions[s.ID] = &entry{session: s, lastSeen: st.now()}
	st.mu.Unlock()
	return s
}

// Get returns a live session and refreshes its idle timer.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := st.now()
	if now.Sub(e.lastSeen) > st.ttl {
		delete(st.sessions, id)
		return nil, ErrNotFound
	}
	e.lastSeen = now
	return e.session, nil
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops idle sessions and returns how many were removed.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for id, e := range st.sessions {
		if now.Sub(e.lastSeen) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}
