package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/broiler/internal/domain/models"
)

// SessionStore keeps catch sessions with optimistic versioning.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.CatchSession
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*models.CatchSession)}
}

// Create stores a new session at version 1.
func (s *SessionStore) Create(_ context.Context, session *models.CatchSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return fmt.Errorf("%w: session %s already exists", models.ErrInvalidState, session.ID)
	}
	session.Version = 1
	s.sessions[session.ID] = session.Clone()
	return nil
}

// Get returns a copy of a session.
func (s *SessionStore) Get(_ context.Context, sessionID string) (*models.CatchSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: catch session %s", models.ErrNotFound, sessionID)
	}
	return session.Clone(), nil
}

// Save replaces a session if its version still matches the stored one.
func (s *SessionStore) Save(_ context.Context, session *models.CatchSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[session.ID]
	if !ok {
		return fmt.Errorf("%w: catch session %s", models.ErrNotFound, session.ID)
	}
	if current.Version != session.Version {
		return fmt.Errorf("%w: session %s at version %d, write based on %d", models.ErrVersionConflict, session.ID, current.Version, session.Version)
	}
	session.Version++
	s.sessions[session.ID] = session.Clone()
	return nil
}

// FindByBatch returns the id of the session owning a batch.
func (s *SessionStore) FindByBatch(_ context.Context, batchID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, session := range s.sessions {
		for _, b := range session.Batches {
			if b.ID == batchID {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("%w: catch batch %s", models.ErrNotFound, batchID)
}

// ListByFlock returns a flock's sessions, newest catch date first.
func (s *SessionStore) ListByFlock(_ context.Context, flockID string) ([]*models.CatchSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.CatchSession, 0)
	for _, session := range s.sessions {
		if session.FlockID == flockID {
			out = append(out, session.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CatchDate.After(out[j].CatchDate) })
	return out, nil
}

// HarvestStore records harvest requests emitted by completed sessions.
type HarvestStore struct {
	mu        sync.RWMutex
	records   map[string]models.HarvestRequest
	bySession map[string]string
	now       func() time.Time
}

// NewHarvestStore creates an empty harvest store.
func NewHarvestStore() *HarvestStore {
	return &HarvestStore{
		records:   make(map[string]models.HarvestRequest),
		bySession: make(map[string]string),
		now:       time.Now,
	}
}

// CreateHarvestRecord stores the request and returns its record id. Recording
// a session again replaces its figures and keeps the id.
func (h *HarvestStore) CreateHarvestRecord(_ context.Context, req models.HarvestRequest) (string, error) {
	if req.SessionID == "" {
		return "", fmt.Errorf("%w: harvest record needs a session id", models.ErrInvalidInput)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := h.bySession[req.SessionID]
	if !ok {
		id = uuid.NewString()
		h.bySession[req.SessionID] = id
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = h.now().UTC()
	}
	h.records[id] = req
	return id, nil
}

// Get returns a stored harvest record.
func (h *HarvestStore) Get(id string) (models.HarvestRequest, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	req, ok := h.records[id]
	return req, ok
}

// Len returns the number of stored harvest records.
func (h *HarvestStore) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}
