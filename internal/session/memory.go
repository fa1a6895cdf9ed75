// internal/session/memory.go
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	commonerrors "marvetti-onboarding/internal/common/errors"
	"marvetti-onboarding/internal/models"
)

// MemoryStore is an in-process Store. Documents are stored as JSON bytes
// so serialization behavior matches the Redis backend exactly.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*models.ApplicationState, error) {
	s.mu.RLock()
	raw, ok := s.docs[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, commonerrors.NewSessionNotFoundError(sessionID)
	}

	var state models.ApplicationState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, commonerrors.NewSessionDecodeFailedError(err)
	}
	return &state, nil
}

func (s *MemoryStore) Save(ctx context.Context, state *models.ApplicationState) error {
	state.UpdatedAt = time.Now().UTC()

	raw, err := json.Marshal(state)
	if err != nil {
		return commonerrors.NewSessionWriteFailedError(err)
	}

	s.mu.Lock()
	s.docs[state.SessionID] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.docs, sessionID)
	s.mu.Unlock()
	return nil
}

// Corrupt overwrites a stored document with bytes that will not decode.
// Test hook for the discard-and-start-fresh recovery path.
func (s *MemoryStore) Corrupt(sessionID string) {
	s.mu.Lock()
	s.docs[sessionID] = []byte("{not-json")
	s.mu.Unlock()
}
