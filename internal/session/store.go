// internal/session/store.go

// Package session persists ApplicationState documents. The Redis store is
// the production backend, the memory store serves tests and local runs
// without infrastructure.
package session

import (
	"context"

	"marvetti-onboarding/internal/models"
)

// Store is the persistence port for session state.
//
// Load returns a SESSION_NOT_FOUND error for unknown ids and a
// SESSION_DECODE_FAILED error for corrupt documents. Callers recover
// from decode failures by starting a fresh session, never by failing.
type Store interface {
	Load(ctx context.Context, sessionID string) (*models.ApplicationState, error)
	Save(ctx context.Context, state *models.ApplicationState) error
	Delete(ctx context.Context, sessionID string) error
}
