// internal/audit/audit.go

// Package audit writes a durable back-office trail of stage completions
// and client records to Postgres. The session document in Redis stays
// authoritative, this trail is what the operations team queries.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	commonerrors "marvetti-onboarding/internal/common/errors"
	"marvetti-onboarding/internal/common/logger"
	"marvetti-onboarding/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS stage_completions (
	id            BIGSERIAL PRIMARY KEY,
	session_id    TEXT        NOT NULL,
	stage_id      INT         NOT NULL,
	stage_name    TEXT        NOT NULL,
	payload       JSONB       NOT NULL,
	generation    BIGINT      NOT NULL,
	completed_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS clients (
	session_id   TEXT PRIMARY KEY,
	first_name   TEXT NOT NULL,
	last_name    TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL DEFAULT '',
	cell         TEXT NOT NULL DEFAULT '',
	company_name TEXT NOT NULL DEFAULT '',
	niche        TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Trail records onboarding events in Postgres.
type Trail struct {
	db     *sql.DB
	logger logger.Logger
}

func NewTrail(db *sql.DB, log logger.Logger) *Trail {
	return &Trail{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "audit"}),
	}
}

// EnsureSchema creates the trail tables when they do not exist yet.
func (t *Trail) EnsureSchema(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx, schema); err != nil {
		return commonerrors.NewAuditWriteFailedError(err)
	}
	return nil
}

// RecordCompletion appends one stage completion row.
func (t *Trail) RecordCompletion(ctx context.Context, sessionID string, stage models.StageInfo, envelope models.PayloadEnvelope, generation uint64, completedAt time.Time) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return commonerrors.NewAuditWriteFailedError(err)
	}

	const q = `INSERT INTO stage_completions (session_id, stage_id, stage_name, payload, generation, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := t.db.ExecContext(ctx, q, sessionID, int(stage.ID), stage.Name, payload, int64(generation), completedAt); err != nil {
		t.logger.Error("Stage completion insert failed", map[string]interface{}{
			"session_id": sessionID,
			"stage_id":   int(stage.ID),
			"error":      err.Error(),
		})
		return commonerrors.NewAuditWriteFailedError(err)
	}
	return nil
}

// UpsertClient writes the derived client record, replacing any earlier
// version for the same session.
func (t *Trail) UpsertClient(ctx context.Context, sessionID string, client models.ClientData) error {
	const q = `INSERT INTO clients (session_id, first_name, last_name, email, cell, company_name, niche, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (session_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			cell = EXCLUDED.cell,
			company_name = EXCLUDED.company_name,
			niche = EXCLUDED.niche,
			status = EXCLUDED.status,
			updated_at = now()`
	if _, err := t.db.ExecContext(ctx, q,
		sessionID, client.FirstName, client.LastName, client.Email, client.Cell,
		client.CompanyName, client.Niche, string(client.Status)); err != nil {
		t.logger.Error("Client upsert failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return commonerrors.NewAuditWriteFailedError(err)
	}
	return nil
}

// CompletionCount returns how many completions exist for a session.
func (t *Trail) CompletionCount(ctx context.Context, sessionID string) (int, error) {
	var count int
	const q = `SELECT COUNT(*) FROM stage_completions WHERE session_id = $1`
	if err := t.db.QueryRowContext(ctx, q, sessionID).Scan(&count); err != nil {
		return 0, commonerrors.NewAuditWriteFailedError(err)
	}
	return count, nil
}
