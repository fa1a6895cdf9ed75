// internal/orchestrator/orchestrator.go

// Package orchestrator drives the twelve-stage onboarding state machine:
// session lifecycle, stage completion, unlock progression, and the
// asynchronous AI artifacts attached to each completion.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"marvetti-onboarding/internal/archive"
	"marvetti-onboarding/internal/catalog"
	commonerrors "marvetti-onboarding/internal/common/errors"
	"marvetti-onboarding/internal/common/logger"
	"marvetti-onboarding/internal/common/metrics"
	"marvetti-onboarding/internal/forms/logo"
	"marvetti-onboarding/internal/forms/registration"
	"marvetti-onboarding/internal/models"
	"marvetti-onboarding/internal/notify"
	"marvetti-onboarding/internal/session"
	"marvetti-onboarding/pkg/registry"
)

// Artifacts produces the AI text attached to a completion. Satisfied by
// ai.Client. Both methods degrade internally, they never fail.
type Artifacts interface {
	StageSummary(ctx context.Context, stageName string, payload interface{}) string
	WhatsAppDraft(ctx context.Context, stageName, clientName string) string
}

// AuditTrail is the Postgres back-office trail. Optional.
type AuditTrail interface {
	RecordCompletion(ctx context.Context, sessionID string, stage models.StageInfo, envelope models.PayloadEnvelope, generation uint64, completedAt time.Time) error
	UpsertClient(ctx context.Context, sessionID string, client models.ClientData) error
}

// Archiver indexes completed-stage reports. Optional.
type Archiver interface {
	IndexReport(ctx context.Context, report archive.StageReport) error
}

// OpsNotifier alerts the operations team. Optional.
type OpsNotifier interface {
	StageCompleted(ctx context.Context, state *models.ApplicationState, stage models.StageInfo) notify.Result
}

// Orchestrator owns all session mutations. Per-session locking keeps
// read-modify-write cycles atomic within one process.
type Orchestrator struct {
	store     session.Store
	artifacts Artifacts
	images    logo.Generator
	trail     AuditTrail
	archiver  Archiver
	notifier  OpsNotifier
	logger    logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	logos map[string]*logo.Session

	// async tracks in-flight artifact generation so tests and shutdown
	// can wait for it.
	async sync.WaitGroup
}

// Option configures optional back-office integrations.
type Option func(*Orchestrator)

func WithAuditTrail(t AuditTrail) Option { return func(o *Orchestrator) { o.trail = t } }
func WithArchiver(a Archiver) Option     { return func(o *Orchestrator) { o.archiver = a } }
func WithNotifier(n OpsNotifier) Option  { return func(o *Orchestrator) { o.notifier = n } }

func New(store session.Store, artifacts Artifacts, images logo.Generator, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		artifacts: artifacts,
		images:    images,
		logger:    log.WithFields(map[string]interface{}{"component": "orchestrator"}),
		locks:     make(map[string]*sync.Mutex),
		logos:     make(map[string]*logo.Session),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Wait blocks until all in-flight artifact generation has finished.
func (o *Orchestrator) Wait() {
	o.async.Wait()
}

func (o *Orchestrator) sessionLock(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[sessionID] = lock
	}
	return lock
}

// ==========================
// SESSION LIFECYCLE
// ==========================

func freshState(sessionID string) *models.ApplicationState {
	return &models.ApplicationState{
		SessionID:    sessionID,
		CurrentStage: models.FirstStage,
		Stages:       catalog.DefaultStages(),
		Theme:        models.ThemeDark,
	}
}

// Create starts a new session with catalog defaults.
func (o *Orchestrator) Create(ctx context.Context) (*models.ApplicationState, error) {
	state := freshState(uuid.NewString())
	if err := o.store.Save(ctx, state); err != nil {
		return nil, err
	}
	o.logger.Info("Session created", map[string]interface{}{"session_id": state.SessionID})
	return state, nil
}

// Get loads a session. A corrupt stored document is discarded and the
// session restarts from defaults, logged only, never surfaced.
func (o *Orchestrator) Get(ctx context.Context, sessionID string) (*models.ApplicationState, error) {
	state, err := o.store.Load(ctx, sessionID)
	if err == nil {
		return state, nil
	}

	var stdErr *commonerrors.StandardError
	if errors.As(err, &stdErr) && stdErr.Code == commonerrors.ErrCodeSessionDecodeFailed {
		o.logger.Warn("Session restarted after decode failure", map[string]interface{}{
			"session_id": sessionID,
		})
		state = freshState(sessionID)
		if saveErr := o.store.Save(ctx, state); saveErr != nil {
			return nil, saveErr
		}
		return state, nil
	}

	return nil, err
}

// Reset deletes a session and its in-memory logo progress.
func (o *Orchestrator) Reset(ctx context.Context, sessionID string) error {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := o.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	o.mu.Lock()
	delete(o.logos, sessionID)
	o.mu.Unlock()

	metrics.SessionResets.Inc()
	o.logger.Info("Session reset", map[string]interface{}{"session_id": sessionID})
	return nil
}

// ==========================
// NAVIGATION AND TOGGLES
// ==========================

// Navigate moves the active pointer. Locked stages accept it only in
// admin mode; completion ordering is never bypassed.
func (o *Orchestrator) Navigate(ctx context.Context, sessionID string, target models.StageID) (*models.ApplicationState, error) {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := o.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	info, ok := state.Stage(target)
	if !ok {
		return nil, commonerrors.NewStageUnknownError(int(target))
	}
	if !info.IsUnlocked && !state.IsAdminMode {
		return nil, commonerrors.NewStageLockedError(int(target))
	}

	state.CurrentStage = target
	if err := o.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ToggleAdmin flips the back-office admin mode flag.
func (o *Orchestrator) ToggleAdmin(ctx context.Context, sessionID string) (*models.ApplicationState, error) {
	return o.mutate(ctx, sessionID, func(state *models.ApplicationState) {
		state.IsAdminMode = !state.IsAdminMode
	})
}

// ToggleTheme switches between light and dark.
func (o *Orchestrator) ToggleTheme(ctx context.Context, sessionID string) (*models.ApplicationState, error) {
	return o.mutate(ctx, sessionID, func(state *models.ApplicationState) {
		if state.Theme == models.ThemeLight {
			state.Theme = models.ThemeDark
		} else {
			state.Theme = models.ThemeLight
		}
	})
}

func (o *Orchestrator) mutate(ctx context.Context, sessionID string, apply func(*models.ApplicationState)) (*models.ApplicationState, error) {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := o.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	apply(state)
	if err := o.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ==========================
// STAGE COMPLETION
// ==========================

// CompleteStage applies a stage submission: marks the stage COMPLETED,
// unlocks the successor, advances the pointer, and kicks off artifact
// generation. The returned state reflects the synchronous transition,
// summary and draft arrive asynchronously under a generation token so a
// slow response for an older completion can never clobber a newer one.
func (o *Orchestrator) CompleteStage(ctx context.Context, sessionID string, envelope models.PayloadEnvelope) (*models.ApplicationState, error) {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := o.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	current := state.CurrentStage
	info, ok := state.Stage(current)
	if !ok {
		return nil, o.reject(current, commonerrors.NewStageUnknownError(int(current)))
	}
	if !info.IsUnlocked {
		return nil, o.reject(current, commonerrors.NewStageLockedError(int(current)))
	}
	if envelope.Stage != current {
		return nil, o.reject(current, commonerrors.NewPayloadStageMismatchError(int(current), int(envelope.Stage)))
	}

	var document map[string]interface{}
	if err := json.Unmarshal(envelope.Payload, &document); err != nil {
		return nil, o.reject(current, commonerrors.NewPayloadInvalidError(err.Error()))
	}
	if err := registry.Validate(current, document); err != nil {
		return nil, o.reject(current, commonerrors.NewPayloadInvalidError(err.Error()))
	}
	payload, err := envelope.Decode()
	if err != nil {
		return nil, o.reject(current, commonerrors.NewPayloadInvalidError(err.Error()))
	}

	completedAt := time.Now().UTC()

	// State transition.
	info.Status = models.StageCompleted
	state.Stages[current] = info

	if next, ok := current.Next(); ok {
		nextInfo := state.Stages[next]
		nextInfo.IsUnlocked = true
		state.Stages[next] = nextInfo
		state.CurrentStage = next
	}

	if reg, ok := payload.(models.RegistrationPayload); ok {
		client := registration.DeriveClient(reg)
		client.Status = models.ClientActive
		state.Client = &client
	}

	state.Generation++
	token := state.Generation

	if err := o.store.Save(ctx, state); err != nil {
		return nil, err
	}

	metrics.StagesCompleted.WithLabelValues(info.Name).Inc()
	o.logger.Info("Stage completed", map[string]interface{}{
		"session_id": sessionID,
		"stage_id":   int(current),
		"generation": token,
	})

	o.recordCompletion(ctx, state, info, envelope, token, completedAt)

	clientName := "Client"
	if state.Client != nil && state.Client.FirstName != "" {
		clientName = state.Client.FirstName
	}

	o.async.Add(1)
	go o.generateArtifacts(sessionID, info, envelope, token, clientName, completedAt)

	return state, nil
}

func (o *Orchestrator) reject(stage models.StageID, err *commonerrors.StandardError) error {
	metrics.StageCompletionRejected.WithLabelValues(catalog.StageName(stage), string(err.Code)).Inc()
	return err
}

// recordCompletion writes the back-office trail. Best effort, failures
// are logged and never block the client.
func (o *Orchestrator) recordCompletion(ctx context.Context, state *models.ApplicationState, stage models.StageInfo, envelope models.PayloadEnvelope, generation uint64, completedAt time.Time) {
	if o.trail != nil {
		if err := o.trail.RecordCompletion(ctx, state.SessionID, stage, envelope, generation, completedAt); err != nil {
			o.logger.Error("Audit trail write skipped", map[string]interface{}{
				"session_id": state.SessionID,
				"error":      err.Error(),
			})
		}
		if state.Client != nil {
			if err := o.trail.UpsertClient(ctx, state.SessionID, *state.Client); err != nil {
				o.logger.Error("Client record write skipped", map[string]interface{}{
					"session_id": state.SessionID,
					"error":      err.Error(),
				})
			}
		}
	}

	if o.notifier != nil {
		result := o.notifier.StageCompleted(ctx, state, stage)
		if result.Status == notify.StatusFailed {
			o.logger.Warn("Ops notification failed", map[string]interface{}{
				"session_id": state.SessionID,
				"stage_id":   int(stage.ID),
			})
		}
	}
}

// generateArtifacts runs off the request path. Artifacts apply only
// while the session generation still matches the completion that
// requested them.
func (o *Orchestrator) generateArtifacts(sessionID string, stage models.StageInfo, envelope models.PayloadEnvelope, token uint64, clientName string, completedAt time.Time) {
	defer o.async.Done()

	ctx := context.Background()

	var document interface{}
	_ = json.Unmarshal(envelope.Payload, &document)

	summary := o.artifacts.StageSummary(ctx, stage.Name, document)
	draft := o.artifacts.WhatsAppDraft(ctx, stage.Name, clientName)

	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := o.store.Load(ctx, sessionID)
	if err != nil {
		o.logger.Warn("Artifact application skipped, session gone", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}

	if state.Generation != token {
		o.logger.Info("Stale artifacts discarded", map[string]interface{}{
			"session_id": sessionID,
			"token":      token,
			"generation": state.Generation,
		})
		return
	}

	state.StageSummary = summary
	state.WhatsappDraft = draft
	if err := o.store.Save(ctx, state); err != nil {
		o.logger.Error("Artifact save failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}

	if o.archiver != nil {
		report := archive.ReportFrom(state, stage, envelope, summary, completedAt)
		if err := o.archiver.IndexReport(ctx, report); err != nil {
			o.logger.Error("Stage report indexing skipped", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}
}
