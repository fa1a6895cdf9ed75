// internal/orchestrator/logo.go
package orchestrator

import (
	"context"
	"errors"

	"marvetti-onboarding/internal/ai"
	commonerrors "marvetti-onboarding/internal/common/errors"
	"marvetti-onboarding/internal/forms/logo"
	"marvetti-onboarding/internal/models"
)

// logoSession returns the per-session logo flow, creating it on first
// use with the client's current business name and niche. The
// regeneration cap rides on this object, so it lives for the whole
// session and resets only with the session itself.
func (o *Orchestrator) logoSession(state *models.ApplicationState) *logo.Session {
	o.mu.Lock()
	defer o.mu.Unlock()

	if existing, ok := o.logos[state.SessionID]; ok {
		return existing
	}

	businessName, niche := "", ""
	if state.Client != nil {
		businessName = state.Client.CompanyName
		niche = state.Client.Niche
	}
	sess := logo.NewSession(businessName, niche, o.images)
	o.logos[state.SessionID] = sess
	return sess
}

// LogoPreview is what one generation attempt produced.
type LogoPreview struct {
	Image     *ai.GeneratedImage
	Remaining int
}

// GenerateLogo runs one AI logo attempt for the session. The logo stage
// must be unlocked. A nil image means no preview is available and the
// client may retry within the cap or switch to the designer track.
func (o *Orchestrator) GenerateLogo(ctx context.Context, sessionID, styleID, instructions string) (*LogoPreview, error) {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := o.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	info, ok := state.Stage(models.StageLogo)
	if !ok || !info.IsUnlocked {
		return nil, commonerrors.NewStageLockedError(int(models.StageLogo))
	}

	sess := o.logoSession(state)
	if styleID != "" {
		if err := sess.SelectStyle(styleID); err != nil {
			return nil, err
		}
	}
	sess.SetInstructions(instructions)

	img, err := sess.Generate(ctx)
	if err != nil {
		// Exhausted cap is a hard stop, generation failures leave the
		// preview absent and the attempt spent.
		var stdErr *commonerrors.StandardError
		if errors.As(err, &stdErr) && stdErr.Code == commonerrors.ErrCodeLogoAttemptsExhausted {
			return nil, err
		}
		o.logger.Warn("Logo generation attempt failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return &LogoPreview{Image: nil, Remaining: sess.Remaining()}, nil
	}

	return &LogoPreview{Image: img, Remaining: sess.Remaining()}, nil
}

// LogoRemaining reports how many AI attempts the session has left.
func (o *Orchestrator) LogoRemaining(ctx context.Context, sessionID string) (int, error) {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := o.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return o.logoSession(state).Remaining(), nil
}

// logoEnvelope builds a stage 2 envelope from the session's logo flow
// under the session lock. The lock is released before the caller hands
// the envelope to CompleteStage, which re-acquires it.
func (o *Orchestrator) logoEnvelope(ctx context.Context, sessionID string, commit func(*logo.Session) (models.StagePayload, error)) (models.PayloadEnvelope, error) {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := o.Get(ctx, sessionID)
	if err != nil {
		return models.PayloadEnvelope{}, err
	}

	payload, err := commit(o.logoSession(state))
	if err != nil {
		return models.PayloadEnvelope{}, err
	}

	envelope, err := models.NewEnvelope(payload)
	if err != nil {
		return models.PayloadEnvelope{}, commonerrors.NewPayloadInvalidError(err.Error())
	}
	return envelope, nil
}

// AcceptLogo commits the current AI preview and completes the stage.
func (o *Orchestrator) AcceptLogo(ctx context.Context, sessionID, imageRef string) (*models.ApplicationState, error) {
	envelope, err := o.logoEnvelope(ctx, sessionID, func(sess *logo.Session) (models.StagePayload, error) {
		return sess.AcceptAI(imageRef)
	})
	if err != nil {
		return nil, err
	}
	return o.CompleteStage(ctx, sessionID, envelope)
}

// ChooseHumanLogo commits the designer handoff and completes the stage.
func (o *Orchestrator) ChooseHumanLogo(ctx context.Context, sessionID string) (*models.ApplicationState, error) {
	envelope, err := o.logoEnvelope(ctx, sessionID, func(sess *logo.Session) (models.StagePayload, error) {
		return sess.ChooseHuman(), nil
	})
	if err != nil {
		return nil, err
	}
	return o.CompleteStage(ctx, sessionID, envelope)
}
