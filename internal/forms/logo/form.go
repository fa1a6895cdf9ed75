// internal/forms/logo/form.go

// Package logo runs the stage 2 branding flow: an iterative AI track
// capped at fifteen generations, or a single-commit designer track.
package logo

import (
	"context"
	"fmt"

	"marvetti-onboarding/internal/ai"
	"marvetti-onboarding/internal/catalog"
	commonerrors "marvetti-onboarding/internal/common/errors"
	"marvetti-onboarding/internal/common/metrics"
	"marvetti-onboarding/internal/models"
)

// Generator produces logo previews. Satisfied by ai.Client.
type Generator interface {
	GenerateLogo(ctx context.Context, businessName, niche, instructions string) (*ai.GeneratedImage, error)
}

// Session tracks one client's progress through the logo stage. Not safe
// for concurrent use, each dashboard session owns exactly one.
type Session struct {
	businessName string
	niche        string
	generator    Generator

	styleID       string
	instructions  string
	regenerations int
	preview       *ai.GeneratedImage
}

func NewSession(businessName, niche string, gen Generator) *Session {
	return &Session{
		businessName: businessName,
		niche:        niche,
		generator:    gen,
		styleID:      catalog.DefaultLogoStyle().ID,
	}
}

// ==========================
// DRAFT CONTROLS
// ==========================

// SelectStyle switches the branding archetype. Unknown ids are rejected.
func (s *Session) SelectStyle(styleID string) error {
	if _, ok := catalog.LogoStyleLabel(styleID); !ok {
		return commonerrors.NewPayloadInvalidError(fmt.Sprintf("unknown logo style: %s", styleID))
	}
	s.styleID = styleID
	return nil
}

func (s *Session) SetInstructions(text string) {
	s.instructions = text
}

// Remaining reports how many AI generations are left.
func (s *Session) Remaining() int {
	return catalog.MaxLogoGenerations - s.regenerations
}

func (s *Session) Preview() *ai.GeneratedImage {
	return s.preview
}

// ==========================
// AI TRACK
// ==========================

// Generate requests a fresh preview. Each invocation is independent of
// prior results and counts against the cap even when the model returns
// nothing. A nil preview with nil error means "no preview available".
func (s *Session) Generate(ctx context.Context) (*ai.GeneratedImage, error) {
	if s.regenerations >= catalog.MaxLogoGenerations {
		return nil, commonerrors.NewLogoAttemptsExhaustedError(catalog.MaxLogoGenerations)
	}
	s.regenerations++
	metrics.LogoGenerations.Inc()

	combined := s.instructions
	if label, ok := catalog.LogoStyleLabel(s.styleID); ok {
		combined = fmt.Sprintf("Style: %s. %s", label, s.instructions)
	}

	img, err := s.generator.GenerateLogo(ctx, s.businessName, s.niche, combined)
	if err != nil {
		// Preview stays absent, the client may retry or switch tracks.
		return nil, err
	}

	s.preview = img
	return img, nil
}

// AcceptAI commits the current AI preview as the branding decision.
func (s *Session) AcceptAI(imageRef string) (models.LogoPayload, error) {
	if s.preview == nil {
		return models.LogoPayload{}, commonerrors.NewPayloadInvalidError("no accepted preview: generate a logo first")
	}
	return models.LogoPayload{
		Type:         models.LogoAI,
		ImageRef:     imageRef,
		Style:        s.styleID,
		Instructions: s.instructions,
		Price:        catalog.LogoAIPrice,
	}, nil
}

// ==========================
// DESIGNER TRACK
// ==========================

// ChooseHuman commits the designer handoff. No generation call is made
// and any AI draft state is irrelevant to the payload.
func (s *Session) ChooseHuman() models.LogoPayload {
	return models.LogoPayload{
		Type:  models.LogoHuman,
		Price: catalog.LogoHumanPrice,
	}
}
