// internal/models/payloads.go
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ==========================
// STAGE PAYLOADS
// ==========================

// StagePayload is the submission produced by one of the three form
// builders. The concrete type is selected by the stage being completed:
// Registration for stage 1, Logo for stage 2, Service for stages 3..12.
type StagePayload interface {
	PayloadStage() StageID
}

type LogoType string

const (
	LogoAI    LogoType = "AI"
	LogoHuman LogoType = "HUMAN"
)

// RegistrationPayload is the flattened submission of the registration form.
type RegistrationPayload struct {
	CompanyStatus string     `json:"companyStatus"`
	IsExisting    bool       `json:"isExisting"`
	Names         [4]string  `json:"names"`
	ExistingName  string     `json:"existingName"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	PostalCode    string     `json:"postalCode"`
	Province      string     `json:"province"`
	Niche         string     `json:"niche"`
	Description   string     `json:"description"`
	UIF           string     `json:"uif"`
	Bank          string     `json:"bank"`
	Directors     []Director `json:"directors"`
}

func (RegistrationPayload) PayloadStage() StageID { return StageRegistration }

// CompanyName resolves the working name: the registered name for existing
// entities, otherwise the first proposed name.
func (p RegistrationPayload) CompanyName() string {
	if p.IsExisting && p.ExistingName != "" {
		return p.ExistingName
	}
	return p.Names[0]
}

// LogoPayload records the branding decision, either an accepted AI draft
// or a handoff to the designer track.
type LogoPayload struct {
	Type         LogoType `json:"type"`
	ImageRef     string   `json:"imageRef,omitempty"`
	Style        string   `json:"style,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Price        int      `json:"price"`
}

func (LogoPayload) PayloadStage() StageID { return StageLogo }

// ServicePayload is the generic submission for stages 3 through 12.
type ServicePayload struct {
	Stage          StageID   `json:"stage"`
	Instructions   string    `json:"instructions"`
	SelectedOption string    `json:"selectedOption,omitempty"`
	Checklist      []string  `json:"checklist,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

func (p ServicePayload) PayloadStage() StageID { return p.Stage }

// ==========================
// ENVELOPE
// ==========================

// PayloadEnvelope carries a tagged payload across the wire and into the
// audit trail. Unmarshalling restores the concrete payload type.
type PayloadEnvelope struct {
	Stage   StageID         `json:"stage"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a concrete payload for transport.
func NewEnvelope(p StagePayload) (PayloadEnvelope, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return PayloadEnvelope{}, fmt.Errorf("encode stage payload: %w", err)
	}
	return PayloadEnvelope{Stage: p.PayloadStage(), Payload: raw}, nil
}

// Decode returns the concrete payload for the envelope's stage tag.
func (e PayloadEnvelope) Decode() (StagePayload, error) {
	switch {
	case e.Stage == StageRegistration:
		var p RegistrationPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode registration payload: %w", err)
		}
		return p, nil
	case e.Stage == StageLogo:
		var p LogoPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode logo payload: %w", err)
		}
		return p, nil
	case e.Stage.Valid():
		var p ServicePayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode service payload: %w", err)
		}
		p.Stage = e.Stage
		return p, nil
	default:
		return nil, fmt.Errorf("unknown stage id %d", e.Stage)
	}
}
