// internal/forms/service/form.go

// Package service builds submissions for stages 3 through 12: a stage
// parameterized form with fixed option sets, an optional checklist, and
// a free text instructions field.
package service

import (
	"fmt"
	"strings"
	"time"

	"marvetti-onboarding/internal/catalog"
	commonerrors "marvetti-onboarding/internal/common/errors"
	"marvetti-onboarding/internal/models"
)

// Form is the mutable draft for one generic service stage.
type Form struct {
	stage models.StageID
	niche string

	selectedOption string
	checked        []string
	instructions   string
}

// NewForm creates a draft for the given stage. Stages 1 and 2 have
// dedicated builders and are rejected here.
func NewForm(stage models.StageID, niche string) (*Form, error) {
	if !stage.Valid() {
		return nil, commonerrors.NewStageUnknownError(int(stage))
	}
	if stage == models.StageRegistration || stage == models.StageLogo {
		return nil, commonerrors.NewPayloadInvalidError(
			fmt.Sprintf("stage %d uses a dedicated form", stage))
	}
	return &Form{stage: stage, niche: niche}, nil
}

// ==========================
// DISPLAY HINTS
// ==========================

func (f *Form) Stage() models.StageID { return f.stage }

func (f *Form) Name() string { return catalog.StageName(f.stage) }

func (f *Form) PriceLabel() string { return catalog.PriceLabel(f.stage) }

// Options returns the single-select package set for this stage, nil
// when the stage has none.
func (f *Form) Options() []catalog.ServiceOption {
	return catalog.ServiceOptions(f.stage)
}

// ChecklistItems returns the multi-select set for this stage: the
// niche-keyed compliance checklist for stage 5, platforms for stage 7.
func (f *Form) ChecklistItems() []string {
	return catalog.MultiSelectItems(f.stage, f.niche)
}

// ==========================
// DRAFT CONTROLS
// ==========================

// SelectOption picks one of the stage's fixed options.
func (f *Form) SelectOption(id string) error {
	opts := f.Options()
	if opts == nil {
		return commonerrors.NewPayloadInvalidError(
			fmt.Sprintf("stage %d has no selectable options", f.stage))
	}
	for _, opt := range opts {
		if opt.ID == id {
			f.selectedOption = id
			return nil
		}
	}
	return commonerrors.NewPayloadInvalidError(fmt.Sprintf("unknown option: %s", id))
}

// ToggleItem flips one checklist entry. Items outside the stage's set
// are rejected.
func (f *Form) ToggleItem(item string) error {
	items := f.ChecklistItems()
	found := false
	for _, candidate := range items {
		if candidate == item {
			found = true
			break
		}
	}
	if !found {
		return commonerrors.NewPayloadInvalidError(fmt.Sprintf("item not in checklist: %s", item))
	}

	for i, existing := range f.checked {
		if existing == item {
			f.checked = append(f.checked[:i], f.checked[i+1:]...)
			return nil
		}
	}
	f.checked = append(f.checked, item)
	return nil
}

// Checked returns the currently ticked checklist entries.
func (f *Form) Checked() []string {
	out := make([]string, len(f.checked))
	copy(out, f.checked)
	return out
}

func (f *Form) SetInstructions(text string) {
	f.instructions = text
}

// ==========================
// SUBMISSION
// ==========================

// Build validates the draft and produces the stage payload. Instructions
// are required except on the compliance stage, where free text is an
// optional notes field.
func (f *Form) Build(now time.Time) (models.ServicePayload, error) {
	if f.stage != models.StageCompliance && strings.TrimSpace(f.instructions) == "" {
		return models.ServicePayload{}, commonerrors.NewPayloadInvalidError("instructions are required")
	}

	return models.ServicePayload{
		Stage:          f.stage,
		Instructions:   f.instructions,
		SelectedOption: f.selectedOption,
		Checklist:      f.Checked(),
		Timestamp:      now.UTC(),
	}, nil
}
