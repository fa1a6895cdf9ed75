// internal/catalog/options.go
package catalog

import (
	"marvetti-onboarding/internal/models"
)

// ==========================
// SERVICE FORM OPTION SETS
// ==========================

// ServiceOption is one selectable package on a generic service form.
type ServiceOption struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

var profileOptions = []ServiceOption{
	{ID: "text", Label: "Text Only", Price: "R400", Description: "Copywriting & Structure"},
	{ID: "design", Label: "Text + Design", Price: "R650", Description: "Full Branded PDF"},
}

var planOptions = []ServiceOption{
	{ID: "simple", Label: "Simple Plan", Price: "R650-R900", Description: "Funding & Growth Focus"},
	{ID: "complex", Label: "Complex Logic", Price: "R1650-R2500", Description: "Financial Projections+"},
}

var websiteTypes = []string{
	"Single Page", "Corporate", "E-commerce", "App Landing", "Funnel", "Directory",
}

var socialPlatforms = []string{
	"Facebook", "Instagram", "LinkedIn", "TikTok",
}

// ServiceOptions returns the fixed option set for a stage, nil when the
// stage has no single-select options.
func ServiceOptions(id models.StageID) []ServiceOption {
	switch id {
	case models.StageProfile:
		return profileOptions
	case models.StagePlan:
		return planOptions
	case models.StageWebsite:
		opts := make([]ServiceOption, 0, len(websiteTypes))
		for _, t := range websiteTypes {
			opts = append(opts, ServiceOption{ID: t, Label: t})
		}
		return opts
	default:
		return nil
	}
}

// MultiSelectItems returns the checkbox set for a stage: the niche-keyed
// compliance checklist for stage 5, social platforms for stage 7, nil
// otherwise.
func MultiSelectItems(id models.StageID, niche string) []string {
	switch id {
	case models.StageCompliance:
		return ComplianceChecklist(niche)
	case models.StageSocial:
		items := make([]string, len(socialPlatforms))
		copy(items, socialPlatforms)
		return items
	default:
		return nil
	}
}

// ==========================
// LOGO STYLES
// ==========================

// LogoStyle is one of the five branding archetypes offered by the AI
// logo track.
type LogoStyle struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var logoStyles = []LogoStyle{
	{ID: "minimal", Label: "Minimalist"},
	{ID: "bold", Label: "Bold & Strong"},
	{ID: "tech", Label: "Tech Futurist"},
	{ID: "luxury", Label: "Premium Luxury"},
	{ID: "creative", Label: "Playful/Creative"},
}

// LogoStyles returns the archetype list in display order.
func LogoStyles() []LogoStyle {
	out := make([]LogoStyle, len(logoStyles))
	copy(out, logoStyles)
	return out
}

// LogoStyleLabel resolves a style id to its display label, ok=false for
// unknown ids.
func LogoStyleLabel(id string) (string, bool) {
	for _, s := range logoStyles {
		if s.ID == id {
			return s.Label, true
		}
	}
	return "", false
}

// DefaultLogoStyle is the pre-selected archetype.
func DefaultLogoStyle() LogoStyle { return logoStyles[0] }

// Pricing constants for the logo stage, in rand.
const (
	LogoAIPrice    = 70
	LogoHumanPrice = 350
)

// MaxLogoGenerations caps AI logo regenerations per session.
const MaxLogoGenerations = 15
