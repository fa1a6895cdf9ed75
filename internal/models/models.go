// internal/models/models.go
package models

import (
	"time"
)

// ==========================
// STAGE IDENTITY
// ==========================

// StageID identifies one of the twelve onboarding stages. Values are
// stable and are used as JSON map keys in persisted session state.
type StageID int

const (
	StageRegistration StageID = 1
	StageLogo         StageID = 2
	StageProfile      StageID = 3
	StagePlan         StageID = 4
	StageCompliance   StageID = 5
	StageWebsite      StageID = 6
	StageSocial       StageID = 7
	StageSEO          StageID = 8
	StageMarketing    StageID = 9
	StageCRM          StageID = 10
	StageMaintenance  StageID = 11
	StageRemoteAdmin  StageID = 12
)

const (
	FirstStage StageID = StageRegistration
	LastStage  StageID = StageRemoteAdmin
)

// Valid reports whether the id falls inside the fixed 1..12 range.
func (s StageID) Valid() bool {
	return s >= FirstStage && s <= LastStage
}

// Next returns the following stage id and false when s is the last stage.
func (s StageID) Next() (StageID, bool) {
	if s >= LastStage {
		return s, false
	}
	return s + 1, true
}

// ==========================
// STATUS ENUMS
// ==========================

type StageStatus string

const (
	StageNotStarted StageStatus = "NOT_STARTED"
	StagePending    StageStatus = "PENDING"
	StageCompleted  StageStatus = "COMPLETED"
)

type ClientStatus string

const (
	ClientPending   ClientStatus = "PENDING"
	ClientCompleted ClientStatus = "COMPLETED"
	ClientActive    ClientStatus = "ACTIVE"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ==========================
// CORE ENTITIES
// ==========================

// StageInfo is the per-stage card shown on the dashboard roadmap.
type StageInfo struct {
	ID          StageID     `json:"id"`
	Name        string      `json:"name"`
	Price       string      `json:"price"`
	Description string      `json:"description"`
	IsUnlocked  bool        `json:"isUnlocked"`
	Status      StageStatus `json:"status"`
}

// ClientData is the client record derived from the registration payload.
type ClientData struct {
	FirstName          string       `json:"firstName"`
	LastName           string       `json:"lastName"`
	Email              string       `json:"email"`
	Cell               string       `json:"cell"`
	CompanyName        string       `json:"companyName,omitempty"`
	RegistrationNumber string       `json:"registrationNumber,omitempty"`
	Niche              string       `json:"niche,omitempty"`
	Status             ClientStatus `json:"status"`
}

// Director is one authorized official captured by the registration form.
// IDs are caller generated and only need to be unique within one draft.
type Director struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	IDNumber    string `json:"idNumber"`
	Nationality string `json:"nationality"`
	Email       string `json:"email"`
	Cell        string `json:"cell"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	Province    string `json:"province"`
}

// ==========================
// SESSION STATE
// ==========================

// ApplicationState is the durable per-session document. It round-trips
// through JSON unchanged so a persisted session survives process restarts.
type ApplicationState struct {
	SessionID     string                `json:"sessionId"`
	Client        *ClientData           `json:"client"`
	CurrentStage  StageID               `json:"currentStage"`
	Stages        map[StageID]StageInfo `json:"stages"`
	IsAdminMode   bool                  `json:"isAdminMode"`
	WhatsappDraft string                `json:"whatsappDraft"`
	Theme         Theme                 `json:"theme"`

	// StageSummary holds the AI execution report for the most recently
	// completed stage. Generation tracks how many completions have been
	// applied so a slow AI response for an older completion is discarded
	// instead of overwriting a newer one.
	StageSummary string    `json:"stageSummary,omitempty"`
	Generation   uint64    `json:"generation"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Stage returns the catalog entry for id, with ok=false for ids outside
// the fixed range or sessions restored from a truncated document.
func (a *ApplicationState) Stage(id StageID) (StageInfo, bool) {
	info, ok := a.Stages[id]
	return info, ok
}

// CompletedCount reports how many stages have reached COMPLETED.
func (a *ApplicationState) CompletedCount() int {
	n := 0
	for _, info := range a.Stages {
		if info.Status == StageCompleted {
			n++
		}
	}
	return n
}

// IsTerminal reports whether the session has finished the full sequence.
func (a *ApplicationState) IsTerminal() bool {
	info, ok := a.Stages[LastStage]
	return ok && a.CurrentStage == LastStage && info.Status == StageCompleted
}
