// internal/forms/registration/form.go

// Package registration builds the stage 1 submission: company identity,
// registered address, and a bounded list of directors.
package registration

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"marvetti-onboarding/internal/catalog"
	commonerrors "marvetti-onboarding/internal/common/errors"
	"marvetti-onboarding/internal/models"
)

const (
	MinDirectors = 1
	MaxDirectors = 50
)

// Draft is the mutable working state of the registration form. It is a
// pure local builder, it never touches session state.
type Draft struct {
	IsExisting   bool
	Names        [4]string
	ExistingName string
	Address      string
	City         string
	PostalCode   string
	Province     string
	Niche        string
	Description  string
	UIF          bool
	Bank         bool

	directors []models.Director
}

// NewDraft starts a fresh draft. When prior client data exists the first
// director is pre-filled from it.
func NewDraft(initial *models.ClientData) *Draft {
	first := models.Director{
		ID:          uuid.NewString(),
		Nationality: catalog.DefaultNationality,
		Province:    catalog.Provinces[0],
	}
	if initial != nil {
		first.FullName = strings.TrimSpace(initial.FirstName + " " + initial.LastName)
		first.Email = initial.Email
		first.Cell = initial.Cell
	}

	return &Draft{
		Province:  catalog.Provinces[0],
		Niche:     catalog.Niches[0],
		directors: []models.Director{first},
	}
}

// ==========================
// DIRECTOR COLLECTION
// ==========================

// Directors returns a copy of the current director list.
func (d *Draft) Directors() []models.Director {
	out := make([]models.Director, len(d.directors))
	copy(out, d.directors)
	return out
}

// AddDirector appends a blank director and returns its id. At the upper
// bound the call is a no-op and returns ok=false.
func (d *Draft) AddDirector() (string, bool) {
	if len(d.directors) >= MaxDirectors {
		return "", false
	}
	dir := models.Director{
		ID:          uuid.NewString(),
		Nationality: catalog.DefaultNationality,
		Province:    catalog.Provinces[0],
	}
	d.directors = append(d.directors, dir)
	return dir.ID, true
}

// RemoveDirector drops the director with the given id. Removing the last
// remaining director is a no-op and returns false.
func (d *Draft) RemoveDirector(id string) bool {
	if len(d.directors) <= MinDirectors {
		return false
	}
	for i, dir := range d.directors {
		if dir.ID == id {
			d.directors = append(d.directors[:i], d.directors[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateDirector replaces the fields of the director with matching id.
// The id itself is preserved.
func (d *Draft) UpdateDirector(id string, update models.Director) bool {
	for i, dir := range d.directors {
		if dir.ID == id {
			update.ID = id
			d.directors[i] = update
			return true
		}
	}
	return false
}

// ==========================
// SUBMISSION
// ==========================

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// Build validates the draft and flattens it into the stage payload.
// Validation failures block submission, no payload is produced.
func (d *Draft) Build() (models.RegistrationPayload, error) {
	var missing []string

	if d.IsExisting {
		if strings.TrimSpace(d.ExistingName) == "" {
			missing = append(missing, "existingName")
		}
	} else if strings.TrimSpace(d.Names[0]) == "" {
		missing = append(missing, "names[0]")
	}
	if strings.TrimSpace(d.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(d.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(d.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(d.PostalCode) == "" {
		missing = append(missing, "postalCode")
	}

	for i, dir := range d.directors {
		for field, value := range map[string]string{
			"fullName":    dir.FullName,
			"idNumber":    dir.IDNumber,
			"nationality": dir.Nationality,
			"email":       dir.Email,
			"cell":        dir.Cell,
		} {
			if strings.TrimSpace(value) == "" {
				missing = append(missing, fmt.Sprintf("directors[%d].%s", i, field))
			}
		}
	}

	if len(missing) > 0 {
		return models.RegistrationPayload{}, commonerrors.NewPayloadInvalidError(
			"required fields missing: " + strings.Join(missing, ", "))
	}

	status := "Not Registered"
	if d.IsExisting {
		status = "Already Registered"
	}

	return models.RegistrationPayload{
		CompanyStatus: status,
		IsExisting:    d.IsExisting,
		Names:         d.Names,
		ExistingName:  d.ExistingName,
		Address:       d.Address,
		City:          d.City,
		PostalCode:    d.PostalCode,
		Province:      d.Province,
		Niche:         d.Niche,
		Description:   d.Description,
		UIF:           yesNo(d.UIF),
		Bank:          yesNo(d.Bank),
		Directors:     d.Directors(),
	}, nil
}

// DeriveClient builds the client record from a registration submission.
// The first director is the primary contact.
func DeriveClient(p models.RegistrationPayload) models.ClientData {
	client := models.ClientData{
		FirstName: "Client",
		Niche:     p.Niche,
		Status:    models.ClientPending,
	}

	if len(p.Directors) > 0 {
		primary := p.Directors[0]
		parts := strings.Fields(primary.FullName)
		if len(parts) > 0 {
			client.FirstName = parts[0]
			client.LastName = strings.Join(parts[1:], " ")
		}
		client.Email = primary.Email
		client.Cell = primary.Cell
	}

	client.CompanyName = p.CompanyName()
	return client
}
