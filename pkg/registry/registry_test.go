// pkg/registry/registry_test.go
package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marvetti-onboarding/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func validRegistrationDoc() map[string]interface{} {
	return map[string]interface{}{
		"companyStatus": "Not Registered",
		"isExisting":    false,
		"names":         []interface{}{"ALPHA PTY LTD", "", "", ""},
		"address":       "123 Alpha Road",
		"city":          "Johannesburg",
		"postalCode":    "2000",
		"province":      "Gauteng",
		"niche":         "Security Guarding",
		"description":   "Guarding services",
		"uif":           "Yes",
		"bank":          "No",
		"directors": []interface{}{
			map[string]interface{}{
				"id":          "1",
				"fullName":    "Thabo Mokoena",
				"idNumber":    "8001015009087",
				"nationality": "South African",
				"email":       "thabo@example.co.za",
				"cell":        "+27821234567",
			},
		},
	}
}

func validServiceDoc() map[string]interface{} {
	return map[string]interface{}{
		"instructions": "corporate site with booking form",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}
}

// ==========================
// Registration Schema Tests
// ==========================

func TestValidate_Registration_Success(t *testing.T) {
	assert.NoError(t, Validate(models.StageRegistration, validRegistrationDoc()))
}

func TestValidate_Registration_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]interface{})
	}{
		{
			name:   "missing directors",
			mutate: func(doc map[string]interface{}) { delete(doc, "directors") },
		},
		{
			name:   "empty directors",
			mutate: func(doc map[string]interface{}) { doc["directors"] = []interface{}{} },
		},
		{
			name:   "missing niche",
			mutate: func(doc map[string]interface{}) { delete(doc, "niche") },
		},
		{
			name:   "empty description",
			mutate: func(doc map[string]interface{}) { doc["description"] = "" },
		},
		{
			name: "director missing id number",
			mutate: func(doc map[string]interface{}) {
				d := doc["directors"].([]interface{})[0].(map[string]interface{})
				delete(d, "idNumber")
			},
		},
		{
			name:   "bad uif value",
			mutate: func(doc map[string]interface{}) { doc["uif"] = "maybe" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validRegistrationDoc()
			tt.mutate(doc)
			assert.Error(t, Validate(models.StageRegistration, doc))
		})
	}
}

// ==========================
// Logo Schema Tests
// ==========================

func TestValidate_Logo(t *testing.T) {
	assert.NoError(t, Validate(models.StageLogo, map[string]interface{}{
		"type":  "HUMAN",
		"price": 350,
	}))

	assert.NoError(t, Validate(models.StageLogo, map[string]interface{}{
		"type":         "AI",
		"imageRef":     "logos/s-1/1.png",
		"style":        "minimal",
		"instructions": "",
		"price":        70,
	}))

	assert.Error(t, Validate(models.StageLogo, map[string]interface{}{
		"type":  "ROBOT",
		"price": 70,
	}))

	assert.Error(t, Validate(models.StageLogo, map[string]interface{}{
		"type": "AI",
	}))
}

// ==========================
// Service Schema Tests
// ==========================

func TestValidate_Service(t *testing.T) {
	assert.NoError(t, Validate(models.StageWebsite, validServiceDoc()))

	missing := validServiceDoc()
	delete(missing, "instructions")
	assert.Error(t, Validate(models.StageWebsite, missing))
}

func TestValidate_Compliance_InstructionsOptional(t *testing.T) {
	doc := map[string]interface{}{
		"checklist": []interface{}{"PSIRA Registration"},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	assert.NoError(t, Validate(models.StageCompliance, doc))
}

func TestSchemaFor_UnknownStage(t *testing.T) {
	_, err := SchemaFor(models.StageID(0))
	require.Error(t, err)
	_, err = SchemaFor(models.StageID(13))
	require.Error(t, err)
}
