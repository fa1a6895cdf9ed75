// pkg/registry/registry.go

// Package registry holds the JSON schemas for each stage submission and
// validates incoming payloads before the orchestrator applies them.
package registry

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"marvetti-onboarding/internal/models"
)

// directorSchema is embedded in the registration schema.
var directorSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"fullName", "idNumber", "nationality", "email", "cell"},
	"properties": map[string]interface{}{
		"id":          map[string]interface{}{"type": "string"},
		"fullName":    map[string]interface{}{"type": "string", "minLength": 1},
		"idNumber":    map[string]interface{}{"type": "string", "minLength": 1},
		"nationality": map[string]interface{}{"type": "string", "minLength": 1},
		"email":       map[string]interface{}{"type": "string", "minLength": 3},
		"cell":        map[string]interface{}{"type": "string", "minLength": 1},
		"address":     map[string]interface{}{"type": "string"},
		"city":        map[string]interface{}{"type": "string"},
		"postalCode":  map[string]interface{}{"type": "string"},
		"province":    map[string]interface{}{"type": "string"},
	},
}

var registrationSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"directors", "niche", "description", "address", "city", "postalCode", "province"},
	"properties": map[string]interface{}{
		"companyStatus": map[string]interface{}{"type": "string"},
		"isExisting":    map[string]interface{}{"type": "boolean"},
		"names": map[string]interface{}{
			"type":     "array",
			"items":    map[string]interface{}{"type": "string"},
			"maxItems": 4,
		},
		"existingName": map[string]interface{}{"type": "string"},
		"address":      map[string]interface{}{"type": "string", "minLength": 1},
		"city":         map[string]interface{}{"type": "string", "minLength": 1},
		"postalCode":   map[string]interface{}{"type": "string", "minLength": 1},
		"province":     map[string]interface{}{"type": "string", "minLength": 1},
		"niche":        map[string]interface{}{"type": "string", "minLength": 1},
		"description":  map[string]interface{}{"type": "string", "minLength": 1},
		"uif":          map[string]interface{}{"type": "string", "enum": []interface{}{"Yes", "No"}},
		"bank":         map[string]interface{}{"type": "string", "enum": []interface{}{"Yes", "No"}},
		"directors": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"maxItems": 50,
			"items":    directorSchema,
		},
	},
}

var logoSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"type", "price"},
	"properties": map[string]interface{}{
		"type":         map[string]interface{}{"type": "string", "enum": []interface{}{"AI", "HUMAN"}},
		"imageRef":     map[string]interface{}{"type": "string"},
		"style":        map[string]interface{}{"type": "string"},
		"instructions": map[string]interface{}{"type": "string"},
		"price":        map[string]interface{}{"type": "integer", "minimum": 0},
	},
}

var serviceSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"instructions", "timestamp"},
	"properties": map[string]interface{}{
		"stage":          map[string]interface{}{"type": "integer"},
		"instructions":   map[string]interface{}{"type": "string"},
		"selectedOption": map[string]interface{}{"type": "string"},
		"checklist": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"timestamp": map[string]interface{}{"type": "string"},
	},
}

// complianceServiceSchema relaxes the instructions requirement. The
// compliance stage treats free text as optional notes.
var complianceServiceSchema = map[string]interface{}{
	"type":       "object",
	"required":   []interface{}{"timestamp"},
	"properties": serviceSchema["properties"],
}

// SchemaFor returns the validation schema for a stage submission.
func SchemaFor(id models.StageID) (map[string]interface{}, error) {
	switch {
	case id == models.StageRegistration:
		return registrationSchema, nil
	case id == models.StageLogo:
		return logoSchema, nil
	case id == models.StageCompliance:
		return complianceServiceSchema, nil
	case id.Valid():
		return serviceSchema, nil
	default:
		return nil, fmt.Errorf("no schema for stage id %d", id)
	}
}

// Validate checks a decoded submission document against the stage's
// schema and returns a joined description of every violation.
func Validate(id models.StageID, document map[string]interface{}) error {
	schema, err := SchemaFor(id)
	if err != nil {
		return err
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			errs[i] = e.String()
		}
		return fmt.Errorf("payload invalid: %s", strings.Join(errs, "; "))
	}

	return nil
}
