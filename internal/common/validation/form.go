// internal/common/validation/form.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationResult carries field-level errors so the form can re-render them
// without losing submitted values.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Summary joins field errors into one detail string for error reporting.
func (r *ValidationResult) Summary() string {
	if r.Valid {
		return ""
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// applicationSchema is the JSON Schema shared by every membership application
// form. Membership-type election is validated separately so the enum stays in
// one place (the models package).
var applicationSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"memberName": map[string]interface{}{
			"type":      "string",
			"minLength": 2,
			"maxLength": 120,
		},
		"email": map[string]interface{}{
			"type":    "string",
			"pattern": `^[^@\s]+@[^@\s]+\.[^@\s]+$`,
		},
		"mobile": map[string]interface{}{
			"type":    "string",
			"pattern": `^\+?[0-9]{10,14}$`,
		},
		"address": map[string]interface{}{
			"type":      "string",
			"maxLength": 500,
		},
		"city": map[string]interface{}{
			"type":      "string",
			"maxLength": 80,
		},
		"occupation": map[string]interface{}{
			"type":      "string",
			"maxLength": 120,
		},
		"bloodGroup": map[string]interface{}{
			"type": "string",
			"enum": []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"},
		},
		"emergencyContact": map[string]interface{}{
			"type":      "string",
			"maxLength": 120,
		},
		"emergencyPhone": map[string]interface{}{
			"type":    "string",
			"pattern": `^\+?[0-9]{10,14}$`,
		},
	},
	"required":             []string{"memberName", "email", "mobile"},
	"additionalProperties": true,
}

// ValidateApplication validates an application form submission against the
// shared schema and returns field-level errors.
func ValidateApplication(fields map[string]interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(applicationSchema)
	documentLoader := gojsonschema.NewGoLoader(fields)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}, nil
	}

	out := &ValidationResult{Valid: false}
	for _, resErr := range result.Errors() {
		field := resErr.Field()
		if field == "(root)" {
			if prop, ok := resErr.Details()["property"].(string); ok {
				field = prop
			}
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: resErr.Description(),
		})
	}
	return out, nil
}
