package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "edudata-explorer/internal/common/errors"
	"edudata-explorer/internal/models"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SelectorSchema is the JSON Schema a DatasetSelector must satisfy. The year
// is only required (and range-checked) for year-partitioned datasets.
func SelectorSchema(names []string, yearRequired bool) map[string]interface{} {
	enum := make([]interface{}, len(names))
	for i, n := range names {
		enum[i] = n
	}

	properties := map[string]interface{}{
		"name": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"enum":      enum,
		},
	}
	required := []interface{}{"name"}

	if yearRequired {
		properties["year"] = map[string]interface{}{
			"type":    "integer",
			"minimum": models.MinYear,
			"maximum": models.MaxYear,
		}
		required = append(required, "year")
	}

	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// ValidateSelector checks sel against SelectorSchema. Failures come back as
// a VALIDATION_ERROR listing every violated field.
func ValidateSelector(sel models.DatasetSelector, names []string, yearRequired bool) error {
	doc := map[string]interface{}{"name": sel.Name}
	if yearRequired && sel.Year != 0 {
		doc["year"] = sel.Year
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(SelectorSchema(names, yearRequired)),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("selector schema: %v", err))
	}
	if result.Valid() {
		return nil
	}

	violations := collect(result.Errors())
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	stdErr := apperrors.NewValidationError("invalid dataset selection")
	stdErr.Details = strings.Join(parts, "; ")
	stdErr.Metadata = map[string]interface{}{"violations": violations}
	return stdErr
}

func collect(errs []gojsonschema.ResultError) []ValidationError {
	out := make([]ValidationError, 0, len(errs))
	for _, e := range errs {
		field := e.Field()
		if field == "(root)" {
			if p, ok := e.Details()["property"].(string); ok {
				field = p
			}
		}
		out = append(out, ValidationError{Field: field, Message: e.Description()})
	}
	return out
}
