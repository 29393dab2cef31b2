package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "hub47-site/internal/common/errors"
)

var datePattern = `^\d{4}-\d{2}-\d{2}$`

// JSONSchema renders the schema as a draft-07 document. Optional fields accept "".
func (s *Schema) JSONSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(s.fields))
	required := make([]string, 0)

	for _, f := range s.fields {
		prop := f.jsonProperty()
		if f.Required {
			required = append(required, f.Name)
			properties[f.Name] = prop
			continue
		}
		if f.Kind == KindBoolean {
			properties[f.Name] = prop
			continue
		}
		properties[f.Name] = map[string]interface{}{
			"anyOf": []interface{}{
				map[string]interface{}{"type": "string", "maxLength": 0},
				prop,
			},
		}
	}

	doc := map[string]interface{}{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

func (f Field) jsonProperty() map[string]interface{} {
	prop := map[string]interface{}{}
	if f.Label != "" {
		prop["title"] = f.Label
	}

	switch f.Kind {
	case KindBoolean:
		prop["type"] = "boolean"
	case KindDate:
		prop["type"] = "string"
		prop["pattern"] = datePattern
	case KindChoice:
		prop["type"] = "string"
		enum := make([]interface{}, len(f.Options))
		for i, o := range f.Options {
			enum[i] = o
		}
		prop["enum"] = enum
	default:
		prop["type"] = "string"
		if f.Required {
			prop["minLength"] = 1
		}
	}

	for _, r := range f.Rules {
		if r.annotate != nil {
			r.annotate(prop)
		}
	}
	return prop
}

// ValidateDocument checks a complete value map in one pass with gojsonschema.
// Unset values (nil or blank strings) are dropped first, matching Validate,
// so optional fields may be absent.
func (s *Schema) ValidateDocument(values Values) error {
	data := make(map[string]interface{}, len(values))
	for k, v := range values {
		if !isEmpty(v) {
			data[k] = v
		}
	}

	schemaLoader := gojsonschema.NewGoLoader(s.JSONSchema())
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		sort.Strings(errs)
		return apperrors.NewDocumentInvalidError(strings.Join(errs, "; "))
	}
	return nil
}
