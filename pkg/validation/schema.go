package validation

import (
	_ "embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/application.json
var applicationSchemaJSON string

// ApplicationSchema validates loan application documents: known enum values
// and non-negative amounts. Unknown fields are rejected.
var ApplicationSchema = MustCompileSchema(applicationSchemaJSON)

// Schema is a compiled JSON schema.
type Schema struct {
	schema *gojsonschema.Schema
}

// CompileSchema compiles a JSON schema document.
func CompileSchema(document string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// MustCompileSchema compiles a schema known to be valid and panics otherwise.
func MustCompileSchema(document string) *Schema {
	s, err := CompileSchema(document)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateBytes validates a raw JSON document. It returns one message per
// violation, or an error when the document is not JSON.
func (s *Schema) ValidateBytes(document []byte) ([]string, error) {
	return s.validate(gojsonschema.NewBytesLoader(document))
}

// ValidateGo validates a Go value as if it had been encoded to JSON.
func (s *Schema) ValidateGo(document any) ([]string, error) {
	return s.validate(gojsonschema.NewGoLoader(document))
}

func (s *Schema) validate(loader gojsonschema.JSONLoader) ([]string, error) {
	result, err := s.schema.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, len(result.Errors()))
	for i, e := range result.Errors() {
		violations[i] = fmt.Sprintf("%s: %s", e.Field(), e.Description())
	}
	return violations, nil
}
