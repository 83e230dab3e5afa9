// Package schemas provides JSON Schema validation for structured data crossing a trust boundary:
// form schemas produced by the language model and batch files produced upstream.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed form_schema.schema.json
var formSchemaDefinition string

//go:embed batch.schema.json
var batchSchemaDefinition string

//go:embed batch_entry.schema.json
var batchEntrySchemaDefinition string

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading the schema or the document itself,
// e.g. a document that is not well-formed JSON.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateFormSchema validates a form schema document produced by the resolver.
func ValidateFormSchema(jsonContent string) error {
	return validate("form_schema.schema.json", formSchemaDefinition, jsonContent)
}

// ValidateBatch checks the shape of a batch input document: an object whose
// values are objects. Entries are checked one by one with ValidateBatchEntry.
func ValidateBatch(jsonContent string) error {
	return validate("batch.schema.json", batchSchemaDefinition, jsonContent)
}

// ValidateBatchEntry validates a single job artifact bundle.
func ValidateBatchEntry(jsonContent string) error {
	return validate("batch_entry.schema.json", batchEntrySchemaDefinition, jsonContent)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	return validate("(string schema)", schemaContent, jsonContent)
}

func validate(name, schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    name,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	// Build structured error
	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
