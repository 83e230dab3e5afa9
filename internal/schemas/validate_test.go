package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFormSchema_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"full form", `{"email": "#email", "cv": "input[type=file]", "cover_letter": "", "required": ["email", "cv"]}`},
		{"no required", `{"email": "#email"}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, ValidateFormSchema(tt.input))
		})
	}
}

func TestValidateFormSchema_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"numeric locator", `{"email": 1}`},
		{"nested object", `{"email": {"selector": "#e"}}`},
		{"required is string", `{"required": "email"}`},
		{"duplicate required", `{"required": ["email", "email"]}`},
		{"array root", `["email"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormSchema(tt.input)
			require.Error(t, err)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "error should be ValidationError type")
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidateFormSchema_NotJSON(t *testing.T) {
	err := ValidateFormSchema(`{'email': '#e'}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidateBatch(t *testing.T) {
	valid := `{
		"acme_engineer": {
			"job_details": {"title": "Engineer"},
			"company": "Acme",
			"application_url": "https://acme.workday.com/job/1",
			"document_paths": {"cv": "acme/cv.pdf"}
		}
	}`
	assert.NoError(t, ValidateBatch(valid))

	// entry content is not checked at document level
	assert.NoError(t, ValidateBatch(`{"k": {"job_details": {}}}`))

	for _, doc := range []string{`[]`, `{"k": 1}`, `{"k": "text"}`} {
		assert.Error(t, ValidateBatch(doc), doc)
	}
}

func TestValidateBatchEntry(t *testing.T) {
	assert.NoError(t, ValidateBatchEntry(`{"job_details": {"title": "Engineer"}, "company": "Acme"}`))

	err := ValidateBatchEntry(`{"job_details": {}, "company": "Acme"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")

	err = ValidateBatchEntry(`{"job_details": {"title": "Engineer"}}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company")

	err = ValidateBatchEntry(`{"job_details": {"title": 7}, "company": "Acme"}`)
	require.Error(t, err)
}

func TestValidationError_Format(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "email", Message: "Invalid type"},
		{Field: "(root)", Message: "bad"},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "1. email: Invalid type")
	assert.Contains(t, msg, "2. (root): bad")
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}
