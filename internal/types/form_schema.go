package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
)

// RequiredKey is the reserved entry of a serialized form schema listing mandatory fields.
const RequiredKey = "required"

// FormSchema maps canonical field names (e.g. "email", "cv") to element locators
// (CSS selectors). An empty locator means the page has no element for that field.
//
// On the wire it is a flat JSON object: one string per field plus a "required" array.
type FormSchema struct {
	Fields   map[string]string
	Required []string
}

// FieldNames returns the canonical field names in a stable (sorted) order.
func (s *FormSchema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy.
func (s *FormSchema) Clone() *FormSchema {
	if s == nil {
		return nil
	}
	return &FormSchema{
		Fields:   maps.Clone(s.Fields),
		Required: slices.Clone(s.Required),
	}
}

// MarshalJSON encodes the schema as a flat object with sorted keys.
func (s FormSchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.FieldNames() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.Fields[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	if len(s.Fields) > 0 {
		buf.WriteByte(',')
	}
	required := s.Required
	if required == nil {
		required = []string{}
	}
	req, err := json.Marshal(required)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"` + RequiredKey + `":`)
	buf.Write(req)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat schema object. Every key other than "required" must
// hold a string; "required" must be an array of strings.
func (s *FormSchema) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("form schema must be a JSON object: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("form schema must be a JSON object, got null")
	}

	out := FormSchema{Fields: make(map[string]string, len(raw))}
	for key, value := range raw {
		if key == RequiredKey {
			if err := json.Unmarshal(value, &out.Required); err != nil {
				return fmt.Errorf("form schema %q must be an array of strings: %w", RequiredKey, err)
			}
			continue
		}
		var locator string
		if err := json.Unmarshal(value, &locator); err != nil {
			return fmt.Errorf("form schema field %q must be a string locator: %w", key, err)
		}
		out.Fields[key] = locator
	}
	if out.Required == nil {
		out.Required = []string{}
	}
	*s = out
	return nil
}

// Shape is the target layout a form resolver is asked to produce.
type Shape struct {
	Name    string
	Example FormSchema
}

// QuickApplyShape is the layout of an embedded mini-form (e.g. LinkedIn Easy Apply).
func QuickApplyShape() Shape {
	return Shape{
		Name: "quick-apply",
		Example: FormSchema{
			Fields: map[string]string{
				"email":  ".email_input",
				"phone":  ".phone-input",
				"resume": "#resume-upload-input",
			},
			Required: []string{},
		},
	}
}

// FullFormShape is the layout of a complete application page.
func FullFormShape() Shape {
	return Shape{
		Name: "full-form",
		Example: FormSchema{
			Fields: map[string]string{
				"email":        ".email_input",
				"cv":           ".resume-upload",
				"cover_letter": ".file-upload",
				"first_name":   ".candidate-first__name",
				"last_name":    ".candidate-last__name",
			},
			Required: []string{"email", "cv", "first_name", "last_name"},
		},
	}
}
