// Package filler puts applicant profile values into the elements a form schema locates.
package filler

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/job-applier/internal/browser"
	"github.com/jonathan/job-applier/internal/types"
)

// Entry is the result for one canonical field.
type Entry struct {
	Field     string
	Locator   string
	Matched   bool
	Succeeded bool
	Err       error
}

// Report holds one entry per schema field, sorted by field name.
type Report struct {
	Entries []Entry
}

// Entry returns the entry for field.
func (r Report) Entry(field string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Field == field {
			return e, true
		}
	}
	return Entry{}, false
}

// SucceededCount returns how many fields were set.
func (r Report) SucceededCount() int {
	n := 0
	for _, e := range r.Entries {
		if e.Succeeded {
			n++
		}
	}
	return n
}

// MissingRequired returns the required fields that were not set, in the given order.
func (r Report) MissingRequired(required []string) []string {
	var missing []string
	for _, field := range required {
		if e, ok := r.Entry(field); !ok || !e.Succeeded {
			missing = append(missing, field)
		}
	}
	return missing
}

// Filler fills forms through a browser session.
type Filler struct {
	logger *zap.Logger
}

// New creates a Filler. A nil logger discards logs.
func New(logger *zap.Logger) *Filler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filler{logger: logger}
}

// Fill attempts every field of schema. Per-field failures are logged and
// recorded in the report; they never stop the remaining fields.
func (f *Filler) Fill(ctx context.Context, s browser.Session, schema types.FormSchema, profile types.ApplicantProfile) Report {
	fields := schema.FieldNames()
	report := Report{Entries: make([]Entry, 0, len(fields))}

	for _, field := range fields {
		entry := f.fillField(ctx, s, field, schema.Fields[field], profile)
		report.Entries = append(report.Entries, entry)
	}

	f.logger.Info("form filled",
		zap.Int("fields", len(report.Entries)),
		zap.Int("succeeded", report.SucceededCount()),
		zap.Strings("missing_required", report.MissingRequired(schema.Required)),
	)
	return report
}

func (f *Filler) fillField(ctx context.Context, s browser.Session, field, locator string, profile types.ApplicantProfile) Entry {
	entry := Entry{Field: field, Locator: locator}
	log := f.logger.With(zap.String("field", field), zap.String("locator", locator))

	value, kind, ok := Match(field, profile)
	if !ok {
		log.Debug("no profile attribute for field")
		return entry
	}
	entry.Matched = true

	switch {
	case locator == "":
		entry.Err = &ElementError{Field: field, Locator: locator, Cause: ErrNoLocator}
	case value == "":
		entry.Err = &ElementError{Field: field, Locator: locator, Cause: ErrNoValue}
	case kind == KindFile:
		if err := s.Upload(ctx, locator, value); err != nil {
			entry.Err = &ElementError{Field: field, Locator: locator, Cause: err}
		}
	default:
		if err := s.Fill(ctx, locator, value); err != nil {
			entry.Err = &ElementError{Field: field, Locator: locator, Cause: err}
		}
	}

	if entry.Err != nil {
		log.Warn("field not filled", zap.Error(entry.Err))
		return entry
	}
	entry.Succeeded = true
	return entry
}

// RequiredSatisfied reports whether every required field was set.
func RequiredSatisfied(report Report, required []string) bool {
	return len(report.MissingRequired(required)) == 0
}
