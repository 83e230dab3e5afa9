package filler

import (
	"strings"

	"github.com/jonathan/job-applier/internal/types"
)

// Kind is how a value is put into an element.
type Kind int

const (
	// KindText types the value
	KindText Kind = iota
	// KindFile uploads the file at the value path
	KindFile
)

// keyword maps a substring of a canonical field name to a profile attribute.
type keyword struct {
	substr string
	kind   Kind
	value  func(types.ApplicantProfile) string
}

// keywords is evaluated in order and the first substring match wins, so
// "first_name" and "last_name" must precede "name".
var keywords = []keyword{
	{"email", KindText, func(p types.ApplicantProfile) string { return p.Email }},
	{"resume", KindFile, func(p types.ApplicantProfile) string { return p.ResumePath }},
	{"cv", KindFile, func(p types.ApplicantProfile) string { return p.ResumePath }},
	{"cover_letter", KindFile, func(p types.ApplicantProfile) string { return p.CoverLetterPath }},
	{"phone", KindText, func(p types.ApplicantProfile) string { return p.Phone }},
	{"linkedin", KindText, func(p types.ApplicantProfile) string { return p.LinkedInURL }},
	{"portfolio", KindText, func(p types.ApplicantProfile) string { return p.PortfolioURL }},
	{"first_name", KindText, func(p types.ApplicantProfile) string { return p.FirstName() }},
	{"last_name", KindText, func(p types.ApplicantProfile) string { return p.LastName() }},
	{"name", KindText, func(p types.ApplicantProfile) string { return p.Name }},
}

// Match resolves a canonical field name to the profile value that fills it.
// Fields no keyword matches fall back to an exact lookup in profile.Extra.
func Match(field string, profile types.ApplicantProfile) (value string, kind Kind, ok bool) {
	name := strings.ToLower(field)
	for _, kw := range keywords {
		if strings.Contains(name, kw.substr) {
			return kw.value(profile), kw.kind, true
		}
	}
	if v, found := profile.Extra[field]; found {
		return v, KindText, true
	}
	return "", KindText, false
}
