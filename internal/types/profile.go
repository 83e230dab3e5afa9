package types

import (
	"maps"
	"strings"
)

// ApplicantProfile holds the applicant attributes used to fill application forms.
// It is owned by the caller; the applier only reads it.
type ApplicantProfile struct {
	Name            string            `json:"name"`
	Email           string            `json:"email" validate:"omitempty,email"`
	Phone           string            `json:"phone,omitempty"`
	LinkedInURL     string            `json:"linkedin,omitempty"`
	PortfolioURL    string            `json:"portfolio,omitempty"`
	ResumePath      string            `json:"resume_path,omitempty"`
	CoverLetterPath string            `json:"cover_letter_path,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`
}

// FirstName returns the first whitespace-separated token of Name.
func (p ApplicantProfile) FirstName() string {
	parts := strings.Fields(p.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// LastName returns everything after the first token of Name.
func (p ApplicantProfile) LastName() string {
	parts := strings.Fields(p.Name)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}

// WithDocuments returns a copy of the profile whose document paths are taken from docs.
// Empty paths in docs keep the profile's own value. The receiver is left untouched.
func (p ApplicantProfile) WithDocuments(docs DocumentPaths) ApplicantProfile {
	out := p
	out.Extra = maps.Clone(p.Extra)
	if docs.CV != "" {
		out.ResumePath = docs.CV
	}
	if docs.CoverLetter != "" {
		out.CoverLetterPath = docs.CoverLetter
	}
	return out
}
