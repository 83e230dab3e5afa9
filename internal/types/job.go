// Package types provides type definitions for structured data used throughout the job-applier system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// JobRecord is a scraped job posting. It is never modified once handed to the applier.
type JobRecord struct {
	Company        string `json:"company"`
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description,omitempty"`
	Location       string `json:"location,omitempty"`
	ApplicationURL string `json:"application_url,omitempty" validate:"omitempty,url"`
	AboutCompany   string `json:"about_company,omitempty"`
}

// DocumentPaths points at the tailored documents generated upstream for one job.
type DocumentPaths struct {
	CV          string `json:"cv,omitempty"`
	CoverLetter string `json:"cover_letter,omitempty"`
	Metadata    string `json:"metadata,omitempty"`
}

// JobArtifact is one entry of a batch: everything produced upstream for a single job.
type JobArtifact struct {
	JobDetails     JobRecord        `json:"job_details" validate:"required"`
	UserProfile    ApplicantProfile `json:"user_profile"`
	DocumentPaths  DocumentPaths    `json:"document_paths"`
	ApplicationURL string           `json:"application_url,omitempty" validate:"omitempty,url"`
	Company        string           `json:"company" validate:"required"`
	Location       string           `json:"location,omitempty"`
	Timestamp      string           `json:"timestamp,omitempty"`
}

// Validate validates the JobArtifact using the validator.
func (a *JobArtifact) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}

// JobKey builds the composite key used to correlate a job with its document artifacts.
// It matches the directory naming of the document generator: "<company>_<title>",
// lower-cased with spaces replaced by underscores.
func JobKey(company, title string) string {
	return strings.ToLower(strings.ReplaceAll(company+"_"+title, " ", "_"))
}

// BatchEntry pairs a job key with its artifact bundle. Invalid is set when the
// bundle failed validation; such an entry is reported but never applied.
type BatchEntry struct {
	Key      string
	Artifact JobArtifact
	Invalid  error
}

// Batch is an ordered set of job artifacts. Order follows the input file.
type Batch []BatchEntry

// URL returns the application URL, preferring the bundle's own over the posting's.
func (a JobArtifact) URL() string {
	if a.ApplicationURL != "" {
		return a.ApplicationURL
	}
	return a.JobDetails.ApplicationURL
}

// CompanyName returns the bundle company, falling back to the posting's.
func (a JobArtifact) CompanyName() string {
	if a.Company != "" {
		return a.Company
	}
	return a.JobDetails.Company
}
