package apply

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/job-applier/internal/browser"
	"github.com/jonathan/job-applier/internal/config"
	"github.com/jonathan/job-applier/internal/types"
)

// atsSite holds the fixed controls of a single-page applicant-tracking system.
type atsSite struct {
	name             string
	applyCandidates  []string
	submitCandidates []string
	loginEmail       string
	loginPassword    string
	loginSubmit      string
}

// ATS applies on an applicant-tracking system: navigate, sign in when the
// landing page asks, click apply, sign in again if the click led to a login,
// then resolve, fill and submit the form. There is no redirect loop.
type ATS struct {
	deps  Deps
	site  atsSite
	creds config.Credentials
}

// NewWorkday creates the Workday strategy.
func NewWorkday(deps Deps, creds config.Credentials) *ATS {
	return &ATS{deps: deps.withDefaults(), site: workdaySite, creds: creds}
}

// NewTaleo creates the Taleo strategy.
func NewTaleo(deps Deps, creds config.Credentials) *ATS {
	return &ATS{deps: deps.withDefaults(), site: taleoSite, creds: creds}
}

// Name returns the platform name.
func (a *ATS) Name() string {
	return a.site.name
}

// Apply implements Strategy.
func (a *ATS) Apply(ctx context.Context, s browser.Session, url string, job types.JobRecord, profile types.ApplicantProfile) error {
	log := a.deps.Logger.With(zap.String("platform", a.site.name), zap.String("url", url), zap.String("title", job.Title))

	if err := s.Navigate(ctx, url); err != nil {
		return err
	}

	// Some sections put the sign-in dialog in front of the job detail.
	if a.creds.IsSet() {
		if err := a.login(ctx, s); err != nil {
			return err
		}
	}

	selector, ok, err := browser.ClickFirst(ctx, s, a.site.applyCandidates, a.deps.WaitTimeout)
	if err != nil {
		return fmt.Errorf("failed to click apply: %w", err)
	}
	if !ok {
		return &MissingControlError{Control: "apply button", URL: url}
	}
	log.Info("apply clicked", zap.String("control", selector))

	if a.creds.IsSet() {
		if err := a.login(ctx, s); err != nil {
			return err
		}
	}

	if !s.WaitPresent(ctx, "form", a.deps.WaitTimeout) {
		return &MissingControlError{Control: "application form", URL: currentURL(ctx, s, url)}
	}

	return a.deps.completeForm(ctx, s, currentURL(ctx, s, url), profile, formStep{
		formSelector:     "form",
		shape:            types.FullFormShape(),
		submitCandidates: a.site.submitCandidates,
		submit:           true,
	})
}

// login signs in when the site shows its login form. A site that does not ask
// for a login is left alone.
func (a *ATS) login(ctx context.Context, s browser.Session) error {
	if !s.WaitPresent(ctx, a.site.loginEmail, a.deps.WaitTimeout) {
		a.deps.Logger.Debug("no login form shown", zap.String("platform", a.site.name))
		return nil
	}

	if err := s.Fill(ctx, a.site.loginEmail, a.creds.Email); err != nil {
		return &LoginError{Platform: a.site.name, Message: "email field", Cause: err}
	}
	if err := s.Fill(ctx, a.site.loginPassword, a.creds.Password); err != nil {
		return &LoginError{Platform: a.site.name, Message: "password field", Cause: err}
	}
	if err := s.Click(ctx, a.site.loginSubmit); err != nil {
		return &LoginError{Platform: a.site.name, Message: "sign-in button", Cause: err}
	}
	if s.WaitPresent(ctx, a.site.loginEmail, a.deps.WaitTimeout) {
		return &LoginError{Platform: a.site.name, Message: "credentials rejected"}
	}
	return nil
}
