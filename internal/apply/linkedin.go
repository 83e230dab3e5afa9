package apply

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/job-applier/internal/browser"
	"github.com/jonathan/job-applier/internal/config"
	"github.com/jonathan/job-applier/internal/types"
)

// DefaultMaxHops bounds the external apply redirect chain.
const DefaultMaxHops = 3

// LinkedIn applies through Easy Apply when offered, and otherwise follows the
// external apply redirect chain to the employer's form.
type LinkedIn struct {
	deps    Deps
	creds   config.Credentials
	maxHops int
}

// NewLinkedIn creates the LinkedIn strategy. maxHops <= 0 selects DefaultMaxHops.
func NewLinkedIn(deps Deps, creds config.Credentials, maxHops int) *LinkedIn {
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	return &LinkedIn{deps: deps.withDefaults(), creds: creds, maxHops: maxHops}
}

// Apply implements Strategy.
func (l *LinkedIn) Apply(ctx context.Context, s browser.Session, url string, job types.JobRecord, profile types.ApplicantProfile) error {
	log := l.deps.Logger.With(zap.String("platform", "linkedin"), zap.String("url", url), zap.String("title", job.Title))

	if err := l.ensureLoggedIn(ctx, s); err != nil {
		return err
	}

	if err := s.Navigate(ctx, url); err != nil {
		return err
	}
	l.dismissPopups(ctx, s)

	selector, ok, err := browser.ClickFirst(ctx, s, easyApplyCandidates, l.deps.WaitTimeout)
	if err != nil {
		return fmt.Errorf("failed to open easy apply: %w", err)
	}
	if ok {
		log.Info("easy apply", zap.String("control", selector))
		return l.easyApply(ctx, s, url, profile)
	}

	log.Info("no easy apply control, following external apply")
	return l.regularApply(ctx, s, url, profile, log)
}

// ensureLoggedIn checks the home page for the authenticated marker and signs in when it is absent.
func (l *LinkedIn) ensureLoggedIn(ctx context.Context, s browser.Session) error {
	if err := s.Navigate(ctx, linkedInHomeURL); err != nil {
		return &LoginError{Platform: "linkedin", Message: "home page unreachable", Cause: err}
	}
	if s.WaitPresent(ctx, linkedInAuthed, l.deps.WaitTimeout) {
		return nil
	}
	if !l.creds.IsSet() {
		return &LoginError{Platform: "linkedin", Message: "not signed in and no credentials configured"}
	}

	l.deps.Logger.Info("signing in to linkedin")
	if err := s.Navigate(ctx, linkedInLoginURL); err != nil {
		return &LoginError{Platform: "linkedin", Message: "login page unreachable", Cause: err}
	}
	if !s.WaitPresent(ctx, linkedInUsername, l.deps.WaitTimeout) {
		return &LoginError{Platform: "linkedin", Message: "login form not found"}
	}
	if err := s.Fill(ctx, linkedInUsername, l.creds.Email); err != nil {
		return &LoginError{Platform: "linkedin", Message: "username field", Cause: err}
	}
	if err := s.Fill(ctx, linkedInPassword, l.creds.Password); err != nil {
		return &LoginError{Platform: "linkedin", Message: "password field", Cause: err}
	}
	if err := s.Click(ctx, linkedInLoginSend); err != nil {
		return &LoginError{Platform: "linkedin", Message: "sign-in button", Cause: err}
	}
	if !s.WaitPresent(ctx, linkedInAuthed, l.deps.WaitTimeout) {
		return &LoginError{Platform: "linkedin", Message: "credentials rejected"}
	}
	return nil
}

func (l *LinkedIn) dismissPopups(ctx context.Context, s browser.Session) {
	l.deps.dismissPopups(ctx, s, linkedInCookieCandidates, linkedInDismissCandidates)
}

func (l *LinkedIn) easyApply(ctx context.Context, s browser.Session, url string, profile types.ApplicantProfile) error {
	formSelector, ok := browser.FirstPresent(ctx, s, easyApplyFormCandidates, l.deps.WaitTimeout)
	if !ok {
		return &MissingControlError{Control: "easy apply form", URL: url}
	}
	return l.deps.completeForm(ctx, s, url, profile, formStep{
		formSelector:     formSelector,
		shape:            types.QuickApplyShape(),
		submitCandidates: easyApplySubmitCandidates,
		submit:           true,
	})
}

func (l *LinkedIn) regularApply(ctx context.Context, s browser.Session, url string, profile types.ApplicantProfile, log *zap.Logger) error {
	if _, ok, err := browser.ClickFirst(ctx, s, externalApplyCandidates, l.deps.WaitTimeout); err != nil {
		return fmt.Errorf("failed to click apply: %w", err)
	} else if !ok {
		return &MissingControlError{Control: "apply button", URL: url}
	}

	for hops := 0; ; hops++ {
		l.dismissPopups(ctx, s)
		if s.WaitPresent(ctx, "form", l.deps.WaitTimeout) {
			log.Info("application form reached", zap.Int("hops", hops))
			break
		}
		if hops == l.maxHops {
			return &NavigationExhaustedError{Hops: hops, LastURL: currentURL(ctx, s, url)}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// A hop is spent whether or not a candidate was clickable.
		selector, ok, err := browser.ClickFirst(ctx, s, hopCandidates, l.deps.WaitTimeout)
		switch {
		case err != nil:
			log.Warn("hop click failed", zap.Int("hop", hops+1), zap.String("selector", selector), zap.Error(err))
		case ok:
			log.Debug("hop", zap.Int("hop", hops+1), zap.String("selector", selector))
		default:
			log.Debug("no continue control on hop", zap.Int("hop", hops+1))
		}
	}

	return l.deps.completeForm(ctx, s, currentURL(ctx, s, url), profile, formStep{
		formSelector:     "form",
		shape:            types.FullFormShape(),
		submitCandidates: regularSubmitCandidates,
		submit:           true,
	})
}
