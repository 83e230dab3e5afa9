// Package apply implements the per-platform navigation that takes a browser
// from a job posting to a filled, submitted application form.
package apply

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-applier/internal/browser"
	"github.com/jonathan/job-applier/internal/config"
	"github.com/jonathan/job-applier/internal/filler"
	"github.com/jonathan/job-applier/internal/platform"
	"github.com/jonathan/job-applier/internal/types"
)

// DefaultWaitTimeout bounds each element wait.
const DefaultWaitTimeout = 5 * time.Second

// Strategy applies to one job on one platform. job and profile are read-only.
type Strategy interface {
	Apply(ctx context.Context, s browser.Session, url string, job types.JobRecord, profile types.ApplicantProfile) error
}

// FormResolver produces a form schema for form markup; *resolver.Resolver implements it.
type FormResolver interface {
	Resolve(ctx context.Context, html, url string, shape types.Shape) (*types.FormSchema, error)
}

// FormFiller fills a resolved form; *filler.Filler implements it.
type FormFiller interface {
	Fill(ctx context.Context, s browser.Session, schema types.FormSchema, profile types.ApplicantProfile) filler.Report
}

// Deps are the collaborators shared by all strategies.
type Deps struct {
	Resolver    FormResolver
	Filler      FormFiller
	Logger      *zap.Logger
	WaitTimeout time.Duration
	// OnFill, when set, receives every fill report.
	OnFill func(url string, report filler.Report)
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.WaitTimeout <= 0 {
		d.WaitTimeout = DefaultWaitTimeout
	}
	return d
}

// formStep describes one resolve, fill and optional submit pass.
type formStep struct {
	formSelector     string
	shape            types.Shape
	submitCandidates []string
	submit           bool
}

// completeForm resolves the form matched by step.formSelector, fills it and,
// when step.submit is set, clicks the first clickable submit candidate. Submit
// is only attempted once every required field has been set.
func (d Deps) completeForm(ctx context.Context, s browser.Session, key string, profile types.ApplicantProfile, step formStep) error {
	html, err := s.OuterHTML(ctx, step.formSelector)
	if err != nil {
		return fmt.Errorf("failed to read form: %w", err)
	}
	return d.completeFormHTML(ctx, s, html, key, profile, step)
}

func (d Deps) completeFormHTML(ctx context.Context, s browser.Session, html, key string, profile types.ApplicantProfile, step formStep) error {
	schema, err := d.Resolver.Resolve(ctx, html, key, step.shape)
	if err != nil {
		return err
	}

	report := d.Filler.Fill(ctx, s, *schema, profile)
	if d.OnFill != nil {
		d.OnFill(key, report)
	}

	if !step.submit {
		return nil
	}
	if missing := report.MissingRequired(schema.Required); len(missing) > 0 {
		return &IncompleteFormError{Missing: missing}
	}

	selector, ok, err := browser.ClickFirst(ctx, s, step.submitCandidates, d.WaitTimeout)
	if !ok {
		return &MissingControlError{Control: "submit button", URL: key}
	}
	if err != nil {
		return fmt.Errorf("failed to submit: %w", err)
	}
	d.Logger.Info("application submitted", zap.String("url", key), zap.String("submit", selector))
	return nil
}

// dismissPopups clicks the first clickable candidate of each group. Absent popups are not an error.
func (d Deps) dismissPopups(ctx context.Context, s browser.Session, groups ...[]string) {
	for _, candidates := range groups {
		selector, ok, err := browser.ClickFirst(ctx, s, candidates, d.WaitTimeout)
		switch {
		case err != nil:
			d.Logger.Debug("popup dismiss failed", zap.String("selector", selector), zap.Error(err))
		case ok:
			d.Logger.Debug("popup dismissed", zap.String("selector", selector))
		}
	}
}

func currentURL(ctx context.Context, s browser.Session, fallback string) string {
	u, err := s.CurrentURL(ctx)
	if err != nil || u == "" {
		return fallback
	}
	return u
}

// Registry maps platforms to strategies. Platforms without one use the fallback.
type Registry struct {
	strategies map[platform.Platform]Strategy
	fallback   Strategy
}

// NewRegistry creates a registry whose fallback handles unclaimed platforms.
func NewRegistry(fallback Strategy) *Registry {
	return &Registry{
		strategies: make(map[platform.Platform]Strategy),
		fallback:   fallback,
	}
}

// Register sets the strategy for p.
func (r *Registry) Register(p platform.Platform, s Strategy) {
	r.strategies[p] = s
}

// For classifies url and returns its platform and strategy.
func (r *Registry) For(url string) (platform.Platform, Strategy) {
	p := platform.Classify(url)
	if s, ok := r.strategies[p]; ok {
		return p, s
	}
	return p, r.fallback
}

// DefaultRegistry wires the LinkedIn, Workday, Taleo and Generic strategies.
func DefaultRegistry(deps Deps, creds config.PlatformCredentials, maxHops int) *Registry {
	r := NewRegistry(NewGeneric(deps))
	r.Register(platform.LinkedIn, NewLinkedIn(deps, creds.LinkedIn, maxHops))
	r.Register(platform.Workday, NewWorkday(deps, creds.Workday))
	r.Register(platform.Taleo, NewTaleo(deps, creds.Taleo))
	r.Register(platform.Generic, NewGeneric(deps))
	return r
}
