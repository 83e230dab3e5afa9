package apply

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/job-applier/internal/browser"
	"github.com/jonathan/job-applier/internal/types"
)

// Generic fills every form on an unknown site and never submits.
type Generic struct {
	deps Deps
}

// NewGeneric creates the Generic strategy.
func NewGeneric(deps Deps) *Generic {
	return &Generic{deps: deps.withDefaults()}
}

// FormKey is the cache key of the index-th form on url. The first form uses url itself.
func FormKey(url string, index int) string {
	if index == 0 {
		return url
	}
	return fmt.Sprintf("%s#form-%d", url, index)
}

// Apply implements Strategy. Each form is resolved and filled independently;
// the errors of failed forms are joined and returned after all were attempted.
func (g *Generic) Apply(ctx context.Context, s browser.Session, url string, job types.JobRecord, profile types.ApplicantProfile) error {
	log := g.deps.Logger.With(zap.String("platform", "generic"), zap.String("url", url), zap.String("title", job.Title))

	if err := s.Navigate(ctx, url); err != nil {
		return err
	}

	forms, err := s.OuterHTMLAll(ctx, "form")
	if err != nil {
		return fmt.Errorf("failed to list forms: %w", err)
	}
	if len(forms) == 0 {
		return &MissingControlError{Control: "form", URL: url}
	}

	var errs []error
	for i, html := range forms {
		key := FormKey(url, i)
		err := g.deps.completeFormHTML(ctx, s, html, key, profile, formStep{
			shape:  types.FullFormShape(),
			submit: false,
		})
		if err != nil {
			log.Warn("form not completed", zap.Int("form", i), zap.Error(err))
			errs = append(errs, fmt.Errorf("form %d: %w", i, err))
		}
	}

	log.Info("forms filled without submitting", zap.Int("forms", len(forms)), zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}
