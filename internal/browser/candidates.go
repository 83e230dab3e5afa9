package browser

import (
	"context"
	"time"
)

// FirstClickable tries candidates in order and returns the first one that
// becomes clickable within timeout. ok is false when none did.
func FirstClickable(ctx context.Context, s Session, candidates []string, timeout time.Duration) (selector string, ok bool) {
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return "", false
		}
		if s.WaitClickable(ctx, candidate, timeout) {
			return candidate, true
		}
	}
	return "", false
}

// FirstPresent tries candidates in order and returns the first one present
// in the document within timeout.
func FirstPresent(ctx context.Context, s Session, candidates []string, timeout time.Duration) (selector string, ok bool) {
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return "", false
		}
		if s.WaitPresent(ctx, candidate, timeout) {
			return candidate, true
		}
	}
	return "", false
}

// ClickFirst clicks the first clickable candidate. It returns the selector
// clicked, or ok=false when no candidate was clickable; a click that fails
// after the element was found is returned as err.
func ClickFirst(ctx context.Context, s Session, candidates []string, timeout time.Duration) (selector string, ok bool, err error) {
	selector, ok = FirstClickable(ctx, s, candidates, timeout)
	if !ok {
		return "", false, nil
	}
	if err := s.Click(ctx, selector); err != nil {
		return selector, true, err
	}
	return selector, true, nil
}
