// Package outcome records the result of every attempted application.
package outcome

import (
	"context"
	"errors"

	"github.com/jonathan/job-applier/internal/types"
)

// Log is an append-only outcome sink.
type Log interface {
	Append(ctx context.Context, o types.Outcome) error
}

// Multi appends to every log in order. Every log is attempted; errors are joined.
type Multi []Log

// Append implements Log.
func (m Multi) Append(ctx context.Context, o types.Outcome) error {
	var errs []error
	for _, l := range m {
		if err := l.Append(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Store is the persistence Postgres needs; *db.DB implements it.
type Store interface {
	InsertOutcome(ctx context.Context, o types.Outcome) error
}

// Postgres appends outcomes to the application_outcomes table.
type Postgres struct {
	store Store
}

// NewPostgres wraps store.
func NewPostgres(store Store) *Postgres {
	return &Postgres{store: store}
}

// Append implements Log.
func (p *Postgres) Append(ctx context.Context, o types.Outcome) error {
	return p.store.InsertOutcome(ctx, o)
}

// Memory keeps outcomes in memory, for tests and dry runs.
type Memory struct {
	Outcomes []types.Outcome
}

// Append implements Log.
func (m *Memory) Append(_ context.Context, o types.Outcome) error {
	m.Outcomes = append(m.Outcomes, o)
	return nil
}
