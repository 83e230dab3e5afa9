package formcache

import (
	"context"

	"github.com/jonathan/job-applier/internal/types"
)

// SchemaStore is the persistence Postgres needs; *db.DB implements it.
type SchemaStore interface {
	GetFormSchema(ctx context.Context, url string) (*types.FormSchema, error)
	UpsertFormSchema(ctx context.Context, url string, schema types.FormSchema) error
}

// Postgres is a Cache backed by the form_schemas table.
type Postgres struct {
	store SchemaStore
}

// NewPostgres wraps store.
func NewPostgres(store SchemaStore) *Postgres {
	return &Postgres{store: store}
}

// Get implements Cache.
func (p *Postgres) Get(ctx context.Context, url string) (*types.FormSchema, bool, error) {
	schema, err := p.store.GetFormSchema(ctx, url)
	if err != nil {
		return nil, false, err
	}
	if schema == nil {
		return nil, false, nil
	}
	return schema, true, nil
}

// Put implements Cache.
func (p *Postgres) Put(ctx context.Context, url string, schema types.FormSchema) error {
	return p.store.UpsertFormSchema(ctx, url, schema)
}
