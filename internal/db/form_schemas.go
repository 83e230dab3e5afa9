package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-applier/internal/types"
)

// GetFormSchema retrieves the schema stored for url. It returns nil, nil when none is stored.
func (db *DB) GetFormSchema(ctx context.Context, url string) (*types.FormSchema, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT schema FROM form_schemas WHERE url = $1`,
		url,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get form schema for %s: %w", url, err)
	}

	var schema types.FormSchema
	if err := json.Unmarshal(content, &schema); err != nil {
		return nil, fmt.Errorf("failed to decode form schema for %s: %w", url, err)
	}
	return &schema, nil
}

// UpsertFormSchema stores schema for url, replacing any previous entry.
func (db *DB) UpsertFormSchema(ctx context.Context, url string, schema types.FormSchema) error {
	jsonBytes, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to marshal form schema: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO form_schemas (url, schema)
		 VALUES ($1, $2)
		 ON CONFLICT (url) DO UPDATE SET schema = $2, updated_at = NOW()`,
		url, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save form schema for %s: %w", url, err)
	}
	return nil
}
