package formcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-applier/internal/types"
)

func sampleSchema() types.FormSchema {
	return types.FormSchema{
		Fields:   map[string]string{"email": "#email", "cv": "input[type=file]", "cover_letter": ""},
		Required: []string{"email", "cv"},
	}
}

// exerciseCache runs the contract every backend must satisfy.
func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	got, ok, err := c.Get(ctx, "https://a.example.com/apply")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	schema := sampleSchema()
	require.NoError(t, c.Put(ctx, "https://a.example.com/apply", schema))

	got, ok, err = c.Get(ctx, "https://a.example.com/apply")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, schema, *got)

	// last write wins
	replacement := types.FormSchema{Fields: map[string]string{"email": "input[name=mail]"}, Required: []string{}}
	require.NoError(t, c.Put(ctx, "https://a.example.com/apply", replacement))
	got, ok, err = c.Get(ctx, "https://a.example.com/apply")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, replacement, *got)

	// other keys are untouched
	_, ok, err = c.Get(ctx, "https://b.example.com/apply")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory(t *testing.T) {
	exerciseCache(t, NewMemory())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	schema := sampleSchema()
	require.NoError(t, m.Put(ctx, "u", schema))

	schema.Fields["email"] = "mutated"
	got, _, err := m.Get(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "#email", got.Fields["email"])

	got.Fields["email"] = "mutated again"
	again, _, err := m.Get(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "#email", again.Fields["email"])
	assert.Equal(t, 1, m.Len())
}
