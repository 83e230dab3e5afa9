package outcome

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-applier/internal/types"
)

func sample(title string, status types.Status) types.Outcome {
	return types.Outcome{
		JobKey:    types.JobKey("Acme, Inc", title),
		Company:   "Acme, Inc",
		Title:     title,
		URL:       "https://acme.example.com/jobs/1",
		Status:    status,
		Timestamp: time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC),
	}
}

func TestCSV_AppendsRowsWithSingleHeader(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "logs", "applications_log.csv")
	log := NewCSV(path)

	require.NoError(t, log.Append(ctx, sample("Engineer", types.StatusSuccess)))
	require.NoError(t, NewCSV(path).Append(ctx, sample("Manager", types.StatusFailed)))

	rows, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Engineer", "Acme, Inc", "https://acme.example.com/jobs/1", "success", "2026-10-18"},
		{"Manager", "Acme, Inc", "https://acme.example.com/jobs/1", "failed", "2026-10-18"},
	}, rows)
}

func TestReadCSV_Missing(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

type fakeStore struct {
	got []types.Outcome
	err error
}

func (f *fakeStore) InsertOutcome(_ context.Context, o types.Outcome) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, o)
	return nil
}

func TestPostgres_Append(t *testing.T) {
	store := &fakeStore{}
	require.NoError(t, NewPostgres(store).Append(context.Background(), sample("Engineer", types.StatusSuccess)))
	require.Len(t, store.got, 1)
	assert.Equal(t, "acme,_inc_engineer", store.got[0].JobKey)
}

func TestMulti_AttemptsEveryLog(t *testing.T) {
	boom := errors.New("db down")
	failing := NewPostgres(&fakeStore{err: boom})
	mem := &Memory{}

	err := Multi{failing, mem}.Append(context.Background(), sample("Engineer", types.StatusFailed))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, mem.Outcomes, 1)

	assert.NoError(t, Multi{}.Append(context.Background(), sample("x", types.StatusSuccess)))
}
