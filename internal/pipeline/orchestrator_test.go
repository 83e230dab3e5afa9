package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/job-applier/internal/apply"
	"github.com/jonathan/job-applier/internal/browser"
	"github.com/jonathan/job-applier/internal/browser/browsertest"
	"github.com/jonathan/job-applier/internal/outcome"
	"github.com/jonathan/job-applier/internal/platform"
	"github.com/jonathan/job-applier/internal/types"
)

type applyCall struct {
	url     string
	job     types.JobRecord
	profile types.ApplicantProfile
}

// scriptedStrategy fails or panics for selected URLs and records every call.
type scriptedStrategy struct {
	failures map[string]error
	panics   map[string]bool
	calls    []applyCall
}

func (s *scriptedStrategy) Apply(_ context.Context, _ browser.Session, url string, job types.JobRecord, profile types.ApplicantProfile) error {
	s.calls = append(s.calls, applyCall{url: url, job: job, profile: profile})
	if s.panics[url] {
		panic("nil map write")
	}
	return s.failures[url]
}

type fixedDispatcher struct {
	strategy apply.Strategy
}

func (d fixedDispatcher) For(url string) (platform.Platform, apply.Strategy) {
	return platform.Classify(url), d.strategy
}

type failingLog struct{}

func (failingLog) Append(context.Context, types.Outcome) error { return errors.New("disk full") }

func entry(i int, url string) types.BatchEntry {
	return types.BatchEntry{
		Key: fmt.Sprintf("acme_job_%d", i),
		Artifact: types.JobArtifact{
			JobDetails:     types.JobRecord{Title: fmt.Sprintf("Job %d", i)},
			Company:        "Acme",
			ApplicationURL: url,
			UserProfile:    types.ApplicantProfile{Name: "Ada", Email: "ada@example.com"},
			DocumentPaths:  types.DocumentPaths{CV: fmt.Sprintf("acme_job_%d/cv.pdf", i)},
		},
	}
}

func fiveJobs() types.Batch {
	var batch types.Batch
	for i := 1; i <= 5; i++ {
		batch = append(batch, entry(i, fmt.Sprintf("https://jobs.example.com/%d", i)))
	}
	return batch
}

type harness struct {
	orch     *Orchestrator
	strategy *scriptedStrategy
	log      *outcome.Memory
	metrics  *Metrics
	sleeps   []time.Duration
}

func newHarness(t *testing.T, opts Options) *harness {
	h := &harness{
		strategy: &scriptedStrategy{failures: map[string]error{}, panics: map[string]bool{}},
		log:      &outcome.Memory{},
		metrics:  NewMetrics(prometheus.NewRegistry()),
	}
	opts.Logger = zaptest.NewLogger(t)
	opts.Metrics = h.metrics
	h.orch = New(browsertest.New(nil), fixedDispatcher{h.strategy}, h.log, opts)
	h.orch.sleep = func(_ context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		return nil
	}
	h.orch.now = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }
	return h
}

func TestRunBatch_OneFailureDoesNotAbortBatch(t *testing.T) {
	h := newHarness(t, Options{Cooldown: 10 * time.Second})
	h.strategy.failures["https://jobs.example.com/3"] = &apply.NavigationExhaustedError{Hops: 3}

	summary := h.orch.RunBatch(context.Background(), fiveJobs())

	require.Len(t, summary.Outcomes, 5)
	require.Len(t, h.log.Outcomes, 5)
	for i, o := range h.log.Outcomes {
		if i == 2 {
			assert.Equal(t, types.StatusFailed, o.Status)
			assert.Contains(t, o.Error, "3 redirect hops")
			continue
		}
		assert.Equal(t, types.StatusSuccess, o.Status, o.JobKey)
	}
	assert.Equal(t, 4, summary.Succeeded())
	assert.Equal(t, 1, summary.Failed())
	assert.False(t, summary.Cancelled)
}

func TestRunBatch_PanicIsContained(t *testing.T) {
	h := newHarness(t, Options{})
	h.strategy.panics["https://jobs.example.com/3"] = true

	summary := h.orch.RunBatch(context.Background(), fiveJobs())

	require.Len(t, summary.Outcomes, 5)
	assert.Equal(t, types.StatusFailed, summary.Outcomes[2].Status)
	assert.Contains(t, summary.Outcomes[2].Error, "panicked")
	assert.Len(t, h.strategy.calls, 5)
}

func TestRunBatch_SkipsEntriesWithoutURL(t *testing.T) {
	h := newHarness(t, Options{Cooldown: time.Second})
	batch := types.Batch{entry(1, "https://jobs.example.com/1"), entry(2, ""), entry(3, "https://jobs.example.com/3")}

	summary := h.orch.RunBatch(context.Background(), batch)

	assert.Equal(t, []string{"acme_job_2"}, summary.Skipped)
	assert.Len(t, summary.Outcomes, 2)
	assert.Len(t, h.log.Outcomes, 2)
	assert.Equal(t, []time.Duration{time.Second}, h.sleeps, "cooldown only between attempted applications")
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.Skipped), 0)
}

func TestRunBatch_InvalidEntryFailsWithoutApplying(t *testing.T) {
	h := newHarness(t, Options{Cooldown: time.Second})
	bad := entry(2, "careers.example.com/apply?id=2")
	bad.Invalid = errors.New("invalid batch entry: application_url must be a url")
	batch := types.Batch{entry(1, "https://jobs.example.com/1"), bad, entry(3, "https://jobs.example.com/3")}

	summary := h.orch.RunBatch(context.Background(), batch)

	require.Len(t, summary.Outcomes, 3)
	require.Len(t, h.log.Outcomes, 3)
	o := summary.Outcomes[1]
	assert.Equal(t, "acme_job_2", o.JobKey)
	assert.Equal(t, types.StatusFailed, o.Status)
	assert.Contains(t, o.Error, "application_url")
	assert.Equal(t, "generic", o.Platform)
	assert.Equal(t, types.StatusSuccess, summary.Outcomes[0].Status)
	assert.Equal(t, types.StatusSuccess, summary.Outcomes[2].Status)

	require.Len(t, h.strategy.calls, 2)
	assert.Equal(t, "https://jobs.example.com/3", h.strategy.calls[1].url)
	assert.Equal(t, []time.Duration{time.Second}, h.sleeps)
	assert.Empty(t, summary.Skipped)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.Applications.WithLabelValues("generic", "failed")), 0)
}

func TestRunBatch_CooldownBetweenApplications(t *testing.T) {
	h := newHarness(t, Options{Cooldown: 10 * time.Second})

	h.orch.RunBatch(context.Background(), fiveJobs())
	assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second, 10 * time.Second, 10 * time.Second}, h.sleeps)
}

func TestRunBatch_OutcomeFields(t *testing.T) {
	h := newHarness(t, Options{ArtifactsDir: "/artifacts"})
	batch := types.Batch{entry(1, "https://acme.workday.com/job/1")}

	summary := h.orch.RunBatch(context.Background(), batch)

	require.Len(t, summary.Outcomes, 1)
	o := summary.Outcomes[0]
	assert.Equal(t, summary.RunID, o.RunID)
	assert.Equal(t, "acme_job_1", o.JobKey)
	assert.Equal(t, "Acme", o.Company)
	assert.Equal(t, "Job 1", o.Title)
	assert.Equal(t, "workday", o.Platform)
	assert.Equal(t, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), o.Timestamp)

	require.Len(t, h.strategy.calls, 1)
	call := h.strategy.calls[0]
	assert.Equal(t, "Acme", call.job.Company)
	assert.Equal(t, "/artifacts/acme_job_1/cv.pdf", call.profile.ResumePath)
	assert.Empty(t, batch[0].Artifact.UserProfile.ResumePath, "shared bundle must not change")
	assert.Empty(t, batch[0].Artifact.JobDetails.Company)

	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.Applications.WithLabelValues("workday", "success")), 0)
}

func TestRunBatch_OutcomeLogFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, Options{})
	h.orch.outcomes = failingLog{}

	summary := h.orch.RunBatch(context.Background(), fiveJobs())
	assert.Len(t, summary.Outcomes, 5)
	assert.Len(t, h.strategy.calls, 5)
}

func TestRunBatch_CancelledDuringCooldown(t *testing.T) {
	h := newHarness(t, Options{Cooldown: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	h.orch.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	summary := h.orch.RunBatch(ctx, fiveJobs())

	assert.True(t, summary.Cancelled)
	assert.Len(t, summary.Outcomes, 1)
	assert.Len(t, h.strategy.calls, 1)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
