// Package pipeline runs batches of applications through one browser session
// and schedules repeated runs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/job-applier/internal/apply"
	"github.com/jonathan/job-applier/internal/browser"
	"github.com/jonathan/job-applier/internal/ingestion"
	"github.com/jonathan/job-applier/internal/outcome"
	"github.com/jonathan/job-applier/internal/platform"
	"github.com/jonathan/job-applier/internal/types"
)

// DefaultCooldown is the pause between consecutive applications.
const DefaultCooldown = 10 * time.Second

// Dispatcher picks the strategy for an application URL; *apply.Registry implements it.
type Dispatcher interface {
	For(url string) (platform.Platform, apply.Strategy)
}

// Options configures an Orchestrator.
type Options struct {
	Cooldown     time.Duration
	ArtifactsDir string // base for relative document paths
	Logger       *zap.Logger
	Metrics      *Metrics
}

// Summary is the result of one batch run.
type Summary struct {
	RunID     uuid.UUID
	Outcomes  []types.Outcome
	Skipped   []string // keys of entries without an application URL
	Cancelled bool
}

// Succeeded counts successful outcomes.
func (s Summary) Succeeded() int {
	return s.count(types.StatusSuccess)
}

// Failed counts failed outcomes.
func (s Summary) Failed() int {
	return s.count(types.StatusFailed)
}

func (s Summary) count(status types.Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Orchestrator runs batches serially through one browser session.
type Orchestrator struct {
	session      browser.Session
	dispatcher   Dispatcher
	outcomes     outcome.Log
	logger       *zap.Logger
	metrics      *Metrics
	cooldown     time.Duration
	artifactsDir string

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New creates an Orchestrator. The session is used by one strategy at a time.
func New(session browser.Session, dispatcher Dispatcher, outcomes outcome.Log, opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.Cooldown < 0 {
		opts.Cooldown = 0
	}
	return &Orchestrator{
		session:      session,
		dispatcher:   dispatcher,
		outcomes:     outcomes,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		cooldown:     opts.Cooldown,
		artifactsDir: opts.ArtifactsDir,
		sleep:        sleepContext,
		now:          time.Now,
	}
}

// RunBatch applies to every entry in order. Entries without an application
// URL are skipped with a warning and get no outcome. Every attempted entry
// gets exactly one outcome; a failing or panicking strategy only fails its own
// entry. RunBatch stops early only when ctx is cancelled.
func (o *Orchestrator) RunBatch(ctx context.Context, batch types.Batch) Summary {
	summary := Summary{RunID: uuid.New()}
	log := o.logger.With(zap.String("run_id", summary.RunID.String()))
	log.Info("batch started", zap.Int("entries", len(batch)))

	attempted := 0
	for _, entry := range batch {
		if entry.Invalid != nil {
			if ctx.Err() != nil {
				summary.Cancelled = true
				break
			}
			log.Warn("invalid batch entry, not applying", zap.String("job_key", entry.Key), zap.Error(entry.Invalid))
			o.record(ctx, &summary, o.invalidOutcome(summary.RunID, entry))
			continue
		}

		url := entry.Artifact.URL()
		if url == "" {
			log.Warn("no application url, skipping", zap.String("job_key", entry.Key))
			o.metrics.Skipped.Inc()
			summary.Skipped = append(summary.Skipped, entry.Key)
			continue
		}

		if attempted > 0 && o.cooldown > 0 {
			if err := o.sleep(ctx, o.cooldown); err != nil {
				summary.Cancelled = true
				break
			}
		}
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}
		attempted++

		o.record(ctx, &summary, o.runOne(ctx, summary.RunID, entry))
	}

	if summary.Cancelled {
		log.Warn("batch cancelled", zap.Int("attempted", attempted))
	}
	log.Info("batch finished",
		zap.Int("succeeded", summary.Succeeded()),
		zap.Int("failed", summary.Failed()),
		zap.Int("skipped", len(summary.Skipped)),
	)
	return summary
}

// record appends result to the outcome log and the summary.
func (o *Orchestrator) record(ctx context.Context, summary *Summary, result types.Outcome) {
	if err := o.outcomes.Append(ctx, result); err != nil {
		o.logger.Error("failed to record outcome",
			zap.String("run_id", summary.RunID.String()),
			zap.String("job_key", result.JobKey),
			zap.Error(err))
	}
	summary.Outcomes = append(summary.Outcomes, result)
}

// invalidOutcome is the failed outcome of an entry that never reached a strategy.
func (o *Orchestrator) invalidOutcome(runID uuid.UUID, entry types.BatchEntry) types.Outcome {
	artifact := entry.Artifact
	company, title := artifact.CompanyName(), artifact.JobDetails.Title
	key := entry.Key
	if company != "" && title != "" {
		key = types.JobKey(company, title)
	}
	url := artifact.URL()
	result := types.Outcome{
		RunID:     runID,
		JobKey:    key,
		Company:   company,
		Title:     title,
		URL:       url,
		Platform:  platform.Classify(url).String(),
		Status:    types.StatusFailed,
		Error:     entry.Invalid.Error(),
		Timestamp: o.now(),
	}
	o.metrics.Applications.WithLabelValues(result.Platform, string(result.Status)).Inc()
	return result
}

// runOne applies to a single entry and returns its outcome.
func (o *Orchestrator) runOne(ctx context.Context, runID uuid.UUID, entry types.BatchEntry) types.Outcome {
	artifact := entry.Artifact
	url := artifact.URL()
	job := artifact.JobDetails
	if job.Company == "" {
		job.Company = artifact.CompanyName()
	}
	profile := ingestion.ApplicantFor(artifact, o.artifactsDir)

	p, strategy := o.dispatcher.For(url)
	result := types.Outcome{
		RunID:    runID,
		JobKey:   types.JobKey(job.Company, job.Title),
		Company:  job.Company,
		Title:    job.Title,
		URL:      url,
		Platform: p.String(),
	}
	log := o.logger.With(
		zap.String("job_key", result.JobKey),
		zap.String("platform", result.Platform),
		zap.String("url", url),
	)
	log.Info("applying")

	start := o.now()
	err := safeApply(ctx, strategy, o.session, url, job, profile)
	o.metrics.Duration.WithLabelValues(result.Platform).Observe(o.now().Sub(start).Seconds())

	result.Timestamp = o.now()
	if err != nil {
		result.Status = types.StatusFailed
		result.Error = err.Error()
		log.Error("application failed", zap.Error(err))
	} else {
		result.Status = types.StatusSuccess
		log.Info("application succeeded")
	}
	o.metrics.Applications.WithLabelValues(result.Platform, string(result.Status)).Inc()
	return result
}

// safeApply converts a strategy panic into an error.
func safeApply(ctx context.Context, s apply.Strategy, session browser.Session, url string, job types.JobRecord, profile types.ApplicantProfile) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy panicked: %v", r)
		}
	}()
	return s.Apply(ctx, session, url, job, profile)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
