package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler re-runs a batch on a cron spec. Runs never overlap: a tick that
// fires while the previous run is still going is skipped, so the browser
// session stays single-user.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	job    cron.Job
	logger *zap.Logger
	wg     sync.WaitGroup // immediate runs started by Start
}

// NewScheduler creates a scheduler for spec (e.g. "@every 6h" or "0 9 * * 1-5").
func NewScheduler(ctx context.Context, spec string, run func(ctx context.Context), logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger.Sugar()}
	job := cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() {
		run(ctx)
	}))
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl)),
		spec:   spec,
		job:    job,
		logger: logger,
	}
}

// Start registers the job and starts the scheduler. When runNow is set one
// run starts immediately without waiting for the first tick.
func (s *Scheduler) Start(runNow bool) error {
	if _, err := s.cron.AddJob(s.spec, s.job); err != nil {
		return fmt.Errorf("cron.AddJob: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	if runNow {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.job.Run()
		}()
	}
	return nil
}

// Stop stops the scheduler and returns a context that is done once every run in flight finishes.
func (s *Scheduler) Stop() context.Context {
	cronDone := s.cron.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		cancel()
		s.logger.Info("scheduler stopped")
	}()
	return ctx
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
