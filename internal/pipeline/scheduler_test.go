package pipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestScheduler_RunNow(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(context.Background(), "@every 1h", func(context.Context) { runs.Add(1) }, zaptest.NewLogger(t))

	require.NoError(t, s.Start(true))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(context.Background(), "every now and then", func(context.Context) {}, nil)
	assert.Error(t, s.Start(false))
}

func TestScheduler_RecoversPanics(t *testing.T) {
	done := make(chan struct{})
	s := NewScheduler(context.Background(), "@every 1h", func(context.Context) {
		defer close(done)
		panic("boom")
	}, zaptest.NewLogger(t))

	require.NoError(t, s.Start(true))
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled run did not start")
	}
}

func TestScheduler_StopWaitsForImmediateRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := NewScheduler(context.Background(), "@every 1h", func(context.Context) {
		close(started)
		<-release
	}, zaptest.NewLogger(t))

	require.NoError(t, s.Start(true))
	<-started

	stopped := s.Stop()
	select {
	case <-stopped.Done():
		t.Fatal("Stop finished before the run did")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	assert.Eventually(t, func() bool { return stopped.Err() != nil }, 2*time.Second, 10*time.Millisecond)
}
