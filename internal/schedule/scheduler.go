package schedule

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Job is a unit of background work fired on a cron spec.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler fires registered jobs on standard five-field cron specs.
// A fire that lands while the previous run of the same job is still in
// flight is skipped, not queued.
type Scheduler struct {
	cron *cron.Cron
	base context.Context
}

func New() *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &Scheduler{
		cron: cron.New(cron.WithParser(parser)),
		base: context.Background(),
	}
}

func (s *Scheduler) Register(spec string, j Job) error {
	if _, err := s.cron.AddFunc(spec, s.guard(j)); err != nil {
		return fmt.Errorf("register job %s on %q: %w", j.Name(), spec, err)
	}
	logutil.GetLogger(s.base).Info("job registered",
		zap.String("job", j.Name()), zap.String("cron", spec))
	return nil
}

func (s *Scheduler) Start(ctx context.Context) {
	if ctx != nil {
		s.base = ctx
	}
	s.cron.Start()
}

// Stop halts the cron loop and waits for in-flight jobs to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) guard(j Job) func() {
	var running atomic.Bool
	return func() {
		logger := logutil.GetLogger(s.base).With(zap.String("job", j.Name()))
		if !running.CompareAndSwap(false, true) {
			logger.Info("previous run still in flight, skipping fire")
			return
		}
		defer running.Store(false)

		start := time.Now()
		if err := j.Run(s.base); err != nil {
			logger.Error("job failed", zap.Error(err), zap.Duration("cost", time.Since(start)))
			return
		}
		logger.Info("job done", zap.Duration("cost", time.Since(start)))
	}
}
