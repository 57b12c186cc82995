package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/ziptalk-calculator/internal/config"
	"github.com/Dan9191/ziptalk-calculator/internal/metrics"
)

const (
	JobSync  = "sync_apartments"
	JobPurge = "purge_scores"

	jobTimeout = 5 * time.Minute
)

// Jobs are the service operations run on a schedule
type Jobs interface {
	SyncApartments(ctx context.Context) (int, error)
	PurgeScores(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Scheduler runs background jobs on cron schedules
type Scheduler struct {
	cron *cron.Cron
	jobs Jobs
	log  *logrus.Logger
	cfg  *config.Config
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct {
	log *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []any) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}

// New registers the configured jobs. The feed sync is only scheduled when
// the feed is configured; score purging is skipped when retention is zero.
func New(jobs Jobs, cfg *config.Config, log *logrus.Logger) (*Scheduler, error) {
	logger := cronLogger{log: log}
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		jobs: jobs,
		log:  log,
		cfg:  cfg,
	}

	if cfg.FeedEnabled() {
		if _, err := s.cron.AddFunc(cfg.SyncCron, s.runSync); err != nil {
			return nil, fmt.Errorf("invalid SYNC_CRON %q: %w", cfg.SyncCron, err)
		}
	}
	if cfg.ScoreRetentionDays > 0 {
		if _, err := s.cron.AddFunc(cfg.PurgeCron, s.runPurge); err != nil {
			return nil, fmt.Errorf("invalid PURGE_CRON %q: %w", cfg.PurgeCron, err)
		}
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Infof("Scheduler started with %d jobs", len(s.cron.Entries()))
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stopped before running jobs finished")
	}
}

func (s *Scheduler) runSync() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.jobs.SyncApartments(ctx)
	if err != nil {
		metrics.JobRuns.WithLabelValues(JobSync, "failure").Inc()
		s.log.WithError(err).Error("Apartment sync failed")
		return
	}
	metrics.JobRuns.WithLabelValues(JobSync, "success").Inc()
	s.log.WithField("apartments", n).Info("Apartment sync finished")
}

func (s *Scheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	retention := time.Duration(s.cfg.ScoreRetentionDays) * 24 * time.Hour
	n, err := s.jobs.PurgeScores(ctx, retention)
	if err != nil {
		metrics.JobRuns.WithLabelValues(JobPurge, "failure").Inc()
		s.log.WithError(err).Error("Score purge failed")
		return
	}
	metrics.JobRuns.WithLabelValues(JobPurge, "success").Inc()
	s.log.WithField("deleted", n).Info("Score purge finished")
}
