package jobs

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ResetTokenPurger clears expired password reset tokens.
type ResetTokenPurger interface {
	PurgeExpiredResetTokens(ctx context.Context) (int64, error)
}

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

func NewScheduler(log *zap.Logger) *Scheduler {
	clog := cronLogger{log: log.Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(clog), cron.WithChain(cron.Recover(clog))),
		log:  log,
	}
}

// cronLogger routes the scheduler's own messages, recovered job panics
// included, through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}

// AddResetTokenPurge registers the purge job on spec (standard five-field
// cron syntax or a descriptor such as "@hourly").
func (s *Scheduler) AddResetTokenPurge(spec string, purger ResetTokenPurger) error {
	_, err := s.cron.AddFunc(spec, func() { PurgeResetTokens(s.log, purger) })
	return errors.Wrapf(err, "schedule reset token purge %q", spec)
}

func PurgeResetTokens(log *zap.Logger, purger ResetTokenPurger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := purger.PurgeExpiredResetTokens(ctx)
	if err != nil {
		log.Error("reset token purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("expired reset tokens purged", zap.Int64("count", n))
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for a running job to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }
