package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"marketplace/internal/bootstrap"
	"marketplace/internal/infra"
	"marketplace/internal/jobs"
)

// The worker sweeps jobs that stopped reporting and fails them, which refunds
// their reserved credits.
func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to initialise services")
	}
	defer svc.Close()

	cl := cronLogger{logger: logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)))
	_, err = c.AddJob(cfg.ReaperSchedule, &reaper{
		ctx:     ctx,
		jobs:    svc.Jobs,
		after:   cfg.JobStaleAfter,
		batch:   cfg.ReaperBatch,
		timeout: cfg.StoreTimeout * 4,
		logger:  logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.ReaperSchedule).Msg("worker: invalid schedule")
	}

	c.Start()
	logger.Info().Str("schedule", cfg.ReaperSchedule).Dur("stale_after", cfg.JobStaleAfter).Msg("worker: started")

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info().Msg("worker: stopped")
}

type reaper struct {
	ctx     context.Context
	jobs    *jobs.Manager
	after   time.Duration
	batch   int
	timeout time.Duration
	logger  infra.Logger
}

func (r *reaper) Run() {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()
	n, err := r.jobs.ExpireStale(ctx, r.after, r.batch)
	if err != nil {
		r.logger.Error().Err(err).Int("expired", n).Msg("worker: sweep failed")
		return
	}
	if n > 0 {
		r.logger.Info().Int("expired", n).Msg("worker: expired stale jobs")
	}
}

// cronLogger routes scheduler messages through zerolog. Routine scheduling
// chatter goes to debug.
type cronLogger struct {
	logger infra.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
