package syncbridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dwoolworth/bizdesk"
)

// DefaultInterval is used when Config.Interval is unset.
const DefaultInterval = 5 * time.Minute

// ErrSyncInFlight is returned by Run when a previous sync has not finished.
var ErrSyncInFlight = errors.New("bizdesk: sync already in progress")

// Config controls where and how often collections are mirrored.
type Config struct {
	Dir      string
	Interval time.Duration
	// Collections limits the mirror to the named collections. Empty means
	// every registered collection.
	Collections []string
}

// Scheduler periodically snapshots the persisted collections of a DB and
// mirrors them to Config.Dir. Overlapping runs are dropped, not queued.
type Scheduler struct {
	db     *bizdesk.DB
	cfg    Config
	logger *zap.Logger
	cron   *cron.Cron

	running sync.Mutex
	runs    atomic.Int64
	skipped atomic.Int64
}

// NewScheduler builds a scheduler for db. It does not start ticking until
// Start is called.
func NewScheduler(db *bizdesk.DB, cfg Config, logger *zap.Logger) (*Scheduler, error) {
	if db == nil {
		return nil, errors.New("bizdesk: sync scheduler needs a DB")
	}
	if cfg.Dir == "" {
		return nil, errors.New("bizdesk: sync directory is not configured")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Interval < time.Second {
		cfg.Interval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scheduler{
		db:     db,
		cfg:    cfg,
		logger: logger,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLogger{logger.Sugar()}),
		),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("bizdesk: schedule sync: %w", err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Interval)
	defer cancel()
	if err := s.Run(ctx); err != nil && !errors.Is(err, ErrSyncInFlight) {
		s.logger.Error("sync failed", zap.String("dir", s.cfg.Dir), zap.Error(err))
	}
}

// Run performs one sync synchronously. It returns ErrSyncInFlight without
// touching the directory when another run is still in progress.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.running.TryLock() {
		s.skipped.Add(1)
		s.logger.Info("sync skipped, previous run still in progress", zap.String("dir", s.cfg.Dir))
		return ErrSyncInFlight
	}
	defer s.running.Unlock()

	blobs, err := s.db.Blobs(ctx, s.cfg.Collections...)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := Mirror(s.cfg.Dir, blobs); err != nil {
		return err
	}
	s.runs.Add(1)
	s.logger.Info("sync completed",
		zap.String("dir", s.cfg.Dir),
		zap.Int("collections", len(blobs)))
	return nil
}

// Start launches the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("sync scheduler started",
		zap.String("dir", s.cfg.Dir),
		zap.Duration("interval", s.cfg.Interval))
}

// Stop halts future ticks and waits for a running sync to finish or for ctx
// to be done, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("sync scheduler stopped")
}

// Interval returns the effective tick interval.
func (s *Scheduler) Interval() time.Duration { return s.cfg.Interval }

// Runs returns the number of completed syncs.
func (s *Scheduler) Runs() int64 { return s.runs.Load() }

// Skipped returns the number of runs dropped because one was in flight.
func (s *Scheduler) Skipped() int64 { return s.skipped.Load() }

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
