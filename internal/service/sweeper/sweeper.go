// Package sweeper periodically removes expired refresh tokens
//
// Expired tokens are removed lazily when presented as well,
// the sweeper takes care of ones never presented again
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/backoffice/internal/logger"
	"github.com/nkiryanov/backoffice/internal/repository"
)

const (
	DefaultInterval  = time.Hour
	defaultBatchSize = 1000
)

// Counts removed tokens, e.g. *metrics.Metrics
type SweepRecorder interface {
	TokensSwept(n int64)
}

type Config struct {
	// How often to sweep. Zero disables sweeping
	Interval time.Duration

	// Tokens removed per query
	BatchSize int

	Logger   logger.Logger
	Recorder SweepRecorder

	// Current time source, time.Now if not set
	Clock func() time.Time
}

type Sweeper struct {
	interval  time.Duration
	batchSize int
	repo      repository.RefreshTokenRepo
	logger    logger.Logger
	recorder  SweepRecorder
	clock     func() time.Time
}

func New(cfg Config, repo repository.RefreshTokenRepo) (*Sweeper, error) {
	if repo == nil {
		return nil, errors.New("refresh token repo must not be nil")
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("interval must not be negative, got %s", cfg.Interval)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Sweeper{
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		repo:      repo,
		logger:    cfg.Logger.WithGroup("sweeper"),
		recorder:  cfg.Recorder,
		clock:     cfg.Clock,
	}, nil
}

// Run sweeps on every tick until context cancelled
// Returns immediately if sweeping disabled. Sweep errors are logged and not returned
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval == 0 {
		s.logger.Info("Sweeper disabled")
		return nil
	}

	s.logger.Debug("Starting sweeper", "interval", s.interval, "batch_size", s.batchSize)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Sweeper stopped by context")
			return nil

		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil && ctx.Err() == nil {
				s.logger.Error("Failed to sweep expired tokens", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("Expired tokens swept", "count", n)
			}
		}
	}
}

// Sweep removes all tokens expired by now in batches
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	now := s.clock()

	var total int64
	for {
		n, err := s.repo.DeleteExpired(ctx, now, s.batchSize)
		if err != nil {
			return total, fmt.Errorf("can't delete expired tokens. Err: %w", err)
		}

		total += n
		if s.recorder != nil && n > 0 {
			s.recorder.TokensSwept(n)
		}

		if n < int64(s.batchSize) {
			return total, nil
		}
	}
}
