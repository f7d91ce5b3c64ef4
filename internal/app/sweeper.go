package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/riskibarqy/pickup-games/internal/platform/logging"
	"github.com/riskibarqy/pickup-games/internal/usecase"
)

const sweepTimeout = 2 * time.Minute

type dueGameStarter interface {
	StartDueGames(ctx context.Context, input usecase.StartDueGamesInput) (usecase.StartDueGamesResult, error)
}

type autoStartObserver interface {
	ObserveAutoStart(started, skipped, failed int)
}

// Sweeper periodically starts scheduled games whose start time has passed.
// It complements delayed QStash callbacks, which can be lost or late.
type Sweeper struct {
	cron     *cron.Cron
	starter  dueGameStarter
	observer autoStartObserver
	logger   *logging.Logger
	input    usecase.StartDueGamesInput
}

func NewSweeper(schedule string, starter dueGameStarter, observer autoStartObserver, input usecase.StartDueGamesInput, logger *logging.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = logging.Default()
	}

	cl := cronLogger{logger: logger}
	s := &Sweeper{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		starter:  starter,
		observer: observer,
		logger:   logger,
		input:    input,
	}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("register auto-start schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *Sweeper) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	result, err := s.starter.StartDueGames(ctx, s.input)
	if err != nil {
		s.logger.ErrorContext(ctx, "auto-start sweep failed", "error", err)
		return
	}
	if s.observer != nil {
		s.observer.ObserveAutoStart(result.StartedCount, result.SkippedCount, result.FailedCount)
	}
	if result.Candidates > 0 {
		s.logger.InfoContext(ctx, "auto-start sweep finished",
			"candidates", result.Candidates,
			"started", result.StartedCount,
			"skipped", result.SkippedCount,
			"failed", result.FailedCount,
		)
	}
}

type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
