package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
)

const (
	defaultAutoStartBatch   = 100
	defaultAutoStartWorkers = 4
)

type StartDueGamesInput struct {
	Limit      int
	MaxWorkers int
}

type StartDueGamesResult struct {
	Candidates   int
	StartedCount int
	SkippedCount int
	FailedCount  int
}

// StartDueGames moves every scheduled game whose start time has passed to ongoing.
// Each game goes through the same locked mutation path as a host-triggered start.
func (s *GameService) StartDueGames(ctx context.Context, input StartDueGamesInput) (StartDueGamesResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.StartDueGames")
	defer span.End()

	limit := input.Limit
	if limit <= 0 {
		limit = defaultAutoStartBatch
	}

	due, err := s.games.ListDueToStart(ctx, s.now().UTC(), limit)
	if err != nil {
		return StartDueGamesResult{}, fmt.Errorf("%w: list due games: %v", ErrStorageUnavailable, err)
	}
	result := StartDueGamesResult{Candidates: len(due)}
	if len(due) == 0 {
		return result, nil
	}

	workerCount := input.MaxWorkers
	if workerCount <= 0 {
		workerCount = defaultAutoStartWorkers
	}
	if workerCount > len(due) {
		workerCount = len(due)
	}

	var startedCount atomic.Int32
	var skippedCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return StartDueGamesResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, g := range due {
		gameID := g.ID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			started, err := s.StartIfDue(ctx, gameID)
			switch {
			case err != nil:
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "auto start game failed", "game_id", gameID, "error", err)
			case started:
				startedCount.Add(1)
			default:
				skippedCount.Add(1)
			}
		}); err != nil {
			workers.Done()
			return StartDueGamesResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	result.StartedCount = int(startedCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	result.FailedCount = int(failedCount.Load())

	if result.StartedCount > 0 || result.FailedCount > 0 {
		s.logger.InfoContext(ctx, "auto start sweep finished",
			"candidates", result.Candidates,
			"started", result.StartedCount,
			"skipped", result.SkippedCount,
			"failed", result.FailedCount,
		)
	}
	return result, nil
}
