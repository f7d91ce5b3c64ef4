package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/pickup-games/internal/domain/game"
)

// GameLocker serializes mutations of one game. Different games never block each other.
type GameLocker interface {
	Lock(ctx context.Context, gameID string) (unlock func(), err error)
}

// MutationRecorder receives lifecycle outcomes for metrics.
type MutationRecorder interface {
	ObserveTransition(from, to game.Status)
	ObserveRosterOutcome(operation, outcome string)
	ObserveVersionConflict(operation string)
}

// GameStartScheduler arranges a callback that starts a game at its start time.
type GameStartScheduler interface {
	ScheduleStart(ctx context.Context, gameID string, startsAt time.Time) error
}

type noopRecorder struct{}

func (noopRecorder) ObserveTransition(game.Status, game.Status) {}
func (noopRecorder) ObserveRosterOutcome(string, string)        {}
func (noopRecorder) ObserveVersionConflict(string)              {}
