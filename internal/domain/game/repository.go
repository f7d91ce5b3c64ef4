package game

import (
	"context"
	"time"

	"github.com/riskibarqy/pickup-games/internal/domain/profile"
)

// DiscoveryFilter narrows the public scheduled games considered for discovery.
type DiscoveryFilter struct {
	Sport      string
	City       string
	StartsFrom *time.Time
	StartsTo   *time.Time
	// After resumes a listing strictly past this game in (StartsAt, ID) order.
	After *DiscoveryCursor
	Limit int
}

type DiscoveryCursor struct {
	StartsAt time.Time
	ID       string
}

// CursorOf returns the position right after g in discovery order.
func CursorOf(g ScheduledGame) *DiscoveryCursor {
	return &DiscoveryCursor{StartsAt: g.Schedule.StartsAt, ID: g.ID}
}

// Covers reports whether g sorts at or before the cursor, i.e. was already listed.
func (c *DiscoveryCursor) Covers(g ScheduledGame) bool {
	if c == nil {
		return false
	}
	if !g.Schedule.StartsAt.Equal(c.StartsAt) {
		return g.Schedule.StartsAt.Before(c.StartsAt)
	}
	return g.ID <= c.ID
}

type Repository interface {
	GetByID(ctx context.Context, gameID string) (ScheduledGame, bool, error)
	GetByShareCode(ctx context.Context, shareCode string) (ScheduledGame, bool, error)
	Create(ctx context.Context, g ScheduledGame) error
	// Save persists g only if the stored version equals expectedVersion, else ErrVersionConflict.
	Save(ctx context.Context, g ScheduledGame, expectedVersion int64) error
	// SaveCompletion is Save plus the stats write-back, committed together.
	SaveCompletion(ctx context.Context, g ScheduledGame, expectedVersion int64, deltas []profile.StatsDelta) error
	ListDiscoverable(ctx context.Context, filter DiscoveryFilter) ([]ScheduledGame, error)
	ListDueToStart(ctx context.Context, now time.Time, limit int) ([]ScheduledGame, error)
}
