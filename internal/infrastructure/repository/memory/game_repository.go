package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
)

type GameRepository struct {
	mu         sync.RWMutex
	items      map[string]game.ScheduledGame
	shareCodes map[string]string
	profiles   *ProfileRepository
}

// NewGameRepository shares profiles so completed games can write stats back.
func NewGameRepository(profiles *ProfileRepository, games []game.ScheduledGame) *GameRepository {
	items := make(map[string]game.ScheduledGame, len(games))
	shareCodes := make(map[string]string, len(games))
	for _, g := range games {
		items[g.ID] = g.Clone()
		shareCodes[g.ShareCode] = g.ID
	}

	return &GameRepository{
		items:      items,
		shareCodes: shareCodes,
		profiles:   profiles,
	}
}

func (r *GameRepository) GetByID(_ context.Context, gameID string) (game.ScheduledGame, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.items[gameID]
	if !ok {
		return game.ScheduledGame{}, false, nil
	}

	return g.Clone(), true, nil
}

func (r *GameRepository) GetByShareCode(_ context.Context, shareCode string) (game.ScheduledGame, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.shareCodes[shareCode]
	if !ok {
		return game.ScheduledGame{}, false, nil
	}

	return r.items[id].Clone(), true, nil
}

func (r *GameRepository) Create(_ context.Context, g game.ScheduledGame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[g.ID]; exists {
		return fmt.Errorf("game %s already exists", g.ID)
	}
	if _, exists := r.shareCodes[g.ShareCode]; exists {
		return game.ErrShareCodeTaken
	}

	r.items[g.ID] = g.Clone()
	r.shareCodes[g.ShareCode] = g.ID
	return nil
}

func (r *GameRepository) Save(_ context.Context, g game.ScheduledGame, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveLocked(g, expectedVersion)
}

func (r *GameRepository) SaveCompletion(_ context.Context, g game.ScheduledGame, expectedVersion int64, deltas []profile.StatsDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.saveLocked(g, expectedVersion); err != nil {
		return err
	}
	if r.profiles != nil {
		r.profiles.applyStats(deltas)
	}
	return nil
}

func (r *GameRepository) saveLocked(g game.ScheduledGame, expectedVersion int64) error {
	stored, ok := r.items[g.ID]
	if !ok {
		return fmt.Errorf("game %s does not exist", g.ID)
	}
	if stored.Version != expectedVersion {
		return fmt.Errorf("%w: game %s at version %d, expected %d", game.ErrVersionConflict, g.ID, stored.Version, expectedVersion)
	}

	next := g.Clone()
	next.Version = expectedVersion + 1
	next.ShareCode = stored.ShareCode
	r.items[g.ID] = next
	return nil
}

func (r *GameRepository) ListDiscoverable(_ context.Context, filter game.DiscoveryFilter) ([]game.ScheduledGame, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sport := profile.NormalizeSport(filter.Sport)
	out := make([]game.ScheduledGame, 0)
	for _, g := range r.items {
		if !g.IsPublic || g.Status != game.StatusScheduled {
			continue
		}
		if sport != "" && g.Sport != sport {
			continue
		}
		if filter.City != "" && !containsFold(g.Location.City, filter.City) {
			continue
		}
		if filter.StartsFrom != nil && g.Schedule.StartsAt.Before(*filter.StartsFrom) {
			continue
		}
		if filter.StartsTo != nil && g.Schedule.StartsAt.After(*filter.StartsTo) {
			continue
		}
		if filter.After.Covers(g) {
			continue
		}
		out = append(out, g.Clone())
	}

	sortByStart(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *GameRepository) ListDueToStart(_ context.Context, now time.Time, limit int) ([]game.ScheduledGame, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.ScheduledGame, 0)
	for _, g := range r.items {
		if g.Status == game.StatusScheduled && !g.Schedule.StartsAt.After(now) {
			out = append(out, g.Clone())
		}
	}

	sortByStart(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortByStart(games []game.ScheduledGame) {
	sort.Slice(games, func(i, j int) bool {
		if !games[i].Schedule.StartsAt.Equal(games[j].Schedule.StartsAt) {
			return games[i].Schedule.StartsAt.Before(games[j].Schedule.StartsAt)
		}
		return games[i].ID < games[j].ID
	})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
