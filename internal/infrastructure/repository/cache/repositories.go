package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
	basecache "github.com/riskibarqy/pickup-games/internal/platform/cache"
)

const profileKeyPrefix = "profile:id:"

func profileKey(userID string) string {
	return profileKeyPrefix + userID
}

// ProfileRepository caches single-profile reads. Searches always hit the next repository.
type ProfileRepository struct {
	next  profile.Repository
	cache *basecache.Store[cachedProfileByID]
}

func NewProfileRepository(next profile.Repository, ttl time.Duration) *ProfileRepository {
	return &ProfileRepository{next: next, cache: basecache.NewStore[cachedProfileByID](ttl)}
}

func (r *ProfileRepository) GetByID(ctx context.Context, userID string) (profile.PlayerProfile, bool, error) {
	cached, err := r.cache.GetOrLoad(ctx, profileKey(userID), func(ctx context.Context) (cachedProfileByID, error) {
		item, exists, err := r.next.GetByID(ctx, userID)
		if err != nil {
			return cachedProfileByID{}, err
		}
		return cachedProfileByID{value: cloneProfile(item), exists: exists}, nil
	})
	if err != nil {
		return profile.PlayerProfile{}, false, err
	}
	return cloneProfile(cached.value), cached.exists, nil
}

func (r *ProfileRepository) ListByIDs(ctx context.Context, userIDs []string) ([]profile.PlayerProfile, error) {
	return r.next.ListByIDs(ctx, userIDs)
}

func (r *ProfileRepository) Upsert(ctx context.Context, p profile.PlayerProfile) error {
	if err := r.next.Upsert(ctx, p); err != nil {
		return err
	}
	r.Invalidate(p.UserID)
	return nil
}

// Invalidate drops cached reads for the given users.
func (r *ProfileRepository) Invalidate(userIDs ...string) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, profileKey(id))
	}
	r.cache.Delete(keys...)
}

func (r *ProfileRepository) Search(ctx context.Context, filter profile.SearchFilter) (profile.SearchPage, error) {
	return r.next.Search(ctx, filter)
}

type cachedProfileByID struct {
	value  profile.PlayerProfile
	exists bool
}

// GameRepository drops cached profiles whose stats a completion just changed.
type GameRepository struct {
	game.Repository
	profiles *ProfileRepository
}

func NewGameRepository(next game.Repository, profiles *ProfileRepository) *GameRepository {
	return &GameRepository{Repository: next, profiles: profiles}
}

func (r *GameRepository) SaveCompletion(ctx context.Context, g game.ScheduledGame, expectedVersion int64, deltas []profile.StatsDelta) error {
	if err := r.Repository.SaveCompletion(ctx, g, expectedVersion, deltas); err != nil {
		return err
	}
	userIDs := make([]string, 0, len(deltas))
	for _, delta := range deltas {
		userIDs = append(userIDs, delta.UserID)
	}
	r.profiles.Invalidate(userIDs...)
	return nil
}

func cloneProfile(p profile.PlayerProfile) profile.PlayerProfile {
	p.SportSkills = append([]profile.SportSkill(nil), p.SportSkills...)
	p.Availability.PreferredDays = append([]string(nil), p.Availability.PreferredDays...)
	p.Availability.PreferredTimes = append([]string(nil), p.Availability.PreferredTimes...)
	return p
}
