package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/pickup-games/internal/domain/profile"
)

type ProfileRepository struct {
	mu    sync.RWMutex
	items map[string]profile.PlayerProfile
}

func NewProfileRepository(profiles []profile.PlayerProfile) *ProfileRepository {
	items := make(map[string]profile.PlayerProfile, len(profiles))
	for _, p := range profiles {
		items[p.UserID] = cloneProfile(p)
	}

	return &ProfileRepository{items: items}
}

func (r *ProfileRepository) GetByID(_ context.Context, userID string) (profile.PlayerProfile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[userID]
	if !ok {
		return profile.PlayerProfile{}, false, nil
	}

	return cloneProfile(p), true, nil
}

func (r *ProfileRepository) ListByIDs(_ context.Context, userIDs []string) ([]profile.PlayerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]profile.PlayerProfile, 0, len(userIDs))
	for _, id := range userIDs {
		if p, ok := r.items[id]; ok {
			out = append(out, cloneProfile(p))
		}
	}

	return out, nil
}

// Upsert keeps the stored Stats of an existing profile; only completions change them.
func (r *ProfileRepository) Upsert(_ context.Context, p profile.PlayerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := cloneProfile(p)
	if stored, ok := r.items[p.UserID]; ok {
		next.Stats = stored.Stats
	}
	r.items[p.UserID] = next
	return nil
}

func (r *ProfileRepository) Search(_ context.Context, filter profile.SearchFilter) (profile.SearchPage, error) {
	r.mu.RLock()
	all := make([]profile.PlayerProfile, 0, len(r.items))
	for _, p := range r.items {
		all = append(all, p)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	page := profile.Search(all, filter)
	for i := range page.Items {
		page.Items[i] = cloneProfile(page.Items[i])
	}

	return page, nil
}

// applyStats must be called with no lock held by the caller on r.
func (r *ProfileRepository) applyStats(deltas []profile.StatsDelta) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range deltas {
		p, ok := r.items[d.UserID]
		if !ok {
			continue
		}
		p.Stats = p.Stats.Apply(d)
		r.items[d.UserID] = p
	}
}

func cloneProfile(p profile.PlayerProfile) profile.PlayerProfile {
	out := p
	out.SportSkills = append([]profile.SportSkill(nil), p.SportSkills...)
	out.Availability.PreferredDays = append([]string(nil), p.Availability.PreferredDays...)
	out.Availability.PreferredTimes = append([]string(nil), p.Availability.PreferredTimes...)
	return out
}
