package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
)

const (
	defaultJoinableLimit = 20
	maxJoinableLimit     = 100
	// discoveryScanFactor sizes each storage page relative to the requested limit.
	discoveryScanFactor = 5
)

type FindInvitableInput struct {
	GameID       string
	ActingUserID string
	Page         int
	Limit        int
}

// MatchingService answers "which games can I join" and "who can I invite".
type MatchingService struct {
	games    game.Repository
	profiles profile.Repository
	policy   game.Policy
}

func NewMatchingService(games game.Repository, profiles profile.Repository, policy game.Policy) *MatchingService {
	return &MatchingService{
		games:    games,
		profiles: profiles,
		policy:   policy,
	}
}

func (s *MatchingService) FindJoinableGames(ctx context.Context, playerID string, filter game.DiscoveryFilter) ([]game.ScheduledGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchingService.FindJoinableGames")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if filter.StartsFrom != nil && filter.StartsTo != nil && filter.StartsTo.Before(*filter.StartsFrom) {
		return nil, fmt.Errorf("%w: date window end is before its start", ErrInvalidInput)
	}

	limit := filter.Limit
	switch {
	case limit <= 0:
		limit = defaultJoinableLimit
	case limit > maxJoinableLimit:
		limit = maxJoinableLimit
	}

	player, exists, err := s.profiles.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("%w: get profile: %v", ErrStorageUnavailable, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: player profile not found: %s", ErrNotFound, playerID)
	}

	filter.Sport = profile.NormalizeSport(filter.Sport)
	filter.City = strings.TrimSpace(filter.City)
	filter.Limit = limit * discoveryScanFactor
	filter.After = nil

	// Pages come back in (starts_at, id) order; keep reading until enough games pass eligibility.
	out := make([]game.ScheduledGame, 0, limit)
	for len(out) < limit {
		candidates, err := s.games.ListDiscoverable(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("%w: list discoverable games: %v", ErrStorageUnavailable, err)
		}

		for _, g := range candidates {
			if s.joinable(g, player) {
				out = append(out, g)
			}
		}
		if len(candidates) < filter.Limit {
			break
		}
		filter.After = game.CursorOf(candidates[len(candidates)-1])
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MatchingService) joinable(g game.ScheduledGame, player profile.PlayerProfile) bool {
	if !g.IsPublic || g.Status != game.StatusScheduled {
		return false
	}
	if g.CanManageRoster(player.UserID) || containsID(g.ParticipantIDs(), player.UserID) {
		return false
	}
	return s.policy.CanJoin(g, player) == nil
}

// FindInvitableCandidates searches the directory for players a host or co-host could invite.
func (s *MatchingService) FindInvitableCandidates(ctx context.Context, input FindInvitableInput) (profile.SearchPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchingService.FindInvitableCandidates")
	defer span.End()

	gameID, actingUserID, err := requireIDs(input.GameID, input.ActingUserID)
	if err != nil {
		return profile.SearchPage{}, err
	}

	g, exists, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return profile.SearchPage{}, fmt.Errorf("%w: get game: %v", ErrStorageUnavailable, err)
	}
	if !exists {
		return profile.SearchPage{}, fmt.Errorf("%w: game not found: %s", ErrNotFound, gameID)
	}
	if !g.CanManageRoster(actingUserID) {
		return profile.SearchPage{}, fmt.Errorf("%w: only host or co-host can look for invitees", ErrNotAuthorized)
	}
	if g.Status != game.StatusScheduled {
		return profile.SearchPage{}, fmt.Errorf("%w: game is %s", ErrGameNotJoinable, g.Status)
	}

	openToInvites := true
	filter := profile.SearchFilter{
		Sport:          g.Sport,
		MinSkill:       g.SkillLevelRequired,
		OpenToInvites:  &openToInvites,
		ExcludeUserIDs: append(g.ParticipantIDs(), g.HostUserID),
		Page:           input.Page,
		Limit:          input.Limit,
	}
	if gender, ok := g.GenderRestriction.RequiredGender(); ok {
		filter.Gender = gender
	}

	page, err := s.profiles.Search(ctx, filter.Normalize())
	if err != nil {
		return profile.SearchPage{}, fmt.Errorf("%w: search profiles: %v", ErrStorageUnavailable, err)
	}
	return page, nil
}

func containsID(ids []string, target string) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
