package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pickup-games/internal/domain/profile"
)

// UpsertProfileInput holds the owner-editable profile fields. Stats are never taken from input.
type UpsertProfileInput struct {
	UserID            string
	DisplayName       string
	Gender            profile.Gender
	City              string
	SportSkills       []profile.SportSkill
	Availability      profile.Availability
	IsPublicProfile   bool
	LookingForPlayers bool
	OpenToInvites     bool
	GenderPreference  profile.GenderPreference
}

type PlayerDirectoryService struct {
	profiles profile.Repository
	now      func() time.Time
}

func NewPlayerDirectoryService(profiles profile.Repository) *PlayerDirectoryService {
	return &PlayerDirectoryService{
		profiles: profiles,
		now:      time.Now,
	}
}

// SearchPlayers returns public profiles only; the viewer sees their own profile only if it is public.
func (s *PlayerDirectoryService) SearchPlayers(ctx context.Context, filter profile.SearchFilter) (profile.SearchPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerDirectoryService.SearchPlayers")
	defer span.End()

	filter = filter.Normalize()
	if filter.MinSkill != "" && !filter.MinSkill.Valid() {
		return profile.SearchPage{}, fmt.Errorf("%w: invalid skill level %q", ErrInvalidInput, filter.MinSkill)
	}
	if filter.MinSkill != "" && filter.Sport == "" {
		return profile.SearchPage{}, fmt.Errorf("%w: minimum skill requires a sport", ErrInvalidInput)
	}
	if filter.Gender != "" {
		if _, ok := profile.AllGenders[filter.Gender]; !ok {
			return profile.SearchPage{}, fmt.Errorf("%w: invalid gender %q", ErrInvalidInput, filter.Gender)
		}
	}

	page, err := s.profiles.Search(ctx, filter)
	if err != nil {
		return profile.SearchPage{}, fmt.Errorf("%w: search profiles: %v", ErrStorageUnavailable, err)
	}
	return page, nil
}

// GetProfile hides private profiles from everyone but their owner.
func (s *PlayerDirectoryService) GetProfile(ctx context.Context, userID, viewerID string) (profile.PlayerProfile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerDirectoryService.GetProfile")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return profile.PlayerProfile{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	p, exists, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return profile.PlayerProfile{}, fmt.Errorf("%w: get profile: %v", ErrStorageUnavailable, err)
	}
	if !exists || (!p.IsPublicProfile && p.UserID != strings.TrimSpace(viewerID)) {
		return profile.PlayerProfile{}, fmt.Errorf("%w: player profile not found: %s", ErrNotFound, userID)
	}
	return p, nil
}

func (s *PlayerDirectoryService) UpsertMyProfile(ctx context.Context, input UpsertProfileInput) (profile.PlayerProfile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerDirectoryService.UpsertMyProfile")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return profile.PlayerProfile{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	existing, exists, err := s.profiles.GetByID(ctx, input.UserID)
	if err != nil {
		return profile.PlayerProfile{}, fmt.Errorf("%w: get profile: %v", ErrStorageUnavailable, err)
	}

	now := s.now().UTC()
	skills := make([]profile.SportSkill, 0, len(input.SportSkills))
	for _, skill := range input.SportSkills {
		skills = append(skills, profile.SportSkill{
			Sport:      profile.NormalizeSport(skill.Sport),
			SkillLevel: skill.SkillLevel,
		})
	}
	preference := input.GenderPreference
	if preference == "" {
		preference = profile.GenderPreferenceAll
	}

	next := profile.PlayerProfile{
		UserID:            input.UserID,
		DisplayName:       strings.TrimSpace(input.DisplayName),
		Gender:            input.Gender,
		City:              strings.TrimSpace(input.City),
		SportSkills:       skills,
		Availability:      input.Availability,
		IsPublicProfile:   input.IsPublicProfile,
		LookingForPlayers: input.LookingForPlayers,
		OpenToInvites:     input.OpenToInvites,
		GenderPreference:  preference,
		LastActiveAt:      now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if exists {
		next.Stats = existing.Stats
		next.CreatedAt = existing.CreatedAt
	}
	if err := next.Validate(); err != nil {
		return profile.PlayerProfile{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.profiles.Upsert(ctx, next); err != nil {
		return profile.PlayerProfile{}, fmt.Errorf("%w: upsert profile: %v", ErrStorageUnavailable, err)
	}
	return next, nil
}
