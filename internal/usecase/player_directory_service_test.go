package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
	"github.com/riskibarqy/pickup-games/internal/infrastructure/repository/memory"
	profilemock "github.com/riskibarqy/pickup-games/internal/mocks/domain/profile"
)

func TestPlayerDirectoryService_SearchPlayers(t *testing.T) {
	t.Parallel()

	strong := testProfile("strong", profile.GenderFemale)
	strong.Stats.Rating = 4.5
	strong.City = "South Jakarta"
	weak := testProfile("weak", profile.GenderFemale)
	weak.Stats.Rating = 2
	weak.City = "Jakarta"
	hidden := testProfile("hidden", profile.GenderFemale)
	hidden.IsPublicProfile = false
	male := testProfile("male", profile.GenderMale)

	service := NewPlayerDirectoryService(memory.NewProfileRepository([]profile.PlayerProfile{weak, hidden, strong, male}))

	page, err := service.SearchPlayers(context.Background(), profile.SearchFilter{
		Sport:  "Football",
		Gender: profile.GenderFemale,
		City:   "jakarta",
	})
	if err != nil {
		t.Fatalf("search players: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: total=%d items=%d", page.Total, len(page.Items))
	}
	if page.Items[0].UserID != "strong" || page.Items[1].UserID != "weak" {
		t.Fatalf("unexpected order: %s, %s", page.Items[0].UserID, page.Items[1].UserID)
	}
	if page.Limit != profile.DefaultSearchLimit || page.Page != 1 {
		t.Fatalf("unexpected paging: page=%d limit=%d", page.Page, page.Limit)
	}
}

func TestPlayerDirectoryService_SearchPlayers_InvalidFilter(t *testing.T) {
	t.Parallel()

	service := NewPlayerDirectoryService(memory.NewProfileRepository(nil))
	tests := []struct {
		name   string
		filter profile.SearchFilter
	}{
		{name: "unknown skill", filter: profile.SearchFilter{Sport: "football", MinSkill: "legend"}},
		{name: "skill without sport", filter: profile.SearchFilter{MinSkill: profile.SkillAdvanced}},
		{name: "unknown gender", filter: profile.SearchFilter{Gender: "robot"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := service.SearchPlayers(context.Background(), tc.filter); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPlayerDirectoryService_GetProfile(t *testing.T) {
	t.Parallel()

	private := testProfile("private", profile.GenderMale)
	private.IsPublicProfile = false
	service := NewPlayerDirectoryService(memory.NewProfileRepository([]profile.PlayerProfile{private, testProfile("public", profile.GenderMale)}))
	ctx := context.Background()

	if _, err := service.GetProfile(ctx, "private", "someone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected private profile hidden, got %v", err)
	}
	if _, err := service.GetProfile(ctx, "private", "private"); err != nil {
		t.Fatalf("owner should see own profile: %v", err)
	}
	if _, err := service.GetProfile(ctx, "public", ""); err != nil {
		t.Fatalf("public profile should be visible: %v", err)
	}
	if _, err := service.GetProfile(ctx, "nobody", "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayerDirectoryService_UpsertKeepsStats(t *testing.T) {
	t.Parallel()

	existing := testProfile("p1", profile.GenderMale)
	existing.Stats = profile.Stats{GamesPlayed: 7, GamesWon: 3, Rating: 3.9}
	existing.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := memory.NewProfileRepository([]profile.PlayerProfile{existing})
	service := NewPlayerDirectoryService(repo)
	service.now = func() time.Time { return svcNow }

	saved, err := service.UpsertMyProfile(context.Background(), UpsertProfileInput{
		UserID:          "p1",
		DisplayName:     "  Budi  ",
		Gender:          profile.GenderMale,
		City:            "Bandung",
		SportSkills:     []profile.SportSkill{{Sport: " Futsal ", SkillLevel: profile.SkillAdvanced}},
		IsPublicProfile: true,
		OpenToInvites:   true,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if saved.Stats.GamesPlayed != 7 || saved.Stats.Rating != 3.9 {
		t.Fatalf("stats overwritten: %+v", saved.Stats)
	}
	if !saved.CreatedAt.Equal(existing.CreatedAt) || !saved.UpdatedAt.Equal(svcNow) {
		t.Fatalf("unexpected timestamps: created=%s updated=%s", saved.CreatedAt, saved.UpdatedAt)
	}
	if saved.DisplayName != "Budi" || saved.SportSkills[0].Sport != "futsal" {
		t.Fatalf("input not normalized: %+v", saved)
	}
	if saved.GenderPreference != profile.GenderPreferenceAll {
		t.Fatalf("expected default preference, got %s", saved.GenderPreference)
	}

	_, err = service.UpsertMyProfile(context.Background(), UpsertProfileInput{
		UserID:      "p1",
		DisplayName: "Budi",
		Gender:      profile.GenderMale,
		SportSkills: []profile.SportSkill{
			{Sport: "futsal", SkillLevel: profile.SkillAdvanced},
			{Sport: "FUTSAL", SkillLevel: profile.SkillBeginner},
		},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected duplicate sport to be rejected, got %v", err)
	}
}

// readHookRepository runs afterRead once, right after the first GetByID returns.
type readHookRepository struct {
	*memory.ProfileRepository
	afterRead func()
}

func (r *readHookRepository) GetByID(ctx context.Context, userID string) (profile.PlayerProfile, bool, error) {
	p, ok, err := r.ProfileRepository.GetByID(ctx, userID)
	if hook := r.afterRead; hook != nil {
		r.afterRead = nil
		hook()
	}
	return p, ok, err
}

func TestPlayerDirectoryService_UpsertDoesNotLoseConcurrentCompletion(t *testing.T) {
	t.Parallel()

	f := newGameServiceFixture(t, nil,
		testProfile("host", profile.GenderMale),
		testProfile("p1", profile.GenderMale),
	)
	g := f.createGame(t, "host", func(in *game.NewGameInput) {
		in.HostJoins = true
	})
	f.join(t, g.ID, "host", "p1")
	ctx := context.Background()
	if _, err := f.service.TransitionToOngoing(ctx, g.ID, "host"); err != nil {
		t.Fatalf("start: %v", err)
	}

	repo := &readHookRepository{ProfileRepository: f.profiles}
	repo.afterRead = func() {
		if _, err := f.service.CompleteGame(ctx, CompleteGameInput{
			GameID:       g.ID,
			ActingUserID: "host",
			Result:       game.ResultInput{WinnerUserIDs: []string{"p1"}},
		}); err != nil {
			t.Errorf("complete: %v", err)
		}
	}
	directory := NewPlayerDirectoryService(repo)
	directory.now = func() time.Time { return svcNow }

	if _, err := directory.UpsertMyProfile(ctx, UpsertProfileInput{
		UserID:        "p1",
		DisplayName:   "p1 renamed",
		Gender:        profile.GenderMale,
		SportSkills:   []profile.SportSkill{{Sport: "football", SkillLevel: profile.SkillIntermediate}},
		OpenToInvites: true,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	p1, _, _ := f.profiles.GetByID(ctx, "p1")
	if p1.DisplayName != "p1 renamed" {
		t.Fatalf("profile edit lost: %q", p1.DisplayName)
	}
	if p1.Stats.GamesPlayed != 1 || p1.Stats.GamesWon != 1 {
		t.Fatalf("completion stats lost: played=%d won=%d", p1.Stats.GamesPlayed, p1.Stats.GamesWon)
	}
}

func TestPlayerDirectoryService_StorageFailureUsingMockery(t *testing.T) {
	t.Parallel()

	repo := profilemock.NewRepository(t)
	service := NewPlayerDirectoryService(repo)

	repo.On("Search", mock.Anything, mock.Anything).Return(profile.SearchPage{}, errors.New("db down")).Once()

	if _, err := service.SearchPlayers(context.Background(), profile.SearchFilter{}); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
