package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
)

func memoryGame(id, code string, startsAt time.Time) game.ScheduledGame {
	return game.ScheduledGame{
		ID:         id,
		ShareCode:  code,
		Sport:      "futsal",
		Title:      "Friday futsal",
		HostUserID: "host",
		Schedule:   game.Schedule{StartsAt: startsAt, EndsAt: startsAt.Add(time.Hour)},
		Location:   game.Location{City: "Bandung"},
		MaxPlayers: 10,
		MinPlayers: 2,
		IsPublic:   true,
		Status:     game.StatusScheduled,
	}
}

func TestGameRepository_SaveChecksVersion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	start := time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC)
	repo := NewGameRepository(nil, []game.ScheduledGame{memoryGame("g1", "AAAA1111", start)})

	g, _, _ := repo.GetByID(ctx, "g1")
	g.Title = "Renamed"
	if err := repo.Save(ctx, g, 0); err != nil {
		t.Fatalf("save at current version: %v", err)
	}

	stale := g
	stale.Title = "Stale write"
	err := repo.Save(ctx, stale, 0)
	if !errors.Is(err, game.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	stored, _, _ := repo.GetByID(ctx, "g1")
	if stored.Title != "Renamed" || stored.Version != 1 {
		t.Fatalf("unexpected stored game: title=%q version=%d", stored.Title, stored.Version)
	}
}

func TestGameRepository_CreateRejectsTakenShareCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	start := time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC)
	repo := NewGameRepository(nil, []game.ScheduledGame{memoryGame("g1", "AAAA1111", start)})

	err := repo.Create(ctx, memoryGame("g2", "AAAA1111", start))
	if !errors.Is(err, game.ErrShareCodeTaken) {
		t.Fatalf("expected share code taken, got %v", err)
	}

	got, exists, err := repo.GetByShareCode(ctx, "AAAA1111")
	if err != nil || !exists || got.ID != "g1" {
		t.Fatalf("share code lookup: %+v %v %v", got, exists, err)
	}
}

func TestGameRepository_SaveCompletionAppliesStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	start := time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC)
	profiles := NewProfileRepository([]profile.PlayerProfile{{UserID: "p1"}, {UserID: "p2"}})
	repo := NewGameRepository(profiles, []game.ScheduledGame{memoryGame("g1", "AAAA1111", start)})

	g, _, _ := repo.GetByID(ctx, "g1")
	g.Status = game.StatusCompleted
	deltas := []profile.StatsDelta{
		{UserID: "p1", Played: true, Won: true, Score: 3},
		{UserID: "p2", Played: true},
		{UserID: "missing", Played: true},
	}
	if err := repo.SaveCompletion(ctx, g, 0, deltas); err != nil {
		t.Fatalf("save completion: %v", err)
	}

	p1, _, _ := profiles.GetByID(ctx, "p1")
	p2, _, _ := profiles.GetByID(ctx, "p2")
	if p1.Stats.GamesPlayed != 1 || p1.Stats.GamesWon != 1 || p1.Stats.TotalScore != 3 {
		t.Fatalf("unexpected p1 stats: %+v", p1.Stats)
	}
	if p2.Stats.GamesPlayed != 1 || p2.Stats.GamesWon != 0 {
		t.Fatalf("unexpected p2 stats: %+v", p2.Stats)
	}

	if err := repo.SaveCompletion(ctx, g, 0, deltas); !errors.Is(err, game.ErrVersionConflict) {
		t.Fatalf("expected conflict on replayed completion, got %v", err)
	}
	p1, _, _ = profiles.GetByID(ctx, "p1")
	if p1.Stats.GamesPlayed != 1 {
		t.Fatalf("stats applied twice: %+v", p1.Stats)
	}
}

func TestGameRepository_ListDiscoverable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC)

	late := memoryGame("late", "LATE0001", base.Add(48*time.Hour))
	early := memoryGame("early", "EARL0001", base)
	private := memoryGame("private", "PRIV0001", base)
	private.IsPublic = false
	cancelled := memoryGame("cancelled", "CANC0001", base)
	cancelled.Status = game.StatusCancelled
	other := memoryGame("other", "OTHR0001", base)
	other.Location.City = "Jakarta"

	repo := NewGameRepository(nil, []game.ScheduledGame{late, early, private, cancelled, other})

	got, err := repo.ListDiscoverable(ctx, game.DiscoveryFilter{City: "bandung"})
	if err != nil {
		t.Fatalf("list discoverable: %v", err)
	}
	if len(got) != 2 || got[0].ID != "early" || got[1].ID != "late" {
		ids := make([]string, 0, len(got))
		for _, g := range got {
			ids = append(ids, g.ID)
		}
		t.Fatalf("unexpected games: %v", ids)
	}

	rest, err := repo.ListDiscoverable(ctx, game.DiscoveryFilter{City: "bandung", After: game.CursorOf(got[0])})
	if err != nil {
		t.Fatalf("list discoverable after cursor: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != "late" {
		t.Fatalf("cursor must resume after %s: %+v", got[0].ID, rest)
	}

	due, err := repo.ListDueToStart(ctx, base, 0)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	for _, g := range due {
		if g.ID == "late" || g.ID == "cancelled" {
			t.Fatalf("game %s should not be due", g.ID)
		}
	}
}
