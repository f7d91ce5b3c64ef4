package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/riskibarqy/pickup-games/internal/domain/eligibility"
	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
)

var rowNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	shareCodeErr := &pq.Error{Code: "23505", Constraint: shareCodeConstraint}
	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{name: "matching constraint", err: shareCodeErr, constraint: shareCodeConstraint, want: true},
		{name: "wrapped", err: fmt.Errorf("insert game: %w", shareCodeErr), constraint: shareCodeConstraint, want: true},
		{name: "any constraint", err: shareCodeErr, want: true},
		{name: "other constraint", err: shareCodeErr, constraint: "player_profiles_pkey", want: false},
		{name: "other code", err: &pq.Error{Code: "23503"}, want: false},
		{name: "plain error", err: errors.New("duplicate key"), want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isUniqueViolation(tc.err, tc.constraint); got != tc.want {
				t.Fatalf("isUniqueViolation() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestJSONColumnValueAndScan(t *testing.T) {
	t.Parallel()

	value, err := jsonColumn(`{"a":1}`).Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if value != `{"a":1}` {
		t.Fatalf("expected text value, got %#v", value)
	}
	if value, _ := jsonColumn(nil).Value(); value != nil {
		t.Fatalf("expected NULL for empty column, got %#v", value)
	}

	var col jsonColumn
	if err := col.Scan([]byte(`[1,2]`)); err != nil || string(col) != "[1,2]" {
		t.Fatalf("scan bytes: %q %v", col, err)
	}
	if err := col.Scan(`[3]`); err != nil || string(col) != "[3]" {
		t.Fatalf("scan string: %q %v", col, err)
	}
	if err := col.Scan(nil); err != nil || col != nil {
		t.Fatalf("scan nil: %q %v", col, err)
	}
	if err := col.Scan(42); err == nil {
		t.Fatalf("expected error for unsupported source")
	}
}

func rowProfile(id string, gender profile.Gender) profile.PlayerProfile {
	return profile.PlayerProfile{
		UserID:           id,
		DisplayName:      "Player " + id,
		Gender:           gender,
		City:             "Bandung",
		SportSkills:      []profile.SportSkill{{Sport: "futsal", SkillLevel: profile.SkillAdvanced}},
		IsPublicProfile:  true,
		OpenToInvites:    true,
		GenderPreference: profile.GenderPreferenceAll,
		LastActiveAt:     rowNow,
		CreatedAt:        rowNow,
		UpdatedAt:        rowNow,
	}
}

func TestGameRowRoundTrip(t *testing.T) {
	t.Parallel()

	g, err := game.New("game-1", "QX7PLM2A", rowProfile("host", profile.GenderMale), game.NewGameInput{
		Sport:             "futsal",
		Title:             "Thursday futsal",
		Schedule:          game.Schedule{StartsAt: rowNow.Add(48 * time.Hour), EndsAt: rowNow.Add(50 * time.Hour)},
		Location:          game.Location{Address: "GOR Pajajaran", City: "Bandung"},
		MinPlayers:        2,
		MaxPlayers:        10,
		IsPublic:          true,
		AllowJoinRequests: true,
		HostJoins:         true,
	}, rowNow)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if _, err := g.RequestToJoin(eligibility.NewPolicy(), rowProfile("p1", profile.GenderFemale), "hi", rowNow); err != nil {
		t.Fatalf("request to join: %v", err)
	}

	row, err := gameToRow(g)
	if err != nil {
		t.Fatalf("to row: %v", err)
	}
	if row.Result != nil {
		t.Fatalf("expected NULL result for a scheduled game, got %s", row.Result)
	}
	if row.EndsAt == nil || !row.EndsAt.Equal(g.Schedule.EndsAt) {
		t.Fatalf("unexpected ends_at: %v", row.EndsAt)
	}

	got, err := gameFromRow(row)
	if err != nil {
		t.Fatalf("from row: %v", err)
	}
	if got.ID != g.ID || got.ShareCode != g.ShareCode || got.Status != game.StatusScheduled {
		t.Fatalf("identity lost: %+v", got)
	}
	if !got.IsConfirmed("host") || got.ConfirmedCount() != 1 {
		t.Fatalf("roster lost: %+v", got.ConfirmedPlayers)
	}
	if !got.HasPendingRequest("p1") || got.InviteRequests[0].Message != "hi" {
		t.Fatalf("requests lost: %+v", got.InviteRequests)
	}
	if got.Result != nil {
		t.Fatalf("expected nil result, got %+v", got.Result)
	}
	if !got.Schedule.EndsAt.Equal(g.Schedule.EndsAt) {
		t.Fatalf("ends at lost: %v", got.Schedule.EndsAt)
	}
}

func TestGameRowKeepsResult(t *testing.T) {
	t.Parallel()

	g := game.ScheduledGame{
		ID:     "game-2",
		Status: game.StatusCompleted,
		Result: &game.GameResult{
			Scores:        map[string]float64{"p1": 3, "p2": 1},
			WinnerUserIDs: []string{"p1"},
			RecordedAt:    rowNow,
		},
	}

	row, err := gameToRow(g)
	if err != nil {
		t.Fatalf("to row: %v", err)
	}
	got, err := gameFromRow(row)
	if err != nil {
		t.Fatalf("from row: %v", err)
	}
	if got.Result == nil || got.Result.Scores["p1"] != 3 || len(got.Result.WinnerUserIDs) != 1 {
		t.Fatalf("result lost: %+v", got.Result)
	}
	if !got.Result.RecordedAt.Equal(rowNow) {
		t.Fatalf("recorded at lost: %v", got.Result.RecordedAt)
	}
}

func TestProfileRowStoresSkillRank(t *testing.T) {
	t.Parallel()

	p := rowProfile("p1", profile.GenderFemale)
	p.SportSkills = append(p.SportSkills, profile.SportSkill{Sport: " Padel ", SkillLevel: profile.SkillBeginner})
	p.Stats = profile.Stats{GamesPlayed: 4, TotalScore: 10, AverageScore: 2.5}

	row, err := profileToRow(p)
	if err != nil {
		t.Fatalf("to row: %v", err)
	}

	var skills []sportSkillRecord
	if err := decodeJSONB(row.SportSkills, &skills); err != nil {
		t.Fatalf("decode skills: %v", err)
	}
	if len(skills) != 2 || skills[0].Rank != 3 || skills[1].Sport != "padel" || skills[1].Rank != 1 {
		t.Fatalf("unexpected stored skills: %+v", skills)
	}

	got, err := profileFromRow(row)
	if err != nil {
		t.Fatalf("from row: %v", err)
	}
	if level, ok := got.SkillFor("padel"); !ok || level != profile.SkillBeginner {
		t.Fatalf("skill lost: %v %v", level, ok)
	}
	if got.Stats.AverageScore != 2.5 || got.Stats.GamesPlayed != 4 {
		t.Fatalf("stats lost: %+v", got.Stats)
	}
}
