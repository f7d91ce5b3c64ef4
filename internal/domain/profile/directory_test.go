package profile

import (
	"testing"
	"time"
)

func directoryFixture() []PlayerProfile {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return []PlayerProfile{
		{
			UserID:            "u1",
			DisplayName:       "Andi Wijaya",
			Gender:            GenderMale,
			City:              "South Jakarta",
			SportSkills:       []SportSkill{{Sport: "football", SkillLevel: SkillAdvanced}},
			Stats:             Stats{Rating: 4.5},
			IsPublicProfile:   true,
			LookingForPlayers: true,
			OpenToInvites:     true,
			LastActiveAt:      base,
		},
		{
			UserID:          "u2",
			DisplayName:     "Budi",
			Gender:          GenderMale,
			City:            "Bandung",
			SportSkills:     []SportSkill{{Sport: "football", SkillLevel: SkillBeginner}},
			Stats:           Stats{Rating: 4.5},
			IsPublicProfile: true,
			OpenToInvites:   true,
			LastActiveAt:    base.Add(time.Hour),
		},
		{
			UserID:            "u3",
			DisplayName:       "Citra",
			Gender:            GenderFemale,
			City:              "jakarta pusat",
			SportSkills:       []SportSkill{{Sport: "badminton", SkillLevel: SkillProfessional}, {Sport: "football", SkillLevel: SkillIntermediate}},
			Stats:             Stats{Rating: 3.9},
			IsPublicProfile:   true,
			LookingForPlayers: true,
			LastActiveAt:      base,
		},
		{
			UserID:          "u4",
			DisplayName:     "Hidden Hero",
			Gender:          GenderFemale,
			City:            "Jakarta",
			SportSkills:     []SportSkill{{Sport: "football", SkillLevel: SkillProfessional}},
			Stats:           Stats{Rating: 5},
			IsPublicProfile: false,
			OpenToInvites:   true,
			LastActiveAt:    base,
		},
	}
}

func ids(items []PlayerProfile) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.UserID)
	}
	return out
}

func TestSearch_Filters(t *testing.T) {
	t.Parallel()

	yes := true
	tests := []struct {
		name   string
		filter SearchFilter
		want   []string
	}{
		{name: "public only, default order", filter: SearchFilter{}, want: []string{"u2", "u1", "u3"}},
		{name: "sport with minimum skill", filter: SearchFilter{Sport: "Football", MinSkill: SkillIntermediate}, want: []string{"u1", "u3"}},
		{name: "sport without skill", filter: SearchFilter{Sport: "badminton"}, want: []string{"u3"}},
		{name: "gender", filter: SearchFilter{Gender: GenderFemale}, want: []string{"u3"}},
		{name: "city substring ignores case", filter: SearchFilter{City: "JAKARTA"}, want: []string{"u1", "u3"}},
		{name: "looking for players", filter: SearchFilter{LookingForPlayers: &yes}, want: []string{"u1", "u3"}},
		{name: "open to invites", filter: SearchFilter{OpenToInvites: &yes}, want: []string{"u2", "u1"}},
		{name: "name text", filter: SearchFilter{Name: "wij"}, want: []string{"u1"}},
		{name: "exclusions", filter: SearchFilter{ExcludeUserIDs: []string{"u2"}}, want: []string{"u1", "u3"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			page := Search(directoryFixture(), tc.filter)
			got := ids(page.Items)
			if len(got) != len(tc.want) {
				t.Fatalf("unexpected result: want %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("unexpected order: want %v, got %v", tc.want, got)
				}
			}
			if page.Total != len(tc.want) {
				t.Fatalf("unexpected total: want %d, got %d", len(tc.want), page.Total)
			}
		})
	}
}

func TestSearch_Pagination(t *testing.T) {
	t.Parallel()

	page := Search(directoryFixture(), SearchFilter{Page: 2, Limit: 2})
	if page.Total != 3 {
		t.Fatalf("unexpected total: %d", page.Total)
	}
	if got := ids(page.Items); len(got) != 1 || got[0] != "u3" {
		t.Fatalf("unexpected second page: %v", got)
	}

	page = Search(directoryFixture(), SearchFilter{Page: 5, Limit: 2})
	if len(page.Items) != 0 || page.Total != 3 {
		t.Fatalf("expected empty page past the end, got %v total=%d", ids(page.Items), page.Total)
	}
}

func TestSearchFilter_Normalize(t *testing.T) {
	t.Parallel()

	f := SearchFilter{Sport: "  Football ", Page: -1, Limit: 1000}.Normalize()
	if f.Sport != "football" || f.Page != 1 || f.Limit != MaxSearchLimit {
		t.Fatalf("unexpected normalized filter: %+v", f)
	}
	if f.Offset() != 0 {
		t.Fatalf("unexpected offset: %d", f.Offset())
	}
	if got := (SearchFilter{}).Normalize().Limit; got != DefaultSearchLimit {
		t.Fatalf("unexpected default limit: %d", got)
	}
}

func TestSearch_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := directoryFixture()
	_ = Search(in, SearchFilter{})
	if got := ids(in); got[0] != "u1" || got[3] != "u4" {
		t.Fatalf("input reordered: %v", got)
	}
}
