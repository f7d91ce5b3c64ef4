package profile

import (
	"sort"
	"strings"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// SearchFilter narrows a directory query. Zero values mean "no constraint".
type SearchFilter struct {
	Sport             string
	MinSkill          SkillLevel
	Gender            Gender
	City              string
	LookingForPlayers *bool
	OpenToInvites     *bool
	Name              string
	ExcludeUserIDs    []string
	Page              int
	Limit             int
}

type SearchPage struct {
	Items []PlayerProfile
	Total int
	Page  int
	Limit int
}

// Normalize trims text fields and clamps paging.
func (f SearchFilter) Normalize() SearchFilter {
	f.Sport = NormalizeSport(f.Sport)
	f.City = strings.TrimSpace(f.City)
	f.Name = strings.TrimSpace(f.Name)
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultSearchLimit
	case f.Limit > MaxSearchLimit:
		f.Limit = MaxSearchLimit
	}
	return f
}

func (f SearchFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Matches reports whether p passes every filter. Private profiles never match.
func (f SearchFilter) Matches(p PlayerProfile) bool {
	if !p.IsPublicProfile {
		return false
	}
	for _, excluded := range f.ExcludeUserIDs {
		if excluded == p.UserID {
			return false
		}
	}
	if f.Sport != "" {
		level, ok := p.SkillFor(f.Sport)
		if !ok {
			return false
		}
		if f.MinSkill != "" && !level.AtLeast(f.MinSkill) {
			return false
		}
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if f.City != "" && !containsFold(p.City, f.City) {
		return false
	}
	if f.LookingForPlayers != nil && p.LookingForPlayers != *f.LookingForPlayers {
		return false
	}
	if f.OpenToInvites != nil && p.OpenToInvites != *f.OpenToInvites {
		return false
	}
	if f.Name != "" && !containsFold(p.DisplayName, f.Name) {
		return false
	}
	return true
}

// RankedBefore is the directory order: rating desc, most recently active first, then user id.
func RankedBefore(a, b PlayerProfile) bool {
	if a.Stats.Rating != b.Stats.Rating {
		return a.Stats.Rating > b.Stats.Rating
	}
	if !a.LastActiveAt.Equal(b.LastActiveAt) {
		return a.LastActiveAt.After(b.LastActiveAt)
	}
	return a.UserID < b.UserID
}

// Search filters, orders, and pages profiles in memory. The input slice is not modified.
func Search(profiles []PlayerProfile, filter SearchFilter) SearchPage {
	filter = filter.Normalize()

	matched := make([]PlayerProfile, 0, len(profiles))
	for _, p := range profiles {
		if filter.Matches(p) {
			matched = append(matched, p)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return RankedBefore(matched[i], matched[j])
	})

	page := SearchPage{Total: len(matched), Page: filter.Page, Limit: filter.Limit}
	start := filter.Offset()
	if start >= len(matched) {
		page.Items = []PlayerProfile{}
		return page
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	page.Items = matched[start:end]
	return page
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
