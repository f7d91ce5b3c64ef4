package profile

import (
	"fmt"
	"strings"
	"time"
)

// Gender is the self-declared gender used by game restrictions.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

var AllGenders = map[Gender]struct{}{
	GenderMale:   {},
	GenderFemale: {},
	GenderOther:  {},
}

// GenderPreference describes which games a player is willing to be matched into.
type GenderPreference string

const (
	GenderPreferenceAll        GenderPreference = "all"
	GenderPreferenceMaleOnly   GenderPreference = "male_only"
	GenderPreferenceFemaleOnly GenderPreference = "female_only"
	GenderPreferenceSameGender GenderPreference = "same_gender"
)

var AllGenderPreferences = map[GenderPreference]struct{}{
	GenderPreferenceAll:        {},
	GenderPreferenceMaleOnly:   {},
	GenderPreferenceFemaleOnly: {},
	GenderPreferenceSameGender: {},
}

// SkillLevel is ordered; use Rank to compare.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillProfessional SkillLevel = "professional"
)

var skillRanks = map[SkillLevel]int{
	SkillBeginner:     1,
	SkillIntermediate: 2,
	SkillAdvanced:     3,
	SkillProfessional: 4,
}

// Rank returns 0 for unknown levels.
func (l SkillLevel) Rank() int {
	return skillRanks[l]
}

func (l SkillLevel) Valid() bool {
	return l.Rank() > 0
}

// AtLeast reports whether l is the same as or higher than required.
func (l SkillLevel) AtLeast(required SkillLevel) bool {
	return l.Valid() && l.Rank() >= required.Rank()
}

type SportSkill struct {
	Sport      string
	SkillLevel SkillLevel
}

type Availability struct {
	PreferredDays   []string
	PreferredTimes  []string
	WillingToTravel bool
	MaxTravelKm     int
}

type Stats struct {
	GamesPlayed  int
	GamesWon     int
	GamesHosted  int
	TotalScore   float64
	AverageScore float64
	Rating       float64
}

// PlayerProfile is the per-user record the directory indexes.
type PlayerProfile struct {
	UserID            string
	DisplayName       string
	Gender            Gender
	City              string
	SportSkills       []SportSkill
	Availability      Availability
	Stats             Stats
	IsPublicProfile   bool
	LookingForPlayers bool
	OpenToInvites     bool
	GenderPreference  GenderPreference
	LastActiveAt      time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SkillFor returns the player's level for sport, if any.
func (p PlayerProfile) SkillFor(sport string) (SkillLevel, bool) {
	for _, s := range p.SportSkills {
		if strings.EqualFold(s.Sport, sport) {
			return s.SkillLevel, true
		}
	}
	return "", false
}

func (p PlayerProfile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(p.DisplayName) == "" {
		return fmt.Errorf("display name is required")
	}
	if _, ok := AllGenders[p.Gender]; !ok {
		return fmt.Errorf("invalid gender: %s", p.Gender)
	}
	if _, ok := AllGenderPreferences[p.GenderPreference]; !ok {
		return fmt.Errorf("invalid gender preference: %s", p.GenderPreference)
	}

	seen := make(map[string]struct{}, len(p.SportSkills))
	for _, s := range p.SportSkills {
		sport := NormalizeSport(s.Sport)
		if sport == "" {
			return fmt.Errorf("sport is required for every skill entry")
		}
		if !s.SkillLevel.Valid() {
			return fmt.Errorf("invalid skill level for %s: %s", sport, s.SkillLevel)
		}
		if _, exists := seen[sport]; exists {
			return fmt.Errorf("duplicate sport skill: %s", sport)
		}
		seen[sport] = struct{}{}
	}
	if p.Availability.MaxTravelKm < 0 {
		return fmt.Errorf("max travel distance cannot be negative")
	}
	return nil
}

// NormalizeSport lower-cases and trims a sport key so lookups are stable.
func NormalizeSport(sport string) string {
	return strings.ToLower(strings.TrimSpace(sport))
}
