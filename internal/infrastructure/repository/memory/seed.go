package memory

import (
	"time"

	"github.com/riskibarqy/pickup-games/internal/domain/profile"
)

// SeedProfiles returns a small directory used when the service runs on the in-memory backend.
func SeedProfiles(now time.Time) []profile.PlayerProfile {
	seededAt := now.UTC().Add(-24 * time.Hour)
	return []profile.PlayerProfile{
		{
			UserID:      "demo-host",
			DisplayName: "Demo Host",
			Gender:      profile.GenderFemale,
			City:        "Jakarta",
			SportSkills: []profile.SportSkill{
				{Sport: "football", SkillLevel: profile.SkillAdvanced},
				{Sport: "basketball", SkillLevel: profile.SkillIntermediate},
			},
			Availability: profile.Availability{
				PreferredDays:   []string{"saturday", "sunday"},
				PreferredTimes:  []string{"morning"},
				WillingToTravel: true,
				MaxTravelKm:     15,
			},
			IsPublicProfile:   true,
			LookingForPlayers: true,
			OpenToInvites:     true,
			GenderPreference:  profile.GenderPreferenceAll,
			LastActiveAt:      seededAt,
			CreatedAt:         seededAt,
			UpdatedAt:         seededAt,
		},
		{
			UserID:      "demo-striker",
			DisplayName: "Demo Striker",
			Gender:      profile.GenderMale,
			City:        "Jakarta",
			SportSkills: []profile.SportSkill{
				{Sport: "football", SkillLevel: profile.SkillIntermediate},
			},
			Availability: profile.Availability{
				PreferredDays:  []string{"friday", "saturday"},
				PreferredTimes: []string{"evening"},
			},
			IsPublicProfile:  true,
			OpenToInvites:    true,
			GenderPreference: profile.GenderPreferenceAll,
			LastActiveAt:     seededAt,
			CreatedAt:        seededAt,
			UpdatedAt:        seededAt,
		},
		{
			UserID:      "demo-guard",
			DisplayName: "Demo Guard",
			Gender:      profile.GenderFemale,
			City:        "Bandung",
			SportSkills: []profile.SportSkill{
				{Sport: "basketball", SkillLevel: profile.SkillBeginner},
			},
			IsPublicProfile:  true,
			OpenToInvites:    true,
			GenderPreference: profile.GenderPreferenceSameGender,
			LastActiveAt:     seededAt,
			CreatedAt:        seededAt,
			UpdatedAt:        seededAt,
		},
	}
}
