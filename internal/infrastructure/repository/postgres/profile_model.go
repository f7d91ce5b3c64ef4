package postgres

import (
	"fmt"
	"time"

	"github.com/riskibarqy/pickup-games/internal/domain/profile"
)

type profileTableModel struct {
	UserID            string     `db:"user_id"`
	DisplayName       string     `db:"display_name"`
	Gender            string     `db:"gender"`
	City              string     `db:"city"`
	SportSkills       jsonColumn `db:"sport_skills"`
	Availability      jsonColumn `db:"availability"`
	GamesPlayed       int        `db:"games_played"`
	GamesWon          int        `db:"games_won"`
	GamesHosted       int        `db:"games_hosted"`
	TotalScore        float64    `db:"total_score"`
	AverageScore      float64    `db:"average_score"`
	Rating            float64    `db:"rating"`
	IsPublicProfile   bool       `db:"is_public_profile"`
	LookingForPlayers bool       `db:"looking_for_players"`
	OpenToInvites     bool       `db:"open_to_invites"`
	GenderPreference  string     `db:"gender_preference"`
	LastActiveAt      time.Time  `db:"last_active_at"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// sportSkillRecord stores the rank next to the level so SQL can filter by minimum skill.
type sportSkillRecord struct {
	Sport      string `json:"sport"`
	SkillLevel string `json:"skill_level"`
	Rank       int    `json:"rank"`
}

type availabilityRecord struct {
	PreferredDays   []string `json:"preferred_days"`
	PreferredTimes  []string `json:"preferred_times"`
	WillingToTravel bool     `json:"willing_to_travel"`
	MaxTravelKm     int      `json:"max_travel_km"`
}

func profileToRow(p profile.PlayerProfile) (profileTableModel, error) {
	skills := make([]sportSkillRecord, 0, len(p.SportSkills))
	for _, s := range p.SportSkills {
		skills = append(skills, sportSkillRecord{
			Sport:      profile.NormalizeSport(s.Sport),
			SkillLevel: string(s.SkillLevel),
			Rank:       s.SkillLevel.Rank(),
		})
	}

	row := profileTableModel{
		UserID:            p.UserID,
		DisplayName:       p.DisplayName,
		Gender:            string(p.Gender),
		City:              p.City,
		GamesPlayed:       p.Stats.GamesPlayed,
		GamesWon:          p.Stats.GamesWon,
		GamesHosted:       p.Stats.GamesHosted,
		TotalScore:        p.Stats.TotalScore,
		AverageScore:      p.Stats.AverageScore,
		Rating:            p.Stats.Rating,
		IsPublicProfile:   p.IsPublicProfile,
		LookingForPlayers: p.LookingForPlayers,
		OpenToInvites:     p.OpenToInvites,
		GenderPreference:  string(p.GenderPreference),
		LastActiveAt:      p.LastActiveAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}

	var err error
	if row.SportSkills, err = encodeJSONB(skills); err != nil {
		return profileTableModel{}, fmt.Errorf("encode sport skills: %w", err)
	}
	row.Availability, err = encodeJSONB(availabilityRecord{
		PreferredDays:   append([]string{}, p.Availability.PreferredDays...),
		PreferredTimes:  append([]string{}, p.Availability.PreferredTimes...),
		WillingToTravel: p.Availability.WillingToTravel,
		MaxTravelKm:     p.Availability.MaxTravelKm,
	})
	if err != nil {
		return profileTableModel{}, fmt.Errorf("encode availability: %w", err)
	}
	return row, nil
}

func profileFromRow(row profileTableModel) (profile.PlayerProfile, error) {
	var skills []sportSkillRecord
	if err := decodeJSONB(row.SportSkills, &skills); err != nil {
		return profile.PlayerProfile{}, fmt.Errorf("decode sport skills of %s: %w", row.UserID, err)
	}
	var availability availabilityRecord
	if err := decodeJSONB(row.Availability, &availability); err != nil {
		return profile.PlayerProfile{}, fmt.Errorf("decode availability of %s: %w", row.UserID, err)
	}

	p := profile.PlayerProfile{
		UserID:      row.UserID,
		DisplayName: row.DisplayName,
		Gender:      profile.Gender(row.Gender),
		City:        row.City,
		Availability: profile.Availability{
			PreferredDays:   availability.PreferredDays,
			PreferredTimes:  availability.PreferredTimes,
			WillingToTravel: availability.WillingToTravel,
			MaxTravelKm:     availability.MaxTravelKm,
		},
		Stats: profile.Stats{
			GamesPlayed:  row.GamesPlayed,
			GamesWon:     row.GamesWon,
			GamesHosted:  row.GamesHosted,
			TotalScore:   row.TotalScore,
			AverageScore: row.AverageScore,
			Rating:       row.Rating,
		},
		IsPublicProfile:   row.IsPublicProfile,
		LookingForPlayers: row.LookingForPlayers,
		OpenToInvites:     row.OpenToInvites,
		GenderPreference:  profile.GenderPreference(row.GenderPreference),
		LastActiveAt:      row.LastActiveAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	for _, s := range skills {
		p.SportSkills = append(p.SportSkills, profile.SportSkill{Sport: s.Sport, SkillLevel: profile.SkillLevel(s.SkillLevel)})
	}
	return p, nil
}
