package eligibility

import (
	"fmt"

	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
)

// Policy holds no state; the same game and player snapshot always yields the same answer.
type Policy struct{}

func NewPolicy() Policy {
	return Policy{}
}

var _ game.Policy = Policy{}

// CanJoin runs the checks in a fixed order and returns the first denial, or nil.
func (Policy) CanJoin(g game.ScheduledGame, p profile.PlayerProfile) error {
	if g.ConfirmedCount() >= g.MaxPlayers {
		return deny(ReasonCapacityFull, fmt.Sprintf("%d of %d slots taken", g.ConfirmedCount(), g.MaxPlayers))
	}
	if g.Status != game.StatusScheduled {
		return deny(ReasonGameNotOpen, fmt.Sprintf("game is %s", g.Status))
	}
	if required, ok := g.GenderRestriction.RequiredGender(); ok && p.Gender != required {
		return deny(ReasonGenderRestricted, fmt.Sprintf("game is %s", g.GenderRestriction))
	}
	if !preferenceAllows(g, p) {
		return deny(ReasonPlayerPreference, fmt.Sprintf("player prefers %s games", p.GenderPreference))
	}
	if g.SkillLevelRequired != "" {
		level, ok := p.SkillFor(g.Sport)
		if !ok || !level.AtLeast(g.SkillLevelRequired) {
			return deny(ReasonSkillMismatch, fmt.Sprintf("requires %s %s", g.SkillLevelRequired, g.Sport))
		}
	}
	return nil
}

func (Policy) CanReceiveInvite(p profile.PlayerProfile) error {
	if !p.OpenToInvites {
		return deny(ReasonNotOpenToInvites, "player is not open to invites")
	}
	return nil
}

// preferenceAllows checks the player's own preference against the game's declared
// restriction and the genders already on the roster.
func preferenceAllows(g game.ScheduledGame, p profile.PlayerProfile) bool {
	var want profile.Gender
	switch p.GenderPreference {
	case "", profile.GenderPreferenceAll:
		return true
	case profile.GenderPreferenceMaleOnly:
		want = profile.GenderMale
	case profile.GenderPreferenceFemaleOnly:
		want = profile.GenderFemale
	case profile.GenderPreferenceSameGender:
		want = p.Gender
	default:
		return false
	}

	// A mixed game is judged by who is on the roster, not by its label.
	if required, ok := g.GenderRestriction.RequiredGender(); ok && required != want {
		return false
	}
	for _, cp := range g.ConfirmedPlayers {
		if cp.Status == game.PlayerStatusConfirmed && cp.Gender != want {
			return false
		}
	}
	return true
}
