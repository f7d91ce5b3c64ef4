package eligibility

// Reason names why a player may not join a game.
type Reason string

const (
	ReasonCapacityFull     Reason = "DeniedCapacityFull"
	ReasonGameNotOpen      Reason = "DeniedGameNotOpen"
	ReasonGenderRestricted Reason = "DeniedGenderRestricted"
	ReasonPlayerPreference Reason = "DeniedPlayerPreference"
	ReasonSkillMismatch    Reason = "DeniedSkillMismatch"
	ReasonNotOpenToInvites Reason = "DeniedNotOpenToInvites"
)

// Denial is the error returned for a failed check. errors.Is matches on Reason,
// so a Denial with detail still matches the bare sentinel below.
type Denial struct {
	Reason Reason
	Detail string
}

func (d *Denial) Error() string {
	if d.Detail == "" {
		return string(d.Reason)
	}
	return string(d.Reason) + ": " + d.Detail
}

func (d *Denial) Is(target error) bool {
	t, ok := target.(*Denial)
	return ok && t.Reason == d.Reason
}

var (
	ErrDeniedCapacityFull     = &Denial{Reason: ReasonCapacityFull}
	ErrDeniedGameNotOpen      = &Denial{Reason: ReasonGameNotOpen}
	ErrDeniedGenderRestricted = &Denial{Reason: ReasonGenderRestricted}
	ErrDeniedPlayerPreference = &Denial{Reason: ReasonPlayerPreference}
	ErrDeniedSkillMismatch    = &Denial{Reason: ReasonSkillMismatch}
	ErrDeniedNotOpenToInvites = &Denial{Reason: ReasonNotOpenToInvites}
)

func deny(reason Reason, detail string) error {
	return &Denial{Reason: reason, Detail: detail}
}
