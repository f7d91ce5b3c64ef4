package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pickup-games/internal/domain/profile"
)

// Status is the lifecycle state of a scheduled game.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type GenderRestriction string

const (
	GenderRestrictionAll        GenderRestriction = "all"
	GenderRestrictionMaleOnly   GenderRestriction = "male_only"
	GenderRestrictionFemaleOnly GenderRestriction = "female_only"
	GenderRestrictionMixed      GenderRestriction = "mixed"
)

var AllGenderRestrictions = map[GenderRestriction]struct{}{
	GenderRestrictionAll:        {},
	GenderRestrictionMaleOnly:   {},
	GenderRestrictionFemaleOnly: {},
	GenderRestrictionMixed:      {},
}

// RequiredGender returns the gender a single-gender restriction admits.
func (r GenderRestriction) RequiredGender() (profile.Gender, bool) {
	switch r {
	case GenderRestrictionMaleOnly:
		return profile.GenderMale, true
	case GenderRestrictionFemaleOnly:
		return profile.GenderFemale, true
	default:
		return "", false
	}
}

type PaymentTerms string

const (
	PaymentFree     PaymentTerms = "free"
	PaymentPayLater PaymentTerms = "pay_later"
	PaymentPrepaid  PaymentTerms = "prepaid"
)

var AllPaymentTerms = map[PaymentTerms]struct{}{
	PaymentFree:     {},
	PaymentPayLater: {},
	PaymentPrepaid:  {},
}

type PlayerStatus string

const PlayerStatusConfirmed PlayerStatus = "confirmed"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
	RequestDeclined RequestStatus = "declined"
)

// RejectReasonCapacityFilled marks a request that lost the race for the last slot.
const RejectReasonCapacityFilled = "CapacityFilledSinceRequest"

type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionReject  Decision = "reject"
	DecisionDecline Decision = "decline"
)

type Schedule struct {
	StartsAt time.Time
	EndsAt   time.Time
}

type Location struct {
	ArenaID string
	Address string
	City    string
}

type Payment struct {
	Terms         PaymentTerms
	CostPerPlayer int64
	Currency      string
	Deadline      *time.Time
}

type ConfirmedPlayer struct {
	UserID     string
	Gender     profile.Gender
	SkillLevel profile.SkillLevel
	JoinedAt   time.Time
	Status     PlayerStatus
}

// JoinRequest is player-initiated and awaits a host or co-host decision.
type JoinRequest struct {
	UserID       string
	Message      string
	Status       RequestStatus
	RejectReason string
	RequestedAt  time.Time
	ResolvedAt   *time.Time
	ResolvedBy   string
}

// Invite is host-initiated and awaits the invited player's decision.
type Invite struct {
	UserID       string
	InvitedBy    string
	Status       RequestStatus
	RejectReason string
	InvitedAt    time.Time
	RespondedAt  *time.Time
}

type PaidPlayer struct {
	UserID    string
	Amount    int64
	Reference string
	PaidAt    time.Time
}

type GameResult struct {
	Scores        map[string]float64
	WinnerUserIDs []string
	Notes         string
	RecordedAt    time.Time
}

// ScheduledGame is the unit of consistency: every mutation is a read-modify-write of one game.
type ScheduledGame struct {
	ID                 string
	ShareCode          string
	Sport              string
	Title              string
	Description        string
	HostUserID         string
	CoHostUserIDs      []string
	Schedule           Schedule
	Location           Location
	MinPlayers         int
	MaxPlayers         int
	ConfirmedPlayers   []ConfirmedPlayer
	InviteRequests     []JoinRequest
	SentInvites        []Invite
	Payment            Payment
	PaidPlayers        []PaidPlayer
	IsPublic           bool
	AllowJoinRequests  bool
	GenderRestriction  GenderRestriction
	SkillLevelRequired profile.SkillLevel
	Status             Status
	StartedAt          *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason string
	Result             *GameResult
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate checks the static shape of a game. It does not check roster invariants.
func (g ScheduledGame) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("%w: game id is required", ErrInvalidGame)
	}
	if strings.TrimSpace(g.HostUserID) == "" {
		return fmt.Errorf("%w: host user id is required", ErrInvalidGame)
	}
	if profile.NormalizeSport(g.Sport) == "" {
		return fmt.Errorf("%w: sport is required", ErrInvalidGame)
	}
	if strings.TrimSpace(g.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidGame)
	}
	if g.Schedule.StartsAt.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrInvalidGame)
	}
	if !g.Schedule.EndsAt.IsZero() && !g.Schedule.EndsAt.After(g.Schedule.StartsAt) {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidGame)
	}
	if strings.TrimSpace(g.Location.ArenaID) == "" && strings.TrimSpace(g.Location.Address) == "" {
		return fmt.Errorf("%w: arena or address is required", ErrInvalidGame)
	}
	if g.MinPlayers < 1 {
		return fmt.Errorf("%w: min players must be at least 1", ErrInvalidGame)
	}
	if g.MaxPlayers < g.MinPlayers {
		return fmt.Errorf("%w: max players must be >= min players", ErrInvalidGame)
	}
	if _, ok := AllGenderRestrictions[g.GenderRestriction]; !ok {
		return fmt.Errorf("%w: invalid gender restriction %q", ErrInvalidGame, g.GenderRestriction)
	}
	if g.SkillLevelRequired != "" && !g.SkillLevelRequired.Valid() {
		return fmt.Errorf("%w: invalid skill level %q", ErrInvalidGame, g.SkillLevelRequired)
	}
	if _, ok := AllPaymentTerms[g.Payment.Terms]; !ok {
		return fmt.Errorf("%w: invalid payment terms %q", ErrInvalidGame, g.Payment.Terms)
	}
	if g.Payment.Terms == PaymentFree && g.Payment.CostPerPlayer != 0 {
		return fmt.Errorf("%w: free games cannot carry a cost", ErrInvalidGame)
	}
	if g.Payment.Terms != PaymentFree && g.Payment.CostPerPlayer <= 0 {
		return fmt.Errorf("%w: paid games require a positive cost per player", ErrInvalidGame)
	}
	return nil
}

func (g ScheduledGame) ConfirmedCount() int {
	count := 0
	for _, p := range g.ConfirmedPlayers {
		if p.Status == PlayerStatusConfirmed {
			count++
		}
	}
	return count
}

func (g ScheduledGame) OpenSlots() int {
	return g.MaxPlayers - g.ConfirmedCount()
}

func (g ScheduledGame) IsHost(userID string) bool {
	return userID != "" && g.HostUserID == userID
}

func (g ScheduledGame) IsCoHost(userID string) bool {
	for _, id := range g.CoHostUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CanManageRoster reports host or co-host authority.
func (g ScheduledGame) CanManageRoster(userID string) bool {
	return g.IsHost(userID) || g.IsCoHost(userID)
}

func (g ScheduledGame) IsConfirmed(userID string) bool {
	return g.confirmedIndex(userID) >= 0
}

func (g ScheduledGame) HasPendingRequest(userID string) bool {
	return g.pendingRequestIndex(userID) >= 0
}

func (g ScheduledGame) HasPendingInvite(userID string) bool {
	return g.pendingInviteIndex(userID) >= 0
}

// ParticipantIDs returns confirmed players plus users with a pending request or invite.
func (g ScheduledGame) ParticipantIDs() []string {
	out := make([]string, 0, len(g.ConfirmedPlayers)+len(g.InviteRequests)+len(g.SentInvites))
	for _, p := range g.ConfirmedPlayers {
		out = append(out, p.UserID)
	}
	for _, r := range g.InviteRequests {
		if r.Status == RequestPending {
			out = append(out, r.UserID)
		}
	}
	for _, inv := range g.SentInvites {
		if inv.Status == RequestPending {
			out = append(out, inv.UserID)
		}
	}
	return out
}

// CanView reports whether userID may read a private game without its share code.
func (g ScheduledGame) CanView(userID string) bool {
	if g.IsPublic || g.CanManageRoster(userID) {
		return true
	}
	for _, id := range g.ParticipantIDs() {
		if id == userID {
			return true
		}
	}
	return false
}

func (g ScheduledGame) IsPaid(userID string) bool {
	for _, p := range g.PaidPlayers {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func (g ScheduledGame) confirmedIndex(userID string) int {
	for i, p := range g.ConfirmedPlayers {
		if p.UserID == userID && p.Status == PlayerStatusConfirmed {
			return i
		}
	}
	return -1
}

func (g ScheduledGame) pendingRequestIndex(userID string) int {
	for i, r := range g.InviteRequests {
		if r.UserID == userID && r.Status == RequestPending {
			return i
		}
	}
	return -1
}

func (g ScheduledGame) pendingInviteIndex(userID string) int {
	for i, inv := range g.SentInvites {
		if inv.UserID == userID && inv.Status == RequestPending {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate without aliasing stored slices.
func (g ScheduledGame) Clone() ScheduledGame {
	out := g
	out.CoHostUserIDs = append([]string(nil), g.CoHostUserIDs...)
	out.ConfirmedPlayers = append([]ConfirmedPlayer(nil), g.ConfirmedPlayers...)
	out.InviteRequests = append([]JoinRequest(nil), g.InviteRequests...)
	out.SentInvites = append([]Invite(nil), g.SentInvites...)
	out.PaidPlayers = append([]PaidPlayer(nil), g.PaidPlayers...)
	out.Payment.Deadline = cloneTime(g.Payment.Deadline)
	out.StartedAt = cloneTime(g.StartedAt)
	out.CompletedAt = cloneTime(g.CompletedAt)
	out.CancelledAt = cloneTime(g.CancelledAt)
	for i := range out.InviteRequests {
		out.InviteRequests[i].ResolvedAt = cloneTime(out.InviteRequests[i].ResolvedAt)
	}
	for i := range out.SentInvites {
		out.SentInvites[i].RespondedAt = cloneTime(out.SentInvites[i].RespondedAt)
	}
	if g.Result != nil {
		result := *g.Result
		result.Scores = make(map[string]float64, len(g.Result.Scores))
		for k, v := range g.Result.Scores {
			result.Scores[k] = v
		}
		result.WinnerUserIDs = append([]string(nil), g.Result.WinnerUserIDs...)
		out.Result = &result
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
