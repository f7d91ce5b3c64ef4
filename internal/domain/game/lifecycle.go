package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pickup-games/internal/domain/profile"
)

// Policy decides whether a player may be confirmed into a game.
type Policy interface {
	CanJoin(g ScheduledGame, p profile.PlayerProfile) error
	CanReceiveInvite(p profile.PlayerProfile) error
}

// NewGameInput carries the host-supplied fields of a new game.
type NewGameInput struct {
	Sport              string
	Title              string
	Description        string
	Schedule           Schedule
	Location           Location
	MinPlayers         int
	MaxPlayers         int
	Payment            Payment
	IsPublic           bool
	AllowJoinRequests  bool
	GenderRestriction  GenderRestriction
	SkillLevelRequired profile.SkillLevel

	// HostJoins puts the host on the roster at creation without an eligibility check.
	HostJoins bool
}

// New builds a scheduled game owned by host.
func New(id, shareCode string, host profile.PlayerProfile, in NewGameInput, now time.Time) (ScheduledGame, error) {
	restriction := in.GenderRestriction
	if restriction == "" {
		restriction = GenderRestrictionAll
	}
	terms := in.Payment
	if terms.Terms == "" {
		terms.Terms = PaymentFree
	}
	terms.Currency = strings.ToUpper(strings.TrimSpace(terms.Currency))

	g := ScheduledGame{
		ID:                 id,
		ShareCode:          shareCode,
		Sport:              profile.NormalizeSport(in.Sport),
		Title:              strings.TrimSpace(in.Title),
		Description:        strings.TrimSpace(in.Description),
		HostUserID:         host.UserID,
		Schedule:           Schedule{StartsAt: in.Schedule.StartsAt.UTC(), EndsAt: in.Schedule.EndsAt.UTC()},
		Location:           in.Location,
		MinPlayers:         in.MinPlayers,
		MaxPlayers:         in.MaxPlayers,
		Payment:            terms,
		IsPublic:           in.IsPublic,
		AllowJoinRequests:  in.AllowJoinRequests,
		GenderRestriction:  restriction,
		SkillLevelRequired: in.SkillLevelRequired,
		Status:             StatusScheduled,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if strings.TrimSpace(shareCode) == "" {
		return ScheduledGame{}, fmt.Errorf("%w: share code is required", ErrInvalidGame)
	}
	if err := g.Validate(); err != nil {
		return ScheduledGame{}, err
	}
	if !g.Schedule.StartsAt.After(now) {
		return ScheduledGame{}, fmt.Errorf("%w: start time must be in the future", ErrInvalidGame)
	}

	if in.HostJoins {
		g.ConfirmedPlayers = []ConfirmedPlayer{confirmedFrom(host, g.Sport, now)}
	}
	return g, nil
}

// RequestToJoin queues a pending join request. A repeated request while pending changes nothing.
func (g *ScheduledGame) RequestToJoin(policy Policy, player profile.PlayerProfile, message string, now time.Time) (bool, error) {
	if g.Status != StatusScheduled {
		return false, fmt.Errorf("%w: game is %s", ErrGameNotJoinable, g.Status)
	}
	if !g.AllowJoinRequests {
		return false, ErrJoinRequestsDisabled
	}
	switch {
	case g.IsConfirmed(player.UserID):
		return false, ErrAlreadyParticipating
	case g.HasPendingRequest(player.UserID):
		return false, nil
	case g.HasPendingInvite(player.UserID):
		return false, ErrPendingInviteExists
	}
	if err := policy.CanJoin(*g, player); err != nil {
		return false, err
	}

	g.InviteRequests = append(g.InviteRequests, JoinRequest{
		UserID:      player.UserID,
		Message:     strings.TrimSpace(message),
		Status:      RequestPending,
		RequestedAt: now,
	})
	g.UpdatedAt = now
	return true, nil
}

// WithdrawJoinRequest drops the caller's own pending request.
func (g *ScheduledGame) WithdrawJoinRequest(userID string, now time.Time) error {
	if g.Status != StatusScheduled {
		return fmt.Errorf("%w: game is %s", ErrGameNotJoinable, g.Status)
	}
	idx := g.pendingRequestIndex(userID)
	if idx < 0 {
		return ErrJoinRequestNotFound
	}
	g.InviteRequests = append(g.InviteRequests[:idx], g.InviteRequests[idx+1:]...)
	g.UpdatedAt = now
	return nil
}

// ResolveJoinRequest accepts or rejects a pending request. Accepting re-runs eligibility;
// a failed re-check rejects the request and returns ErrCapacityFilledSinceRequest.
func (g *ScheduledGame) ResolveJoinRequest(policy Policy, requester profile.PlayerProfile, decision Decision, actingUserID string, now time.Time) error {
	if g.Status != StatusScheduled {
		return fmt.Errorf("%w: game is %s", ErrGameNotJoinable, g.Status)
	}
	if !g.CanManageRoster(actingUserID) {
		return fmt.Errorf("%w: only host or co-host can resolve join requests", ErrNotAuthorized)
	}
	idx := g.pendingRequestIndex(requester.UserID)
	if idx < 0 {
		return ErrJoinRequestNotFound
	}

	resolvedAt := now
	req := &g.InviteRequests[idx]
	req.ResolvedAt = &resolvedAt
	req.ResolvedBy = actingUserID
	g.UpdatedAt = now

	switch decision {
	case DecisionAccept:
		if err := policy.CanJoin(*g, requester); err != nil {
			req.Status = RequestRejected
			req.RejectReason = RejectReasonCapacityFilled
			return fmt.Errorf("%w: %v", ErrCapacityFilledSinceRequest, err)
		}
		req.Status = RequestAccepted
		g.ConfirmedPlayers = append(g.ConfirmedPlayers, confirmedFrom(requester, g.Sport, now))
		return nil
	case DecisionReject:
		req.Status = RequestRejected
		return nil
	default:
		return fmt.Errorf("%w: unsupported decision %q", ErrInvalidGame, decision)
	}
}

// SendInvite queues a pending invite. Inviting a pending or confirmed target changes nothing.
func (g *ScheduledGame) SendInvite(policy Policy, target profile.PlayerProfile, actingUserID string, now time.Time) (bool, error) {
	if g.Status != StatusScheduled {
		return false, fmt.Errorf("%w: game is %s", ErrGameNotJoinable, g.Status)
	}
	if !g.CanManageRoster(actingUserID) {
		return false, fmt.Errorf("%w: only host or co-host can send invites", ErrNotAuthorized)
	}
	if g.IsConfirmed(target.UserID) || g.HasPendingInvite(target.UserID) {
		return false, nil
	}
	if g.HasPendingRequest(target.UserID) {
		return false, ErrPendingJoinRequestExists
	}
	if err := policy.CanReceiveInvite(target); err != nil {
		return false, err
	}

	g.SentInvites = append(g.SentInvites, Invite{
		UserID:    target.UserID,
		InvitedBy: actingUserID,
		Status:    RequestPending,
		InvitedAt: now,
	})
	g.UpdatedAt = now
	return true, nil
}

// RespondToInvite applies the invited player's decision with the same fill-race handling as join requests.
func (g *ScheduledGame) RespondToInvite(policy Policy, player profile.PlayerProfile, decision Decision, now time.Time) error {
	if g.Status != StatusScheduled {
		return fmt.Errorf("%w: game is %s", ErrGameNotJoinable, g.Status)
	}
	idx := g.pendingInviteIndex(player.UserID)
	if idx < 0 {
		return ErrInviteNotFound
	}

	respondedAt := now
	inv := &g.SentInvites[idx]
	inv.RespondedAt = &respondedAt
	g.UpdatedAt = now

	switch decision {
	case DecisionAccept:
		if err := policy.CanJoin(*g, player); err != nil {
			inv.Status = RequestRejected
			inv.RejectReason = RejectReasonCapacityFilled
			return fmt.Errorf("%w: %v", ErrCapacityFilledSinceRequest, err)
		}
		inv.Status = RequestAccepted
		g.ConfirmedPlayers = append(g.ConfirmedPlayers, confirmedFrom(player, g.Sport, now))
		return nil
	case DecisionDecline, DecisionReject:
		inv.Status = RequestDeclined
		return nil
	default:
		return fmt.Errorf("%w: unsupported decision %q", ErrInvalidGame, decision)
	}
}

// Leave removes a confirmed player. The host must transfer hosting or cancel instead.
func (g *ScheduledGame) Leave(userID string, now time.Time) error {
	if g.Status != StatusScheduled {
		return fmt.Errorf("%w: game is %s", ErrGameNotJoinable, g.Status)
	}
	if g.IsHost(userID) {
		return ErrHostCannotLeave
	}
	idx := g.confirmedIndex(userID)
	if idx < 0 {
		return ErrNotParticipating
	}
	g.ConfirmedPlayers = append(g.ConfirmedPlayers[:idx], g.ConfirmedPlayers[idx+1:]...)
	g.CoHostUserIDs = removeString(g.CoHostUserIDs, userID)
	g.UpdatedAt = now
	return nil
}

func (g *ScheduledGame) AddCoHost(userID, actingUserID string, now time.Time) (bool, error) {
	if g.Status.Terminal() {
		return false, fmt.Errorf("%w: game is %s", ErrGameNotJoinable, g.Status)
	}
	if !g.IsHost(actingUserID) {
		return false, fmt.Errorf("%w: only host can add co-hosts", ErrNotAuthorized)
	}
	if g.IsHost(userID) || g.IsCoHost(userID) {
		return false, nil
	}
	if !g.IsConfirmed(userID) {
		return false, fmt.Errorf("%w: co-host must be a confirmed player", ErrNotParticipating)
	}
	g.CoHostUserIDs = append(g.CoHostUserIDs, userID)
	g.UpdatedAt = now
	return true, nil
}

func (g *ScheduledGame) RemoveCoHost(userID, actingUserID string, now time.Time) (bool, error) {
	if g.Status.Terminal() {
		return false, fmt.Errorf("%w: game is %s", ErrGameNotJoinable, g.Status)
	}
	if !g.IsHost(actingUserID) {
		return false, fmt.Errorf("%w: only host can remove co-hosts", ErrNotAuthorized)
	}
	if !g.IsCoHost(userID) {
		return false, nil
	}
	g.CoHostUserIDs = removeString(g.CoHostUserIDs, userID)
	g.UpdatedAt = now
	return true, nil
}

// TransferHost hands hosting to a confirmed player. The previous host stays on the roster.
func (g *ScheduledGame) TransferHost(newHostID, actingUserID string, now time.Time) error {
	if g.Status.Terminal() {
		return fmt.Errorf("%w: game is %s", ErrGameNotJoinable, g.Status)
	}
	if !g.IsHost(actingUserID) {
		return fmt.Errorf("%w: only host can transfer hosting", ErrNotAuthorized)
	}
	if g.IsHost(newHostID) {
		return nil
	}
	if !g.IsConfirmed(newHostID) {
		return fmt.Errorf("%w: new host must be a confirmed player", ErrNotParticipating)
	}
	g.CoHostUserIDs = removeString(g.CoHostUserIDs, newHostID)
	g.HostUserID = newHostID
	g.UpdatedAt = now
	return nil
}

// SettingsUpdate holds optional edits; nil fields are left unchanged.
type SettingsUpdate struct {
	Title              *string
	Description        *string
	Schedule           *Schedule
	Location           *Location
	MinPlayers         *int
	MaxPlayers         *int
	IsPublic           *bool
	AllowJoinRequests  *bool
	GenderRestriction  *GenderRestriction
	SkillLevelRequired *profile.SkillLevel
}

// UpdateSettings applies host or co-host edits. Tightened restrictions never remove confirmed players.
func (g *ScheduledGame) UpdateSettings(update SettingsUpdate, actingUserID string, now time.Time) error {
	if g.Status != StatusScheduled {
		return fmt.Errorf("%w: game is %s", ErrGameNotJoinable, g.Status)
	}
	if !g.CanManageRoster(actingUserID) {
		return fmt.Errorf("%w: only host or co-host can edit the game", ErrNotAuthorized)
	}

	next := g.Clone()
	if update.Title != nil {
		next.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		next.Description = strings.TrimSpace(*update.Description)
	}
	if update.Schedule != nil {
		next.Schedule = Schedule{StartsAt: update.Schedule.StartsAt.UTC(), EndsAt: update.Schedule.EndsAt.UTC()}
	}
	if update.Location != nil {
		next.Location = *update.Location
	}
	if update.MinPlayers != nil {
		next.MinPlayers = *update.MinPlayers
	}
	if update.MaxPlayers != nil {
		next.MaxPlayers = *update.MaxPlayers
	}
	if update.IsPublic != nil {
		next.IsPublic = *update.IsPublic
	}
	if update.AllowJoinRequests != nil {
		next.AllowJoinRequests = *update.AllowJoinRequests
	}
	if update.GenderRestriction != nil {
		next.GenderRestriction = *update.GenderRestriction
	}
	if update.SkillLevelRequired != nil {
		next.SkillLevelRequired = *update.SkillLevelRequired
	}

	if err := next.Validate(); err != nil {
		return err
	}
	if update.Schedule != nil && !next.Schedule.StartsAt.After(now) {
		return fmt.Errorf("%w: start time must be in the future", ErrInvalidGame)
	}
	if next.MaxPlayers < next.ConfirmedCount() {
		return fmt.Errorf("%w: max players cannot drop below %d confirmed players", ErrInvalidGame, next.ConfirmedCount())
	}

	next.UpdatedAt = now
	*g = next
	return nil
}

// Start moves a scheduled game to ongoing on the host's request.
func (g *ScheduledGame) Start(actingUserID string, now time.Time) error {
	if !g.IsHost(actingUserID) {
		return fmt.Errorf("%w: only host can start the game", ErrNotAuthorized)
	}
	return g.start(now)
}

// StartIfDue moves a scheduled game to ongoing once its start time has passed.
func (g *ScheduledGame) StartIfDue(now time.Time) (bool, error) {
	if g.Status != StatusScheduled || now.Before(g.Schedule.StartsAt) {
		return false, nil
	}
	if err := g.start(now); err != nil {
		return false, err
	}
	return true, nil
}

func (g *ScheduledGame) start(now time.Time) error {
	if g.Status != StatusScheduled {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, g.Status, StatusOngoing)
	}
	startedAt := now
	g.Status = StatusOngoing
	g.StartedAt = &startedAt
	g.UpdatedAt = now
	return nil
}

// Cancel is host-only and requires a reason.
func (g *ScheduledGame) Cancel(actingUserID, reason string, now time.Time) error {
	if !g.IsHost(actingUserID) {
		return fmt.Errorf("%w: only host can cancel the game", ErrNotAuthorized)
	}
	if g.Status != StatusScheduled && g.Status != StatusOngoing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, g.Status, StatusCancelled)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: cancellation reason is required", ErrInvalidGame)
	}

	cancelledAt := now
	g.Status = StatusCancelled
	g.CancelledAt = &cancelledAt
	g.CancellationReason = reason
	g.UpdatedAt = now
	return nil
}

// ResultInput is the host's report of a finished game.
type ResultInput struct {
	Scores        map[string]float64
	WinnerUserIDs []string
	Notes         string
}

// Complete records the result and returns the stats write-back for every confirmed player
// plus the host. Confirmed players missing from Scores are recorded with a zero score.
func (g *ScheduledGame) Complete(actingUserID string, in ResultInput, now time.Time) ([]profile.StatsDelta, error) {
	if !g.IsHost(actingUserID) {
		return nil, fmt.Errorf("%w: only host can complete the game", ErrNotAuthorized)
	}
	if g.Status != StatusScheduled && g.Status != StatusOngoing {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, g.Status, StatusCompleted)
	}
	for userID := range in.Scores {
		if !g.IsConfirmed(userID) {
			return nil, fmt.Errorf("%w: score for non-confirmed player %s", ErrInvalidGame, userID)
		}
	}
	winners := make(map[string]struct{}, len(in.WinnerUserIDs))
	for _, userID := range in.WinnerUserIDs {
		if !g.IsConfirmed(userID) {
			return nil, fmt.Errorf("%w: winner %s is not a confirmed player", ErrInvalidGame, userID)
		}
		winners[userID] = struct{}{}
	}

	scores := make(map[string]float64, g.ConfirmedCount())
	deltas := make([]profile.StatsDelta, 0, g.ConfirmedCount()+1)
	for _, p := range g.ConfirmedPlayers {
		if p.Status != PlayerStatusConfirmed {
			continue
		}
		score := in.Scores[p.UserID]
		scores[p.UserID] = score
		_, won := winners[p.UserID]
		deltas = append(deltas, profile.StatsDelta{
			UserID: p.UserID,
			Played: true,
			Won:    won,
			Hosted: g.IsHost(p.UserID),
			Score:  score,
		})
	}

	if !g.IsConfirmed(g.HostUserID) {
		deltas = append(deltas, profile.StatsDelta{UserID: g.HostUserID, Hosted: true})
	}

	winnerIDs := make([]string, 0, len(winners))
	for _, userID := range in.WinnerUserIDs {
		if _, ok := winners[userID]; ok {
			winnerIDs = append(winnerIDs, userID)
			delete(winners, userID)
		}
	}

	completedAt := now
	g.Status = StatusCompleted
	g.CompletedAt = &completedAt
	g.Result = &GameResult{
		Scores:        scores,
		WinnerUserIDs: winnerIDs,
		Notes:         strings.TrimSpace(in.Notes),
		RecordedAt:    now,
	}
	g.UpdatedAt = now
	return deltas, nil
}

// RecordPayment adds a paid entry for a confirmed player. Repeated reports change nothing.
func (g *ScheduledGame) RecordPayment(userID string, amount int64, reference string, now time.Time) (bool, error) {
	if g.Payment.Terms == PaymentFree {
		return false, fmt.Errorf("%w: game is free", ErrInvalidGame)
	}
	if amount <= 0 {
		return false, fmt.Errorf("%w: payment amount must be positive", ErrInvalidGame)
	}
	if g.IsPaid(userID) {
		return false, nil
	}
	if !g.IsConfirmed(userID) {
		return false, ErrNotParticipating
	}
	g.PaidPlayers = append(g.PaidPlayers, PaidPlayer{
		UserID:    userID,
		Amount:    amount,
		Reference: strings.TrimSpace(reference),
		PaidAt:    now,
	})
	g.UpdatedAt = now
	return true, nil
}

func confirmedFrom(p profile.PlayerProfile, sport string, now time.Time) ConfirmedPlayer {
	level, _ := p.SkillFor(sport)
	return ConfirmedPlayer{
		UserID:     p.UserID,
		Gender:     p.Gender,
		SkillLevel: level,
		JoinedAt:   now,
		Status:     PlayerStatusConfirmed,
	}
}

func removeString(items []string, target string) []string {
	out := items[:0]
	for _, item := range items {
		if item != target {
			out = append(out, item)
		}
	}
	return out
}
