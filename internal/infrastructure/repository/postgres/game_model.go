package postgres

import (
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
)

const shareCodeConstraint = "scheduled_games_share_code_key"

type gameTableModel struct {
	ID                 string         `db:"id"`
	ShareCode          string         `db:"share_code"`
	Sport              string         `db:"sport"`
	Title              string         `db:"title"`
	Description        string         `db:"description"`
	HostUserID         string         `db:"host_user_id"`
	CoHostUserIDs      pq.StringArray `db:"co_host_user_ids"`
	StartsAt           time.Time      `db:"starts_at"`
	EndsAt             *time.Time     `db:"ends_at"`
	ArenaID            string         `db:"arena_id"`
	Address            string         `db:"address"`
	City               string         `db:"city"`
	MinPlayers         int            `db:"min_players"`
	MaxPlayers         int            `db:"max_players"`
	ConfirmedPlayers   jsonColumn     `db:"confirmed_players"`
	InviteRequests     jsonColumn     `db:"invite_requests"`
	SentInvites        jsonColumn     `db:"sent_invites"`
	PaymentTerms       string         `db:"payment_terms"`
	CostPerPlayer      int64          `db:"cost_per_player"`
	Currency           string         `db:"currency"`
	PaymentDeadline    *time.Time     `db:"payment_deadline"`
	PaidPlayers        jsonColumn     `db:"paid_players"`
	IsPublic           bool           `db:"is_public"`
	AllowJoinRequests  bool           `db:"allow_join_requests"`
	GenderRestriction  string         `db:"gender_restriction"`
	SkillLevelRequired string         `db:"skill_level_required"`
	Status             string         `db:"status"`
	StartedAt          *time.Time     `db:"started_at"`
	CompletedAt        *time.Time     `db:"completed_at"`
	CancelledAt        *time.Time     `db:"cancelled_at"`
	CancellationReason string         `db:"cancellation_reason"`
	Result             jsonColumn     `db:"result"`
	Version            int64          `db:"version"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

type confirmedPlayerRecord struct {
	UserID     string    `json:"user_id"`
	Gender     string    `json:"gender"`
	SkillLevel string    `json:"skill_level,omitempty"`
	JoinedAt   time.Time `json:"joined_at"`
	Status     string    `json:"status"`
}

type joinRequestRecord struct {
	UserID       string     `json:"user_id"`
	Message      string     `json:"message,omitempty"`
	Status       string     `json:"status"`
	RejectReason string     `json:"reject_reason,omitempty"`
	RequestedAt  time.Time  `json:"requested_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy   string     `json:"resolved_by,omitempty"`
}

type inviteRecord struct {
	UserID       string     `json:"user_id"`
	InvitedBy    string     `json:"invited_by"`
	Status       string     `json:"status"`
	RejectReason string     `json:"reject_reason,omitempty"`
	InvitedAt    time.Time  `json:"invited_at"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
}

type paidPlayerRecord struct {
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	Reference string    `json:"reference,omitempty"`
	PaidAt    time.Time `json:"paid_at"`
}

type gameResultRecord struct {
	Scores        map[string]float64 `json:"scores"`
	WinnerUserIDs []string           `json:"winner_user_ids"`
	Notes         string             `json:"notes,omitempty"`
	RecordedAt    time.Time          `json:"recorded_at"`
}

func gameToRow(g game.ScheduledGame) (gameTableModel, error) {
	confirmed := make([]confirmedPlayerRecord, 0, len(g.ConfirmedPlayers))
	for _, p := range g.ConfirmedPlayers {
		confirmed = append(confirmed, confirmedPlayerRecord{
			UserID:     p.UserID,
			Gender:     string(p.Gender),
			SkillLevel: string(p.SkillLevel),
			JoinedAt:   p.JoinedAt,
			Status:     string(p.Status),
		})
	}
	requests := make([]joinRequestRecord, 0, len(g.InviteRequests))
	for _, r := range g.InviteRequests {
		requests = append(requests, joinRequestRecord{
			UserID:       r.UserID,
			Message:      r.Message,
			Status:       string(r.Status),
			RejectReason: r.RejectReason,
			RequestedAt:  r.RequestedAt,
			ResolvedAt:   r.ResolvedAt,
			ResolvedBy:   r.ResolvedBy,
		})
	}
	invites := make([]inviteRecord, 0, len(g.SentInvites))
	for _, inv := range g.SentInvites {
		invites = append(invites, inviteRecord{
			UserID:       inv.UserID,
			InvitedBy:    inv.InvitedBy,
			Status:       string(inv.Status),
			RejectReason: inv.RejectReason,
			InvitedAt:    inv.InvitedAt,
			RespondedAt:  inv.RespondedAt,
		})
	}
	paid := make([]paidPlayerRecord, 0, len(g.PaidPlayers))
	for _, p := range g.PaidPlayers {
		paid = append(paid, paidPlayerRecord{UserID: p.UserID, Amount: p.Amount, Reference: p.Reference, PaidAt: p.PaidAt})
	}

	row := gameTableModel{
		ID:                 g.ID,
		ShareCode:          g.ShareCode,
		Sport:              g.Sport,
		Title:              g.Title,
		Description:        g.Description,
		HostUserID:         g.HostUserID,
		CoHostUserIDs:      pq.StringArray(append([]string{}, g.CoHostUserIDs...)),
		StartsAt:           g.Schedule.StartsAt,
		ArenaID:            g.Location.ArenaID,
		Address:            g.Location.Address,
		City:               g.Location.City,
		MinPlayers:         g.MinPlayers,
		MaxPlayers:         g.MaxPlayers,
		PaymentTerms:       string(g.Payment.Terms),
		CostPerPlayer:      g.Payment.CostPerPlayer,
		Currency:           g.Payment.Currency,
		PaymentDeadline:    g.Payment.Deadline,
		IsPublic:           g.IsPublic,
		AllowJoinRequests:  g.AllowJoinRequests,
		GenderRestriction:  string(g.GenderRestriction),
		SkillLevelRequired: string(g.SkillLevelRequired),
		Status:             string(g.Status),
		StartedAt:          g.StartedAt,
		CompletedAt:        g.CompletedAt,
		CancelledAt:        g.CancelledAt,
		CancellationReason: g.CancellationReason,
		Version:            g.Version,
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
	if !g.Schedule.EndsAt.IsZero() {
		endsAt := g.Schedule.EndsAt
		row.EndsAt = &endsAt
	}

	var err error
	if row.ConfirmedPlayers, err = encodeJSONB(confirmed); err != nil {
		return gameTableModel{}, fmt.Errorf("encode confirmed players: %w", err)
	}
	if row.InviteRequests, err = encodeJSONB(requests); err != nil {
		return gameTableModel{}, fmt.Errorf("encode invite requests: %w", err)
	}
	if row.SentInvites, err = encodeJSONB(invites); err != nil {
		return gameTableModel{}, fmt.Errorf("encode sent invites: %w", err)
	}
	if row.PaidPlayers, err = encodeJSONB(paid); err != nil {
		return gameTableModel{}, fmt.Errorf("encode paid players: %w", err)
	}
	if g.Result != nil {
		row.Result, err = encodeJSONB(gameResultRecord{
			Scores:        g.Result.Scores,
			WinnerUserIDs: g.Result.WinnerUserIDs,
			Notes:         g.Result.Notes,
			RecordedAt:    g.Result.RecordedAt,
		})
		if err != nil {
			return gameTableModel{}, fmt.Errorf("encode result: %w", err)
		}
	}
	return row, nil
}

func gameFromRow(row gameTableModel) (game.ScheduledGame, error) {
	var (
		confirmed []confirmedPlayerRecord
		requests  []joinRequestRecord
		invites   []inviteRecord
		paid      []paidPlayerRecord
	)
	if err := decodeJSONB(row.ConfirmedPlayers, &confirmed); err != nil {
		return game.ScheduledGame{}, fmt.Errorf("decode confirmed players of %s: %w", row.ID, err)
	}
	if err := decodeJSONB(row.InviteRequests, &requests); err != nil {
		return game.ScheduledGame{}, fmt.Errorf("decode invite requests of %s: %w", row.ID, err)
	}
	if err := decodeJSONB(row.SentInvites, &invites); err != nil {
		return game.ScheduledGame{}, fmt.Errorf("decode sent invites of %s: %w", row.ID, err)
	}
	if err := decodeJSONB(row.PaidPlayers, &paid); err != nil {
		return game.ScheduledGame{}, fmt.Errorf("decode paid players of %s: %w", row.ID, err)
	}

	g := game.ScheduledGame{
		ID:            row.ID,
		ShareCode:     row.ShareCode,
		Sport:         row.Sport,
		Title:         row.Title,
		Description:   row.Description,
		HostUserID:    row.HostUserID,
		CoHostUserIDs: append([]string(nil), row.CoHostUserIDs...),
		Schedule:      game.Schedule{StartsAt: row.StartsAt.UTC()},
		Location:      game.Location{ArenaID: row.ArenaID, Address: row.Address, City: row.City},
		MinPlayers:    row.MinPlayers,
		MaxPlayers:    row.MaxPlayers,
		Payment: game.Payment{
			Terms:         game.PaymentTerms(row.PaymentTerms),
			CostPerPlayer: row.CostPerPlayer,
			Currency:      row.Currency,
			Deadline:      row.PaymentDeadline,
		},
		IsPublic:           row.IsPublic,
		AllowJoinRequests:  row.AllowJoinRequests,
		GenderRestriction:  game.GenderRestriction(row.GenderRestriction),
		SkillLevelRequired: profile.SkillLevel(row.SkillLevelRequired),
		Status:             game.Status(row.Status),
		StartedAt:          row.StartedAt,
		CompletedAt:        row.CompletedAt,
		CancelledAt:        row.CancelledAt,
		CancellationReason: row.CancellationReason,
		Version:            row.Version,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
	if row.EndsAt != nil {
		g.Schedule.EndsAt = row.EndsAt.UTC()
	}

	for _, p := range confirmed {
		g.ConfirmedPlayers = append(g.ConfirmedPlayers, game.ConfirmedPlayer{
			UserID:     p.UserID,
			Gender:     profile.Gender(p.Gender),
			SkillLevel: profile.SkillLevel(p.SkillLevel),
			JoinedAt:   p.JoinedAt,
			Status:     game.PlayerStatus(p.Status),
		})
	}
	for _, r := range requests {
		g.InviteRequests = append(g.InviteRequests, game.JoinRequest{
			UserID:       r.UserID,
			Message:      r.Message,
			Status:       game.RequestStatus(r.Status),
			RejectReason: r.RejectReason,
			RequestedAt:  r.RequestedAt,
			ResolvedAt:   r.ResolvedAt,
			ResolvedBy:   r.ResolvedBy,
		})
	}
	for _, inv := range invites {
		g.SentInvites = append(g.SentInvites, game.Invite{
			UserID:       inv.UserID,
			InvitedBy:    inv.InvitedBy,
			Status:       game.RequestStatus(inv.Status),
			RejectReason: inv.RejectReason,
			InvitedAt:    inv.InvitedAt,
			RespondedAt:  inv.RespondedAt,
		})
	}
	for _, p := range paid {
		g.PaidPlayers = append(g.PaidPlayers, game.PaidPlayer{UserID: p.UserID, Amount: p.Amount, Reference: p.Reference, PaidAt: p.PaidAt})
	}

	if len(row.Result) > 0 {
		var result gameResultRecord
		if err := decodeJSONB(row.Result, &result); err != nil {
			return game.ScheduledGame{}, fmt.Errorf("decode result of %s: %w", row.ID, err)
		}
		g.Result = &game.GameResult{
			Scores:        result.Scores,
			WinnerUserIDs: result.WinnerUserIDs,
			Notes:         result.Notes,
			RecordedAt:    result.RecordedAt,
		}
	}
	return g, nil
}
