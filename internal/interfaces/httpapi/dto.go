package httpapi

import (
	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
)

type scheduleRequest struct {
	StartsAt string `json:"starts_at" validate:"required"`
	EndsAt   string `json:"ends_at"`
}

type locationRequest struct {
	ArenaID string `json:"arena_id" validate:"max=80"`
	Address string `json:"address" validate:"max=300"`
	City    string `json:"city" validate:"max=120"`
}

type paymentRequest struct {
	Terms         string `json:"terms" validate:"omitempty,oneof=free pay_later prepaid"`
	CostPerPlayer int64  `json:"cost_per_player" validate:"gte=0"`
	Currency      string `json:"currency" validate:"omitempty,len=3"`
	Deadline      string `json:"deadline"`
}

type createGameRequest struct {
	Sport              string          `json:"sport" validate:"required,max=40"`
	Title              string          `json:"title" validate:"required,max=120"`
	Description        string          `json:"description" validate:"max=2000"`
	Schedule           scheduleRequest `json:"schedule"`
	Location           locationRequest `json:"location"`
	MinPlayers         int             `json:"min_players" validate:"required,gte=1"`
	MaxPlayers         int             `json:"max_players" validate:"required,gtefield=MinPlayers"`
	Payment            paymentRequest  `json:"payment"`
	IsPublic           bool            `json:"is_public"`
	AllowJoinRequests  bool            `json:"allow_join_requests"`
	GenderRestriction  string          `json:"gender_restriction" validate:"omitempty,oneof=all male_only female_only mixed"`
	SkillLevelRequired string          `json:"skill_level_required" validate:"omitempty,oneof=beginner intermediate advanced professional"`
	HostJoins          bool            `json:"host_joins"`
}

type updateGameRequest struct {
	Title              *string          `json:"title" validate:"omitempty,max=120"`
	Description        *string          `json:"description" validate:"omitempty,max=2000"`
	Schedule           *scheduleRequest `json:"schedule"`
	Location           *locationRequest `json:"location"`
	MinPlayers         *int             `json:"min_players" validate:"omitempty,gte=1"`
	MaxPlayers         *int             `json:"max_players" validate:"omitempty,gte=1"`
	IsPublic           *bool            `json:"is_public"`
	AllowJoinRequests  *bool            `json:"allow_join_requests"`
	GenderRestriction  *string          `json:"gender_restriction" validate:"omitempty,oneof=all male_only female_only mixed"`
	SkillLevelRequired *string          `json:"skill_level_required" validate:"omitempty,oneof=beginner intermediate advanced professional"`
}

type joinRequestRequest struct {
	Message string `json:"message" validate:"max=500"`
}

type resolveJoinRequestRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accept reject"`
}

type sendInviteRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type respondInviteRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accept decline"`
}

type coHostRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type transferHostRequest struct {
	NewHostUserID string `json:"new_host_user_id" validate:"required"`
}

type cancelGameRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type completeGameRequest struct {
	Scores        map[string]float64 `json:"scores"`
	WinnerUserIDs []string           `json:"winner_user_ids" validate:"dive,required"`
	Notes         string             `json:"notes" validate:"max=2000"`
}

type paymentReportRequest struct {
	GameID    string `json:"game_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
	Amount    int64  `json:"amount" validate:"gte=0"`
	Outcome   string `json:"outcome" validate:"required,oneof=success failure"`
	Reference string `json:"reference" validate:"max=200"`
}

type startGameJobRequest struct {
	GameID string `json:"game_id" validate:"required"`
}

type sportSkillRequest struct {
	Sport      string `json:"sport" validate:"required,max=40"`
	SkillLevel string `json:"skill_level" validate:"required,oneof=beginner intermediate advanced professional"`
}

type availabilityRequest struct {
	PreferredDays   []string `json:"preferred_days" validate:"dive,required"`
	PreferredTimes  []string `json:"preferred_times" validate:"dive,required"`
	WillingToTravel bool     `json:"willing_to_travel"`
	MaxTravelKm     int      `json:"max_travel_km" validate:"gte=0"`
}

type upsertProfileRequest struct {
	DisplayName       string              `json:"display_name" validate:"required,max=80"`
	Gender            string              `json:"gender" validate:"required,oneof=male female other"`
	City              string              `json:"city" validate:"max=120"`
	SportSkills       []sportSkillRequest `json:"sport_skills" validate:"dive"`
	Availability      availabilityRequest `json:"availability"`
	IsPublicProfile   bool                `json:"is_public_profile"`
	LookingForPlayers bool                `json:"looking_for_players"`
	OpenToInvites     bool                `json:"open_to_invites"`
	GenderPreference  string              `json:"gender_preference" validate:"omitempty,oneof=all male_only female_only same_gender"`
}

type confirmedPlayerDTO struct {
	UserID     string `json:"userId"`
	Gender     string `json:"gender"`
	SkillLevel string `json:"skillLevel,omitempty"`
	JoinedAt   string `json:"joinedAt"`
	Status     string `json:"status"`
}

type joinRequestDTO struct {
	UserID       string `json:"userId"`
	Message      string `json:"message,omitempty"`
	Status       string `json:"status"`
	RejectReason string `json:"rejectReason,omitempty"`
	RequestedAt  string `json:"requestedAt"`
	ResolvedAt   string `json:"resolvedAt,omitempty"`
	ResolvedBy   string `json:"resolvedBy,omitempty"`
}

type inviteDTO struct {
	UserID       string `json:"userId"`
	InvitedBy    string `json:"invitedBy"`
	Status       string `json:"status"`
	RejectReason string `json:"rejectReason,omitempty"`
	InvitedAt    string `json:"invitedAt"`
	RespondedAt  string `json:"respondedAt,omitempty"`
}

type paymentDTO struct {
	Terms         string `json:"terms"`
	CostPerPlayer int64  `json:"costPerPlayer"`
	Currency      string `json:"currency,omitempty"`
	Deadline      string `json:"deadline,omitempty"`
}

type paidPlayerDTO struct {
	UserID    string `json:"userId"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference,omitempty"`
	PaidAt    string `json:"paidAt"`
}

type gameResultDTO struct {
	Scores        map[string]float64 `json:"scores"`
	WinnerUserIDs []string           `json:"winnerUserIds"`
	Notes         string             `json:"notes,omitempty"`
	RecordedAt    string             `json:"recordedAt"`
}

type gameDTO struct {
	ID                 string               `json:"id"`
	ShareCode          string               `json:"shareCode"`
	Sport              string               `json:"sport"`
	Title              string               `json:"title"`
	Description        string               `json:"description,omitempty"`
	HostUserID         string               `json:"hostUserId"`
	CoHostUserIDs      []string             `json:"coHostUserIds"`
	StartsAt           string               `json:"startsAt"`
	EndsAt             string               `json:"endsAt,omitempty"`
	ArenaID            string               `json:"arenaId,omitempty"`
	Address            string               `json:"address,omitempty"`
	City               string               `json:"city,omitempty"`
	MinPlayers         int                  `json:"minPlayers"`
	MaxPlayers         int                  `json:"maxPlayers"`
	OpenSlots          int                  `json:"openSlots"`
	ConfirmedPlayers   []confirmedPlayerDTO `json:"confirmedPlayers"`
	JoinRequests       []joinRequestDTO     `json:"joinRequests"`
	Invites            []inviteDTO          `json:"invites"`
	Payment            paymentDTO           `json:"payment"`
	PaidPlayers        []paidPlayerDTO      `json:"paidPlayers"`
	IsPublic           bool                 `json:"isPublic"`
	AllowJoinRequests  bool                 `json:"allowJoinRequests"`
	GenderRestriction  string               `json:"genderRestriction"`
	SkillLevelRequired string               `json:"skillLevelRequired,omitempty"`
	Status             string               `json:"status"`
	StartedAt          string               `json:"startedAt,omitempty"`
	CompletedAt        string               `json:"completedAt,omitempty"`
	CancelledAt        string               `json:"cancelledAt,omitempty"`
	CancellationReason string               `json:"cancellationReason,omitempty"`
	Result             *gameResultDTO       `json:"result,omitempty"`
	Version            int64                `json:"version"`
	CreatedAt          string               `json:"createdAt"`
	UpdatedAt          string               `json:"updatedAt"`
}

type sportSkillDTO struct {
	Sport      string `json:"sport"`
	SkillLevel string `json:"skillLevel"`
}

type availabilityDTO struct {
	PreferredDays   []string `json:"preferredDays"`
	PreferredTimes  []string `json:"preferredTimes"`
	WillingToTravel bool     `json:"willingToTravel"`
	MaxTravelKm     int      `json:"maxTravelKm"`
}

type profileStatsDTO struct {
	GamesPlayed  int     `json:"gamesPlayed"`
	GamesWon     int     `json:"gamesWon"`
	GamesHosted  int     `json:"gamesHosted"`
	TotalScore   float64 `json:"totalScore"`
	AverageScore float64 `json:"averageScore"`
	Rating       float64 `json:"rating"`
}

type profileDTO struct {
	UserID            string          `json:"userId"`
	DisplayName       string          `json:"displayName"`
	Gender            string          `json:"gender"`
	City              string          `json:"city,omitempty"`
	SportSkills       []sportSkillDTO `json:"sportSkills"`
	Availability      availabilityDTO `json:"availability"`
	Stats             profileStatsDTO `json:"stats"`
	IsPublicProfile   bool            `json:"isPublicProfile"`
	LookingForPlayers bool            `json:"lookingForPlayers"`
	OpenToInvites     bool            `json:"openToInvites"`
	GenderPreference  string          `json:"genderPreference"`
	LastActiveAt      string          `json:"lastActiveAt,omitempty"`
}

type profilePageDTO struct {
	Items []profileDTO `json:"items"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type autoStartDTO struct {
	GameID  string `json:"gameId"`
	Started bool   `json:"started"`
}

func gameToDTO(g game.ScheduledGame) gameDTO {
	out := gameDTO{
		ID:                 g.ID,
		ShareCode:          g.ShareCode,
		Sport:              g.Sport,
		Title:              g.Title,
		Description:        g.Description,
		HostUserID:         g.HostUserID,
		CoHostUserIDs:      append([]string{}, g.CoHostUserIDs...),
		StartsAt:           formatTime(g.Schedule.StartsAt),
		EndsAt:             formatTime(g.Schedule.EndsAt),
		ArenaID:            g.Location.ArenaID,
		Address:            g.Location.Address,
		City:               g.Location.City,
		MinPlayers:         g.MinPlayers,
		MaxPlayers:         g.MaxPlayers,
		OpenSlots:          g.OpenSlots(),
		ConfirmedPlayers:   make([]confirmedPlayerDTO, 0, len(g.ConfirmedPlayers)),
		JoinRequests:       make([]joinRequestDTO, 0, len(g.InviteRequests)),
		Invites:            make([]inviteDTO, 0, len(g.SentInvites)),
		PaidPlayers:        make([]paidPlayerDTO, 0, len(g.PaidPlayers)),
		IsPublic:           g.IsPublic,
		AllowJoinRequests:  g.AllowJoinRequests,
		GenderRestriction:  string(g.GenderRestriction),
		SkillLevelRequired: string(g.SkillLevelRequired),
		Status:             string(g.Status),
		StartedAt:          formatOptionalTime(g.StartedAt),
		CompletedAt:        formatOptionalTime(g.CompletedAt),
		CancelledAt:        formatOptionalTime(g.CancelledAt),
		CancellationReason: g.CancellationReason,
		Version:            g.Version,
		CreatedAt:          formatTime(g.CreatedAt),
		UpdatedAt:          formatTime(g.UpdatedAt),
		Payment: paymentDTO{
			Terms:         string(g.Payment.Terms),
			CostPerPlayer: g.Payment.CostPerPlayer,
			Currency:      g.Payment.Currency,
			Deadline:      formatOptionalTime(g.Payment.Deadline),
		},
	}
	for _, p := range g.ConfirmedPlayers {
		out.ConfirmedPlayers = append(out.ConfirmedPlayers, confirmedPlayerDTO{
			UserID:     p.UserID,
			Gender:     string(p.Gender),
			SkillLevel: string(p.SkillLevel),
			JoinedAt:   formatTime(p.JoinedAt),
			Status:     string(p.Status),
		})
	}
	for _, req := range g.InviteRequests {
		out.JoinRequests = append(out.JoinRequests, joinRequestDTO{
			UserID:       req.UserID,
			Message:      req.Message,
			Status:       string(req.Status),
			RejectReason: req.RejectReason,
			RequestedAt:  formatTime(req.RequestedAt),
			ResolvedAt:   formatOptionalTime(req.ResolvedAt),
			ResolvedBy:   req.ResolvedBy,
		})
	}
	for _, inv := range g.SentInvites {
		out.Invites = append(out.Invites, inviteDTO{
			UserID:       inv.UserID,
			InvitedBy:    inv.InvitedBy,
			Status:       string(inv.Status),
			RejectReason: inv.RejectReason,
			InvitedAt:    formatTime(inv.InvitedAt),
			RespondedAt:  formatOptionalTime(inv.RespondedAt),
		})
	}
	for _, paid := range g.PaidPlayers {
		out.PaidPlayers = append(out.PaidPlayers, paidPlayerDTO{
			UserID:    paid.UserID,
			Amount:    paid.Amount,
			Reference: paid.Reference,
			PaidAt:    formatTime(paid.PaidAt),
		})
	}
	if g.Result != nil {
		out.Result = &gameResultDTO{
			Scores:        g.Result.Scores,
			WinnerUserIDs: append([]string{}, g.Result.WinnerUserIDs...),
			Notes:         g.Result.Notes,
			RecordedAt:    formatTime(g.Result.RecordedAt),
		}
	}
	return out
}

func gamesToDTO(items []game.ScheduledGame) []gameDTO {
	out := make([]gameDTO, 0, len(items))
	for _, g := range items {
		out = append(out, gameToDTO(g))
	}
	return out
}

func profileToDTO(p profile.PlayerProfile) profileDTO {
	out := profileDTO{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Gender:      string(p.Gender),
		City:        p.City,
		SportSkills: make([]sportSkillDTO, 0, len(p.SportSkills)),
		Availability: availabilityDTO{
			PreferredDays:   append([]string{}, p.Availability.PreferredDays...),
			PreferredTimes:  append([]string{}, p.Availability.PreferredTimes...),
			WillingToTravel: p.Availability.WillingToTravel,
			MaxTravelKm:     p.Availability.MaxTravelKm,
		},
		Stats: profileStatsDTO{
			GamesPlayed:  p.Stats.GamesPlayed,
			GamesWon:     p.Stats.GamesWon,
			GamesHosted:  p.Stats.GamesHosted,
			TotalScore:   p.Stats.TotalScore,
			AverageScore: p.Stats.AverageScore,
			Rating:       p.Stats.Rating,
		},
		IsPublicProfile:   p.IsPublicProfile,
		LookingForPlayers: p.LookingForPlayers,
		OpenToInvites:     p.OpenToInvites,
		GenderPreference:  string(p.GenderPreference),
		LastActiveAt:      formatTime(p.LastActiveAt),
	}
	for _, s := range p.SportSkills {
		out.SportSkills = append(out.SportSkills, sportSkillDTO{
			Sport:      s.Sport,
			SkillLevel: string(s.SkillLevel),
		})
	}
	return out
}

func profilePageToDTO(page profile.SearchPage) profilePageDTO {
	out := profilePageDTO{
		Items: make([]profileDTO, 0, len(page.Items)),
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
	}
	for _, p := range page.Items {
		out.Items = append(out.Items, profileToDTO(p))
	}
	return out
}
