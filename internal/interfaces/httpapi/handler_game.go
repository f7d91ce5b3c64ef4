package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
	"github.com/riskibarqy/pickup-games/internal/usecase"
)

func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateGame")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createGameRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	schedule, err := scheduleFromRequest(req.Schedule)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	deadline, err := parseOptionalTimestamp("payment.deadline", req.Payment.Deadline)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.gameService.CreateGame(ctx, usecase.CreateGameInput{
		HostUserID: principal.UserID,
		Game: game.NewGameInput{
			Sport:       req.Sport,
			Title:       req.Title,
			Description: req.Description,
			Schedule:    schedule,
			Location:    locationFromRequest(req.Location),
			MinPlayers:  req.MinPlayers,
			MaxPlayers:  req.MaxPlayers,
			Payment: game.Payment{
				Terms:         game.PaymentTerms(req.Payment.Terms),
				CostPerPlayer: req.Payment.CostPerPlayer,
				Currency:      strings.ToUpper(strings.TrimSpace(req.Payment.Currency)),
				Deadline:      deadline,
			},
			IsPublic:           req.IsPublic,
			AllowJoinRequests:  req.AllowJoinRequests,
			GenderRestriction:  game.GenderRestriction(req.GenderRestriction),
			SkillLevelRequired: profile.SkillLevel(req.SkillLevelRequired),
			HostJoins:          req.HostJoins,
		},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create game failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, gameToDTO(created))
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGame")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	g, err := h.gameService.GetGame(ctx, r.PathValue("gameID"), principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(g))
}

func (h *Handler) GetGameByShareCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameByShareCode")
	defer span.End()

	g, err := h.gameService.GetGameByShareCode(ctx, r.PathValue("shareCode"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(g))
}

func (h *Handler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateGame")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateGameRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	update := game.SettingsUpdate{
		Title:             req.Title,
		Description:       req.Description,
		MinPlayers:        req.MinPlayers,
		MaxPlayers:        req.MaxPlayers,
		IsPublic:          req.IsPublic,
		AllowJoinRequests: req.AllowJoinRequests,
	}
	if req.Schedule != nil {
		schedule, err := scheduleFromRequest(*req.Schedule)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		update.Schedule = &schedule
	}
	if req.Location != nil {
		location := locationFromRequest(*req.Location)
		update.Location = &location
	}
	if req.GenderRestriction != nil {
		restriction := game.GenderRestriction(*req.GenderRestriction)
		update.GenderRestriction = &restriction
	}
	if req.SkillLevelRequired != nil {
		level := profile.SkillLevel(*req.SkillLevelRequired)
		update.SkillLevelRequired = &level
	}

	gameID := r.PathValue("gameID")
	updated, err := h.gameService.UpdateGameSettings(ctx, gameID, principal.UserID, update)
	if err != nil {
		h.logger.WarnContext(ctx, "update game failed", "game_id", gameID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(updated))
}

func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartGame")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	gameID := r.PathValue("gameID")
	started, err := h.gameService.TransitionToOngoing(ctx, gameID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "start game failed", "game_id", gameID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(started))
}

func (h *Handler) CancelGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelGame")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req cancelGameRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	gameID := r.PathValue("gameID")
	cancelled, err := h.gameService.CancelGame(ctx, gameID, principal.UserID, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "cancel game failed", "game_id", gameID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(cancelled))
}

func (h *Handler) CompleteGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteGame")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req completeGameRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	gameID := r.PathValue("gameID")
	completed, err := h.gameService.CompleteGame(ctx, usecase.CompleteGameInput{
		GameID:       gameID,
		ActingUserID: principal.UserID,
		Result: game.ResultInput{
			Scores:        req.Scores,
			WinnerUserIDs: req.WinnerUserIDs,
			Notes:         req.Notes,
		},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "complete game failed", "game_id", gameID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(completed))
}

func scheduleFromRequest(req scheduleRequest) (game.Schedule, error) {
	startsAt, err := parseTimestamp("schedule.starts_at", req.StartsAt)
	if err != nil {
		return game.Schedule{}, err
	}
	schedule := game.Schedule{StartsAt: startsAt}
	endsAt, err := parseOptionalTimestamp("schedule.ends_at", req.EndsAt)
	if err != nil {
		return game.Schedule{}, err
	}
	if endsAt != nil {
		schedule.EndsAt = *endsAt
	}
	return schedule, nil
}

func locationFromRequest(req locationRequest) game.Location {
	return game.Location{
		ArenaID: strings.TrimSpace(req.ArenaID),
		Address: strings.TrimSpace(req.Address),
		City:    strings.TrimSpace(req.City),
	}
}
