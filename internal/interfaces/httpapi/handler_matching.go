package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
	"github.com/riskibarqy/pickup-games/internal/usecase"
)

func (h *Handler) ListJoinableGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListJoinableGames")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	query := r.URL.Query()
	filter := game.DiscoveryFilter{
		Sport: query.Get("sport"),
		City:  query.Get("city"),
	}
	if filter.StartsFrom, err = parseOptionalTimestamp("from", query.Get("from")); err != nil {
		writeError(ctx, w, err)
		return
	}
	if filter.StartsTo, err = parseOptionalTimestamp("to", query.Get("to")); err != nil {
		writeError(ctx, w, err)
		return
	}
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		writeError(ctx, w, err)
		return
	}

	games, err := h.matchingService.FindJoinableGames(ctx, principal.UserID, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "find joinable games failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gamesToDTO(games))
}

func (h *Handler) ListInvitablePlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListInvitablePlayers")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := queryInt(r, "page")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.matchingService.FindInvitableCandidates(ctx, usecase.FindInvitableInput{
		GameID:       r.PathValue("gameID"),
		ActingUserID: principal.UserID,
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profilePageToDTO(result))
}

func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SearchPlayers")
	defer span.End()

	filter, err := searchFilterFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.directoryService.SearchPlayers(ctx, filter)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profilePageToDTO(result))
}

func searchFilterFromQuery(r *http.Request) (profile.SearchFilter, error) {
	query := r.URL.Query()
	filter := profile.SearchFilter{
		Sport:    query.Get("sport"),
		MinSkill: profile.SkillLevel(strings.ToLower(strings.TrimSpace(query.Get("min_skill")))),
		Gender:   profile.Gender(strings.ToLower(strings.TrimSpace(query.Get("gender")))),
		City:     query.Get("city"),
		Name:     query.Get("name"),
	}

	var err error
	if filter.LookingForPlayers, err = queryBool(r, "looking_for_players"); err != nil {
		return profile.SearchFilter{}, err
	}
	if filter.OpenToInvites, err = queryBool(r, "open_to_invites"); err != nil {
		return profile.SearchFilter{}, err
	}
	if filter.Page, err = queryInt(r, "page"); err != nil {
		return profile.SearchFilter{}, err
	}
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		return profile.SearchFilter{}, err
	}
	return filter, nil
}
