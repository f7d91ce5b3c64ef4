package httpapi

import (
	"net/http"

	"github.com/riskibarqy/pickup-games/internal/domain/profile"
	"github.com/riskibarqy/pickup-games/internal/usecase"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetProfile")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	p, err := h.directoryService.GetProfile(ctx, r.PathValue("userID"), principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileToDTO(p))
}

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyProfile")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	p, err := h.directoryService.GetProfile(ctx, principal.UserID, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileToDTO(p))
}

func (h *Handler) UpsertMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertMyProfile")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req upsertProfileRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	skills := make([]profile.SportSkill, 0, len(req.SportSkills))
	for _, s := range req.SportSkills {
		skills = append(skills, profile.SportSkill{
			Sport:      s.Sport,
			SkillLevel: profile.SkillLevel(s.SkillLevel),
		})
	}

	saved, err := h.directoryService.UpsertMyProfile(ctx, usecase.UpsertProfileInput{
		UserID:      principal.UserID,
		DisplayName: req.DisplayName,
		Gender:      profile.Gender(req.Gender),
		City:        req.City,
		SportSkills: skills,
		Availability: profile.Availability{
			PreferredDays:   req.Availability.PreferredDays,
			PreferredTimes:  req.Availability.PreferredTimes,
			WillingToTravel: req.Availability.WillingToTravel,
			MaxTravelKm:     req.Availability.MaxTravelKm,
		},
		IsPublicProfile:   req.IsPublicProfile,
		LookingForPlayers: req.LookingForPlayers,
		OpenToInvites:     req.OpenToInvites,
		GenderPreference:  profile.GenderPreference(req.GenderPreference),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "upsert profile failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileToDTO(saved))
}
