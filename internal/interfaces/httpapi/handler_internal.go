package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/pickup-games/internal/usecase"
)

// ReportPayment receives charge outcomes from the payment ledger.
func (h *Handler) ReportPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReportPayment")
	defer span.End()

	var req paymentReportRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.gameService.RecordPaymentOutcome(ctx, usecase.PaymentOutcomeInput{
		GameID:    req.GameID,
		UserID:    req.UserID,
		Amount:    req.Amount,
		Outcome:   usecase.PaymentOutcome(req.Outcome),
		Reference: strings.TrimSpace(req.Reference),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record payment outcome failed",
			"game_id", req.GameID,
			"user_id", req.UserID,
			"outcome", req.Outcome,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(updated))
}

// RunStartGameJob is the delayed callback published when a game is scheduled.
// Games that are no longer due or no longer scheduled are acknowledged without change.
func (h *Handler) RunStartGameJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunStartGameJob")
	defer span.End()

	var req startGameJobRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	started, err := h.gameService.StartIfDue(ctx, req.GameID)
	if err != nil {
		h.logger.WarnContext(ctx, "run start game job failed", "game_id", req.GameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, autoStartDTO{GameID: req.GameID, Started: started})
}
