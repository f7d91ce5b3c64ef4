package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metrics RouteMetrics, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerGameRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/games", RequireAuth(verifier, http.HandlerFunc(handler.CreateGame)))
	mux.Handle("GET /v1/games/joinable", RequireAuth(verifier, http.HandlerFunc(handler.ListJoinableGames)))
	mux.Handle("GET /v1/games/{gameID}", RequireAuth(verifier, http.HandlerFunc(handler.GetGame)))
	mux.Handle("PATCH /v1/games/{gameID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateGame)))
	mux.Handle("POST /v1/games/{gameID}/start", RequireAuth(verifier, http.HandlerFunc(handler.StartGame)))
	mux.Handle("POST /v1/games/{gameID}/cancel", RequireAuth(verifier, http.HandlerFunc(handler.CancelGame)))
	mux.Handle("POST /v1/games/{gameID}/complete", RequireAuth(verifier, http.HandlerFunc(handler.CompleteGame)))
	// Share links are public so a private game can be previewed before sign-in.
	mux.HandleFunc("GET /v1/shared-games/{shareCode}", handler.GetGameByShareCode)
}

func registerRosterRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/games/{gameID}/join-requests", RequireAuth(verifier, http.HandlerFunc(handler.RequestToJoin)))
	mux.Handle("DELETE /v1/games/{gameID}/join-requests/me", RequireAuth(verifier, http.HandlerFunc(handler.WithdrawJoinRequest)))
	mux.Handle("POST /v1/games/{gameID}/join-requests/{userID}/resolve", RequireAuth(verifier, http.HandlerFunc(handler.ResolveJoinRequest)))
	mux.Handle("POST /v1/games/{gameID}/invites", RequireAuth(verifier, http.HandlerFunc(handler.SendInvite)))
	mux.Handle("POST /v1/games/{gameID}/invites/respond", RequireAuth(verifier, http.HandlerFunc(handler.RespondToInvite)))
	mux.Handle("POST /v1/games/{gameID}/leave", RequireAuth(verifier, http.HandlerFunc(handler.LeaveGame)))
	mux.Handle("POST /v1/games/{gameID}/co-hosts", RequireAuth(verifier, http.HandlerFunc(handler.AddCoHost)))
	mux.Handle("DELETE /v1/games/{gameID}/co-hosts/{userID}", RequireAuth(verifier, http.HandlerFunc(handler.RemoveCoHost)))
	mux.Handle("POST /v1/games/{gameID}/transfer-host", RequireAuth(verifier, http.HandlerFunc(handler.TransferHost)))
}

func registerDirectoryRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/games/{gameID}/invitable-players", RequireAuth(verifier, http.HandlerFunc(handler.ListInvitablePlayers)))
	mux.Handle("GET /v1/players", RequireAuth(verifier, http.HandlerFunc(handler.SearchPlayers)))
	mux.Handle("GET /v1/profiles/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyProfile)))
	mux.Handle("PUT /v1/profiles/me", RequireAuth(verifier, http.HandlerFunc(handler.UpsertMyProfile)))
	mux.Handle("GET /v1/profiles/{userID}", RequireAuth(verifier, http.HandlerFunc(handler.GetProfile)))
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/payments/report", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ReportPayment)))
	mux.Handle("POST /v1/internal/jobs/start-game", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunStartGameJob)))
}
