package httpapi

import (
	"net/http"

	"github.com/riskibarqy/pickup-games/internal/platform/logging"
)

// RouteMetrics exposes request metrics. Middleware must wrap the mux directly so the
// matched route pattern is visible after dispatch.
type RouteMetrics interface {
	Handler() http.Handler
	Middleware(next http.Handler) http.Handler
}

func NewRouter(
	handler *Handler,
	verifier TokenVerifier,
	logger *logging.Logger,
	metrics RouteMetrics,
	swaggerEnabled bool,
	corsAllowedOrigins []string,
	internalJobToken string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, metrics, swaggerEnabled)
	registerGameRoutes(mux, handler, verifier)
	registerRosterRoutes(mux, handler, verifier)
	registerDirectoryRoutes(mux, handler, verifier)
	registerInternalRoutes(mux, handler, internalJobToken)

	var routed http.Handler = mux
	if metrics != nil {
		routed = metrics.Middleware(mux)
	}

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, routed))))
}
