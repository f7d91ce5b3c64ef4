package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/sourcegraph/conc/pool"
	"github.com/uptrace/uptrace-go/uptrace"

	"github.com/riskibarqy/pickup-games/internal/config"
	"github.com/riskibarqy/pickup-games/internal/platform/logging"
)

// Telemetry owns the process-wide exporters: Uptrace traces, Pyroscope profiles and the pprof listener.
type Telemetry struct {
	logger   *logging.Logger
	tracing  bool
	profiler *pyroscope.Profiler
	pprof    *http.Server
	// PprofAddr is the bound debug address, useful when configured with port 0.
	PprofAddr string
}

// StartTelemetry enables whatever cfg turns on. On error, anything already started is stopped.
func StartTelemetry(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{logger: logger}

	if cfg.UptraceEnabled && cfg.UptraceDSN != "" {
		uptrace.ConfigureOpentelemetry(
			uptrace.WithDSN(cfg.UptraceDSN),
			uptrace.WithServiceName(cfg.ServiceName),
			uptrace.WithServiceVersion(cfg.ServiceVersion),
			uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		)
		t.tracing = true
	}

	if cfg.PyroscopeEnabled {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName:   cfg.PyroscopeAppName,
			ServerAddress:     cfg.PyroscopeServerAddress,
			AuthToken:         cfg.PyroscopeAuthToken,
			BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
			BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
			UploadRate:        cfg.PyroscopeUploadRate,
			Tags:              map[string]string{"env": cfg.AppEnv, "service": cfg.ServiceName},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseSpace,
				pyroscope.ProfileGoroutines,
				pyroscope.ProfileMutexCount,
				pyroscope.ProfileMutexDuration,
			},
		})
		if err != nil {
			_ = t.Shutdown(context.Background())
			return nil, fmt.Errorf("start pyroscope: %w", err)
		}
		t.profiler = profiler
	}

	if cfg.PprofEnabled {
		if err := t.listenPprof(cfg.PprofAddr); err != nil {
			_ = t.Shutdown(context.Background())
			return nil, err
		}
	}

	logger.Info("telemetry configured",
		"uptrace", t.tracing,
		"pyroscope", t.profiler != nil,
		"pprof_addr", t.PprofAddr,
	)
	return t, nil
}

// listenPprof binds before returning so a taken port fails startup instead of a background goroutine.
func (t *Telemetry) listenPprof(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen pprof on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	t.pprof = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	t.PprofAddr = ln.Addr().String()
	go func() {
		if err := t.pprof.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("pprof server failed", "error", err)
		}
	}()
	return nil
}

// Shutdown flushes exporters and closes the debug listener concurrently.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	p := pool.New().WithErrors().WithContext(ctx)
	if t.tracing {
		p.Go(func(ctx context.Context) error { return uptrace.Shutdown(ctx) })
	}
	if t.profiler != nil {
		p.Go(func(context.Context) error { return t.profiler.Stop() })
	}
	if t.pprof != nil {
		p.Go(func(ctx context.Context) error { return t.pprof.Shutdown(ctx) })
	}
	return p.Wait()
}
