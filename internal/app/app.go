package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sourcegraph/conc/pool"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/pickup-games/internal/config"
	"github.com/riskibarqy/pickup-games/internal/domain/eligibility"
	"github.com/riskibarqy/pickup-games/internal/domain/game"
	"github.com/riskibarqy/pickup-games/internal/domain/profile"
	"github.com/riskibarqy/pickup-games/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/pickup-games/internal/infrastructure/account/jwtauth"
	"github.com/riskibarqy/pickup-games/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/pickup-games/internal/infrastructure/lock"
	cacherepo "github.com/riskibarqy/pickup-games/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/pickup-games/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pickup-games/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/pickup-games/internal/interfaces/httpapi"
	"github.com/riskibarqy/pickup-games/internal/observability"
	"github.com/riskibarqy/pickup-games/internal/platform/id"
	"github.com/riskibarqy/pickup-games/internal/platform/keylock"
	"github.com/riskibarqy/pickup-games/internal/platform/logging"
	"github.com/riskibarqy/pickup-games/internal/usecase"
)

const dependencyPingTimeout = 5 * time.Second

// App holds the wired services and the resources that must be released on shutdown.
type App struct {
	Server  *http.Server
	Games   *usecase.GameService
	Metrics *observability.Metrics

	cfg     config.Config
	logger  *logging.Logger
	closers []func(context.Context) error
}

type repositories struct {
	games    game.Repository
	profiles profile.Repository
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{cfg: cfg, logger: logger}

	repos, err := a.buildRepositories()
	if err != nil {
		a.closeQuietly()
		return nil, err
	}

	locker, err := a.buildLocker()
	if err != nil {
		a.closeQuietly()
		return nil, err
	}

	verifier, err := a.buildVerifier()
	if err != nil {
		a.closeQuietly()
		return nil, err
	}

	opts := usecase.GameServiceOptions{MaxMutationAttempts: cfg.GameMutationMaxAttempts}
	var routeMetrics httpapi.RouteMetrics
	if cfg.MetricsEnabled {
		a.Metrics = observability.NewMetrics()
		opts.Recorder = a.Metrics
		routeMetrics = a.Metrics
	}
	if cfg.QStashEnabled {
		publisher, err := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.JobCallbackBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
		}, logger)
		if err != nil {
			a.closeQuietly()
			return nil, err
		}
		opts.StartScheduler = publisher
	}

	policy := eligibility.NewPolicy()
	a.Games = usecase.NewGameService(repos.games, repos.profiles, policy, locker, id.NewUUIDGenerator(), logger, opts)
	matchingService := usecase.NewMatchingService(repos.games, repos.profiles, policy)
	directoryService := usecase.NewPlayerDirectoryService(repos.profiles)

	handler := httpapi.NewHandler(a.Games, matchingService, directoryService, logger)
	router := httpapi.NewRouter(
		handler,
		verifier,
		logger,
		routeMetrics,
		cfg.SwaggerEnabled,
		cfg.CORSAllowedOrigins,
		cfg.InternalJobToken,
	)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("application wired",
		"storage_backend", cfg.StorageBackend,
		"lock_backend", cfg.LockBackend,
		"auth_provider", cfg.AuthProvider,
		"cache_enabled", cfg.CacheEnabled,
		"qstash_enabled", cfg.QStashEnabled,
		"metrics_enabled", cfg.MetricsEnabled,
	)
	return a, nil
}

func (a *App) buildRepositories() (repositories, error) {
	switch a.cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := a.openDB()
		if err != nil {
			return repositories{}, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })

		repos := repositories{
			games:    postgres.NewGameRepository(db),
			profiles: postgres.NewProfileRepository(db),
		}
		if a.cfg.CacheEnabled {
			cachedProfiles := cacherepo.NewProfileRepository(repos.profiles, a.cfg.CacheTTL)
			repos.profiles = cachedProfiles
			repos.games = cacherepo.NewGameRepository(repos.games, cachedProfiles)
		}
		return repos, nil
	case config.StorageMemory, "":
		profiles := memory.NewProfileRepository(memory.SeedProfiles(time.Now()))
		return repositories{
			games:    memory.NewGameRepository(profiles, nil),
			profiles: profiles,
		}, nil
	default:
		return repositories{}, fmt.Errorf("unsupported storage backend %q", a.cfg.StorageBackend)
	}
}

func (a *App) openDB() (*sqlx.DB, error) {
	db, err := otelsqlx.Open(
		"postgres",
		DatabaseURL(a.cfg),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(a.cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(a.cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(a.cfg.DBMaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), dependencyPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (a *App) buildLocker() (usecase.GameLocker, error) {
	switch a.cfg.LockBackend {
	case config.LockRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), dependencyPingTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		return lock.NewRedisLocker(client, a.cfg.LockTTL, a.logger), nil
	case config.LockMemory, "":
		return keylock.New(), nil
	default:
		return nil, fmt.Errorf("unsupported lock backend %q", a.cfg.LockBackend)
	}
}

func (a *App) buildVerifier() (httpapi.TokenVerifier, error) {
	switch a.cfg.AuthProvider {
	case config.AuthJWT:
		verifier, err := jwtauth.NewVerifier(a.cfg.JWTSecret, a.cfg.JWTIssuer)
		if err != nil {
			return nil, fmt.Errorf("build jwt verifier: %w", err)
		}
		return verifier, nil
	case config.AuthAnubis, "":
		return anubis.NewClient(
			&http.Client{Timeout: a.cfg.AnubisTimeout},
			a.cfg.AnubisBaseURL,
			a.cfg.AnubisIntrospectURL,
			a.cfg.AnubisAdminKey,
			anubis.CircuitBreakerConfig{
				Enabled:          a.cfg.AnubisCircuitEnabled,
				FailureThreshold: a.cfg.AnubisCircuitFailureCount,
				OpenTimeout:      a.cfg.AnubisCircuitOpenTimeout,
				HalfOpenMaxReq:   a.cfg.AnubisCircuitHalfOpenMaxReq,
			},
			a.logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported auth provider %q", a.cfg.AuthProvider)
	}
}

// Close releases database and redis connections concurrently.
func (a *App) Close(ctx context.Context) error {
	p := pool.New().WithErrors()
	for _, closeFn := range a.closers {
		p.Go(func() error { return closeFn(ctx) })
	}
	a.closers = nil
	return p.Wait()
}

func (a *App) closeQuietly() {
	if err := a.Close(context.Background()); err != nil {
		a.logger.Warn("release partially wired resources failed", "error", err)
	}
}
