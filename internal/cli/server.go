package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"quiz-app-service/internal/app"
	"quiz-app-service/internal/config"
	"quiz-app-service/internal/generate"
	"quiz-app-service/internal/infra/memory"
	"quiz-app-service/internal/infra/postgres"
	rediscache "quiz-app-service/internal/infra/redis"
	"quiz-app-service/internal/logging"
	transport "quiz-app-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type stores struct {
	users   app.UserRepository
	quizzes app.QuizRepository
	results app.ResultRepository
	loader  memory.QuizLoader
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Init(cfg.Log.Level, cfg.Log.Pretty)

	var cleanup []func()
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	st, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	cleanup = append(cleanup, closeStores)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cleanup = append(cleanup, func() { _ = redisClient.Close() })
	}

	quizTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 5*time.Minute)
	var cache app.QuizCache
	if redisClient != nil {
		cache = rediscache.NewQuizCache(redisClient, st.loader, quizTTL)
	} else {
		cache = memory.NewQuizCache(st.loader, quizTTL)
	}

	generator, closeGen, err := selectGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	cleanup = append(cleanup, closeGen)

	tokenTTL, err := config.ParseDuration(cfg.Auth.JWTExpiration)
	if err != nil {
		return err
	}
	tokens := app.NewTokenIssuer(cfg.Auth.JWTSecret, tokenTTL)

	if strings.EqualFold(cfg.Log.Level, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := transport.NewRouter(transport.Services{
		Auth:       app.NewAuthService(st.users, tokens),
		Quizzes:    app.NewQuizService(st.quizzes, cache, st.users, generator, selectHeadlines(cfg)),
		Results:    app.NewResultService(st.results, cache, st.users),
		Limiter:    selectLimiter(cfg, redisClient),
		CORSOrigin: cfg.Server.CORSOrigin,
	})

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", finalPort).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		log.Error().Err(err).Msg("failed to start server")
		return fmt.Errorf("serve: %w", err)
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStores picks Postgres when a URL is configured and in-process maps otherwise.
func openStores(ctx context.Context, cfg config.Config) (stores, func(), error) {
	if cfg.Postgres.URL == "" {
		log.Warn().Msg("postgres not configured; using in-memory stores")
		quizzes := memory.NewQuizStore()
		return stores{
			users:   memory.NewUserStore(),
			quizzes: quizzes,
			results: memory.NewResultStore(),
			loader:  quizzes,
		}, func() {}, nil
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return stores{}, nil, err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return stores{}, nil, err
	}
	db := postgres.Open(cfg.Postgres.URL)
	closeAll := func() {
		pool.Close()
		_ = db.Close()
	}
	return stores{
		users:   postgres.NewUserStore(db),
		quizzes: postgres.NewQuizStore(db),
		results: postgres.NewResultStore(db),
		loader:  postgres.NewQuizLoader(pool),
	}, closeAll, nil
}

// selectGenerator resolves the configured question provider once at startup.
// A hosted provider without an API key falls back to the mock.
func selectGenerator(ctx context.Context, cfg config.Config) (app.QuestionGenerator, func(), error) {
	provider := strings.ToLower(cfg.AI.Provider)
	if provider != config.ProviderMock && cfg.AI.APIKey == "" {
		log.Warn().Str("provider", provider).Msg("ai api key not configured; using mock questions")
		provider = config.ProviderMock
	}

	switch provider {
	case config.ProviderOpenAI:
		return generate.NewOpenAIGenerator(cfg.AI.APIKey, cfg.AI.Model), func() {}, nil
	case config.ProviderGemini:
		gen, err := generate.NewGeminiGenerator(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			return nil, nil, err
		}
		return gen, func() { _ = gen.Close() }, nil
	default:
		return generate.MockGenerator{}, func() {}, nil
	}
}

func selectHeadlines(cfg config.Config) app.HeadlineSource {
	if strings.ToLower(cfg.News.Provider) == config.ProviderNewsAPI {
		if cfg.News.APIKey != "" {
			return generate.NewNewsAPIClient(cfg.News.APIKey, cfg.News.Country)
		}
		log.Warn().Msg("news api key not configured; using mock headlines")
	}
	return generate.MockHeadlines{}
}

func selectLimiter(cfg config.Config, client *redis.Client) transport.Limiter {
	rl := cfg.RateLimit.Generate
	if rl.Requests <= 0 {
		return nil
	}
	window := config.TTLDuration(rl.Window, time.Minute)
	if client != nil {
		return rediscache.NewRateLimiter(client, rl.Requests, window)
	}
	return memory.NewRateLimiter(rl.Requests, window)
}
