package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/vura/internal/astro"
	"github.com/vasiliy-maslov/vura/internal/auth"
	"github.com/vasiliy-maslov/vura/internal/config"
	"github.com/vasiliy-maslov/vura/internal/db"
	"github.com/vasiliy-maslov/vura/internal/geo"
	httphandler "github.com/vasiliy-maslov/vura/internal/handler/http"
	"github.com/vasiliy-maslov/vura/internal/sign"
	"github.com/vasiliy-maslov/vura/internal/transport"
	"github.com/vasiliy-maslov/vura/internal/user"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg.App)
	log.Info().Str("port", cfg.App.Port).Msg("Starting vura-server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pg, err := db.New(ctx, cfg.Postgres)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if cfg.Postgres.Migrate {
		if err := pg.Migrate(cfg.Postgres.DBName); err != nil {
			pg.Close()
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	tzResolver, err := geo.NewPolygonResolver()
	if err != nil {
		pg.Close()
		log.Fatal().Err(err).Msg("Failed to load timezone data")
	}

	if cfg.Astro.APIKey == "" {
		log.Warn().Msg("FREEASTRO_API_KEY is empty, chart routes will answer 500")
	}

	upstreamClient := &http.Client{Timeout: cfg.HTTPClient.Timeout}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	log.Info().Dur("token_ttl", tokens.TTL()).Str("issuer", cfg.Auth.Issuer).Msg("Token service ready")

	userRepository := user.NewRepository(pg.Pool)
	userSvc := user.NewService(userRepository, tokens, cfg.Auth.BcryptCost)
	signSvc := sign.NewService(sign.NewRepository(pg.SQLX()))
	geoSvc := geo.NewService(geo.NewOpenMeteoClient(cfg.Geo.BaseURL, cfg.Geo.Language, upstreamClient), tzResolver)
	astroClient := astro.NewClient(cfg.Astro.BaseURL, cfg.Astro.APIKey, upstreamClient)

	router := transport.NewRouter(transport.RouterConfig{
		Logger:        log.Logger,
		AllowedOrigin: cfg.App.AllowedOrigin,
		DB:            pg,
		Handlers: []transport.RouteRegistrar{
			httphandler.NewUserHandler(userSvc, auth.Middleware(tokens)),
			httphandler.NewSignHandler(signSvc),
			httphandler.NewGeoHandler(geoSvc),
			httphandler.NewChartHandler(astroClient),
		},
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Msgf("Starting HTTP server on port %s", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msgf("Could not listen on %s", cfg.App.Port)
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	pg.Close()

	log.Info().Msg("vura-server stopped gracefully.")
}

func setupLogger(cfg config.AppConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	logger := zerolog.New(os.Stderr)
	if cfg.LogPretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = logger.With().Timestamp().Str("service", cfg.Name).Logger()
}
