package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	httphandler "github.com/vasiliy-maslov/vura/internal/handler/http"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type RouteRegistrar interface {
	RegisterRoutes(router chi.Router)
}

type RouterConfig struct {
	Logger        zerolog.Logger
	AllowedOrigin string
	DB            Pinger
	Handlers      []RouteRegistrar
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(cfg.Logger))
	r.Use(hlog.RequestIDHandler("request_id", "X-Request-Id"))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	}))
	r.Use(httphandler.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(httphandler.CORS(cfg.AllowedOrigin))

	r.NotFound(httphandler.NotFound)
	r.MethodNotAllowed(httphandler.MethodNotAllowed)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if cfg.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.DB.Ping(ctx); err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("Health check failed")
				http.Error(w, "UNAVAILABLE", http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("OK"))
	})

	for _, h := range cfg.Handlers {
		h.RegisterRoutes(r)
	}

	return r
}
