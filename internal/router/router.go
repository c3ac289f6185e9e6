package router

import (
	"net/http"

	"vet-console/internal/domain/screen"
	"vet-console/internal/middleware"
	"vet-console/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Console *screen.Console
	Logger  logger.Logger

	// Opcional: si viene nil no hay rate limit.
	Limiter *middleware.IPRateLimiter
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.EchoRequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(opts.Logger))
	r.Use(middleware.Recover(opts.Logger))

	if opts.Limiter != nil {
		r.Use(middleware.RateLimit(opts.Limiter))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Pantallas genéricas, una por kind del registry
	screen.RegisterRoutes(r, opts.Console)

	return r
}
