// File: internal/infra/api/server.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/hiktan44/Adgeniusfashion/internal/config"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/logging"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/metrics"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/security"
	"github.com/hiktan44/Adgeniusfashion/internal/usecase"
)

// CredentialService is the part of the key gate the API exposes.
type CredentialService interface {
	Status(ctx context.Context) security.CredentialStatus
	Select(ctx context.Context, key string) error
}

// SubmitLimiter throttles run submissions per client.
type SubmitLimiter interface {
	AllowSubmit(ctx context.Context, clientID string, limit int, window time.Duration) (bool, error)
}

type Options struct {
	Port int
	// MaxUploadBytes caps each uploaded image.
	MaxUploadBytes   int64
	RequestTimeout   time.Duration
	AllowedOrigins   []string
	SubmitsPerMinute int
	Limiter          SubmitLimiter
	Logger           *zerolog.Logger
}

// OptionsFromConfig maps the http section of the config file.
func OptionsFromConfig(cfg config.HTTPConfig) Options {
	return Options{
		Port:             cfg.Port,
		MaxUploadBytes:   int64(cfg.MaxUploadMB) << 20,
		RequestTimeout:   cfg.RequestTimeout,
		AllowedOrigins:   cfg.AllowedOrigins,
		SubmitsPerMinute: cfg.SubmitsPerMinute,
	}
}

type Server struct {
	gen      usecase.GenerationUseCase
	creds    CredentialService
	opts     Options
	log      *zerolog.Logger
	upgrader websocket.Upgrader

	server *http.Server
}

func NewServer(gen usecase.GenerationUseCase, creds CredentialService, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	s := &Server{gen: gen, creds: creds, opts: opts, log: opts.Logger}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the router. The stream route sits outside the request timeout.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log))

	r.Get("/health", healthHandler())
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/runs/current/stream", streamHandler(s.gen, s.upgrader, s.log))

		r.Group(func(r chi.Router) {
			r.Use(Timeout(s.opts.RequestTimeout))

			r.With(s.submitLimit).Post("/runs", submitHandler(s.gen, s.opts.MaxUploadBytes))
			r.Get("/runs/current", snapshotHandler(s.gen))
			r.Delete("/runs/current", resetHandler(s.gen))
			r.Get("/runs/current/jobs/{id}/image", mediaHandler(s.gen, imageOf))
			r.Get("/runs/current/jobs/{id}/video", mediaHandler(s.gen, videoOf))
			r.Get("/runs/current/collage", collageHandler(s.gen))
			r.Get("/runs/current/copy", copyHandler(s.gen))

			r.Get("/credential", credentialStatusHandler(s.creds))
			r.Put("/credential", credentialSelectHandler(s.creds))
		})
	})
	return r
}

// submitLimit fails open when the limiter backend errors.
func (s *Server) submitLimit(next http.Handler) http.Handler {
	if s.opts.Limiter == nil || s.opts.SubmitsPerMinute <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.opts.Limiter.AllowSubmit(r.Context(), clientIP(r), s.opts.SubmitsPerMinute, time.Minute)
		if err != nil {
			logging.With(r.Context(), s.log).Warn().Err(err).Msg("submit rate limiter unavailable")
		} else if !ok {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "too many submissions, try again in a minute")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start blocks until the server stops; a graceful Shutdown returns nil.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
