package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"
	"github.com/npezzotti/roomrelay/internal/config"
	"github.com/npezzotti/roomrelay/internal/server"
	"github.com/rs/zerolog"
)

type RelayApp struct {
	log            zerolog.Logger
	cs             *server.ChatServer
	srv            *http.Server
	allowedOrigins []string
}

func NewRelayApp(logger zerolog.Logger, cs *server.ChatServer, metrics http.Handler, cfg *config.Config) *RelayApp {
	s := &RelayApp{
		log:            logger,
		cs:             cs,
		allowedOrigins: cfg.AllowedOrigins,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(s.errorHandler)

	r.Get("/ws", s.serveWs)
	r.Get("/api/rooms/{roomId}/messages", s.getMessages)
	r.Get("/api/rooms/{roomId}/typing", s.getTypists)
	r.Get("/healthz", s.healthCheck)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
	)(r)

	s.srv = &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	return s
}

func (s *RelayApp) Handler() http.Handler {
	return s.srv.Handler
}

func (s *RelayApp) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("starting server")
	return s.srv.ListenAndServe()
}

func (s *RelayApp) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
