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

	"github.com/npezzotti/roomrelay/internal/api"
	"github.com/npezzotti/roomrelay/internal/config"
	"github.com/npezzotti/roomrelay/internal/idgen"
	"github.com/npezzotti/roomrelay/internal/server"
	"github.com/npezzotti/roomrelay/internal/stats"
	"github.com/npezzotti/roomrelay/internal/store"
	"github.com/rs/zerolog"
)

var (
	addr           string
	allowedOrigins string
	env            string
	logLevel       string
	idScheme       string
)

func newLogger(cfg *config.Config) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(cfg.LogLevel).
		With().
		Timestamp().
		Str("service", "roomrelay").
		Logger()
}

func main() {
	defaults := config.LoadDefaults()

	flag.StringVar(&addr, "addr", defaults.Addr, "server address")
	flag.StringVar(&allowedOrigins, "allowed-origins", defaults.AllowedOrigins, "comma-separated list of allowed origins, * allows any")
	flag.StringVar(&env, "env", defaults.Env, "environment: development or production")
	flag.StringVar(&logLevel, "log-level", defaults.LogLevel, "log level")
	flag.StringVar(&idScheme, "id-scheme", defaults.IdScheme, "message id scheme: shortid or ulid")
	flag.Parse()

	cfg, err := config.NewConfig(addr, config.SplitOrigins(allowedOrigins), env, logLevel, idScheme)
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config")
	}

	logger := newLogger(cfg)

	ids, err := idgen.New(cfg.IdScheme)
	if err != nil {
		logger.Fatal().Err(err).Msg("id generator")
	}

	statsUpdater := stats.NewStatsUpdater()

	chatServer, err := server.NewChatServer(logger, store.NewMemoryRoomStore(ids), statsUpdater)
	if err != nil {
		logger.Fatal().Err(err).Msg("new chat server")
	}

	srv := api.NewRelayApp(logger, chatServer, statsUpdater.Handler(), cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Info().Str("signal", sig.String()).Msg("received signal")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server")
		}
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatal().Err(err).Msg("HTTP server shutdown")
	}

	if err := chatServer.Shutdown(shutDownCtx); err != nil {
		logger.Fatal().Err(err).Msg("chat server shutdown")
	}

	logger.Info().Msg("shutdown complete")
}
