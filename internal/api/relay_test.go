package api

import (
	"testing"

	"github.com/npezzotti/roomrelay/internal/config"
	"github.com/npezzotti/roomrelay/internal/server"
	"github.com/npezzotti/roomrelay/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewRelayApp(t *testing.T) {
	logger := testutil.TestLogger(t)
	cs := &server.ChatServer{}
	cfg := &config.Config{
		ServerAddr:     "localhost:3001",
		AllowedOrigins: []string{"http://localhost:3000"},
	}

	app := NewRelayApp(logger, cs, nil, cfg)

	assert.NotNil(t, app, "expected app to be initialized")
	assert.NotNil(t, app.srv, "expected http server to be initialized")
	assert.NotNil(t, app.Handler(), "expected handler to be set")
	assert.Equal(t, cs, app.cs, "expected chat server to be set")
	assert.Equal(t, cfg.AllowedOrigins, app.allowedOrigins, "expected allowed origins to be set")
	assert.Equal(t, cfg.ServerAddr, app.srv.Addr, "expected server address to match config")
}
