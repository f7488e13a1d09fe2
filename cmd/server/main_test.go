package main

import (
	"testing"

	"github.com/npezzotti/roomrelay/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tcs := []struct {
		name  string
		env   string
		level string
		want  zerolog.Level
	}{
		{name: "development", env: config.EnvDevelopment, level: "debug", want: zerolog.DebugLevel},
		{name: "production", env: config.EnvProduction, level: "warn", want: zerolog.WarnLevel},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := config.NewConfig("localhost:0", []string{"*"}, tc.env, tc.level, "shortid")
			require.NoError(t, err)

			logger := newLogger(cfg)
			assert.Equal(t, tc.want, logger.GetLevel())
		})
	}
}
