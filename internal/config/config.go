package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/npezzotti/roomrelay/internal/idgen"
	"github.com/rs/zerolog"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	ServerAddr     string
	AllowedOrigins []string
	Env            string
	LogLevel       zerolog.Level
	IdScheme       string
}

// Defaults holds flag defaults read from the environment.
type Defaults struct {
	Addr           string
	AllowedOrigins string
	Env            string
	LogLevel       string
	IdScheme       string
}

// LoadDefaults reads ROOMRELAY_* variables, loading a .env file first if
// one exists in the working directory.
func LoadDefaults() Defaults {
	_ = godotenv.Load()

	return Defaults{
		Addr:           getEnv("ROOMRELAY_ADDR", "localhost:3001"),
		AllowedOrigins: getEnv("ROOMRELAY_ALLOWED_ORIGINS", "*"),
		Env:            getEnv("ROOMRELAY_ENV", EnvDevelopment),
		LogLevel:       getEnv("ROOMRELAY_LOG_LEVEL", "info"),
		IdScheme:       getEnv("ROOMRELAY_ID_SCHEME", idgen.SchemeShortId),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// SplitOrigins splits a comma-separated origin list, dropping blanks.
func SplitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func NewConfig(serverAddr string, allowedOrigins []string, env, logLevel, idScheme string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if len(allowedOrigins) == 0 {
		return nil, fmt.Errorf("allowed origins cannot be empty")
	}
	if env != EnvDevelopment && env != EnvProduction {
		return nil, fmt.Errorf("unknown environment %q", env)
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	if _, err := idgen.New(idScheme); err != nil {
		return nil, fmt.Errorf("id scheme: %w", err)
	}

	return &Config{
		ServerAddr:     serverAddr,
		AllowedOrigins: allowedOrigins,
		Env:            env,
		LogLevel:       level,
		IdScheme:       idScheme,
	}, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}
