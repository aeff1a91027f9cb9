// Package config resolves server settings from the environment, with an
// optional YAML file for deployments that prefer one. Environment variables
// win over file values; a .env file is loaded best effort.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr     = ":8080"
	defaultIdempotencyTTL = 24 * time.Hour
	defaultStreamInterval = 5 * time.Second
)

// Config carries every runtime knob of the server.
type Config struct {
	ListenAddr string
	Debug      bool

	// RedisConnectionString is optional; when empty, create replays are not
	// detected and Idempotency-Key headers are accepted but ignored.
	RedisConnectionString string
	IdempotencyTTL        time.Duration

	StreamInterval time.Duration

	// JWKSURL enables RS256 bearer auth; LocalAuthSecret enables HS256.
	// With neither set the API is open.
	JWKSURL         string
	JWTAudience     string
	JWTIssuer       string
	LocalAuthSecret string
}

// fileConfig mirrors Config for YAML decoding; durations travel as strings.
type fileConfig struct {
	ListenAddr            string `yaml:"listenAddr"`
	Debug                 bool   `yaml:"debug"`
	RedisConnectionString string `yaml:"redisConnectionString"`
	IdempotencyTTL        string `yaml:"idempotencyTTL"`
	StreamInterval        string `yaml:"streamInterval"`
	JWKSURL               string `yaml:"jwksURL"`
	JWTAudience           string `yaml:"jwtAudience"`
	JWTIssuer             string `yaml:"jwtIssuer"`
	LocalAuthSecret       string `yaml:"localAuthSecret"`
}

// Load builds the configuration. Invalid values fail fast; absent optional
// ones fall back to defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:     defaultListenAddr,
		IdempotencyTTL: defaultIdempotencyTTL,
		StreamInterval: defaultStreamInterval,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.JWKSURL != "" && cfg.LocalAuthSecret != "" {
		return Config{}, fmt.Errorf("JWKS_URL and LOCAL_AUTH_SHARED_SECRET are mutually exclusive")
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.Debug {
		cfg.Debug = true
	}
	if fc.RedisConnectionString != "" {
		cfg.RedisConnectionString = fc.RedisConnectionString
	}
	if fc.IdempotencyTTL != "" {
		d, err := parsePositiveDuration("idempotencyTTL", fc.IdempotencyTTL)
		if err != nil {
			return err
		}
		cfg.IdempotencyTTL = d
	}
	if fc.StreamInterval != "" {
		d, err := parsePositiveDuration("streamInterval", fc.StreamInterval)
		if err != nil {
			return err
		}
		cfg.StreamInterval = d
	}
	if fc.JWKSURL != "" {
		cfg.JWKSURL = fc.JWKSURL
	}
	if fc.JWTAudience != "" {
		cfg.JWTAudience = fc.JWTAudience
	}
	if fc.JWTIssuer != "" {
		cfg.JWTIssuer = fc.JWTIssuer
	}
	if fc.LocalAuthSecret != "" {
		cfg.LocalAuthSecret = fc.LocalAuthSecret
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if v := os.Getenv("DEBUG"); v == "1" || v == "true" {
		cfg.Debug = true
	}
	if v := os.Getenv("REDIS_CONNECTION_STRING"); v != "" {
		cfg.RedisConnectionString = v
	}
	if v := os.Getenv("IDEMPOTENCY_TTL"); v != "" {
		d, err := parsePositiveDuration("IDEMPOTENCY_TTL", v)
		if err != nil {
			return err
		}
		cfg.IdempotencyTTL = d
	}
	if v := os.Getenv("STREAM_INTERVAL"); v != "" {
		d, err := parsePositiveDuration("STREAM_INTERVAL", v)
		if err != nil {
			return err
		}
		cfg.StreamInterval = d
	}
	if v := os.Getenv("JWKS_URL"); v != "" {
		cfg.JWKSURL = v
	}
	if v := os.Getenv("JWT_AUDIENCE"); v != "" {
		cfg.JWTAudience = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.JWTIssuer = v
	}
	if v := os.Getenv("LOCAL_AUTH_SHARED_SECRET"); v != "" {
		cfg.LocalAuthSecret = v
	}
	return nil
}

func parsePositiveDuration(name, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be greater than zero", name)
	}
	return d, nil
}
