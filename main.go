package main

import (
	"crypto/tls"
	"strings"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"tasks-api/api"
	"tasks-api/config"
	"tasks-api/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	var recorder api.IdempotencyRecorder
	if cfg.RedisConnectionString != "" {
		rc := redis.NewClient(redisOptions(cfg.RedisConnectionString))
		recorder = api.NewRedisRecorder(rc, cfg.IdempotencyTTL)
	} else {
		log.Warn("no redis configured; create replays will not be detected")
	}

	var auth api.Authenticator
	switch {
	case cfg.LocalAuthSecret != "":
		auth = api.NewLocalAuth([]byte(cfg.LocalAuthSecret), cfg.JWTAudience, cfg.JWTIssuer)
	case cfg.JWKSURL != "":
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = api.NewAuth(jwks, cfg.JWTAudience, cfg.JWTIssuer)
	default:
		log.Warn("no auth configured; API is open")
		auth = api.NoAuth{}
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Idempotency-Key"},
	}))
	e.Use(api.GzipRequestMiddleware())
	e.Use(echoprometheus.NewMiddleware("tasks_api"))
	e.GET("/metrics", echoprometheus.NewHandler())

	logger := log.New()
	guarded := store.NewGuard(store.New())
	api.Register(e, guarded, auth, recorder, logger, api.Options{StreamInterval: cfg.StreamInterval})

	e.Logger.Fatal(e.Start(cfg.ListenAddr))
}

// redisOptions accepts either a redis URL or the comma-separated
// host,password=...,ssl=true form some managed providers hand out.
func redisOptions(connStr string) *redis.Options {
	opts, err := redis.ParseURL(connStr)
	if err == nil {
		return opts
	}
	parts := strings.Split(connStr, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.EqualFold(kv[1], "true") {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}
