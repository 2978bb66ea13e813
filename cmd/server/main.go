package main // Entry point for the station API server

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/lunafm/station-api/internal/airtime"
	"github.com/lunafm/station-api/internal/config"
	"github.com/lunafm/station-api/internal/database"
	"github.com/lunafm/station-api/internal/handler"
	"github.com/lunafm/station-api/internal/middleware"
	"github.com/lunafm/station-api/internal/queue"
	"github.com/lunafm/station-api/internal/repository"
	"github.com/lunafm/station-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis is optional: without it the cache and rate limit middlewares
	// become pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, caching and rate limiting disabled")
	}

	users := &repository.UserRepo{DB: db}
	shows := &repository.ShowRepo{DB: db}
	episodes := &repository.EpisodeRepo{DB: db}

	authH := handler.NewAuthHandler(cfg, users)
	showH := handler.NewShowHandler(shows, episodes)
	episodeH := handler.NewEpisodeHandler(episodes, shows)
	uploadH := handler.NewUploadHandler(cfg)
	streamH := handler.NewStreamingHandler(cfg, airtime.New(cfg.AirtimeURL), episodes)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())

	cache := middleware.ResponseCache(config.LoadCacheConfig(), rdb)
	limit := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	router.RegisterPublic(e, showH, episodeH, cache)
	router.RegisterAuth(e, authH, users, cfg.JWTSecret, limit)
	router.RegisterShows(e, showH, users, cfg.JWTSecret)
	router.RegisterEpisodes(e, episodeH, users, cfg.JWTSecret)
	router.RegisterUpload(e, uploadH, users, cfg.JWTSecret)
	router.RegisterStreaming(e, streamH, users, cfg.JWTSecret)

	e.Static("/uploads", cfg.UploadDir)

	// Moderation log consumer; reconnects on its own and never takes the
	// API down with it.
	go func() {
		if err := queue.StartModerationConsumer(); err != nil {
			log.Printf("moderation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
