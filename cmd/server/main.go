package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/emailcraft/studio/internal/api"
	"github.com/emailcraft/studio/internal/campaign"
	"github.com/emailcraft/studio/internal/config"
	"github.com/emailcraft/studio/internal/contacts"
	"github.com/emailcraft/studio/internal/extract"
	"github.com/emailcraft/studio/internal/pkg/distlock"
	"github.com/emailcraft/studio/internal/repository/postgres"
	"github.com/emailcraft/studio/internal/verify"
)

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	// MX cache: Redis when configured, otherwise in-process.
	var cache verify.MXCache
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Printf("Redis unavailable, falling back to in-memory MX cache: %v", err)
		} else {
			rdb = client
			cache = verify.NewRedisCache(rdb, cfg.Verify.CacheTTL())
			log.Printf("MX cache on Redis at %s", cfg.Redis.Addr)
		}
	}
	if cache == nil {
		cache = verify.NewMemoryCache(cfg.Verify.CacheTTL())
	}

	// Dispatch locks live in Redis when it is up, otherwise fall back to
	// PostgreSQL advisory locks.
	var locker distlock.Locker
	if rdb != nil {
		locker = distlock.NewRedisLocker(rdb, 15*time.Minute)
	} else {
		locker = distlock.NewAdvisoryLocker(db)
	}

	validator := verify.New(
		verify.WithTimeout(cfg.Verify.VerifyTimeout()),
		verify.WithCache(cache),
	)

	contactsRepo := postgres.NewContactsRepo(db)
	campaignRepo := postgres.NewCampaignRepo(db)
	settingsRepo := postgres.NewSettingsRepo(db)

	contactsSvc := contacts.NewService(contactsRepo, validator)
	campaignSvc := campaign.NewService(campaignRepo, settingsRepo, contactsRepo, validator,
		campaign.WithThrottle(cfg.Dispatch.SendDelay(), cfg.Dispatch.SendsPerMinute),
		campaign.WithPerSendTimeout(cfg.Dispatch.PerSendTimeout()),
		campaign.WithLocker(locker),
	)

	var extractSvc *extract.Service
	if cfg.OpenAI.APIKey != "" {
		client := extract.NewClient(cfg.OpenAI.APIKey, extract.WithModel(cfg.OpenAI.Model))
		extractSvc = extract.NewService(client)
		log.Printf("AI extraction enabled (model: %s)", cfg.OpenAI.Model)
	} else {
		log.Println("AI extraction disabled (no OpenAI API key)")
	}

	handlers := api.NewHandlers(contactsSvc, campaignSvc, extractSvc, validator)
	server := api.NewServer(cfg.Server, handlers)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
