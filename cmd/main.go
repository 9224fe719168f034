package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"chatrelay/backend/internal/api/handler"
	"chatrelay/backend/internal/config"
	"chatrelay/backend/internal/models"
	"chatrelay/backend/internal/relay"
	"chatrelay/backend/internal/storage"
	"chatrelay/backend/internal/telegram"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.RoomRecord{},
		&models.ChatHistory{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting ChatRelay Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	// 1. Dependencies
	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	// 2. Relay core: registry, router, pub/sub bridge
	registry := relay.NewRegistry()
	router := relay.NewRouter(registry, s, s)

	go relay.RunPubSubBridge(context.Background(), s.SubscribeToAllRooms(), router)

	// 3. Telegram transport (optional)
	if cfg.TelegramToken != "" {
		botService, err := telegram.NewBotService(cfg.TelegramToken, registry, router, s)
		if err != nil {
			log.Fatalf("Failed to start Telegram bot: %v", err)
		}
		go botService.Run()
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, Telegram transport disabled")
	}

	// 4. Gin routing
	r := gin.Default()
	h := handler.NewHandler(registry, router, s, cfg.JWTSecret)

	r.GET("/anonid", h.GetAnonID)
	r.GET("/ws", h.ServeWebSocket)
	r.POST("/rooms", h.CreateRoom)
	r.GET("/rooms/:id/history", h.GetRoomHistory)
	r.GET("/rooms/:id/members", h.GetRoomMembers)

	server := &http.Server{
		Addr:           cfg.Addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
