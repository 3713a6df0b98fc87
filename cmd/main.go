package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"pairlink/backend/internal/api/handler"
	"pairlink/backend/internal/chathub"
	"pairlink/backend/internal/config"
	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Pairing{},
		&models.RevealRequest{},
		&models.Message{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting PairLink backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file loaded")
	}
	cfg := config.Load()

	db, rdb := setupDependencies(cfg)
	s := storage.NewService(db, rdb)

	hub := chathub.NewManagerService(s)
	matcher := chathub.NewMatcherService(s, hub)
	if err := matcher.Reconcile(); err != nil {
		log.Fatalf("Failed to reconcile search queue: %v", err)
	}
	reveals := chathub.NewRevealService(s, hub)
	messages := chathub.NewMessageService(s)

	store, err := chathub.NewDiskStore(cfg.UploadDir, "/static/uploads")
	if err != nil {
		log.Fatalf("Failed to prepare upload dir: %v", err)
	}
	media := chathub.NewMediaService(store, messages, s, hub)

	hub.Messages = messages
	hub.Reveals = reveals
	hub.Media = media

	go hub.Run()
	go hub.ListenEvents(s.SubscribeEvents(context.Background()))
	media.Run(config.MediaWorkers)

	r := gin.Default()
	h := handler.NewHandler(hub, matcher, reveals, messages, s, []byte(cfg.JWTSecret))

	r.POST("/session", h.CreateSession)
	r.GET("/ws", h.ServeWebSocket)
	r.POST("/matching/enter", h.EnterMatching)
	r.GET("/chat/:partnerId", h.ChatHistory)
	r.GET("/questions/:id", h.GetQuestion)
	r.POST("/answers", h.SubmitAnswers)
	r.Static("/static/uploads", cfg.UploadDir)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
