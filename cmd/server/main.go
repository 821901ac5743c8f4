package main

import (
	"context"
	"log"
	"time"

	"dispatch-ledger/internal/ai"
	"dispatch-ledger/internal/auth"
	"dispatch-ledger/internal/config"
	"dispatch-ledger/internal/database"
	"dispatch-ledger/internal/handlers"
	"dispatch-ledger/internal/legacy"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}
	cfg := config.New()

	// 1. Open the local register
	db, err := database.Connect(cfg.DBPath, cfg.DBLogLevel())
	if err != nil {
		log.Fatal("❌ Failed to open the dispatch store: ", err)
	}
	store := database.NewStore(db)

	// 2. Upgrade any pre-migration data before serving
	ctx := context.Background()
	legacy.NewMigrator(store, legacy.NewKVSource(db), log.Default(), cfg.LegacyClear).RunOnStartup(ctx)
	if cfg.LegacyFile != "" {
		legacy.NewMigrator(store, legacy.FileSource{Path: cfg.LegacyFile}, log.Default(), cfg.LegacyClear).RunOnStartup(ctx)
	}

	// 3. Seed the first admin
	created, err := store.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	switch {
	case err != nil:
		log.Println("❌ Could not seed the admin account:", err)
	case created:
		log.Println("👤 Admin account created for " + cfg.AdminUsername)
	}

	deps := handlers.Deps{
		Store:  store,
		Tokens: auth.NewManager(cfg.JWTSecret, 24*time.Hour),
	}
	if cfg.GeminiAPIKey != "" {
		deps.Assistant = ai.NewAssistant(store, cfg.GeminiAPIKey)
	} else {
		log.Println("🔒 GEMINI_API_KEY not set, assistant route is DISABLED.")
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	handlers.Register(r, deps)

	log.Println("🚀 Dispatch register starting on " + cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
