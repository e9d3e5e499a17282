package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"ai-quiz-runner/internal/config"
	"ai-quiz-runner/internal/entity"
	"ai-quiz-runner/internal/model"
	"ai-quiz-runner/internal/repository/unitofwork"
	"ai-quiz-runner/pkg/database"
)

// Seeds the stored AI model configuration from AI_CONFIG_* variables so a
// fresh deployment generates with the model without a PUT /api/ai-config.
func main() {
	// 1. Load Environment Variables
	cfg := config.Load()

	url := os.Getenv("AI_CONFIG_URL")
	if url == "" {
		log.Fatal("Error: AI_CONFIG_URL is not set")
	}
	timeout, err := strconv.ParseFloat(os.Getenv("AI_CONFIG_TIMEOUT"), 64)
	if err != nil {
		timeout = entity.DefaultAiTimeoutSeconds
	}

	// 2. Connect to Database
	db, err := database.NewGormDB(database.GormConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.Connection,
	})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}
	if err := db.AutoMigrate(&model.AiConfig{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Starting AI Configuration Seeder...")

	// 3. Seed AI Configuration
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	aiGrading, _ := strconv.ParseBool(os.Getenv("AI_CONFIG_ENABLE_GRADING"))
	seed := &entity.AiConfig{
		Url:             url,
		Key:             os.Getenv("AI_CONFIG_KEY"),
		Model:           os.Getenv("AI_CONFIG_MODEL"),
		TimeoutSeconds:  timeout,
		DevDocument:     os.Getenv("AI_CONFIG_DEV_DOCUMENT"),
		EnableAiGrading: aiGrading,
		UpdatedAt:       time.Now().UTC(),
	}
	if err := uow.AiConfigRepository().Save(ctx, seed); err != nil {
		log.Fatalf("Error: Failed to save AI configuration: %v", err)
	}

	log.Printf("✅ Success: AI configuration seeded (model %q, timeout %.0fs).", seed.Model, seed.TimeoutSeconds)
}
