package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/eco_report/internal/config"
	"github.com/eco_report/internal/handlers"
	"github.com/eco_report/internal/repositories"
	"github.com/eco_report/internal/routes"
	"github.com/eco_report/internal/services"
	"github.com/eco_report/pkg/db"
	"github.com/eco_report/pkg/storage"
)

// @title Eco Report API
// @version 1.0
// @description Community environmental issue reporting and verification backend.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}
	config.LoadConfig()

	db.InitDB()
	defer db.CloseDB()
	gormDB := db.GetDB()

	ctx := context.Background()
	store, err := storage.NewGCSStore(ctx, config.AppConfig.GCPCredentialsFile)
	if err != nil {
		log.Fatalf("Failed to create storage client: %v", err)
	}
	defer store.Close()

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := store.VerifyBucket(verifyCtx, config.AppConfig.StorageBucket); err != nil {
		cancel()
		log.Fatalf("Storage bucket %q is not reachable: %v", config.AppConfig.StorageBucket, err)
	}
	cancel()

	issueRepo := repositories.NewGormIssueRepository(gormDB)
	verificationRepo := repositories.NewGormVerificationRepository(gormDB)
	spamLogRepo := repositories.NewGormVerificationSpamLogRepository(gormDB)
	pointsRepo := repositories.NewGormPointsHistoryRepository(gormDB)
	userRepo := repositories.NewGormUserRepository(gormDB)

	notifier := services.NewNotifier(userRepo, issueRepo, verificationRepo, pointsRepo, services.SMTPSender{})
	notifier.Start()
	defer notifier.Stop()

	issueService := services.NewIssueService(issueRepo, pointsRepo, userRepo)
	verificationService := services.NewVerificationService(issueRepo, verificationRepo, spamLogRepo, pointsRepo, userRepo, notifier)
	photoService := services.NewPhotoService(store, config.AppConfig.StorageBucket)
	userService := services.NewUserService(userRepo)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@monthly", func() {
		runCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		notifier.SendMonthlySummaries(runCtx)
	}); err != nil {
		log.Fatalf("Failed to schedule monthly summary job: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := gin.Default()
	routes.SetupRoutes(router, routes.Handlers{
		Issue:        handlers.NewIssueHandler(issueService),
		Verification: handlers.NewVerificationHandler(verificationService),
		Upload:       handlers.NewUploadHandler(photoService),
		User:         handlers.NewUserHandler(userService),
	})

	port := config.AppConfig.ServerPort
	log.Printf("Server starting on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
