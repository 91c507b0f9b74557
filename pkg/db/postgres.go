package db

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eco_report/internal/models"
)

var gormDB *gorm.DB

const (
	dsnEnv     = "DATABASE_URL"
	defaultDSN = "host=localhost user=eco_report password=eco_report dbname=eco_report port=5432 sslmode=disable"
)

// InitDB initializes the GORM connection to the managed Postgres backend.
// The DSN comes from the DATABASE_URL environment variable, with a local
// development default.
func InitDB() {
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		dsn = defaultDSN
		log.Printf("Environment variable %s not set, using default local DSN", dsnEnv)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var err error
	gormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
		// Translate driver errors so unique-constraint violations surface
		// as gorm.ErrDuplicatedKey across drivers.
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying sql.DB from GORM: %v", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to database using GORM")

	err = gormDB.AutoMigrate(
		&models.User{},
		&models.Issue{},
		&models.Verification{},
		&models.PointsHistory{},
		&models.VerificationSpamLog{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate database tables: %v", err)
	}
	log.Println("Database tables migrated successfully.")
}

// GetDB returns the GORM database instance.
func GetDB() *gorm.DB {
	if gormDB == nil {
		log.Fatal("Database not initialized. Call InitDB first.")
	}
	return gormDB
}

// CloseDB closes the GORM database connection (called on shutdown).
func CloseDB() {
	if gormDB != nil {
		sqlDB, err := gormDB.DB()
		if err != nil {
			log.Printf("Error getting underlying sql.DB for closing: %v", err)
			return
		}
		if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
		log.Println("Database connection closed.")
	}
}
