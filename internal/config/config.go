package config

import (
	"log"
	"os"
	"sync"
)

// AppConfig holds the application configuration.
// It's populated once by LoadConfig.
var AppConfig Configuration
var once sync.Once

// Configuration defines the structure for application settings.
type Configuration struct {
	JWTSecret          string
	ServerPort         string
	StorageBucket      string
	GCPCredentialsFile string
	FrontendBaseURL    string
}

const (
	defaultJWTSecret     = "eco-report-dev"    // Default JWT secret, used if env var is not set.
	envJWTSecretKey      = "JWT_SECRET_KEY"    // Environment variable name for the JWT secret.
	defaultServerPort    = "8080"              // Default server port.
	envServerPortKey     = "SERVER_PORT"       // Environment variable name for the server port.
	defaultStorageBucket = "eco-report-photos" // Default object storage bucket.
	envStorageBucketKey  = "STORAGE_BUCKET"    // Environment variable name for the storage bucket.
	envGCPCredentialsKey = "GOOGLE_APPLICATION_CREDENTIALS"
	defaultFrontendURL   = "http://localhost:3000" // Default frontend base URL for email links.
	envFrontendURLKey    = "FRONTEND_BASE_URL"     // Environment variable name for the frontend base URL.
)

// LoadConfig loads configuration from environment variables or defaults.
// It should be called once at application startup.
func LoadConfig() {
	once.Do(func() {
		jwtSecret := os.Getenv(envJWTSecretKey)
		if jwtSecret == "" {
			jwtSecret = defaultJWTSecret
			log.Printf("Warning: %s is not set. Using the default JWT secret; set it in production.", envJWTSecretKey)
		}

		serverPort := os.Getenv(envServerPortKey)
		if serverPort == "" {
			serverPort = defaultServerPort
			log.Printf("Info: %s is not set. Using default port %s.", envServerPortKey, defaultServerPort)
		}

		storageBucket := os.Getenv(envStorageBucketKey)
		if storageBucket == "" {
			storageBucket = defaultStorageBucket
			log.Printf("Info: %s is not set. Using default bucket %s.", envStorageBucketKey, defaultStorageBucket)
		}

		frontendBaseURL := os.Getenv(envFrontendURLKey)
		if frontendBaseURL == "" {
			frontendBaseURL = defaultFrontendURL
			log.Printf("Info: %s is not set. Using default frontend URL %s.", envFrontendURLKey, defaultFrontendURL)
		}

		AppConfig = Configuration{
			JWTSecret:          jwtSecret,
			ServerPort:         serverPort,
			StorageBucket:      storageBucket,
			GCPCredentialsFile: os.Getenv(envGCPCredentialsKey),
			FrontendBaseURL:    frontendBaseURL,
		}

		log.Println("Application configuration loaded.")
	})
}
