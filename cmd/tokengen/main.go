package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"

	"github.com/eco_report/internal/auth"
	"github.com/eco_report/internal/config"
)

// tokengen mints a signed bearer token for local development, where no hosted
// auth provider is in front of the API.
func main() {
	userID := flag.String("user", "", "user id to embed in the token")
	role := flag.String("role", "member", "role claim (member or admin)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" {
		log.Fatal("tokengen: -user is required")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}
	config.LoadConfig()

	now := time.Now()
	claims := auth.Claims{
		UserID: *userID,
		Role:   *role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.AppConfig.JWTSecret))
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(signed)
}
