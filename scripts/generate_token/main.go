package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"splitledger-backend/config"
	"splitledger-backend/middleware"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	userID := flag.String("sub", seedAlice, "user id to put in the subject claim")
	email := flag.String("email", "alice@example.com", "email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatalf("JWT_SECRET not found in environment or .env")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		Email: *email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   *userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
	})

	tokenString, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Printf("Generated token for %s (%s), valid for %s:\n", *userID, *email, *ttl)
	fmt.Println("-----------------------------------------------")
	fmt.Println(tokenString)
	fmt.Println("-----------------------------------------------")
	fmt.Println("\nSeeded user IDs:")
	fmt.Println("Alice:   " + seedAlice)
	fmt.Println("Bob:     " + seedBob)
	fmt.Println("Charlie: " + seedCharlie)
}

// Kept in step with scripts/seed.
const (
	seedAlice   = "d5a2089c-e39a-4b62-a973-778f6729323d"
	seedBob     = "38c072a2-43f9-42b9-b603-6061c49d5c2d"
	seedCharlie = "ad655801-23a9-4a33-8695-81d4426604fb"
)
