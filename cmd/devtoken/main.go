// Command devtoken signs a development session token for exercising the API
// locally without a Supabase project. The server accepts these tokens only
// when Supabase is not configured.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"mysre-backend/pkg/auth"
)

func main() {
	userID := flag.String("user", "", "user id to embed (default: random UUID)")
	email := flag.String("email", "dev@localhost", "email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("DEV_JWT_SECRET")
	if secret == "" {
		secret = "development-secret-change-in-production"
	}
	id := *userID
	if id == "" {
		id = uuid.New().String()
	}

	token, err := auth.SignDevToken(secret, id, *email, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
