package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/social-api/internal/config"
	"github.com/khoahotran/social-api/pkg/auth"
)

// Adds users to the database and prints a bearer token for each, so the API
// can be exercised without the identity provider.
//
//	go run ./scripts/seed_users.go -emails alice@example.com,bob@example.com
func main() {
	emails := flag.String("emails", "", "comma separated list of user emails")
	flag.Parse()

	if *emails == "" {
		log.Fatal("no emails given, use -emails a@example.com,b@example.com")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan, cfg.Auth.Issuer)

	query := `
		INSERT INTO users (id, email, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id
	`
	for _, email := range strings.Split(*emails, ",") {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		username, _, _ := strings.Cut(email, "@")

		var id uuid.UUID
		if err := pool.QueryRow(ctx, query, uuid.New(), email, username).Scan(&id); err != nil {
			log.Fatalf("cannot add user %s: %v", email, err)
		}

		token, err := jwtSvc.GenerateToken(id, email)
		if err != nil {
			log.Fatalf("cannot issue token for %s: %v", email, err)
		}
		fmt.Printf("%s\t%s\t%s\n", id, email, token)
	}
}
