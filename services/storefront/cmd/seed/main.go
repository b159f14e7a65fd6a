// Package main seeds the profiles table with demo accounts for local
// development. It reuses the service configuration so it targets the same
// database the server would.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/services/storefront/internal/config"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
	postgresrepo "github.com/utafrali/storefront/services/storefront/internal/repository/postgres"
	"github.com/utafrali/storefront/services/storefront/migrations"
)

// demoProfiles covers the account view cases worth clicking through: a full
// profile, one missing both addresses, and one missing only billing.
var demoProfiles = []domain.Profile{
	{
		UserID:    "1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "+44 20 7946 0000",
		ShippingAddress: &domain.AddressRecord{
			FirstName:    "Ada",
			LastName:     "Lovelace",
			AddressLine1: "12 St James's Square",
			City:         "London",
			Region:       "Greater London",
			PostalCode:   "SW1Y 4JH",
			Country:      "GB",
		},
		BillingAddress: &domain.AddressRecord{
			FirstName:    "Ada",
			LastName:     "Lovelace",
			AddressLine1: "12 St James's Square",
			City:         "London",
			Region:       "Greater London",
			PostalCode:   "SW1Y 4JH",
			Country:      "GB",
		},
	},
	{
		UserID:    "42",
		FirstName: "Arthur",
		LastName:  "Dent",
		Email:     "arthur@example.com",
	},
	{
		UserID:    "1001",
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		ShippingAddress: &domain.AddressRecord{
			FirstName:    "Grace",
			LastName:     "Hopper",
			AddressLine1: "1 Navy Pier",
			City:         "Arlington",
			Region:       "VA",
			PostalCode:   "22202",
			Country:      "US",
		},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("storefront-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, database.PostgresConfig{
		DSN:      cfg.PostgresDSN,
		MaxConns: cfg.PostgresMaxConns,
	}, log)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repo := postgresrepo.NewProfileRepository(pool)
	seeded := 0
	for _, p := range demoProfiles {
		if err := repo.Upsert(ctx, p); err != nil {
			log.Error("failed to seed profile",
				slog.String("user_id", p.UserID),
				slog.String("error", err.Error()),
			)
			continue
		}
		seeded++
	}

	log.Info("seed complete",
		slog.Int("seeded", seeded),
		slog.Int("total", len(demoProfiles)),
	)
	if seeded < len(demoProfiles) {
		os.Exit(1)
	}
}
