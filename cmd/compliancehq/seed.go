package main

import (
	"context"
	"fmt"

	"compliancehq/internal/db"
	"compliancehq/internal/seed"
	"compliancehq/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with a demo roster",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		subsRepo := store.NewSubcontractorRepository(pool)

		logrus.WithField("tenant_id", cfg.TenantID).Info("Seeding subcontractors...")
		if err := seed.SeedSubcontractors(ctx, subsRepo, cfg.TenantID); err != nil {
			return fmt.Errorf("failed to seed subcontractors: %w", err)
		}

		logrus.Info("Subcontractors seeded successfully")

		return nil
	},
}
