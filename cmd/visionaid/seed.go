package main

import (
	"context"
	"fmt"

	"visionaid/internal/db"
	"visionaid/internal/seed"
	"visionaid/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo accounts and requests",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "requests",
			Usage: "Number of fake requests to create",
			Value: 12,
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		clients, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		logrus.Info("Connected to database")

		treeStore := store.NewFirebaseStore(clients.Database)
		volunteersRepo := store.NewVolunteerRepository(treeStore)
		orgsRepo := store.NewOrganizationRepository(treeStore)
		requestsRepo := store.NewRequestRepository(treeStore)

		logrus.Info("Seeding volunteers...")
		if err := seed.SeedVolunteers(ctx, volunteersRepo); err != nil {
			return fmt.Errorf("failed to seed volunteers: %w", err)
		}

		logrus.Info("Seeding organizations...")
		if err := seed.SeedOrganizations(ctx, orgsRepo); err != nil {
			return fmt.Errorf("failed to seed organizations: %w", err)
		}

		logrus.Info("Seeding requests...")
		if err := seed.SeedRequests(ctx, requestsRepo, c.Int("requests")); err != nil {
			return fmt.Errorf("failed to seed requests: %w", err)
		}

		logrus.Info("Seed complete")

		return nil
	},
}
