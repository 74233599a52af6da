package seed

import (
	"context"
	"errors"
	"fmt"

	"visionaid/internal/store"
	"visionaid/pkg/types"
)

// Fixed IDs keep the seed idempotent: re-running `visionaid seed` upserts
// the same accounts instead of multiplying them.
// To generate new IDs: `go run ./cmd/visionaid nanoid`

type fakeVolunteerSeed struct {
	ID       string
	FullName string
	Email    string
	Skills   []string
}

var fakeVolunteers = []fakeVolunteerSeed{
	{ID: "vVOLsBy8ewyOWiJVpRdP9W78STAse001", FullName: "Ava Williams", Email: "ava.williams+seed@example.com", Skills: []string{"first aid", "driving"}},
	{ID: "vVOLsBy8ewyOWiJVpRdP9W78STAse002", FullName: "Liam Johnson", Email: "liam.johnson+seed@example.com", Skills: []string{"teaching"}},
	{ID: "vVOLsBy8ewyOWiJVpRdP9W78STAse003", FullName: "Mia Davis", Email: "mia.davis+seed@example.com", Skills: []string{"cooking", "logistics"}},
	{ID: "vVOLsBy8ewyOWiJVpRdP9W78STAse004", FullName: "Noah Brown", Email: "noah.brown+seed@example.com", Skills: nil},
}

type fakeOrgSeed struct {
	ID      string
	OrgName string
	Email   string
	Domains []string
}

var fakeOrgs = []fakeOrgSeed{
	{ID: "oORGsBy8ewyOWiJVpRdP9W78STAse001", OrgName: "Harbor Light Foundation", Email: "contact+seed@harborlight.example.com", Domains: []string{"housing", "food security"}},
	{ID: "oORGsBy8ewyOWiJVpRdP9W78STAse002", OrgName: "Open Hands Relief", Email: "hello+seed@openhands.example.com", Domains: []string{"disaster relief"}},
}

func SeedVolunteers(ctx context.Context, repo *store.VolunteerRepository) error {
	seeded := 0
	for _, fake := range fakeVolunteers {
		_, err := repo.Volunteer(ctx, fake.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("failed to fetch fake volunteer %s: %w", fake.ID, err)
		}

		profile := &types.VolunteerProfile{
			FullName: fake.FullName,
			Email:    fake.Email,
			Skills:   fake.Skills,
		}
		if err := repo.Create(ctx, fake.ID, profile); err != nil {
			return fmt.Errorf("failed to create fake volunteer %s: %w", fake.ID, err)
		}
		seeded++
	}

	fmt.Printf("Fake volunteers seeded: %d created\n", seeded)
	return nil
}

func SeedOrganizations(ctx context.Context, repo *store.OrganizationRepository) error {
	seeded := 0
	for _, fake := range fakeOrgs {
		_, err := repo.Organization(ctx, fake.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("failed to fetch fake organization %s: %w", fake.ID, err)
		}

		profile := &types.OrganizationProfile{
			OrgName: fake.OrgName,
			Email:   fake.Email,
			Domains: fake.Domains,
		}
		if err := repo.Create(ctx, fake.ID, profile); err != nil {
			return fmt.Errorf("failed to create fake organization %s: %w", fake.ID, err)
		}
		seeded++
	}

	fmt.Printf("Fake organizations seeded: %d created\n", seeded)
	return nil
}
