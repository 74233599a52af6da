package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"visionaid/internal/store"
	"visionaid/pkg/types"

	"github.com/k0kubun/pp"
)

var fakeRequestTitles = []string{
	"Deliver groceries to elderly residents",
	"Tutor students for upcoming exams",
	"Help set up the community shelter",
	"Drive patients to medical appointments",
	"Sort donations at the warehouse",
	"Translate intake forms for new arrivals",
	"Cook meals for the weekend kitchen",
	"Repair bicycles for the mobility program",
}

var fakeLocations = []string{
	"Riverside District",
	"Old Town",
	"Northgate",
	"Harbor Quarter",
	"Elm Street Center",
}

var priorityPool = []types.RequestPriority{
	types.RequestPriorityLow,
	types.RequestPriorityLow,
	types.RequestPriorityMedium,
	types.RequestPriorityMedium,
	types.RequestPriorityHigh,
	types.RequestPriorityUrgent,
}

// SeedRequests creates a batch of open requests owned by the seeded
// organizations. Skipped entirely if seeded requests already exist.
func SeedRequests(ctx context.Context, repo *store.RequestRepository, count int) error {
	existing, err := repo.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load existing requests: %w", err)
	}
	for _, request := range existing {
		if strings.HasPrefix(request.Title, "[seed] ") {
			fmt.Println("Seeded requests already present, skipping")
			return nil
		}
	}

	if len(fakeOrgs) == 0 {
		return fmt.Errorf("no fake organizations available; seed organizations first")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	created := make([]*types.HelpRequest, 0, count)
	for i := 0; i < count; i++ {
		org := fakeOrgs[rng.Intn(len(fakeOrgs))]
		title := fakeRequestTitles[rng.Intn(len(fakeRequestTitles))]

		request := &types.HelpRequest{
			Title:       fmt.Sprintf("[seed] %s", title),
			Description: fmt.Sprintf("%s. Any amount of time helps.", title),
			Location:    fakeLocations[rng.Intn(len(fakeLocations))],
			Priority:    priorityPool[rng.Intn(len(priorityPool))],
			RequestType: "other",
			OrgID:       org.ID,
			OrgName:     org.OrgName,
		}
		if err := repo.Create(ctx, request); err != nil {
			return fmt.Errorf("failed to create fake request %d: %w", i+1, err)
		}
		created = append(created, request)
	}

	pp.Print(created)
	fmt.Printf("Fake requests seeded: %d created\n", len(created))
	return nil
}
