package store

import (
	"context"
	"time"

	"visionaid/pkg/types"
)

type VolunteerRepository struct {
	store TreeStore
}

func NewVolunteerRepository(store TreeStore) *VolunteerRepository {
	return &VolunteerRepository{store: store}
}

func (r *VolunteerRepository) Volunteer(ctx context.Context, userID string) (*types.VolunteerProfile, error) {
	var profile *types.VolunteerProfile
	if err := r.store.Get(ctx, join(usersPath, userID), &profile); err != nil {
		return nil, err
	}

	if profile == nil {
		return nil, types.ErrNotFound
	}

	profile.ID = userID
	return profile, nil
}

func (r *VolunteerRepository) Create(ctx context.Context, userID string, profile *types.VolunteerProfile) error {
	profile.Kind = types.AccountKindIndividual
	profile.CreatedAt = time.Now().UTC()

	if err := r.store.Set(ctx, join(usersPath, userID), profile); err != nil {
		return err
	}

	profile.ID = userID
	return nil
}

// Mutate applies fn to the profile under a store transaction. List appends
// and map inserts go through here so two concurrent profile updates cannot
// overwrite each other's whole-structure write.
func (r *VolunteerRepository) Mutate(ctx context.Context, userID string, fn func(*types.VolunteerProfile) error) (*types.VolunteerProfile, error) {
	var updated *types.VolunteerProfile

	err := r.store.Transaction(ctx, join(usersPath, userID), func(node Node) (any, error) {
		var profile *types.VolunteerProfile
		if err := node.Unmarshal(&profile); err != nil {
			return nil, err
		}

		if profile == nil {
			return nil, types.ErrNotFound
		}

		profile.ID = userID
		if err := fn(profile); err != nil {
			return nil, err
		}

		updated = profile
		return profile, nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// TouchLastLogin stamps the login time without rewriting the profile.
func (r *VolunteerRepository) TouchLastLogin(ctx context.Context, userID string) error {
	return r.store.Update(ctx, join(usersPath, userID), map[string]any{
		"last_login": time.Now().UTC(),
	})
}
