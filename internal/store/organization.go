package store

import (
	"context"
	"time"

	"visionaid/pkg/types"
)

type OrganizationRepository struct {
	store TreeStore
}

func NewOrganizationRepository(store TreeStore) *OrganizationRepository {
	return &OrganizationRepository{store: store}
}

func (r *OrganizationRepository) Organization(ctx context.Context, orgID string) (*types.OrganizationProfile, error) {
	var profile *types.OrganizationProfile
	if err := r.store.Get(ctx, join(organizationsPath, orgID), &profile); err != nil {
		return nil, err
	}

	if profile == nil {
		return nil, types.ErrNotFound
	}

	profile.ID = orgID
	return profile, nil
}

func (r *OrganizationRepository) Create(ctx context.Context, orgID string, profile *types.OrganizationProfile) error {
	profile.Kind = types.AccountKindOrganization
	profile.VerificationStatus = types.VerificationStatusPending
	profile.CreatedAt = time.Now().UTC()

	if err := r.store.Set(ctx, join(organizationsPath, orgID), profile); err != nil {
		return err
	}

	profile.ID = orgID
	return nil
}

// Mutate applies fn to the profile under a store transaction; see
// VolunteerRepository.Mutate.
func (r *OrganizationRepository) Mutate(ctx context.Context, orgID string, fn func(*types.OrganizationProfile) error) (*types.OrganizationProfile, error) {
	var updated *types.OrganizationProfile

	err := r.store.Transaction(ctx, join(organizationsPath, orgID), func(node Node) (any, error) {
		var profile *types.OrganizationProfile
		if err := node.Unmarshal(&profile); err != nil {
			return nil, err
		}

		if profile == nil {
			return nil, types.ErrNotFound
		}

		profile.ID = orgID
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

// SetVerificationStatus is an admin-side partial update.
func (r *OrganizationRepository) SetVerificationStatus(ctx context.Context, orgID string, status types.VerificationStatus) error {
	return r.store.Update(ctx, join(organizationsPath, orgID), map[string]any{
		"verification_status": status,
	})
}
