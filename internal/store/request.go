package store

import (
	"context"
	"sort"
	"time"

	"visionaid/pkg/types"
)

type RequestRepository struct {
	store TreeStore
}

func NewRequestRepository(store TreeStore) *RequestRepository {
	return &RequestRepository{store: store}
}

// Create inserts a new active request and fills in its generated id.
func (r *RequestRepository) Create(ctx context.Context, request *types.HelpRequest) error {
	request.Status = types.RequestStatusActive
	request.Rev = 1
	request.CreatedAt = time.Now().UTC()

	id, err := r.store.Push(ctx, requestsPath, request)
	if err != nil {
		return err
	}

	request.ID = id
	return nil
}

func (r *RequestRepository) Request(ctx context.Context, requestID string) (*types.HelpRequest, error) {
	var request *types.HelpRequest
	if err := r.store.Get(ctx, join(requestsPath, requestID), &request); err != nil {
		return nil, err
	}

	if request == nil {
		return nil, types.ErrNotFound
	}

	request.ID = requestID
	return request, nil
}

// Transition applies fn to the record under a store transaction and bumps
// the revision. fn sees the freshly read record, so a status check inside it
// is race-free: of two concurrent transitions on one id, exactly one
// commits. Returns types.ErrNotFound when the id is absent.
func (r *RequestRepository) Transition(ctx context.Context, requestID string, fn func(*types.HelpRequest) error) (*types.HelpRequest, error) {
	var updated *types.HelpRequest

	err := r.store.Transaction(ctx, join(requestsPath, requestID), func(node Node) (any, error) {
		var request *types.HelpRequest
		if err := node.Unmarshal(&request); err != nil {
			return nil, err
		}

		if request == nil {
			return nil, types.ErrNotFound
		}

		request.ID = requestID
		if err := fn(request); err != nil {
			return nil, err
		}

		request.Rev++
		updated = request
		return request, nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// All fetches the full request subtree. The database offers no query
// language beyond this, so every view below filters in process.
func (r *RequestRepository) All(ctx context.Context) (map[string]*types.HelpRequest, error) {
	var records map[string]*types.HelpRequest
	if err := r.store.Get(ctx, requestsPath, &records); err != nil {
		return nil, err
	}

	for id, record := range records {
		record.ID = id
	}

	if records == nil {
		records = map[string]*types.HelpRequest{}
	}
	return records, nil
}

// ByStatus materializes the legacy per-status collection for a status.
func (r *RequestRepository) ByStatus(ctx context.Context, status types.RequestStatus) (map[string]*types.HelpRequest, error) {
	records, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make(map[string]*types.HelpRequest)
	for id, record := range records {
		if record.Status == status {
			filtered[id] = record
		}
	}

	return filtered, nil
}

// ByOrg materializes an organization-scoped collection.
func (r *RequestRepository) ByOrg(ctx context.Context, orgID string, status types.RequestStatus) (map[string]*types.HelpRequest, error) {
	records, err := r.ByStatus(ctx, status)
	if err != nil {
		return nil, err
	}

	for id, record := range records {
		if record.OrgID != orgID {
			delete(records, id)
		}
	}

	return records, nil
}

// AssignmentsForVolunteer materializes the volunteer-side assignment
// snapshots: status=assigned yields the active set, status=completed the
// completed set. Sorted newest first.
func (r *RequestRepository) AssignmentsForVolunteer(ctx context.Context, volunteerID string, status types.RequestStatus) ([]types.AssignmentView, error) {
	records, err := r.ByStatus(ctx, status)
	if err != nil {
		return nil, err
	}

	views := make([]types.AssignmentView, 0, len(records))
	for id, record := range records {
		if record.VolunteerID != volunteerID {
			continue
		}

		views = append(views, types.AssignmentView{
			RequestID:   id,
			Title:       record.Title,
			OrgID:       record.OrgID,
			OrgName:     record.OrgName,
			AcceptedAt:  record.AcceptedAt,
			AssignedAt:  record.AssignedAt,
			CompletedAt: record.CompletedAt,
		})
	}

	sort.Slice(views, func(i, j int) bool {
		return viewTime(views[i]).After(viewTime(views[j]))
	})

	return views, nil
}

func viewTime(view types.AssignmentView) time.Time {
	switch {
	case view.CompletedAt != nil:
		return *view.CompletedAt
	case view.AssignedAt != nil:
		return *view.AssignedAt
	case view.AcceptedAt != nil:
		return *view.AcceptedAt
	}
	return time.Time{}
}
