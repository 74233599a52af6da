// Package lifecycle owns the help-request state machine. Every mutation of a
// request record goes through Manager, which authorizes the caller and
// applies the transition as a single conditional write, so a request can
// only ever sit in one state and two racing claims produce one winner.
package lifecycle

import (
	"context"
	"strings"
	"time"

	"visionaid/internal/store"
	"visionaid/internal/utils"
	"visionaid/pkg/types"

	"github.com/sirupsen/logrus"
)

type Manager struct {
	logger     *logrus.Logger
	requests   *store.RequestRepository
	volunteers *store.VolunteerRepository
	orgs       *store.OrganizationRepository
}

func NewManager(
	logger *logrus.Logger,
	requests *store.RequestRepository,
	volunteers *store.VolunteerRepository,
	orgs *store.OrganizationRepository,
) *Manager {
	return &Manager{
		logger:     logger,
		requests:   requests,
		volunteers: volunteers,
		orgs:       orgs,
	}
}

// Create validates the input, applies defaults, and inserts a new active
// request owned by the calling organization. Returns the record with its
// generated id.
func (m *Manager) Create(ctx context.Context, actor types.Session, input types.CreateRequestInput) (*types.HelpRequest, error) {
	if err := m.authorize(actor, actionCreate, nil); err != nil {
		return nil, err
	}

	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	priority := types.RequestPriority(input.Priority)
	if priority == "" {
		priority = types.RequestPriorityLow
	}

	requestType := strings.TrimSpace(input.RequestType)
	if requestType == "" {
		requestType = "other"
	}

	skills := input.Skills
	if skills == nil {
		skills = []string{}
	}

	request := &types.HelpRequest{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		Priority:    priority,
		RequestType: requestType,
		Skills:      skills,
		OrgID:       actor.UserID,
		OrgName:     actor.Name,
	}

	if err := m.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

// Accept lets a volunteer claim an active request. The status check runs
// inside the store transaction, so a second concurrent accept of the same id
// fails with types.ErrConflict and writes nothing.
func (m *Manager) Accept(ctx context.Context, actor types.Session, requestID string) (*types.HelpRequest, error) {
	if err := m.authorize(actor, actionAccept, nil); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated, err := m.requests.Transition(ctx, requestID, func(request *types.HelpRequest) error {
		if request.Status != types.RequestStatusActive {
			return types.ErrConflict
		}

		request.Status = types.RequestStatusAssigned
		request.VolunteerID = actor.UserID
		request.VolunteerName = actor.Name
		request.AcceptedAt = utils.TimePtr(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.recordAssignment(ctx, actor.UserID, now)
	return updated, nil
}

// Assign lets an organization hand one of its own active requests to a
// chosen volunteer.
func (m *Manager) Assign(ctx context.Context, actor types.Session, input types.AssignRequestInput) (*types.HelpRequest, error) {
	if err := m.authorize(actor, actionAssign, nil); err != nil {
		return nil, err
	}

	if input.RequestID == "" || input.VolunteerID == "" {
		return nil, &types.ValidationError{Fields: map[string]string{
			"request_id":   "Request ID is required.",
			"volunteer_id": "Volunteer ID is required.",
		}}
	}

	volunteer, err := m.volunteers.Volunteer(ctx, input.VolunteerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated, err := m.requests.Transition(ctx, input.RequestID, func(request *types.HelpRequest) error {
		if err := m.authorize(actor, actionAssign, request); err != nil {
			return err
		}

		if request.Status != types.RequestStatusActive {
			return types.ErrConflict
		}

		request.Status = types.RequestStatusAssigned
		request.VolunteerID = volunteer.ID
		request.VolunteerName = volunteer.FullName
		request.AssignmentNotes = strings.TrimSpace(input.Notes)
		request.OrgName = actor.Name
		request.AssignedAt = utils.TimePtr(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.recordAssignment(ctx, volunteer.ID, now)
	return updated, nil
}

// Complete is the volunteer-initiated completion of an assigned request.
func (m *Manager) Complete(ctx context.Context, actor types.Session, requestID string) (*types.HelpRequest, error) {
	if err := m.authorize(actor, actionComplete, nil); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated, err := m.requests.Transition(ctx, requestID, func(request *types.HelpRequest) error {
		if request.Status != types.RequestStatusAssigned {
			return types.ErrNotFound
		}

		if err := m.authorize(actor, actionComplete, request); err != nil {
			return err
		}

		request.Status = types.RequestStatusCompleted
		request.CompletedAt = utils.TimePtr(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.recordCompletion(ctx, actor.UserID, now)
	return updated, nil
}

// CompleteByOrg is the organization-initiated completion of one of its own
// assigned requests. If a volunteer is attached their counters move too.
func (m *Manager) CompleteByOrg(ctx context.Context, actor types.Session, requestID string) (*types.HelpRequest, error) {
	if err := m.authorize(actor, actionCompleteOrg, nil); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated, err := m.requests.Transition(ctx, requestID, func(request *types.HelpRequest) error {
		if request.Status != types.RequestStatusAssigned {
			return types.ErrNotFound
		}

		if err := m.authorize(actor, actionCompleteOrg, request); err != nil {
			return err
		}

		request.Status = types.RequestStatusCompleted
		request.CompletedByOrg = true
		request.CompletedAt = utils.TimePtr(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated.VolunteerID != "" {
		m.recordCompletion(ctx, updated.VolunteerID, now)
	}
	return updated, nil
}

// Archive moves one of the organization's completed requests to its final
// read-only state. A request that is not completed is absent from the
// completed set, so archiving it fails with types.ErrNotFound.
func (m *Manager) Archive(ctx context.Context, actor types.Session, requestID string) (*types.HelpRequest, error) {
	if err := m.authorize(actor, actionArchive, nil); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return m.requests.Transition(ctx, requestID, func(request *types.HelpRequest) error {
		if request.Status != types.RequestStatusCompleted {
			return types.ErrNotFound
		}

		if err := m.authorize(actor, actionArchive, request); err != nil {
			return err
		}

		request.Status = types.RequestStatusArchived
		request.ArchivedAt = utils.TimePtr(now)
		return nil
	})
}

// recordAssignment bumps the volunteer's assignment counter. The request
// transition has already committed; a counter failure is logged rather than
// surfaced, since the counters are derivable from the request records.
func (m *Manager) recordAssignment(ctx context.Context, volunteerID string, now time.Time) {
	_, err := m.volunteers.Mutate(ctx, volunteerID, func(profile *types.VolunteerProfile) error {
		profile.AssignmentsCount++
		profile.LastAssignment = utils.TimePtr(now)
		return nil
	})
	if err != nil {
		m.logger.WithError(err).WithField("volunteer_id", volunteerID).Warn("failed to update assignment counters")
	}
}

func (m *Manager) recordCompletion(ctx context.Context, volunteerID string, now time.Time) {
	_, err := m.volunteers.Mutate(ctx, volunteerID, func(profile *types.VolunteerProfile) error {
		profile.CompletionsCount++
		profile.LastCompletion = utils.TimePtr(now)
		return nil
	})
	if err != nil {
		m.logger.WithError(err).WithField("volunteer_id", volunteerID).Warn("failed to update completion counters")
	}
}

func validateCreateInput(input types.CreateRequestInput) error {
	fields := map[string]string{}

	if strings.TrimSpace(input.Title) == "" {
		fields["title"] = "Title is required."
	}
	if strings.TrimSpace(input.Description) == "" {
		fields["description"] = "Description is required."
	}
	if strings.TrimSpace(input.Location) == "" {
		fields["location"] = "Location is required."
	}

	if len(fields) > 0 {
		return &types.ValidationError{Fields: fields}
	}
	return nil
}
