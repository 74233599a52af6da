package lifecycle

import (
	"context"
	"io"
	"sync"
	"testing"

	"visionaid/internal/store"
	"visionaid/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	manager    *Manager
	requests   *store.RequestRepository
	volunteers *store.VolunteerRepository
	orgs       *store.OrganizationRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	treeStore := store.NewMemoryStore()
	requests := store.NewRequestRepository(treeStore)
	volunteers := store.NewVolunteerRepository(treeStore)
	orgs := store.NewOrganizationRepository(treeStore)

	return &fixture{
		manager:    NewManager(logger, requests, volunteers, orgs),
		requests:   requests,
		volunteers: volunteers,
		orgs:       orgs,
	}
}

func (f *fixture) org(t *testing.T, id, name string) types.Session {
	t.Helper()
	err := f.orgs.Create(context.Background(), id, &types.OrganizationProfile{
		OrgName: name,
		Email:   name + "@example.com",
	})
	require.NoError(t, err)
	return types.Session{UserID: id, Kind: types.AccountKindOrganization, Name: name}
}

func (f *fixture) volunteer(t *testing.T, id, name string) types.Session {
	t.Helper()
	err := f.volunteers.Create(context.Background(), id, &types.VolunteerProfile{
		FullName: name,
		Email:    name + "@example.com",
	})
	require.NoError(t, err)
	return types.Session{UserID: id, Kind: types.AccountKindIndividual, Name: name}
}

func (f *fixture) createRequest(t *testing.T, org types.Session) *types.HelpRequest {
	t.Helper()
	request, err := f.manager.Create(context.Background(), org, types.CreateRequestInput{
		Title:       "Deliver groceries",
		Description: "Weekly grocery run for elderly residents",
		Location:    "Riverside District",
		Priority:    "high",
	})
	require.NoError(t, err)
	return request
}

func TestCreateSetsDefaultsAndOwnership(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")

	request, err := f.manager.Create(context.Background(), org, types.CreateRequestInput{
		Title:       "  Tutor students  ",
		Description: "Exam prep",
		Location:    "Old Town",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, request.ID)
	assert.Equal(t, "Tutor students", request.Title)
	assert.Equal(t, types.RequestStatusActive, request.Status)
	assert.Equal(t, types.RequestPriorityLow, request.Priority)
	assert.Equal(t, "other", request.RequestType)
	assert.Equal(t, "org-1", request.OrgID)
	assert.Equal(t, "Harbor Light", request.OrgName)
}

func TestCreateGeneratesDistinctIDs(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")

	seen := map[string]bool{}
	for range 20 {
		request := f.createRequest(t, org)
		assert.False(t, seen[request.ID])
		seen[request.ID] = true
	}
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")

	_, err := f.manager.Create(context.Background(), org, types.CreateRequestInput{Title: " "})

	var validation *types.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "title")
	assert.Contains(t, validation.Fields, "description")
	assert.Contains(t, validation.Fields, "location")
}

func TestCreateRequiresOrganization(t *testing.T) {
	f := newFixture(t)
	vol := f.volunteer(t, "vol-1", "Ava")

	_, err := f.manager.Create(context.Background(), vol, types.CreateRequestInput{
		Title: "x", Description: "y", Location: "z",
	})
	assert.ErrorIs(t, err, types.ErrForbidden)

	_, err = f.manager.Create(context.Background(), types.Session{}, types.CreateRequestInput{
		Title: "x", Description: "y", Location: "z",
	})
	assert.ErrorIs(t, err, types.ErrUnauthenticated)
}

func TestAcceptClaimsRequest(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")
	vol := f.volunteer(t, "vol-1", "Ava")
	request := f.createRequest(t, org)

	updated, err := f.manager.Accept(context.Background(), vol, request.ID)
	require.NoError(t, err)

	assert.Equal(t, types.RequestStatusAssigned, updated.Status)
	assert.Equal(t, "vol-1", updated.VolunteerID)
	assert.Equal(t, "Ava", updated.VolunteerName)
	require.NotNil(t, updated.AcceptedAt)

	// moved, not duplicated: the open view no longer carries it
	open, err := f.requests.ByStatus(context.Background(), types.RequestStatusActive)
	require.NoError(t, err)
	assert.NotContains(t, open, request.ID)

	assigned, err := f.requests.ByStatus(context.Background(), types.RequestStatusAssigned)
	require.NoError(t, err)
	assert.Contains(t, assigned, request.ID)

	profile, err := f.volunteers.Volunteer(context.Background(), "vol-1")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.AssignmentsCount)
	assert.NotNil(t, profile.LastAssignment)
}

func TestSecondAcceptConflicts(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")
	first := f.volunteer(t, "vol-1", "Ava")
	second := f.volunteer(t, "vol-2", "Liam")
	request := f.createRequest(t, org)

	_, err := f.manager.Accept(context.Background(), first, request.ID)
	require.NoError(t, err)

	_, err = f.manager.Accept(context.Background(), second, request.ID)
	assert.ErrorIs(t, err, types.ErrConflict)

	fetched, err := f.requests.Request(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, "vol-1", fetched.VolunteerID)
}

func TestConcurrentAcceptsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")
	request := f.createRequest(t, org)

	const contenders = 16
	sessions := make([]types.Session, contenders)
	for i := range sessions {
		sessions[i] = f.volunteer(t, "vol-"+string(rune('a'+i)), "Contender")
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.manager.Accept(context.Background(), sessions[i], request.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, types.ErrConflict)
		}
	}
	assert.Equal(t, 1, winners)

	fetched, err := f.requests.Request(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RequestStatusAssigned, fetched.Status)
	assert.EqualValues(t, 2, fetched.Rev)
}

func TestAcceptRequiresVolunteer(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")
	request := f.createRequest(t, org)

	_, err := f.manager.Accept(context.Background(), org, request.ID)
	assert.ErrorIs(t, err, types.ErrForbidden)
}

func TestAcceptMissingRequest(t *testing.T) {
	f := newFixture(t)
	vol := f.volunteer(t, "vol-1", "Ava")

	_, err := f.manager.Accept(context.Background(), vol, "nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestAssignHandsRequestToVolunteer(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")
	f.volunteer(t, "vol-1", "Ava")
	request := f.createRequest(t, org)

	updated, err := f.manager.Assign(context.Background(), org, types.AssignRequestInput{
		RequestID:   request.ID,
		VolunteerID: "vol-1",
		Notes:       "Morning shift",
	})
	require.NoError(t, err)

	assert.Equal(t, types.RequestStatusAssigned, updated.Status)
	assert.Equal(t, "vol-1", updated.VolunteerID)
	assert.Equal(t, "Ava", updated.VolunteerName)
	assert.Equal(t, "Morning shift", updated.AssignmentNotes)
	assert.NotNil(t, updated.AssignedAt)
}

func TestAssignForeignRequestForbidden(t *testing.T) {
	f := newFixture(t)
	owner := f.org(t, "org-1", "Harbor Light")
	other := f.org(t, "org-2", "Open Hands")
	f.volunteer(t, "vol-1", "Ava")
	request := f.createRequest(t, owner)

	_, err := f.manager.Assign(context.Background(), other, types.AssignRequestInput{
		RequestID:   request.ID,
		VolunteerID: "vol-1",
	})
	assert.ErrorIs(t, err, types.ErrForbidden)

	fetched, err := f.requests.Request(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RequestStatusActive, fetched.Status)
}

func TestAssignUnknownVolunteer(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")
	request := f.createRequest(t, org)

	_, err := f.manager.Assign(context.Background(), org, types.AssignRequestInput{
		RequestID:   request.ID,
		VolunteerID: "nope",
	})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCompleteByAssignedVolunteer(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")
	vol := f.volunteer(t, "vol-1", "Ava")
	request := f.createRequest(t, org)

	_, err := f.manager.Accept(context.Background(), vol, request.ID)
	require.NoError(t, err)

	updated, err := f.manager.Complete(context.Background(), vol, request.ID)
	require.NoError(t, err)

	assert.Equal(t, types.RequestStatusCompleted, updated.Status)
	assert.False(t, updated.CompletedByOrg)
	assert.NotNil(t, updated.CompletedAt)

	profile, err := f.volunteers.Volunteer(context.Background(), "vol-1")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.CompletionsCount)
}

func TestCompleteByOtherVolunteerForbidden(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")
	assignee := f.volunteer(t, "vol-1", "Ava")
	intruder := f.volunteer(t, "vol-2", "Liam")
	request := f.createRequest(t, org)

	_, err := f.manager.Accept(context.Background(), assignee, request.ID)
	require.NoError(t, err)

	_, err = f.manager.Complete(context.Background(), intruder, request.ID)
	assert.ErrorIs(t, err, types.ErrForbidden)

	// record unchanged by the rejected attempt
	fetched, err := f.requests.Request(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RequestStatusAssigned, fetched.Status)
	assert.Equal(t, "vol-1", fetched.VolunteerID)
	assert.EqualValues(t, 2, fetched.Rev)
}

func TestCompleteUnassignedRequestNotFound(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")
	vol := f.volunteer(t, "vol-1", "Ava")
	request := f.createRequest(t, org)

	_, err := f.manager.Complete(context.Background(), vol, request.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCompleteByOrg(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")
	vol := f.volunteer(t, "vol-1", "Ava")
	request := f.createRequest(t, org)

	_, err := f.manager.Accept(context.Background(), vol, request.ID)
	require.NoError(t, err)

	updated, err := f.manager.CompleteByOrg(context.Background(), org, request.ID)
	require.NoError(t, err)

	assert.Equal(t, types.RequestStatusCompleted, updated.Status)
	assert.True(t, updated.CompletedByOrg)

	profile, err := f.volunteers.Volunteer(context.Background(), "vol-1")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.CompletionsCount)
}

func TestCompleteByForeignOrgForbidden(t *testing.T) {
	f := newFixture(t)
	owner := f.org(t, "org-1", "Harbor Light")
	other := f.org(t, "org-2", "Open Hands")
	vol := f.volunteer(t, "vol-1", "Ava")
	request := f.createRequest(t, owner)

	_, err := f.manager.Accept(context.Background(), vol, request.ID)
	require.NoError(t, err)

	_, err = f.manager.CompleteByOrg(context.Background(), other, request.ID)
	assert.ErrorIs(t, err, types.ErrForbidden)
}

func TestArchiveCompletedRequest(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")
	vol := f.volunteer(t, "vol-1", "Ava")
	request := f.createRequest(t, org)

	_, err := f.manager.Accept(context.Background(), vol, request.ID)
	require.NoError(t, err)
	_, err = f.manager.Complete(context.Background(), vol, request.ID)
	require.NoError(t, err)

	updated, err := f.manager.Archive(context.Background(), org, request.ID)
	require.NoError(t, err)

	assert.Equal(t, types.RequestStatusArchived, updated.Status)
	assert.NotNil(t, updated.ArchivedAt)

	completed, err := f.requests.ByStatus(context.Background(), types.RequestStatusCompleted)
	require.NoError(t, err)
	assert.NotContains(t, completed, request.ID)
}

func TestArchiveNonCompletedNotFound(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")
	request := f.createRequest(t, org)

	_, err := f.manager.Archive(context.Background(), org, request.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

// TestFullLifecycle walks one request through every state and checks that
// each timestamp survives to the end.
func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	org := f.org(t, "org-1", "Harbor Light")
	vol := f.volunteer(t, "vol-1", "Ava")

	request := f.createRequest(t, org)
	_, err := f.manager.Accept(context.Background(), vol, request.ID)
	require.NoError(t, err)
	_, err = f.manager.Complete(context.Background(), vol, request.ID)
	require.NoError(t, err)
	final, err := f.manager.Archive(context.Background(), org, request.ID)
	require.NoError(t, err)

	assert.Equal(t, types.RequestStatusArchived, final.Status)
	assert.False(t, final.CreatedAt.IsZero())
	assert.NotNil(t, final.AcceptedAt)
	assert.NotNil(t, final.CompletedAt)
	assert.NotNil(t, final.ArchivedAt)
	assert.EqualValues(t, 4, final.Rev)
	assert.Equal(t, "org-1", final.OrgID)
	assert.Equal(t, "vol-1", final.VolunteerID)
}
