package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"visionaid/internal/identity"
	"visionaid/internal/lifecycle"
	"visionaid/internal/storage"
	"visionaid/internal/store"
	"visionaid/pkg/types"

	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHarness struct {
	service    *Service
	identity   *identity.Memory
	volunteers *store.VolunteerRepository
	orgs       *store.OrganizationRepository
	requests   *store.RequestRepository
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	config := &types.Config{
		ServerPort:       8080,
		ReadTimeoutSec:   10,
		WriteTimeoutSec:  15,
		CookieName:       "visionaid_session",
		SessionMaxAgeSec: 3600,
		CookieHashKey:    base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
		CookieBlockKey:   base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
	}

	treeStore := store.NewMemoryStore()
	requests := store.NewRequestRepository(treeStore)
	volunteers := store.NewVolunteerRepository(treeStore)
	orgs := store.NewOrganizationRepository(treeStore)
	identityProvider := identity.NewMemory()

	service, err := New(
		config,
		logger,
		identityProvider,
		storage.NewMemoryStorage(),
		lifecycle.NewManager(logger, requests, volunteers, orgs),
		requests,
		volunteers,
		orgs,
		nil,
		"",
	)
	require.NoError(t, err)

	return &testHarness{
		service:    service,
		identity:   identityProvider,
		volunteers: volunteers,
		orgs:       orgs,
		requests:   requests,
	}
}

func (h *testHarness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.service.server.Handler.ServeHTTP(rec, req)
	return rec
}

func (h *testHarness) sessionCookie(t *testing.T, session types.Session) *http.Cookie {
	t.Helper()
	encoded, err := h.service.cookie.Encode(h.service.config.CookieName, session)
	require.NoError(t, err)
	return &http.Cookie{Name: h.service.config.CookieName, Value: encoded}
}

func (h *testHarness) volunteerSession(t *testing.T, id, name string) types.Session {
	t.Helper()
	err := h.volunteers.Create(context.Background(), id, &types.VolunteerProfile{
		FullName: name,
		Email:    strings.ToLower(name) + "@example.com",
	})
	require.NoError(t, err)
	return types.Session{UserID: id, Kind: types.AccountKindIndividual, Name: name}
}

func (h *testHarness) orgSession(t *testing.T, id, name string) types.Session {
	t.Helper()
	err := h.orgs.Create(context.Background(), id, &types.OrganizationProfile{
		OrgName: name,
		Email:   "contact@example.com",
	})
	require.NoError(t, err)
	return types.Session{UserID: id, Kind: types.AccountKindOrganization, Name: name}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func jsonRequest(method, target string, payload any) *http.Request {
	var body bytes.Buffer
	json.NewEncoder(&body).Encode(payload)
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeEnvelope(t, rec)["status"])
}

func TestPageRequiresSessionRedirects(t *testing.T) {
	h := newTestHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/volunteer-dashboard", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestActionRequiresSessionJSON(t *testing.T) {
	h := newTestHarness(t)

	rec := h.do(jsonRequest(http.MethodPost, "/create-request", map[string]any{"title": "x"}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Please login first", body["message"])
}

func TestCreateRequestValidation(t *testing.T) {
	h := newTestHarness(t)
	org := h.orgSession(t, "org-1", "Harbor Light")

	req := jsonRequest(http.MethodPost, "/create-request", map[string]any{"title": "Only a title"})
	req.AddCookie(h.sessionCookie(t, org))

	rec := h.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "description")
	assert.Contains(t, fields, "location")
}

func TestCreateRequestAsVolunteerForbidden(t *testing.T) {
	h := newTestHarness(t)
	vol := h.volunteerSession(t, "vol-1", "Ava")

	req := jsonRequest(http.MethodPost, "/create-request", map[string]any{
		"title": "x", "description": "y", "location": "z",
	})
	req.AddCookie(h.sessionCookie(t, vol))

	rec := h.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestLifecycleOverHTTP(t *testing.T) {
	h := newTestHarness(t)
	org := h.orgSession(t, "org-1", "Harbor Light")
	vol := h.volunteerSession(t, "vol-1", "Ava")
	intruder := h.volunteerSession(t, "vol-2", "Liam")

	// organization posts a request
	req := jsonRequest(http.MethodPost, "/create-request", map[string]any{
		"title":       "Deliver groceries",
		"description": "Weekly run",
		"location":    "Riverside District",
		"priority":    "urgent",
	})
	req.AddCookie(h.sessionCookie(t, org))
	rec := h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	requestID, ok := decodeEnvelope(t, rec)["request_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, requestID)

	// volunteer accepts it
	req = jsonRequest(http.MethodPost, "/accept-request/"+requestID, nil)
	req.AddCookie(h.sessionCookie(t, vol))
	rec = h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	// second accept conflicts
	req = jsonRequest(http.MethodPost, "/accept-request/"+requestID, nil)
	req.AddCookie(h.sessionCookie(t, intruder))
	rec = h.do(req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// intruder cannot complete it
	req = jsonRequest(http.MethodPost, "/complete-request/"+requestID, nil)
	req.AddCookie(h.sessionCookie(t, intruder))
	rec = h.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// assigned volunteer completes it
	req = jsonRequest(http.MethodPost, "/complete-request/"+requestID, nil)
	req.AddCookie(h.sessionCookie(t, vol))
	rec = h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	// organization archives it
	req = jsonRequest(http.MethodPost, "/archive-request/"+requestID, nil)
	req.AddCookie(h.sessionCookie(t, org))
	rec = h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	final, err := h.requests.Request(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, types.RequestStatusArchived, final.Status)
}

func TestLoginFlow(t *testing.T) {
	h := newTestHarness(t)

	userID, err := h.identity.CreateUser(context.Background(), "ava@example.com", "hunter22", "Ava Williams")
	require.NoError(t, err)
	require.NoError(t, h.volunteers.Create(context.Background(), userID, &types.VolunteerProfile{
		FullName: "Ava Williams",
		Email:    "ava@example.com",
	}))

	form := url.Values{"email": {"ava@example.com"}, "password": {"hunter22"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := h.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/volunteer-dashboard", rec.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == h.service.config.CookieName {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)

	// the cookie unlocks the dashboard
	req = httptest.NewRequest(http.MethodGet, "/volunteer-dashboard", nil)
	req.AddCookie(sessionCookie)
	rec = h.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ava Williams")
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.identity.CreateUser(context.Background(), "ava@example.com", "hunter22", "Ava Williams")
	require.NoError(t, err)

	form := url.Values{"email": {"ava@example.com"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := h.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.Empty(t, rec.Result().Cookies())
}

func TestProfileIsOwnOnly(t *testing.T) {
	h := newTestHarness(t)
	vol := h.volunteerSession(t, "vol-1", "Ava")

	req := httptest.NewRequest(http.MethodGet, "/profile/volunteer/vol-2", nil)
	req.AddCookie(h.sessionCookie(t, vol))
	rec := h.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/profile/volunteer/vol-1", nil)
	req.AddCookie(h.sessionCookie(t, vol))
	rec = h.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAddSkillAndRoster(t *testing.T) {
	h := newTestHarness(t)
	org := h.orgSession(t, "org-1", "Harbor Light")
	vol := h.volunteerSession(t, "vol-1", "Ava")

	// register the volunteer with the identity provider so the roster
	// lookup by email resolves
	_, err := h.identity.CreateUser(context.Background(), "ava@example.com", "hunter22", "Ava")
	require.NoError(t, err)
	volID, err := h.identity.UserIDByEmail(context.Background(), "ava@example.com")
	require.NoError(t, err)
	require.NoError(t, h.volunteers.Create(context.Background(), volID, &types.VolunteerProfile{
		FullName: "Ava",
		Email:    "ava@example.com",
	}))

	req := jsonRequest(http.MethodPost, "/add-skill", map[string]any{"skill": "first aid"})
	req.AddCookie(h.sessionCookie(t, vol))
	rec := h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	profile, err := h.volunteers.Volunteer(context.Background(), "vol-1")
	require.NoError(t, err)
	assert.Contains(t, profile.Skills, "first aid")

	// duplicate skill is a no-op
	req = jsonRequest(http.MethodPost, "/add-skill", map[string]any{"skill": "First Aid"})
	req.AddCookie(h.sessionCookie(t, vol))
	rec = h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	profile, err = h.volunteers.Volunteer(context.Background(), "vol-1")
	require.NoError(t, err)
	assert.Len(t, profile.Skills, 1)

	// organization adds the volunteer to its roster
	req = jsonRequest(http.MethodPost, "/add-volunteer", map[string]any{
		"email": "ava@example.com",
		"role":  "driver",
	})
	req.AddCookie(h.sessionCookie(t, org))
	rec = h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	orgProfile, err := h.orgs.Organization(context.Background(), "org-1")
	require.NoError(t, err)
	require.Contains(t, orgProfile.Volunteers, volID)
	assert.Equal(t, "driver", orgProfile.Volunteers[volID].Role)

	// adding again conflicts
	req = jsonRequest(http.MethodPost, "/add-volunteer", map[string]any{"email": "ava@example.com"})
	req.AddCookie(h.sessionCookie(t, org))
	rec = h.do(req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPIMeWithDevToken(t *testing.T) {
	h := newTestHarness(t)
	h.volunteerSession(t, "vol-1", "Ava")

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer dev-token-vol-1")
	rec := h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, string(types.AccountKindIndividual), body["type"])
}

func TestAPIMeRejectsBadToken(t *testing.T) {
	h := newTestHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := h.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec = h.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestErrorResponsesHideInternals(t *testing.T) {
	h := newTestHarness(t)

	rec := httptest.NewRecorder()
	h.service.respondError(rec, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

func TestRegisterIndividualFlow(t *testing.T) {
	h := newTestHarness(t)

	form := url.Values{
		"full_name":        {"Ava Williams"},
		"email":            {"ava@example.com"},
		"password":         {"hunter22!"},
		"confirm_password": {"hunter22!"},
	}
	req := httptest.NewRequest(http.MethodPost, "/register/individual", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := h.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	userID, err := h.identity.UserIDByEmail(context.Background(), "ava@example.com")
	require.NoError(t, err)

	profile, err := h.volunteers.Volunteer(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Ava Williams", profile.FullName)
	assert.Equal(t, types.AccountKindIndividual, profile.Kind)
}

func TestRegisterIndividualMismatchedPasswords(t *testing.T) {
	h := newTestHarness(t)

	form := url.Values{
		"full_name":        {"Ava Williams"},
		"email":            {"ava@example.com"},
		"password":         {"hunter22!"},
		"confirm_password": {"different"},
	}
	req := httptest.NewRequest(http.MethodPost, "/register/individual", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := h.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "passwords do not match")

	_, err := h.identity.UserIDByEmail(context.Background(), "ava@example.com")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRegisterOrganizationUploadsDocument(t *testing.T) {
	h := newTestHarness(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := map[string]string{
		"org_name":            "Harbor Light Foundation",
		"email":               "contact@harborlight.example.com",
		"phone":               "555-0100",
		"registration_number": "REG-12345",
		"password":            "hunter22!",
		"confirm_password":    "hunter22!",
	}
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	part, err := writer.CreateFormFile("reg_document", "charter.pdf")
	require.NoError(t, err)
	part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/register/organization", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := h.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	orgID, err := h.identity.UserIDByEmail(context.Background(), "contact@harborlight.example.com")
	require.NoError(t, err)

	profile, err := h.orgs.Organization(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, "Harbor Light Foundation", profile.OrgName)
	assert.Equal(t, types.VerificationStatusPending, profile.VerificationStatus)
	assert.True(t, strings.HasPrefix(profile.RegDocumentURL, "memory://reg_documents/"))
}
