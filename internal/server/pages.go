package server

import (
	"errors"
	"net/http"

	"visionaid/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "page.home", &types.BasePageData{Title: "VisionAid"})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, envelope{"status": "ok"})
}

func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
		return
	}

	if session.IsOrganization() {
		http.Redirect(w, r, "/org-dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/volunteer-dashboard", http.StatusSeeOther)
}

func (s *Service) handleVolunteerDashboard(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil || session.IsOrganization() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	ctx := r.Context()

	volunteer, err := s.volunteersRepo.Volunteer(ctx, session.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", session.UserID).Error("failed to load volunteer profile")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	open, err := s.requestsRepo.ByStatus(ctx, types.RequestStatusActive)
	if err != nil {
		s.logger.WithError(err).Error("failed to load open requests")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	active, err := s.requestsRepo.AssignmentsForVolunteer(ctx, session.UserID, types.RequestStatusAssigned)
	if err != nil {
		s.logger.WithError(err).Error("failed to load active assignments")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	completed, err := s.requestsRepo.AssignmentsForVolunteer(ctx, session.UserID, types.RequestStatusCompleted)
	if err != nil {
		s.logger.WithError(err).Error("failed to load completed assignments")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	urgent := 0
	for _, request := range open {
		if request.Priority == types.RequestPriorityUrgent {
			urgent++
		}
	}

	s.renderTemplate(w, r, "page.dashboard.volunteer", &types.VolunteerDashboardPageData{
		BasePageData: types.BasePageData{Title: "Volunteer Dashboard"},
		Volunteer:    volunteer,
		Requests:     open,
		Active:       active,
		Completed:    completed,
		UrgentCount:  urgent,
	})
}

func (s *Service) handleOrgDashboard(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil || !session.IsOrganization() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	ctx := r.Context()

	org, err := s.orgsRepo.Organization(ctx, session.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", session.UserID).Error("failed to load organization profile")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	data := &types.OrgDashboardPageData{
		BasePageData: types.BasePageData{Title: "Organization Dashboard"},
		Org:          org,
	}

	views := []struct {
		status types.RequestStatus
		dst    *map[string]*types.HelpRequest
	}{
		{types.RequestStatusActive, &data.Open},
		{types.RequestStatusAssigned, &data.Assigned},
		{types.RequestStatusCompleted, &data.Completed},
		{types.RequestStatusArchived, &data.Archived},
	}
	for _, view := range views {
		requests, err := s.requestsRepo.ByOrg(ctx, session.UserID, view.status)
		if err != nil {
			s.logger.WithError(err).WithField("status", view.status).Error("failed to load request view")
			http.Error(w, "Something went wrong", http.StatusInternalServerError)
			return
		}
		*view.dst = requests
	}

	s.renderTemplate(w, r, "page.dashboard.org", data)
}

func (s *Service) handleRequestDetail(w http.ResponseWriter, r *http.Request) {
	requestID := flow.Param(r.Context(), "requestID")

	request, err := s.requestsRepo.Request(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).WithField("request_id", requestID).Error("failed to load request")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	requester, err := s.orgsRepo.Organization(r.Context(), request.OrgID)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		s.logger.WithError(err).WithField("org_id", request.OrgID).Error("failed to load requesting organization")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, r, "page.request.detail", &types.RequestDetailPageData{
		BasePageData: types.BasePageData{Title: request.Title},
		Request:      request,
		Requester:    requester,
	})
}

// handleProfile serves the signed-in account's own profile. Other accounts'
// profiles are not browsable.
func (s *Service) handleProfile(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
		return
	}

	kind := flow.Param(r.Context(), "kind")
	userID := flow.Param(r.Context(), "userID")

	if userID != session.UserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	switch kind {
	case "volunteer":
		if session.IsOrganization() {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}

		volunteer, err := s.volunteersRepo.Volunteer(r.Context(), userID)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Error("failed to load volunteer profile")
			http.Error(w, "Something went wrong", http.StatusInternalServerError)
			return
		}

		active, err := s.requestsRepo.AssignmentsForVolunteer(r.Context(), userID, types.RequestStatusAssigned)
		if err != nil {
			s.logger.WithError(err).Error("failed to load active assignments")
			http.Error(w, "Something went wrong", http.StatusInternalServerError)
			return
		}

		completed, err := s.requestsRepo.AssignmentsForVolunteer(r.Context(), userID, types.RequestStatusCompleted)
		if err != nil {
			s.logger.WithError(err).Error("failed to load completed assignments")
			http.Error(w, "Something went wrong", http.StatusInternalServerError)
			return
		}

		s.renderTemplate(w, r, "page.profile.volunteer", &types.VolunteerProfilePageData{
			BasePageData: types.BasePageData{Title: volunteer.FullName},
			Volunteer:    volunteer,
			Active:       active,
			Completed:    completed,
		})
	case "organization":
		if !session.IsOrganization() {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}

		org, err := s.orgsRepo.Organization(r.Context(), userID)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Error("failed to load organization profile")
			http.Error(w, "Something went wrong", http.StatusInternalServerError)
			return
		}

		s.renderTemplate(w, r, "page.profile.org", &types.OrgProfilePageData{
			BasePageData: types.BasePageData{Title: org.OrgName},
			Org:          org,
		})
	default:
		http.NotFound(w, r)
	}
}

func (s *Service) handleAPIMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(contextKeyUserID).(string)
	if userID == "" {
		s.respondError(w, types.ErrUnauthenticated)
		return
	}

	if volunteer, err := s.volunteersRepo.Volunteer(r.Context(), userID); err == nil {
		s.respondJSON(w, http.StatusOK, envelope{
			"success": true,
			"profile": volunteer,
			"type":    types.AccountKindIndividual,
		})
		return
	} else if !errors.Is(err, types.ErrNotFound) {
		s.respondError(w, err)
		return
	}

	org, err := s.orgsRepo.Organization(r.Context(), userID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"profile": org,
		"type":    types.AccountKindOrganization,
	})
}
