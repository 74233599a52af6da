package server

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"visionaid/pkg/types"

	"github.com/google/uuid"
)

// handleAddSkill appends a skill to the signed-in volunteer's profile.
// Duplicates are ignored case-insensitively.
func (s *Service) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if session.IsOrganization() {
		s.respondError(w, types.ErrForbidden)
		return
	}

	var input types.AddSkillInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	skill := strings.TrimSpace(input.Skill)

	_, err = s.volunteersRepo.Mutate(r.Context(), session.UserID, func(profile *types.VolunteerProfile) error {
		exists := slices.ContainsFunc(profile.Skills, func(have string) bool {
			return strings.EqualFold(have, skill)
		})
		if !exists {
			profile.Skills = append(profile.Skills, skill)
		}
		return nil
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Skill added successfully",
	})
}

func (s *Service) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if session.IsOrganization() {
		s.respondError(w, types.ErrForbidden)
		return
	}

	var input types.AddEventInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	eventID := uuid.NewString()

	_, err = s.volunteersRepo.Mutate(r.Context(), session.UserID, func(profile *types.VolunteerProfile) error {
		if profile.Schedule == nil {
			profile.Schedule = map[string]types.ScheduleEvent{}
		}
		profile.Schedule[eventID] = types.ScheduleEvent{
			Title:     input.Title,
			Date:      input.Date,
			Time:      input.Time,
			CreatedAt: time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, envelope{
		"success":  true,
		"message":  "Event added successfully",
		"event_id": eventID,
	})
}

func (s *Service) handleAddDomain(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if !session.IsOrganization() {
		s.respondError(w, types.ErrForbidden)
		return
	}

	var input types.AddDomainInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	domain := strings.TrimSpace(input.Domain)

	_, err = s.orgsRepo.Mutate(r.Context(), session.UserID, func(profile *types.OrganizationProfile) error {
		exists := slices.ContainsFunc(profile.Domains, func(have string) bool {
			return strings.EqualFold(have, domain)
		})
		if !exists {
			profile.Domains = append(profile.Domains, domain)
		}
		return nil
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Domain added successfully",
	})
}

// handleAddVolunteer puts a registered volunteer on the organization's
// roster and records the membership on the volunteer's side as well.
func (s *Service) handleAddVolunteer(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if !session.IsOrganization() {
		s.respondError(w, types.ErrForbidden)
		return
	}

	var input types.AddVolunteerInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	volunteerID, err := s.identity.UserIDByEmail(r.Context(), input.Email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			s.respondJSON(w, http.StatusNotFound, envelope{
				"success": false,
				"message": "No volunteer is registered with that email",
			})
			return
		}
		s.respondError(w, err)
		return
	}

	volunteer, err := s.volunteersRepo.Volunteer(r.Context(), volunteerID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			s.respondJSON(w, http.StatusNotFound, envelope{
				"success": false,
				"message": "No volunteer is registered with that email",
			})
			return
		}
		s.respondError(w, err)
		return
	}

	role := input.Role
	if role == "" {
		role = "volunteer"
	}
	now := time.Now().UTC()

	_, err = s.orgsRepo.Mutate(r.Context(), session.UserID, func(profile *types.OrganizationProfile) error {
		if _, ok := profile.Volunteers[volunteerID]; ok {
			return types.ErrConflict
		}
		if profile.Volunteers == nil {
			profile.Volunteers = map[string]types.RosterEntry{}
		}
		profile.Volunteers[volunteerID] = types.RosterEntry{
			Name:    volunteer.FullName,
			Email:   volunteer.Email,
			Role:    role,
			Notes:   input.Notes,
			Status:  "active",
			AddedAt: now,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			s.respondJSON(w, http.StatusConflict, envelope{
				"success": false,
				"message": "This volunteer is already on your roster",
			})
			return
		}
		s.respondError(w, err)
		return
	}

	orgName := session.Name
	_, err = s.volunteersRepo.Mutate(r.Context(), volunteerID, func(profile *types.VolunteerProfile) error {
		if profile.Organizations == nil {
			profile.Organizations = map[string]types.OrgMembership{}
		}
		profile.Organizations[session.UserID] = types.OrgMembership{
			OrgName:  orgName,
			Role:     role,
			JoinedAt: now,
		}
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("volunteer_id", volunteerID).Warn("failed to mirror roster membership on volunteer profile")
	}

	s.respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Volunteer added to your roster",
	})
}
