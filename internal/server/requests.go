package server

import (
	"net/http"

	"visionaid/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	var input types.CreateRequestInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	request, err := s.lifecycle.Create(r.Context(), session, input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, envelope{
		"success":    true,
		"message":    "Request created successfully",
		"request_id": request.ID,
	})
}

func (s *Service) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	requestID := flow.Param(r.Context(), "requestID")

	if _, err := s.lifecycle.Accept(r.Context(), session, requestID); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Request accepted successfully",
	})
}

func (s *Service) handleCompleteRequest(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	requestID := flow.Param(r.Context(), "requestID")

	if _, err := s.lifecycle.Complete(r.Context(), session, requestID); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Request marked as completed",
	})
}

func (s *Service) handleOrgCompleteRequest(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	requestID := flow.Param(r.Context(), "requestID")

	if _, err := s.lifecycle.CompleteByOrg(r.Context(), session, requestID); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Request marked as completed",
	})
}

func (s *Service) handleAssignRequest(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	var input types.AssignRequestInput
	if err := s.decodeJSON(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	if _, err := s.lifecycle.Assign(r.Context(), session, input); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Request assigned successfully",
	})
}

func (s *Service) handleArchiveRequest(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	requestID := flow.Param(r.Context(), "requestID")

	if _, err := s.lifecycle.Archive(r.Context(), session, requestID); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Request archived successfully",
	})
}
