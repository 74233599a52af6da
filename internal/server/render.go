package server

import (
	"net/http"

	"visionaid/pkg/types"
)

// renderTemplate executes a named page template. Data implementing
// NavbarDataSetter gets the shared navbar state filled in from the session.
func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	if setter, ok := data.(types.NavbarDataSetter); ok {
		nav := types.NavbarData{}
		if session, err := s.sessionFromRequest(r); err == nil {
			nav.IsAuthenticated = true
			nav.UserID = session.UserID
			nav.UserName = session.Name
			nav.IsOrganization = session.IsOrganization()
		}
		setter.SetNavbarData(nav)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.WithError(err).WithField("template", name).Error("failed to render template")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
	}
}
