package server

import (
	"errors"
	"net/http"
	"time"

	"visionaid/internal"
	"visionaid/pkg/types"
)

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessionFromRequest(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	s.renderTemplate(w, r, "page.login", &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Login"},
	})
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderLoginError(w, r, "", "Invalid form submission")
		return
	}

	var input struct {
		Email    string `form:"email"`
		Password string `form:"password"`
	}
	if err := decoder.Decode(&input, r.PostForm); err != nil {
		s.renderLoginError(w, r, "", "Invalid form submission")
		return
	}

	if input.Email == "" || input.Password == "" {
		s.renderLoginError(w, r, input.Email, "Email and password are required")
		return
	}

	creds, err := s.identity.SignIn(r.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, types.ErrInvalidCredentials) {
			s.renderLoginError(w, r, input.Email, "Invalid email or password")
			return
		}

		s.logger.WithError(err).Error("sign-in against identity provider failed")
		s.renderLoginError(w, r, input.Email, "Something went wrong, please try again later")
		return
	}

	session, err := s.buildSession(r, creds.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", creds.UserID).Error("failed to load profile for session")
		s.renderLoginError(w, r, input.Email, "Something went wrong, please try again later")
		return
	}

	if err := s.setSessionCookie(w, session); err != nil {
		s.logger.WithError(err).Error("failed to encode session cookie")
		s.renderLoginError(w, r, input.Email, "Something went wrong, please try again later")
		return
	}

	if !session.IsOrganization() {
		if err := s.volunteersRepo.TouchLastLogin(r.Context(), session.UserID); err != nil {
			s.logger.WithError(err).Warn("failed to update last login timestamp")
		}
	}

	http.Redirect(w, r, s.consumeRedirect(w, r, session), http.StatusSeeOther)
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// buildSession snapshots the profile into the session cookie. The user id is
// looked up among individuals first, then organizations.
func (s *Service) buildSession(r *http.Request, userID string) (types.Session, error) {
	volunteer, err := s.volunteersRepo.Volunteer(r.Context(), userID)
	if err == nil {
		return types.Session{
			UserID: userID,
			Kind:   types.AccountKindIndividual,
			Name:   volunteer.FullName,
			Email:  volunteer.Email,
		}, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return types.Session{}, err
	}

	org, err := s.orgsRepo.Organization(r.Context(), userID)
	if err != nil {
		return types.Session{}, err
	}

	return types.Session{
		UserID: userID,
		Kind:   types.AccountKindOrganization,
		Name:   org.OrgName,
		Email:  org.Email,
	}, nil
}

func (s *Service) consumeRedirect(w http.ResponseWriter, r *http.Request, session types.Session) string {
	if cookie, err := r.Cookie(internal.COOKIE_REDIRECT_NAME); err == nil && cookie.Value != "" {
		s.clearRedirectCookie(w)
		return cookie.Value
	}

	if session.IsOrganization() {
		return "/org-dashboard"
	}
	return "/volunteer-dashboard"
}

func (s *Service) renderLoginError(w http.ResponseWriter, r *http.Request, email, message string) {
	s.renderTemplate(w, r, "page.login", &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Login", Error: message},
		Email:        email,
	})
}

func (s *Service) sessionFromRequest(r *http.Request) (types.Session, error) {
	cookie, err := r.Cookie(s.config.CookieName)
	if err != nil {
		return types.Session{}, types.ErrUnauthenticated
	}

	var session types.Session
	if err := s.cookie.Decode(s.config.CookieName, cookie.Value, &session); err != nil {
		return types.Session{}, types.ErrUnauthenticated
	}
	if session.UserID == "" {
		return types.Session{}, types.ErrUnauthenticated
	}

	return session, nil
}

func (s *Service) setSessionCookie(w http.ResponseWriter, session types.Session) error {
	encoded, err := s.cookie.Encode(s.config.CookieName, session)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   s.config.SessionMaxAgeSec,
		Expires:  time.Now().Add(time.Duration(s.config.SessionMaxAgeSec) * time.Second),
	})

	return nil
}

func (s *Service) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
