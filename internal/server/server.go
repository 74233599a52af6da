package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"visionaid/internal/identity"
	"visionaid/internal/lifecycle"
	"visionaid/internal/storage"
	"visionaid/internal/store"
	"visionaid/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template

	identity  identity.Provider
	uploads   storage.Uploader
	lifecycle *lifecycle.Manager

	requestsRepo   *store.RequestRepository
	volunteersRepo *store.VolunteerRepository
	orgsRepo       *store.OrganizationRepository

	cookie *securecookie.SecureCookie

	jwksCache *jwk.Cache
	jwksURL   string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	identityProvider identity.Provider,
	uploads storage.Uploader,
	lifecycleManager *lifecycle.Manager,
	requestsRepo *store.RequestRepository,
	volunteersRepo *store.VolunteerRepository,
	orgsRepo *store.OrganizationRepository,
	jwkCache *jwk.Cache,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger:  logger,
		config:  config,
		cookie:  securecookie.New(hashKey, blockKey),

		identity:  identityProvider,
		uploads:   uploads,
		lifecycle: lifecycleManager,

		requestsRepo:   requestsRepo,
		volunteersRepo: volunteersRepo,
		orgsRepo:       orgsRepo,

		jwksCache: jwkCache,
		jwksURL:   jwksURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout, http.MethodGet)

	r.HandleFunc("/register", s.handleGetRegister, http.MethodGet)
	r.HandleFunc("/register/individual", s.handleGetRegisterIndividual, http.MethodGet)
	r.HandleFunc("/register/individual", s.handlePostRegisterIndividual, http.MethodPost)
	r.HandleFunc("/register/organization", s.handleGetRegisterOrganization, http.MethodGet)
	r.HandleFunc("/register/organization", s.handlePostRegisterOrganization, http.MethodPost)

	// Dashboard and detail pages
	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireSession)

		r.HandleFunc("/dashboard", s.handleDashboard, http.MethodGet)
		r.HandleFunc("/volunteer-dashboard", s.handleVolunteerDashboard, http.MethodGet)
		r.HandleFunc("/org-dashboard", s.handleOrgDashboard, http.MethodGet)
		r.HandleFunc("/request/:requestID", s.handleRequestDetail, http.MethodGet)
		r.HandleFunc("/profile/:kind/:userID", s.handleProfile, http.MethodGet)
	})

	// JSON action endpoints
	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireSessionJSON)

		r.HandleFunc("/create-request", s.handleCreateRequest, http.MethodPost)
		r.HandleFunc("/accept-request/:requestID", s.handleAcceptRequest, http.MethodPost)
		r.HandleFunc("/complete-request/:requestID", s.handleCompleteRequest, http.MethodPost)
		r.HandleFunc("/org/complete-request/:requestID", s.handleOrgCompleteRequest, http.MethodPost)
		r.HandleFunc("/assign-request", s.handleAssignRequest, http.MethodPost)
		r.HandleFunc("/archive-request/:requestID", s.handleArchiveRequest, http.MethodPost)

		r.HandleFunc("/add-skill", s.handleAddSkill, http.MethodPost)
		r.HandleFunc("/add-event", s.handleAddEvent, http.MethodPost)
		r.HandleFunc("/add-domain", s.handleAddDomain, http.MethodPost)
		r.HandleFunc("/add-volunteer", s.handleAddVolunteer, http.MethodPost)
	})

	// Bearer-token API for mobile/SPA clients
	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireIDToken)

		r.HandleFunc("/api/me", s.handleAPIMe, http.MethodGet)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"timeago": timeAgo,
		"date": func(t time.Time) string {
			return t.Format("January 2, 2006")
		},
		"derefTime": func(t *time.Time) time.Time {
			if t == nil {
				return time.Time{}
			}
			return *t
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// timeAgo renders a timestamp the way the dashboards expect: "just now",
// "3 hours ago", and so on.
func timeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/(24*7)), "week")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/(24*30)), "month")
	}
	return plural(int(diff.Hours()/(24*365)), "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func (s *Service) sessionFromContext(ctx context.Context) (types.Session, error) {
	session, ok := ctx.Value(contextKeySession).(types.Session)
	if !ok || session.UserID == "" {
		return types.Session{}, types.ErrUnauthenticated
	}
	return session, nil
}
