package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"visionaid/internal/db"
	"visionaid/internal/identity"
	"visionaid/internal/lifecycle"
	"visionaid/internal/server"
	"visionaid/internal/storage"
	"visionaid/internal/store"

	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const securetokenJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "dev",
			Usage: "Run with in-memory backends instead of Firebase",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dev := cCtx.Bool("dev")

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig(dev)
	if err != nil {
		return err
	}

	var (
		treeStore        store.TreeStore
		identityProvider identity.Provider
		uploads          storage.Uploader
		jwkCache         *jwk.Cache
		jwksURL          string
	)

	if dev {
		logger.Warn("running in dev mode with in-memory backends, all data is lost on exit")

		treeStore = store.NewMemoryStore()
		identityProvider = identity.NewMemory()
		uploads = storage.NewMemoryStorage()

		if config.CookieHashKey == "" {
			config.CookieHashKey = base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
		}
		if config.CookieBlockKey == "" {
			config.CookieBlockKey = base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
		}
	} else {
		clients, err := db.Connect(ctx, config)
		if err != nil {
			return err
		}

		treeStore = store.NewFirebaseStore(clients.Database)
		identityProvider = identity.NewFirebase(clients.Auth, config.FirebaseWebAPIKey)
		uploads = storage.NewFirebaseStorage(clients.Bucket, config.FirebaseStorageBucket)

		jwkCache, err = jwk.NewCache(context.Background(), httprc.NewClient())
		if err != nil {
			return fmt.Errorf("failed to initialize jwk cache: %w", err)
		}

		jwksURL = securetokenJWKSURL
		if err := jwkCache.Register(context.Background(), jwksURL); err != nil {
			return fmt.Errorf("failed to register securetoken jwks with cache: %w", err)
		}
	}

	requestsRepo := store.NewRequestRepository(treeStore)
	volunteersRepo := store.NewVolunteerRepository(treeStore)
	orgsRepo := store.NewOrganizationRepository(treeStore)

	lifecycleManager := lifecycle.NewManager(logger, requestsRepo, volunteersRepo, orgsRepo)

	srv, err := server.New(
		config,
		logger,
		identityProvider,
		uploads,
		lifecycleManager,
		requestsRepo,
		volunteersRepo,
		orgsRepo,
		jwkCache,
		jwksURL,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
