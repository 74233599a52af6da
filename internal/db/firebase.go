package db

import (
	"context"
	"fmt"

	"visionaid/pkg/types"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	fdb "firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

// Clients bundles the Firebase services the portal talks to.
type Clients struct {
	App      *firebase.App
	Database *fdb.Client
	Auth     *auth.Client
	Bucket   *gcs.BucketHandle
}

// Connect initializes the Firebase app and the database, auth, and storage
// clients from it.
func Connect(ctx context.Context, config *types.Config) (*Clients, error) {
	conf := &firebase.Config{
		DatabaseURL:   config.FirebaseDatabaseURL,
		ProjectID:     config.FirebaseProjectID,
		StorageBucket: config.FirebaseStorageBucket,
	}

	var opts []option.ClientOption
	if config.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.FirebaseCredentialsFile))
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	database, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize realtime database client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize auth client: %w", err)
	}

	storageClient, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize storage client: %w", err)
	}

	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("open default storage bucket: %w", err)
	}

	return &Clients{
		App:      app,
		Database: database,
		Auth:     authClient,
		Bucket:   bucket,
	}, nil
}
