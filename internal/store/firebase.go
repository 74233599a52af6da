package store

import (
	"context"

	"visionaid/internal/utils"

	"firebase.google.com/go/v4/db"
)

// FirebaseStore implements TreeStore over a Firebase Realtime Database
// client. Transaction maps onto the database's conditional request ETag
// loop, so lifecycle transitions get real compare-and-swap semantics.
type FirebaseStore struct {
	client *db.Client
}

func NewFirebaseStore(client *db.Client) *FirebaseStore {
	return &FirebaseStore{client: client}
}

func (s *FirebaseStore) Get(ctx context.Context, path string, dest any) error {
	err := s.client.NewRef(path).Get(ctx, dest)
	return utils.ErrorWrapOrNil(err, "failed to read "+path)
}

func (s *FirebaseStore) Set(ctx context.Context, path string, value any) error {
	err := s.client.NewRef(path).Set(ctx, value)
	return utils.ErrorWrapOrNil(err, "failed to write "+path)
}

func (s *FirebaseStore) Update(ctx context.Context, path string, fields map[string]any) error {
	err := s.client.NewRef(path).Update(ctx, fields)
	return utils.ErrorWrapOrNil(err, "failed to update "+path)
}

func (s *FirebaseStore) Push(ctx context.Context, path string, value any) (string, error) {
	ref, err := s.client.NewRef(path).Push(ctx, value)
	if err != nil {
		return "", utils.ErrorWrapOrNil(err, "failed to push to "+path)
	}
	return ref.Key, nil
}

func (s *FirebaseStore) Remove(ctx context.Context, path string) error {
	err := s.client.NewRef(path).Delete(ctx)
	return utils.ErrorWrapOrNil(err, "failed to remove "+path)
}

func (s *FirebaseStore) Transaction(ctx context.Context, path string, fn UpdateFunc) error {
	return s.client.NewRef(path).Transaction(ctx, func(node db.TransactionNode) (any, error) {
		return fn(node)
	})
}
