package store

import (
	"context"
	"strings"
)

// Node is a snapshot of the value at a path, handed to a transaction
// function. Mirrors the realtime database's TransactionNode.
type Node interface {
	Unmarshal(dest any) error
}

// UpdateFunc receives the current value at a path and returns the value to
// write. Returning an error aborts the transaction with no write.
type UpdateFunc func(node Node) (any, error)

// TreeStore is the capability set the application holds against the JSON
// tree database: read, whole-value write, partial merge, id-generating
// insert, delete, and a conditional read-modify-write. Everything above this
// interface is testable against the in-memory implementation.
type TreeStore interface {
	// Get unmarshals the subtree at path into dest. An absent path
	// unmarshals as null; pointer destinations are set to nil.
	Get(ctx context.Context, path string, dest any) error
	Set(ctx context.Context, path string, value any) error
	Update(ctx context.Context, path string, fields map[string]any) error
	// Push inserts value under path with a generated child key and
	// returns that key.
	Push(ctx context.Context, path string, value any) (string, error)
	Remove(ctx context.Context, path string) error
	// Transaction atomically applies fn to the value at path. Concurrent
	// transactions on the same path serialize; at most one of two
	// conflicting writers commits.
	Transaction(ctx context.Context, path string, fn UpdateFunc) error
}

// Collection roots. The requests tree is the single source of truth for the
// request lifecycle; the per-status collections of the first version of this
// app are now views computed on read.
const (
	usersPath         = "users"
	organizationsPath = "organizations"
	requestsPath      = "requests"
)

func join(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, "/")
}
