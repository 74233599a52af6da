package identity

import (
	"context"
	"strings"
	"sync"

	"visionaid/internal/utils"
	"visionaid/pkg/types"
)

// Memory is an in-process Provider for dev mode and tests. Passwords are
// held in plain text; it never leaves the process.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]memoryAccount // keyed by lowercased email
}

type memoryAccount struct {
	userID   string
	password string
	name     string
}

func NewMemory() *Memory {
	return &Memory{accounts: make(map[string]memoryAccount)}
}

func (m *Memory) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[strings.ToLower(email)]
	if !ok || account.password != password {
		return nil, types.ErrInvalidCredentials
	}

	return &Credentials{
		UserID:       account.userID,
		IDToken:      "dev-token-" + account.userID,
		ExpiresInSec: 3600,
	}, nil
}

func (m *Memory) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := m.accounts[key]; ok {
		return "", types.NewValidationError("email", "An account with this email already exists.")
	}

	userID := utils.NanoIDSize(28)
	m.accounts[key] = memoryAccount{userID: userID, password: password, name: displayName}

	return userID, nil
}

func (m *Memory) UserIDByEmail(ctx context.Context, email string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[strings.ToLower(email)]
	if !ok {
		return "", types.ErrNotFound
	}

	return account.userID, nil
}
