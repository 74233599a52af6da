package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"visionaid/pkg/types"

	"firebase.google.com/go/v4/auth"
)

const defaultSignInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// Firebase implements Provider. Account creation and lookups go through the
// admin SDK; password sign-in is only exposed on the client REST surface, so
// that call is made directly with the project's web API key.
type Firebase struct {
	authClient *auth.Client
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewFirebase(authClient *auth.Client, apiKey string) *Firebase {
	return &Firebase{
		authClient: authClient,
		apiKey:     apiKey,
		endpoint:   defaultSignInEndpoint,
		httpClient: &http.Client{},
	}
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type signInError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	payload, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sign-in request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", f.endpoint, f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign-in request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sign-in response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr signInError
		if err := json.Unmarshal(body, &apiErr); err == nil {
			switch apiErr.Error.Message {
			case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
				return nil, types.ErrInvalidCredentials
			}
		}
		return nil, fmt.Errorf("sign-in failed with status %d", resp.StatusCode)
	}

	var result signInResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode sign-in response: %w", err)
	}

	expiresIn, _ := strconv.Atoi(result.ExpiresIn)

	return &Credentials{
		UserID:       result.LocalID,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresInSec: expiresIn,
	}, nil
}

func (f *Firebase) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	record, err := f.authClient.CreateUser(ctx, (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName).
		EmailVerified(false))
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", types.NewValidationError("email", "An account with this email already exists.")
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return record.UID, nil
}

func (f *Firebase) UserIDByEmail(ctx context.Context, email string) (string, error) {
	record, err := f.authClient.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return "", types.ErrNotFound
		}
		return "", fmt.Errorf("failed to look up user by email: %w", err)
	}

	return record.UID, nil
}
