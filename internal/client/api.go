// Package client is the Go client tier for the Lingo API: a cookie-
// credentialed HTTP client, a cached identity query, and the navigation gate
// that mirrors the server's authorization rules.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/lingo-labs/lingo/internal/user"
)

// ErrUnauthorized is returned when the server rejects the session.
var ErrUnauthorized = errors.New("unauthorized")

// APIError carries a server-reported failure.
type APIError struct {
	StatusCode   int
	Message      string
	MissingField []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// API performs HTTP calls against the Lingo backend. The cookie jar holds
// the session cookie, so every request after login/signup is credentialed.
type API struct {
	baseURL string
	http    *http.Client
}

func NewAPI(baseURL string) (*API, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &API{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

type userEnvelope struct {
	Success bool       `json:"success"`
	User    *user.User `json:"user"`
}

type errorEnvelope struct {
	Message      string   `json:"message"`
	MissingField []string `json:"missingField"`
}

type signupPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullname"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type onboardPayload struct {
	FullName         string `json:"fullname"`
	Bio              string `json:"bio"`
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
	Location         string `json:"location"`
}

type tokenEnvelope struct {
	Token string `json:"token"`
}

// Signup creates an account. On success the session cookie lands in the jar.
func (a *API) Signup(ctx context.Context, email, password, fullName string) (*user.User, error) {
	var out userEnvelope
	err := a.do(ctx, http.MethodPost, "/auth/signup", signupPayload{
		Email:    email,
		Password: password,
		FullName: fullName,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

// Login authenticates. On success the session cookie lands in the jar.
func (a *API) Login(ctx context.Context, email, password string) (*user.User, error) {
	var out userEnvelope
	err := a.do(ctx, http.MethodPost, "/auth/login", loginPayload{
		Email:    email,
		Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

// Logout clears the server-side cookie. Always succeeds server-side.
func (a *API) Logout(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Onboard completes the authenticated user's profile.
func (a *API) Onboard(ctx context.Context, profile user.Profile) (*user.User, error) {
	var out userEnvelope
	err := a.do(ctx, http.MethodPost, "/auth/onboarding", onboardPayload{
		FullName:         profile.FullName,
		Bio:              profile.Bio,
		NativeLanguage:   profile.NativeLanguage,
		LearningLanguage: profile.LearningLanguage,
		Location:         profile.Location,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

// Me fetches the authenticated user's profile. Returns ErrUnauthorized when
// there is no valid session.
func (a *API) Me(ctx context.Context) (*user.User, error) {
	var out userEnvelope
	if err := a.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// ChatToken mints a chat-provider token for the authenticated user.
func (a *API) ChatToken(ctx context.Context) (string, error) {
	var out tokenEnvelope
	if err := a.do(ctx, http.MethodGet, "/chat/token", nil, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (a *API) do(ctx context.Context, method, path string, payload, out any) error {
	var body *bytes.Buffer
	if payload != nil {
		body = new(bytes.Buffer)
		if err := json.NewEncoder(body).Encode(payload); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)

		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
		}
		return &APIError{
			StatusCode:   resp.StatusCode,
			Message:      apiErr.Message,
			MissingField: apiErr.MissingField,
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
