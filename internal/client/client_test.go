package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingo-labs/lingo/internal/auth"
	"github.com/lingo-labs/lingo/internal/authstate"
	"github.com/lingo-labs/lingo/internal/chat"
	"github.com/lingo-labs/lingo/internal/config"
	apihttp "github.com/lingo-labs/lingo/internal/http"
	"github.com/lingo-labs/lingo/internal/logging"
	"github.com/lingo-labs/lingo/internal/user"
)

// memRepo is an in-memory user store backing the end-to-end tests.
type memRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*user.User
	byEmail map[string]*user.User
}

func newMemRepo() *memRepo {
	return &memRepo{
		byID:    make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]*user.User),
	}
}

func (r *memRepo) Create(ctx context.Context, email, passwordHash, fullName, profilePic string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return nil, user.ErrDuplicateEmail
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		ProfilePic:   profilePic,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.byID[u.ID] = u
	r.byEmail[email] = u

	copied := *u
	return &copied, nil
}

func (r *memRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memRepo) Onboard(ctx context.Context, id uuid.UUID, profile user.Profile) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	u.FullName = profile.FullName
	u.Bio = profile.Bio
	u.NativeLanguage = profile.NativeLanguage
	u.LearningLanguage = profile.LearningLanguage
	u.Location = profile.Location
	u.IsOnboarded = true
	u.UpdatedAt = time.Now()

	copied := *u
	return &copied, nil
}

type memProvider struct{}

func (memProvider) UpsertUser(ctx context.Context, userID, name, image string) error {
	return nil
}

func (memProvider) CreateToken(userID string) (string, error) {
	return "provider-token-" + userID, nil
}

// newTestClient spins up the whole API behind httptest and returns a client
// pointed at it.
func newTestClient(t *testing.T) *Client {
	t.Helper()

	logger := logging.NewLogger(true)
	tokenService, err := auth.NewJWTService([]byte("test-secret-that-is-32-bytes-ok!"))
	require.NoError(t, err)

	repo := newMemRepo()
	provider := memProvider{}
	service := auth.NewService(repo, provider, tokenService, logger, time.Hour)
	authHandler := auth.NewHandler(service, nil, logger, false, time.Hour)
	chatHandler := chat.NewHandler(provider)
	middleware := auth.NewMiddleware(tokenService, repo)

	cfg := &config.Config{Server: config.ServerConfig{Env: "test"}}
	server := httptest.NewServer(apihttp.NewRouter(cfg, authHandler, chatHandler, middleware, logger))
	t.Cleanup(server.Close)

	api, err := NewAPI(server.URL + "/api")
	require.NoError(t, err)

	themes, err := NewThemeStoreAt(filepath.Join(t.TempDir(), "theme.json"))
	require.NoError(t, err)

	return &Client{api: api, session: NewSession(api), themes: themes}
}

func TestAnonymousRouting(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	u, err := c.AuthUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	decision, err := c.Route(ctx, authstate.PathHome)
	require.NoError(t, err)
	assert.False(t, decision.Render)
	assert.Equal(t, authstate.PathLogin, decision.RedirectTo)

	decision, err = c.Route(ctx, authstate.PathLogin)
	require.NoError(t, err)
	assert.True(t, decision.Render)
}

func TestSignupToOnboardingFlow(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	created, err := c.Signup(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.False(t, created.IsOnboarded)

	// Session cookie landed in the jar; the identity query sees the new user
	u, err := c.AuthUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, created.ID, u.ID)

	decision, err := c.Route(ctx, authstate.PathHome)
	require.NoError(t, err)
	assert.Equal(t, authstate.PathOnboarding, decision.RedirectTo)

	decision, err = c.Route(ctx, authstate.PathOnboarding)
	require.NoError(t, err)
	assert.True(t, decision.Render)

	onboarded, err := c.Onboard(ctx, user.Profile{
		FullName:         "Ana",
		Bio:              "language nerd",
		NativeLanguage:   "spanish",
		LearningLanguage: "english",
		Location:         "Lima",
	})
	require.NoError(t, err)
	assert.True(t, onboarded.IsOnboarded)

	decision, err = c.Route(ctx, authstate.PathHome)
	require.NoError(t, err)
	assert.True(t, decision.Render)

	// Finished users don't see the auth pages again
	decision, err = c.Route(ctx, authstate.PathLogin)
	require.NoError(t, err)
	assert.Equal(t, authstate.PathHome, decision.RedirectTo)
}

func TestOnboardMissingFieldsReported(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Signup(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)

	_, err = c.Onboard(ctx, user.Profile{FullName: "Ana", Bio: "hi"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.ElementsMatch(t,
		[]string{"nativeLanguage", "learningLanguage", "location"},
		apiErr.MissingField,
	)
}

func TestLoginRejectionIsOpaque(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Signup(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)
	require.NoError(t, c.Logout(ctx))

	_, wrongPass := c.Login(ctx, "ana@example.com", "not-it")
	_, unknown := c.Login(ctx, "ghost@example.com", "whatever")

	require.Error(t, wrongPass)
	require.Error(t, unknown)
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestLogoutReturnsToAnonymous(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Signup(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))

	u, err := c.AuthUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	decision, err := c.Route(ctx, "/notifications")
	require.NoError(t, err)
	assert.Equal(t, authstate.PathLogin, decision.RedirectTo)
}

func TestChatTokenRequiresSession(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.ChatToken(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	created, err := c.Signup(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)

	token, err := c.ChatToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "provider-token-"+created.ID.String(), token)
}
