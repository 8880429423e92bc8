package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingo-labs/lingo/internal/logging"
	"github.com/lingo-labs/lingo/internal/user"
)

func newTestHandler(t *testing.T, repo *fakeUserRepo, provider *fakeProvider) *Handler {
	t.Helper()
	svc := newTestService(t, repo, provider)
	// nil rate limiter: throttling is off in tests
	return NewHandler(svc, nil, logging.NewLogger(true), false, 7*24*time.Hour)
}

func postJSON(handler http.HandlerFunc, path, body string, ctx context.Context) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if ctx != nil {
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSignupHandler_Created(t *testing.T) {
	h := newTestHandler(t, newFakeUserRepo(), newFakeProvider())

	rec := postJSON(h.Signup, "/api/auth/signup", `{"email":"a@b.com","password":"secret1","fullname":"Ana"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	u, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", u["email"])
	assert.Equal(t, false, u["isOnboarded"])
	assert.NotContains(t, rec.Body.String(), "password_hash")
	assert.NotContains(t, rec.Body.String(), "argon2id")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "jwt", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestSignupHandler_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	h := newTestHandler(t, repo, newFakeProvider())

	rec := postJSON(h.Signup, "/api/auth/signup", `{"email":"a@b.com","password":"secret1","fullname":"Ana"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(h.Signup, "/api/auth/signup", `{"email":"a@b.com","password":"secret1","fullname":"Ana"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already exists, Please use a different email", decodeBody(t, rec)["message"])
}

func TestSignupHandler_ValidationErrors(t *testing.T) {
	h := newTestHandler(t, newFakeUserRepo(), newFakeProvider())

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing fields", `{}`, "All fields are required"},
		{"short password", `{"email":"a@b.com","password":"abc","fullname":"Ana"}`, "Password must contain at least 6 characters"},
		{"bad email", `{"email":"not-an-email","password":"secret1","fullname":"Ana"}`, "Invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(h.Signup, "/api/auth/signup", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decodeBody(t, rec)["message"])
		})
	}
}

func TestSignupHandler_MalformedBody(t *testing.T) {
	h := newTestHandler(t, newFakeUserRepo(), newFakeProvider())

	rec := postJSON(h.Signup, "/api/auth/signup", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandler_Succeeds(t *testing.T) {
	repo := newFakeUserRepo()
	h := newTestHandler(t, repo, newFakeProvider())

	rec := postJSON(h.Signup, "/api/auth/signup", `{"email":"a@b.com","password":"secret1","fullname":"Ana"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(h.Login, "/api/auth/login", `{"email":"a@b.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	require.Len(t, rec.Result().Cookies(), 1)
}

// Unknown email and wrong password yield byte-identical responses.
func TestLoginHandler_NoCredentialLeak(t *testing.T) {
	repo := newFakeUserRepo()
	h := newTestHandler(t, repo, newFakeProvider())

	rec := postJSON(h.Signup, "/api/auth/signup", `{"email":"a@b.com","password":"secret1","fullname":"Ana"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	unknown := postJSON(h.Login, "/api/auth/login", `{"email":"missing@x.com","password":"whatever"}`, nil)
	wrong := postJSON(h.Login, "/api/auth/login", `{"email":"a@b.com","password":"wrongpass"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.Equal(t, "Invalid Email or password", decodeBody(t, unknown)["message"])
}

func TestLogoutHandler_ClearsCookie(t *testing.T) {
	h := newTestHandler(t, newFakeUserRepo(), newFakeProvider())

	rec := postJSON(h.Logout, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "jwt", cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func authedContext(u *user.User) context.Context {
	return context.WithValue(context.Background(), currentUserKey, u)
}

func TestOnboardingHandler_Succeeds(t *testing.T) {
	repo := newFakeUserRepo()
	h := newTestHandler(t, repo, newFakeProvider())

	created, err := repo.Create(context.Background(), "a@b.com", "hash", "Ana", "pic")
	require.NoError(t, err)

	body := `{"fullname":"Ana","bio":"hi","nativeLanguage":"english","learningLanguage":"spanish","location":"Lima"}`
	rec := postJSON(h.Onboarding, "/api/auth/onboarding", body, authedContext(created))

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["success"])
	u := resp["user"].(map[string]any)
	assert.Equal(t, true, u["isOnboarded"])
	assert.Equal(t, "Lima", u["location"])
}

func TestOnboardingHandler_MissingFieldsAreListed(t *testing.T) {
	repo := newFakeUserRepo()
	h := newTestHandler(t, repo, newFakeProvider())

	created, err := repo.Create(context.Background(), "a@b.com", "hash", "Ana", "pic")
	require.NoError(t, err)

	rec := postJSON(h.Onboarding, "/api/auth/onboarding", `{"fullname":"Ana"}`, authedContext(created))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "All fields are required", resp["message"])
	assert.ElementsMatch(t,
		[]any{"bio", "nativeLanguage", "learningLanguage", "location"},
		resp["missingField"],
	)
}

func TestOnboardingHandler_UserGone(t *testing.T) {
	h := newTestHandler(t, newFakeUserRepo(), newFakeProvider())

	ghost := &user.User{ID: uuid.New()}
	body := `{"fullname":"Ana","bio":"hi","nativeLanguage":"english","learningLanguage":"spanish","location":"Lima"}`
	rec := postJSON(h.Onboarding, "/api/auth/onboarding", body, authedContext(ghost))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decodeBody(t, rec)["message"])
}

func TestMeHandler(t *testing.T) {
	repo := newFakeUserRepo()
	h := newTestHandler(t, repo, newFakeProvider())

	created, err := repo.Create(context.Background(), "a@b.com", "hash", "Ana", "pic")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil).WithContext(authedContext(created))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	u := resp["user"].(map[string]any)
	assert.Equal(t, "a@b.com", u["email"])
}
