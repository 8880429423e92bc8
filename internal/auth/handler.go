package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lingo-labs/lingo/internal/httputil"
	"github.com/lingo-labs/lingo/internal/logging"
	"github.com/lingo-labs/lingo/internal/ratelimit"
	"github.com/lingo-labs/lingo/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service         *Service
	rateLimiter     *ratelimit.Limiter
	logger          *logging.Logger
	isProduction    bool
	sessionDuration time.Duration
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, logger *logging.Logger, isProduction bool, sessionDuration time.Duration) *Handler {
	return &Handler{
		service:         service,
		rateLimiter:     rateLimiter,
		logger:          logger,
		isProduction:    isProduction,
		sessionDuration: sessionDuration,
	}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullname"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OnboardingRequest represents the onboarding request body
type OnboardingRequest struct {
	FullName         string `json:"fullname"`
	Bio              string `json:"bio"`
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
	Location         string `json:"location"`
}

// UserResponse is the success envelope carrying a user
type UserResponse struct {
	Success bool       `json:"success"`
	User    *user.User `json:"user"`
}

// MessageResponse is the success envelope without a user
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Signup handles account creation
// @Summary      Sign up
// @Description  Create a new account. Sets the session cookie and returns the created user.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup fields"
// @Success      201 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing/invalid fields or duplicate email"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	if h.checkRateLimit(w, r, ip, "signup") {
		return
	}

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	newUser, token, err := h.service.Signup(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		var missingErr *MissingFieldsError
		switch {
		case errors.As(err, &missingErr):
			logger.Warn("signup failed: missing fields", "fields", missingErr.Fields)
			httputil.RespondMissingFields(w, missingErr.Error(), missingErr.Fields)
		case errors.Is(err, ErrPasswordTooShort):
			logger.Warn("signup failed: password too short")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordTooShort, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidEmailFormat):
			logger.Warn("signup failed: invalid email format")
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
		case errors.Is(err, user.ErrDuplicateEmail):
			logger.Warn("signup failed: email already exists")
			httputil.RespondErrorWithCode(w, "Email already exists, Please use a different email", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
		default:
			logger.Error("signup failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "Internal Server Error", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	SetSessionCookie(w, token, h.isProduction, h.sessionDuration)

	logger.Info("user signed up", "user_id", newUser.ID)

	httputil.RespondJSON(w, UserResponse{Success: true, User: newUser}, http.StatusCreated)
}

// Login handles user login
// @Summary      Log in
// @Description  Authenticate with email and password. Sets the session cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	if h.checkRateLimit(w, r, ip, "login") {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	loggedInUser, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var missingErr *MissingFieldsError
		switch {
		case errors.As(err, &missingErr):
			logger.Warn("login failed: missing fields", "fields", missingErr.Fields)
			httputil.RespondMissingFields(w, missingErr.Error(), missingErr.Fields)
		case errors.Is(err, ErrInvalidCredentials):
			// Same status and message whether the email was unknown or the
			// password wrong
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, ErrInvalidCredentials.Error(), httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		default:
			logger.Error("login failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "Internal Server Error", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	SetSessionCookie(w, token, h.isProduction, h.sessionDuration)

	logger.Info("user logged in", "user_id", loggedInUser.ID)

	httputil.RespondJSON(w, UserResponse{Success: true, User: loggedInUser}, http.StatusOK)
}

// Logout clears the session cookie
// @Summary      Log out
// @Description  Clear the session cookie. Always succeeds.
// @Tags         auth
// @Produce      json
// @Success      200 {object} MessageResponse
// @Router       /api/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ClearSessionCookie(w)

	logger.Info("user logged out")

	httputil.RespondJSON(w, MessageResponse{Success: true, Message: "Logout Successful"}, http.StatusOK)
}

// Onboarding completes the authenticated user's profile
// @Summary      Complete onboarding
// @Description  Set the profile fields and mark the account onboarded. Requires authentication.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body OnboardingRequest true "Profile fields"
// @Success      201 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/auth/onboarding [post]
func (h *Handler) Onboarding(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	currentUser, ok := CurrentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req OnboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid onboarding request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updatedUser, err := h.service.Onboard(r.Context(), currentUser.ID, user.Profile{
		FullName:         req.FullName,
		Bio:              req.Bio,
		NativeLanguage:   req.NativeLanguage,
		LearningLanguage: req.LearningLanguage,
		Location:         req.Location,
	})
	if err != nil {
		var missingErr *MissingFieldsError
		switch {
		case errors.As(err, &missingErr):
			logger.Warn("onboarding failed: missing fields", "fields", missingErr.Fields)
			httputil.RespondMissingFields(w, missingErr.Error(), missingErr.Fields)
		case errors.Is(err, user.ErrNotFound):
			logger.Warn("onboarding failed: user not found", "user_id", currentUser.ID)
			httputil.RespondErrorWithCode(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
		default:
			logger.Error("onboarding failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "Internal Server Error", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user onboarded", "user_id", updatedUser.ID)

	httputil.RespondJSON(w, UserResponse{Success: true, User: updatedUser}, http.StatusCreated)
}

// Me returns the authenticated user
// @Summary      Current user
// @Description  Return the profile of the authenticated user.
// @Tags         auth
// @Produce      json
// @Success      200 {object} UserResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /api/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := CurrentUser(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "Unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	httputil.RespondJSON(w, UserResponse{Success: true, User: currentUser}, http.StatusOK)
}

// checkRateLimit applies the IP limiter for the given purpose. Limiter
// errors never block the request. Returns true when the caller should stop.
func (h *Handler) checkRateLimit(w http.ResponseWriter, r *http.Request, ip, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.rateLimiter == nil {
		return false
	}

	allowed, err := h.rateLimiter.Allow(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check rate limit", "error", err.Error())
		return false
	}
	if !allowed {
		logger.Warn("rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return true
	}

	return false
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (behind proxy/load balancer)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr format is "IP:port", extract just the IP
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
