package auth

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lingo-labs/lingo/internal/logging"
	"github.com/lingo-labs/lingo/internal/stream"
	"github.com/lingo-labs/lingo/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("Invalid Email or password")
	ErrInvalidEmailFormat = errors.New("Invalid email format")
	ErrPasswordTooShort   = errors.New("Password must contain at least 6 characters")
)

const minPasswordLen = 6

// emailRegex requires exactly one @ separating non-space segments, with a
// dotted domain.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// avatarURLTemplate is the stock avatar service; indexes 1-100 are valid.
const avatarURLTemplate = "https://avatar.iran.liara.run/public/%d.png"

// MissingFieldsError reports which required fields were absent from a request.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "All fields are required"
}

// UserRepository defines the persistence surface the service needs.
// Implemented by *user.Repository; tests use an in-memory fake.
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash, fullName, profilePic string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	Onboard(ctx context.Context, id uuid.UUID, profile user.Profile) (*user.User, error)
}

// Service handles the account lifecycle: signup, login, onboarding.
type Service struct {
	userRepo        UserRepository
	provider        stream.Provider
	tokenService    TokenService
	logger          *logging.Logger
	sessionDuration time.Duration
}

func NewService(
	userRepo UserRepository,
	provider stream.Provider,
	tokenService TokenService,
	logger *logging.Logger,
	sessionDuration time.Duration,
) *Service {
	return &Service{
		userRepo:        userRepo,
		provider:        provider,
		tokenService:    tokenService,
		logger:          logger,
		sessionDuration: sessionDuration,
	}
}

// Signup creates a new account and mints a session token for it.
// Validation runs before any store access; the chat-provider upsert is
// best-effort and never fails the signup.
func (s *Service) Signup(ctx context.Context, email, password, fullName string) (*user.User, string, error) {
	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if fullName == "" {
		missing = append(missing, "fullname")
	}
	if len(missing) > 0 {
		return nil, "", &MissingFieldsError{Fields: missing}
	}

	if len(password) < minPasswordLen {
		return nil, "", ErrPasswordTooShort
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return nil, "", ErrInvalidEmailFormat
	}

	// Pre-check for a friendlier conflict; the unique index on email is the
	// real enforcement point for concurrent signups.
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, "", user.ErrDuplicateEmail
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	avatar := fmt.Sprintf(avatarURLTemplate, rand.IntN(100)+1)

	newUser, err := s.userRepo.Create(ctx, email, passwordHash, fullName, avatar)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, "", user.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	s.syncProviderUser(newUser)

	token, err := s.tokenService.CreateToken(newUser.ID, s.sessionDuration)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session token: %w", err)
	}

	return newUser, token, nil
}

// Login authenticates a user and mints a session token. An unknown email and
// a wrong password produce the same error so callers cannot tell which it was.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	if email == "" || password == "" {
		return nil, "", &MissingFieldsError{Fields: missingCredentialFields(email, password)}
	}

	email = strings.ToLower(strings.TrimSpace(email))

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !VerifyPassword(existingUser.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokenService.CreateToken(existingUser.ID, s.sessionDuration)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session token: %w", err)
	}

	return existingUser, token, nil
}

// Onboard completes a user's profile and marks the account onboarded.
// Idempotent: re-submission overwrites the profile and keeps the flag set.
func (s *Service) Onboard(ctx context.Context, userID uuid.UUID, profile user.Profile) (*user.User, error) {
	var missing []string
	if profile.FullName == "" {
		missing = append(missing, "fullname")
	}
	if profile.Bio == "" {
		missing = append(missing, "bio")
	}
	if profile.NativeLanguage == "" {
		missing = append(missing, "nativeLanguage")
	}
	if profile.LearningLanguage == "" {
		missing = append(missing, "learningLanguage")
	}
	if profile.Location == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	updatedUser, err := s.userRepo.Onboard(ctx, userID, profile)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to onboard user: %w", err)
	}

	s.syncProviderUser(updatedUser)

	return updatedUser, nil
}

// syncProviderUser pushes the user to the chat provider in a goroutine.
// Failures are logged and swallowed; the provider's copy catches up on the
// next mutation.
func (s *Service) syncProviderUser(u *user.User) {
	go func() {
		// Fresh context: the request that triggered the sync may finish first
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.provider.UpsertUser(ctx, u.ID.String(), u.FullName, u.ProfilePic); err != nil {
			s.logger.Warn("failed to sync user with chat provider",
				"user_id", u.ID,
				"error", err,
			)
			return
		}

		s.logger.Info("chat provider user synced", "user_id", u.ID)
	}()
}

func missingCredentialFields(email, password string) []string {
	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	return missing
}
