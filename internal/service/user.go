// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eventify/eventify/internal/auth"
	"github.com/eventify/eventify/internal/model"
	"github.com/eventify/eventify/internal/notify"
	"github.com/eventify/eventify/internal/repository"
)

// ErrInvalidCredentials is returned on a failed login. It deliberately does
// not distinguish an unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// ErrAdminSecret is returned when admin registration is attempted without
// the configured secret.
var ErrAdminSecret = errors.New("invalid admin secret key")

// UserService orchestrates account operations.
type UserService struct {
	users       *repository.UserRepository
	bookings    *repository.BookingRepository
	tokens      *auth.TokenService
	sink        notify.Sink
	adminSecret string
	resetBase   string
	logger      zerolog.Logger
}

// NewUserService constructs a UserService. resetBase is the public URL prefix
// for password-reset links.
func NewUserService(
	users *repository.UserRepository,
	bookings *repository.BookingRepository,
	tokens *auth.TokenService,
	sink notify.Sink,
	adminSecret, resetBase string,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:       users,
		bookings:    bookings,
		tokens:      tokens,
		sink:        sink,
		adminSecret: adminSecret,
		resetBase:   resetBase,
		logger:      logger.With().Str("component", "user-service").Logger(),
	}
}

// Register creates an account and returns it with a bearer token.
// Registering as admin requires the configured admin secret.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if !isValidEmail(req.Email) {
		return nil, fmt.Errorf("a valid email is required")
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}
	if role == model.RoleAdmin && (s.adminSecret == "" || req.AdminSecret != s.adminSecret) {
		return nil, ErrAdminSecret
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, req.Username, req.Email, hash, role)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("an account with this username or email %w", repository.ErrDuplicate)
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &model.AuthResponse{User: user, Token: token}, nil
}

// Login verifies credentials and returns the account with a bearer token.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &model.AuthResponse{User: user, Token: token}, nil
}

// ForgotPassword issues a reset token and emails a reset link. To avoid
// account enumeration an unknown email is reported as success.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("forgot password: %w", err)
	}

	plain, hash, expires, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, user.ID, hash, expires); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password.html?token=%s", strings.TrimRight(s.resetBase, "/"), plain)
	payload := notify.PasswordResetPayload{Username: user.Username, ResetURL: resetURL}
	if err := s.sink.Notify(ctx, notify.KindPasswordReset, []string{user.Email}, payload); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("password reset notification failed")
	}
	return nil
}

// ResetPassword completes the reset flow with the emailed token.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	err = s.users.ConsumeResetToken(ctx, auth.HashResetToken(token), hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("invalid or expired token")
		}
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// RequestOrganizer submits a promotion request for review. Only plain users
// with no pending request may submit one.
func (s *UserService) RequestOrganizer(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.RequestOrganizer(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			// Give the caller a precise message.
			current, getErr := s.users.GetByID(ctx, userID)
			if getErr == nil {
				switch {
				case current.Role == model.RoleOrganizer:
					return nil, fmt.Errorf("you are already an organizer")
				case current.Role == model.RoleAdmin:
					return nil, fmt.Errorf("admins cannot change their role")
				case current.OrganizerRequestStatus == model.RequestPending:
					return nil, fmt.Errorf("you already have a pending request")
				}
			}
			return nil, err
		}
		return nil, err
	}
	return user, nil
}

// Profile returns the caller's account.
func (s *UserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile applies profile edits for the caller.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (*model.User, error) {
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		if trimmed == "" {
			return nil, fmt.Errorf("username cannot be empty")
		}
		req.Username = &trimmed
	}
	if req.Email != nil {
		normalized := strings.TrimSpace(strings.ToLower(*req.Email))
		if !isValidEmail(normalized) {
			return nil, fmt.Errorf("email is not a valid email address")
		}
		req.Email = &normalized
	}
	return s.users.UpdateProfile(ctx, userID, req)
}

// ChangePassword verifies the current password and stores a new one.
func (s *UserService) ChangePassword(ctx context.Context, userID string, req model.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		return fmt.Errorf("current password is incorrect")
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// Bookings returns the caller's bookings with event details.
func (s *UserService) Bookings(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
