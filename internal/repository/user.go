package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventify/eventify/internal/model"
)

const userColumns = `id, username, email, password_hash, phone, city, role,
	organizer_request_status, created_at`

// UserRepository handles persistence for user accounts.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Phone, &u.City,
		&u.Role, &u.OrganizerRequestStatus, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// Create inserts a new account. Returns ErrDuplicate when the username or
// email is already taken.
func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string, role model.Role) (*model.User, error) {
	user := &model.User{
		ID:                     uuid.New().String(),
		Username:               username,
		Email:                  email,
		PasswordHash:           passwordHash,
		Role:                   role,
		OrganizerRequestStatus: model.RequestNone,
		CreatedAt:              time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, organizer_request_status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.OrganizerRequestStatus, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetByID returns a single user or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail returns a single user or ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// UpdateProfile applies the non-nil fields of req. Returns ErrDuplicate when
// the new username or email collides with another account.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.User, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE users SET
			username = COALESCE($2, username),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			city = COALESCE($5, city)
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, req.Username, req.Email, req.Phone, req.City,
	)
	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return user, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResetToken stores the hash and expiry of a freshly issued
// password-reset token.
func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET reset_token_hash = $2, reset_token_expires = $3 WHERE id = $1`,
		id, tokenHash, expires,
	)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeResetToken looks up the account holding an unexpired reset token
// with the given hash, replaces its password and clears the token in one
// statement. Returns ErrNotFound for unknown or expired tokens.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users
		 SET password_hash = $2, reset_token_hash = NULL, reset_token_expires = NULL
		 WHERE reset_token_hash = $1 AND reset_token_expires > now()`,
		tokenHash, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RequestOrganizer moves a user's promotion status to pending. The WHERE
// clause enforces the workflow guard (only none/rejected may request, and
// only plain users), so a racing duplicate request affects zero rows.
func (r *UserRepository) RequestOrganizer(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE users SET organizer_request_status = $2
		 WHERE id = $1 AND role = $3 AND organizer_request_status IN ($4, $5)
		 RETURNING `+userColumns,
		id, model.RequestPending, model.RoleUser, model.RequestNone, model.RequestRejected,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Distinguish a missing account from an illegal transition.
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return nil, ErrInvalidTransition
			}
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// DecideOrganizerRequest resolves a pending promotion request. Approval also
// promotes the account to the organizer role. The guarded WHERE clause makes
// concurrent decisions on the same request settle to exactly one outcome.
func (r *UserRepository) DecideOrganizerRequest(ctx context.Context, id string, approve bool) (*model.User, error) {
	status := model.RequestRejected
	role := model.RoleUser
	if approve {
		status = model.RequestApproved
		role = model.RoleOrganizer
	}
	row := r.db.QueryRow(ctx,
		`UPDATE users SET organizer_request_status = $2, role = $3
		 WHERE id = $1 AND organizer_request_status = $4
		 RETURNING `+userColumns,
		id, status, role, model.RequestPending,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return nil, ErrInvalidTransition
			}
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListPendingOrganizerRequests returns accounts awaiting an admin decision.
func (r *UserRepository) ListPendingOrganizerRequests(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE organizer_request_status = $1
		 ORDER BY created_at ASC`,
		model.RequestPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list organizer requests: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
