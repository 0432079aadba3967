package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roomshare/roomshare-be/internal/models"
)

// UserServiceProvider defines the interface for user record management.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
	CreateVerifiedUser(name, email, passwordHash string) (models.User, error)
	SetResetToken(userID, token string, expiry time.Time) error
	GetUserByResetToken(token string) (models.User, error)
	UpdatePassword(userID, passwordHash string) error
	ClearResetToken(userID string) error
	ClearExpiredResetTokens(now time.Time) (int64, error)
}

// UserService provides persistence for user accounts.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	return s.scanUser(s.db.QueryRow(
		"SELECT id, name, email, password_hash, enabled, reset_token, reset_token_expiry, created_at FROM users WHERE id = ?", id))
}

// GetUserByEmail retrieves a single user by their email, including the
// password hash for credential verification.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	return s.scanUser(s.db.QueryRow(
		"SELECT id, name, email, password_hash, enabled, reset_token, reset_token_expiry, created_at FROM users WHERE email = ?", email))
}

// GetUserByResetToken retrieves the user holding a password reset token.
func (s *UserService) GetUserByResetToken(token string) (models.User, error) {
	return s.scanUser(s.db.QueryRow(
		"SELECT id, name, email, password_hash, enabled, reset_token, reset_token_expiry, created_at FROM users WHERE reset_token = ?", token))
}

// CreateVerifiedUser inserts a user whose email has already been verified.
// The account is enabled immediately.
func (s *UserService) CreateVerifiedUser(name, email, passwordHash string) (models.User, error) {
	user := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Enabled:      true,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.Exec(
		"INSERT INTO users (id, name, email, password_hash, enabled, created_at) VALUES (?, ?, ?, ?, 1, ?)",
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt.Unix())
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// SetResetToken attaches a password reset token and its expiry to a user.
func (s *UserService) SetResetToken(userID, token string, expiry time.Time) error {
	_, err := s.db.Exec("UPDATE users SET reset_token = ?, reset_token_expiry = ? WHERE id = ?",
		token, expiry.Unix(), userID)
	return err
}

// UpdatePassword replaces a user's credential hash and invalidates any
// outstanding reset token.
func (s *UserService) UpdatePassword(userID, passwordHash string) error {
	_, err := s.db.Exec(
		"UPDATE users SET password_hash = ?, reset_token = NULL, reset_token_expiry = NULL WHERE id = ?",
		passwordHash, userID)
	return err
}

// ClearResetToken removes a user's reset token without touching the password.
func (s *UserService) ClearResetToken(userID string) error {
	_, err := s.db.Exec("UPDATE users SET reset_token = NULL, reset_token_expiry = NULL WHERE id = ?", userID)
	return err
}

// ClearExpiredResetTokens removes reset tokens whose expiry has passed.
// Called by the maintenance sweeper.
func (s *UserService) ClearExpiredResetTokens(now time.Time) (int64, error) {
	res, err := s.db.Exec(
		"UPDATE users SET reset_token = NULL, reset_token_expiry = NULL WHERE reset_token IS NOT NULL AND reset_token_expiry < ?",
		now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *UserService) scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	var resetToken sql.NullString
	var resetExpiry sql.NullInt64
	var enabled int
	var created int64

	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &enabled, &resetToken, &resetExpiry, &created)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return models.User{}, err
	}

	user.Enabled = enabled != 0
	user.CreatedAt = time.Unix(created, 0).UTC()
	if resetToken.Valid {
		user.ResetToken = &resetToken.String
	}
	if resetExpiry.Valid {
		t := time.Unix(resetExpiry.Int64, 0).UTC()
		user.ResetTokenExpiry = &t
	}
	return user, nil
}
