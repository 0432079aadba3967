package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/roomshare/roomshare-be/internal/auth"
	"github.com/roomshare/roomshare-be/internal/mailer"
	"github.com/roomshare/roomshare-be/internal/models"
	"github.com/roomshare/roomshare-be/internal/otp"
)

const resetTokenTTL = 15 * time.Minute

// AuthServiceProvider defines the interface for signup, login and the
// password-reset flows.
type AuthServiceProvider interface {
	Signup(name, email, password string) error
	VerifyOTP(email, code string) (models.User, error)
	Login(email, password string) (string, models.User, error)
	ForgotPassword(email string) error
	ResetPassword(token, newPassword string) error
}

// AuthService implements account signup with email verification, login
// and password reset.
type AuthService struct {
	users   UserServiceProvider
	pending *otp.Cache
	mail    mailer.Mailer
	tokens  *auth.Service
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserServiceProvider, pending *otp.Cache, mail mailer.Mailer, tokens *auth.Service) *AuthService {
	return &AuthService{users: users, pending: pending, mail: mail, tokens: tokens}
}

// Signup validates that the email is free, caches the pending signup
// under a one-time code and mails the code to the address. No user row
// is created until the code is verified. The password is hashed before
// it enters the cache so plaintext never sits in memory.
func (s *AuthService) Signup(name, email, password string) error {
	if _, err := s.users.GetUserByEmail(email); err == nil {
		return fmt.Errorf("%w: email address is already in use", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := s.pending.Put(otp.PendingSignup{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return err
	}

	body := "Welcome to Roomshare!\n\n" +
		"Your one-time password (OTP) for account verification is: " + code + "\n\n" +
		"This code is valid for 10 minutes."
	if err := s.mail.Send(email, "Verify Your Account", body); err != nil {
		return err
	}

	log.Info().Str("email", email).Msg("Signup OTP issued")
	return nil
}

// VerifyOTP consumes the pending signup for the email and creates the
// enabled user account. A missing or expired entry fails with
// ErrNotFound; a wrong code fails with ErrBadRequest and leaves the
// entry in place.
func (s *AuthService) VerifyOTP(email, code string) (models.User, error) {
	signup, found, matched := s.pending.Consume(email, code)
	if !found {
		return models.User{}, fmt.Errorf("%w: OTP expired or unknown email, please sign up again", ErrNotFound)
	}
	if !matched {
		return models.User{}, fmt.Errorf("%w: incorrect OTP provided", ErrBadRequest)
	}

	user, err := s.users.CreateVerifiedUser(signup.Name, signup.Email, signup.PasswordHash)
	if err != nil {
		return models.User{}, err
	}

	log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User account created")
	return user, nil
}

// Login verifies the credentials and returns a signed bearer token.
func (s *AuthService) Login(email, password string) (string, models.User, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", models.User{}, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
		}
		return "", models.User{}, err
	}
	if !user.Enabled {
		return "", models.User{}, fmt.Errorf("%w: account is not verified", ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", models.User{}, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return "", models.User{}, fmt.Errorf("failed to generate token: %w", err)
	}

	user.PasswordHash = ""
	return token, user, nil
}

// ForgotPassword issues a reset token and mails a reset link. To prevent
// account enumeration it reports success whether or not the email is
// registered; only the server log records the difference.
func (s *AuthService) ForgotPassword(email string) error {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Str("email", email).Msg("Password reset attempted for unknown email")
			return nil
		}
		return err
	}

	token := uuid.New().String()
	expiry := time.Now().Add(resetTokenTTL)
	if err := s.users.SetResetToken(user.ID, token, expiry); err != nil {
		return err
	}

	body := "Hello " + user.Name + ",\n\n" +
		"You have requested to reset your password. Use the token below to proceed:\n" +
		token + "\n\n" +
		"If you did not request this, please ignore this email.\n" +
		"This token will expire in 15 minutes."
	if err := s.mail.Send(user.Email, "Password Reset Request", body); err != nil {
		return err
	}

	log.Info().Str("user_id", user.ID).Msg("Password reset token issued")
	return nil
}

// ResetPassword consumes a reset token and sets the new password. An
// unknown token fails with ErrBadRequest; an expired token is
// invalidated and fails with ErrInvalidState.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	user, err := s.users.GetUserByResetToken(token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired password reset token", ErrBadRequest)
		}
		return err
	}

	if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(time.Now()) {
		// Invalidate the token so it cannot be retried.
		if err := s.users.ClearResetToken(user.ID); err != nil {
			return err
		}
		return fmt.Errorf("%w: password reset token has expired", ErrInvalidState)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.users.UpdatePassword(user.ID, string(hash)); err != nil {
		return err
	}

	log.Info().Str("user_id", user.ID).Msg("Password reset completed")

	body := "Hello " + user.Name + ",\n\n" +
		"This is a confirmation that the password for your account has just been changed.\n\n" +
		"If you did not make this change, please contact support immediately."
	if err := s.mail.Send(user.Email, "Your Password Has Been Reset", body); err != nil {
		// The password change already succeeded; the confirmation mail
		// failing is logged but not surfaced.
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to send reset confirmation")
	}
	return nil
}
