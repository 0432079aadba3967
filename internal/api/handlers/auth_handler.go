package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/roomshare/roomshare-be/internal/services"
)

// AuthHandler handles HTTP requests for signup, login and password reset.
type AuthHandler struct {
	service services.AuthServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.AuthServiceProvider) *AuthHandler {
	return &AuthHandler{service: service}
}

// SignupPayload defines the structure for signup requests.
type SignupPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup starts a registration: the account is created only after the
// emailed OTP is verified.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", services.ErrBadRequest))
		return
	}
	if payload.Name == "" || payload.Email == "" || payload.Password == "" {
		writeError(w, r, fmt.Errorf("%w: name, email and password are required", services.ErrBadRequest))
		return
	}

	if err := h.service.Signup(payload.Name, payload.Email, payload.Password); err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Signup rejected")
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification OTP sent to your email address."})
}

// VerifyOTP completes a registration by checking the emailed code.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", services.ErrBadRequest))
		return
	}

	if _, err := h.service.VerifyOTP(payload.Email, payload.OTP); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully. You can now log in."})
}

// Login authenticates credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", services.ErrBadRequest))
		return
	}

	token, user, err := h.service.Login(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// ForgotPassword issues a reset token. The response is identical whether
// or not the email is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", services.ErrBadRequest))
		return
	}

	if err := h.service.ForgotPassword(payload.Email); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If an account with this email exists, a password reset link has been sent.",
	})
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid request body", services.ErrBadRequest))
		return
	}
	if payload.NewPassword == "" {
		writeError(w, r, fmt.Errorf("%w: new password is required", services.ErrBadRequest))
		return
	}

	if err := h.service.ResetPassword(payload.Token, payload.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Your password has been reset successfully."})
}
