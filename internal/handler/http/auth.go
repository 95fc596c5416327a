package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/internal/service"
	"github.com/avetrov/go-idm-core/internal/utils"
	"github.com/avetrov/go-idm-core/models"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	account, token, err := h.services.AuthService.Login(ctx, req.Email, req.Password, req.DeviceOS)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			log.Warn().Str("email", req.Email).Msg("invalid credentials")
			http.Error(w, "invalid email/password", http.StatusUnauthorized)
			return
		case errors.Is(err, service.ErrWrongPassword):
			log.Warn().Str("email", req.Email).Msg("wrong password")
			http.Error(w, "wrong password", http.StatusForbidden)
			return
		case errors.Is(err, service.ErrTooManyLoginAttempts):
			log.Warn().Str("email", req.Email).Msg("login throttled")
			http.Error(w, "too many login attempts", http.StatusTooManyRequests)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during login")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	log.Debug().Int64("account_id", account.ID).Msg("account successfully logged in")

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token.SignedString))
	utils.WriteJSON(w, account, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user id in request context")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	tokenString, err := getTokenFromAuthHeader(r.Header.Get("Authorization"))
	if err != nil {
		log.Err(err).Send()
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.services.AuthService.Logout(ctx, userID, tokenString); err != nil {
		log.Err(err).Int64("account_id", userID).Msg("logout failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.StatusResponse{Success: true, Message: "logged out"}, http.StatusOK)
}

func (h *Handler) resetPasswordInit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.ResetPasswordInitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.AuthService.RequestPasswordReset(ctx, req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			log.Warn().Str("email", req.Email).Msg("account not found for password reset")
			http.Error(w, "account not found", http.StatusNotFound)
			return
		case errors.Is(err, service.ErrResetLimitExceeded):
			log.Warn().Str("email", req.Email).Msg("daily reset limit exceeded")
			http.Error(w, "daily password reset limit exceeded", http.StatusTooManyRequests)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during password reset")
			http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
			return
		}
	}

	utils.WriteJSON(w, models.StatusResponse{Success: true, Message: "password reset initiated"}, http.StatusOK)
}

func (h *Handler) resendEmailInit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.ResetPasswordInitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.AuthService.ResendWelcomeEmail(ctx, req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			log.Warn().Str("email", req.Email).Msg("account not found for welcome resend")
			http.Error(w, "account not found", http.StatusNotFound)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during welcome resend")
			http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
			return
		}
	}

	utils.WriteJSON(w, models.StatusResponse{Success: true, Message: "welcome email queued"}, http.StatusOK)
}
