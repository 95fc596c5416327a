package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/internal/service"
	"github.com/avetrov/go-idm-core/internal/utils"
	"github.com/avetrov/go-idm-core/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var input models.AccountInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	account, err := h.services.AccountProvisioner.CreateAccount(ctx, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			log.Warn().Str("email", input.Email).Msg("email already exists")
			http.Error(w, "email already exists", http.StatusConflict)
			return
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrInvalidDataProvided):
			log.Err(err).Msg("invalid account input")
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during account provisioning")
			http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
			return
		}
	}

	log.Info().Int64("account_id", account.ID).Msg("account created")

	utils.WriteJSON(w, account, http.StatusCreated)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, err := accountIDFromURL(r)
	if err != nil {
		log.Err(err).Msg("invalid account id")
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}

	account, err := h.services.AccountProvisioner.GetAccount(ctx, accountID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			log.Warn().Int64("account_id", accountID).Msg("account not found")
			http.Error(w, "account not found", http.StatusNotFound)
			return
		default:
			log.Err(err).Int64("account_id", accountID).Msg("unexpected error occurred during account lookup")
			http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
			return
		}
	}

	utils.WriteJSON(w, account, http.StatusOK)
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, err := accountIDFromURL(r)
	if err != nil {
		log.Err(err).Msg("invalid account id")
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}

	var patch models.AccountPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.AccountProvisioner.UpdateAccount(ctx, accountID, patch); err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			log.Warn().Int64("account_id", accountID).Msg("account not found")
			http.Error(w, "account not found", http.StatusNotFound)
			return
		case errors.Is(err, service.ErrRoleNotFound):
			log.Warn().Int64("account_id", accountID).Msg("role not found")
			http.Error(w, "role not found", http.StatusNotFound)
			return
		case errors.Is(err, service.ErrInvalidDataProvided):
			log.Err(err).Int64("account_id", accountID).Msg("invalid account patch")
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		default:
			log.Err(err).Int64("account_id", accountID).Msg("unexpected error occurred during account update")
			http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
			return
		}
	}

	utils.WriteJSON(w, models.StatusResponse{Success: true, Message: "account updated"}, http.StatusOK)
}

func accountIDFromURL(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
