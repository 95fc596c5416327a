package http

import (
	"errors"
	"net/http"

	"github.com/avetrov/go-idm-core/internal/service"
	"github.com/avetrov/go-idm-core/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:        http.StatusUnprocessableEntity,
	service.ErrInvalidEmail:               http.StatusUnprocessableEntity,
	service.ErrEmailAlreadyExists:         http.StatusConflict,
	service.ErrAccountNotFound:            http.StatusNotFound,
	service.ErrRoleNotFound:               http.StatusNotFound,
	service.ErrInvalidCredentials:         http.StatusUnauthorized,
	service.ErrWrongPassword:              http.StatusForbidden,
	service.ErrTokenIsExpiredOrInvalid:    http.StatusUnauthorized,
	service.ErrResetLimitExceeded:         http.StatusTooManyRequests,
	service.ErrTooManyLoginAttempts:       http.StatusTooManyRequests,
	service.ErrNotificationDispatchFailed: http.StatusBadGateway,

	store.ErrEmailAlreadyExists:   http.StatusConflict,
	store.ErrNoAccountWasFound:    http.StatusNotFound,
	store.ErrOrganizationConflict: http.StatusConflict,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
