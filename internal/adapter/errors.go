package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("notifier rejected request")
	ErrNotFound            = errors.New("notifier endpoint not found")
	ErrInternalServerError = errors.New("notifier internal error")
)
