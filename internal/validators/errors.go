package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyEmail            = errors.New("email is required")
	ErrInvalidEmail          = errors.New("invalid email format")
	ErrEmptyPassword         = errors.New("password is required")
	ErrInvalidStatus         = errors.New("invalid account status")
	ErrEmptyOrganizationName = errors.New("organization name is required")
	ErrEmptyOrganizationType = errors.New("organization type is required")
)
