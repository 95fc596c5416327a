package validators

import (
	"context"
	"regexp"

	"github.com/avetrov/go-idm-core/models"
)

const (
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldStatus       = "status"
	FieldOrganization = "organization"
)

// emailPattern enforces the local@domain.tld shape: a non-empty local part,
// an @, and a domain containing at least one dot.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var allowedStatuses = []string{
	models.StatusNotVerified,
	models.StatusProcessing,
	models.StatusActive,
	models.StatusInactive,
	models.StatusRequested,
}

type AccountValidator struct {
}

func NewAccountValidator() Validator {
	return &AccountValidator{}
}

func (v *AccountValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.AccountInput:
		return v.validateAccountInput(ctx, value, fields...)
	case *models.AccountInput:
		return v.validateAccountInput(ctx, *value, fields...)

	case models.Account:
		return v.validateAccount(ctx, value, fields...)
	case *models.Account:
		return v.validateAccount(ctx, *value, fields...)

	case models.AccountPatch:
		return v.validateAccountPatch(ctx, value, fields...)
	case *models.AccountPatch:
		return v.validateAccountPatch(ctx, *value, fields...)

	case models.Organization:
		return v.validateOrganization(ctx, value)
	case *models.Organization:
		return v.validateOrganization(ctx, *value)

	default:
		return ErrUnsupportedType
	}
}

func (v *AccountValidator) validateAccountInput(ctx context.Context, input models.AccountInput, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEmail, FieldPassword, FieldOrganization}
	}

	for _, field := range fields {
		switch field {
		case FieldEmail:
			if err := validateEmail(input.Email); err != nil {
				return err
			}
		case FieldPassword:
			if input.Password == "" {
				return ErrEmptyPassword
			}
		case FieldOrganization:
			if input.Organization != nil {
				if err := v.validateOrganization(ctx, *input.Organization); err != nil {
					return err
				}
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *AccountValidator) validateAccount(ctx context.Context, account models.Account, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEmail}
	}

	for _, field := range fields {
		switch field {
		case FieldEmail:
			if err := validateEmail(account.Email); err != nil {
				return err
			}
		case FieldStatus:
			if !statusAllowed(account.Status) {
				return ErrInvalidStatus
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *AccountValidator) validateAccountPatch(ctx context.Context, patch models.AccountPatch, fields ...string) error {
	if patch.Status != nil && !statusAllowed(*patch.Status) {
		return ErrInvalidStatus
	}
	if patch.Role != nil && patch.Role.Organization != nil {
		return v.validateOrganization(ctx, *patch.Role.Organization)
	}

	return nil
}

func (v *AccountValidator) validateOrganization(_ context.Context, organization models.Organization) error {
	if organization.Name == "" {
		return ErrEmptyOrganizationName
	}
	if organization.Type == "" {
		return ErrEmptyOrganizationType
	}

	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

func statusAllowed(status string) bool {
	for _, allowed := range allowedStatuses {
		if status == allowed {
			return true
		}
	}

	return false
}
