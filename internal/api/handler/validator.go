package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/connex/contact-manager/internal/core/domain"
	"github.com/connex/contact-manager/internal/core/validation"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validation.New()}
}

// Validate satisfies the echo.Validator interface. Field failures are
// reported as a *domain.ValidationError; a missing field takes precedence
// and yields the "all fields are required" summary.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}

	fields := validation.Messages(err)
	if fields == nil {
		return err
	}

	verr := &domain.ValidationError{Fields: fields}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if fe.Tag() == "required" {
				verr.Message = domain.RequiredFieldsMessage
				break
			}
		}
	}
	return verr
}
