// Package validation holds the field rules shared by the HTTP API and the
// contact form. Rules are expressed as go-playground/validator tags; the
// custom "basicemail" tag accepts anything shaped like local@domain.tld.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/connex/contact-manager/internal/core/domain"
)

var basicEmail = regexp.MustCompile(`\S+@\S+\.\S+`)

// New returns a validator that reports fields by their JSON name and knows
// the basicemail tag.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("basicemail", func(fl validator.FieldLevel) bool {
		return basicEmail.MatchString(fl.Field().String())
	})
	return v
}

var std = New()

// Check validates every contact field independently and returns one message
// per invalid field, or nil when all six are valid.
func Check(f domain.ContactFields) map[string]string {
	return Messages(std.Struct(f))
}

// Messages converts a validator error into a field→message map. Errors that
// are not validation errors yield nil.
func Messages(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = Message(fe.Field())
	}
	return out
}

// Message is the user-facing message for an invalid field.
func Message(field string) string {
	switch field {
	case domain.FieldEmail:
		return "Valid email is required."
	case domain.FieldPhone:
		return "Phone number must be 10 digits."
	}
	return Label(field) + " is required."
}

// Label is the human-readable name of a contact field.
func Label(field string) string {
	switch field {
	case domain.FieldFirstName:
		return "First Name"
	case domain.FieldLastName:
		return "Last Name"
	case domain.FieldEmail:
		return "Email"
	case domain.FieldPhone:
		return "Phone"
	case domain.FieldCompany:
		return "Company"
	case domain.FieldJobTitle:
		return "Job Title"
	}
	return field
}
