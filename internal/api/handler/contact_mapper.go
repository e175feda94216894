package handler

import (
	"errors"

	"github.com/connex/contact-manager/internal/core/domain"
)

func toFields(r contactRequest) domain.ContactFields {
	return domain.ContactFields{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Company:   r.Company,
		JobTitle:  r.JobTitle,
	}
}

// nonNilContacts keeps empty collections rendering as [] instead of null.
func nonNilContacts(in []*domain.Contact) []*domain.Contact {
	if in == nil {
		return []*domain.Contact{}
	}
	return in
}

func nonNilEvents(in []*domain.ContactEvent) []*domain.ContactEvent {
	if in == nil {
		return []*domain.ContactEvent{}
	}
	return in
}

// errorReason classifies err for the errors metric.
func errorReason(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return "validation"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, domain.ErrContactNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidPage):
		return "invalid_page"
	case errors.Is(err, domain.ErrMissingContactID):
		return "missing_id"
	}
	return "internal"
}
