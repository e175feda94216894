package ports

import (
	"context"

	"github.com/connex/contact-manager/internal/core/domain"
)

// PageSize is the page size used to compute TotalPages on list responses.
const PageSize = 20

// ListContactsResult is returned by ContactService.List.
type ListContactsResult struct {
	Contacts    []*domain.Contact
	TotalPages  int
	CurrentPage int
}

// CreateContactInput carries the fields of a new contact.
type CreateContactInput struct {
	Fields         domain.ContactFields
	IdempotencyKey string
	RequestID      string
}

// CreateContactResult is returned by ContactService.Create.
type CreateContactResult struct {
	Contact *domain.Contact
	// Replayed is true when the idempotency key matched an earlier create.
	Replayed bool
}

// UpdateContactInput carries the replacement fields for a contact.
type UpdateContactInput struct {
	ID        string
	Fields    domain.ContactFields
	RequestID string
}

// ContactService defines the contact use cases exposed over HTTP.
type ContactService interface {
	List(ctx context.Context, page int) (*ListContactsResult, error)
	Create(ctx context.Context, input CreateContactInput) (*CreateContactResult, error)
	Get(ctx context.Context, id string) (*domain.Contact, error)
	Update(ctx context.Context, input UpdateContactInput) (*domain.Contact, error)
	Delete(ctx context.Context, id, requestID string) error
	History(ctx context.Context, id string) ([]*domain.ContactEvent, error)
}
