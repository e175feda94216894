package ports

import (
	"context"

	"github.com/connex/contact-manager/internal/core/domain"
)

// ContactRepository defines persistence operations for contacts.
type ContactRepository interface {
	Create(ctx context.Context, fields domain.ContactFields) (*domain.Contact, error)
	FindByID(ctx context.Context, id string) (*domain.Contact, error)
	FindByEmail(ctx context.Context, email string) (*domain.Contact, error)
	// List returns every contact, most recently created first.
	List(ctx context.Context) ([]*domain.Contact, error)
	Count(ctx context.Context) (int64, error)
	// Update replaces the six business fields and returns the stored result.
	Update(ctx context.Context, id string, fields domain.ContactFields) (*domain.Contact, error)
	Delete(ctx context.Context, id string) error
}

// ContactEventRepository persists the audit trail of contact mutations.
type ContactEventRepository interface {
	Insert(ctx context.Context, event *domain.ContactEvent) error
	ListByContact(ctx context.Context, contactID string) ([]*domain.ContactEvent, error)
}

// IdempotencyStore maps client-supplied idempotency keys to created contacts.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (contactID string, found bool, err error)
	Remember(ctx context.Context, key, contactID string) error
}
