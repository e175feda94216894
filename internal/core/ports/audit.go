package ports

import (
	"context"

	"github.com/connex/contact-manager/internal/core/domain"
)

// AuditPublisher accepts contact events for asynchronous recording.
type AuditPublisher interface {
	Publish(event domain.ContactEvent)
}

// AuditService records a single contact event.
type AuditService interface {
	Record(ctx context.Context, event domain.ContactEvent) error
}
