package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/connex/contact-manager/internal/core/domain"
	"github.com/connex/contact-manager/internal/core/ports"
)

type auditService struct {
	repo ports.ContactEventRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that writes events to repo.
func NewAuditService(repo ports.ContactEventRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists a single contact event.
func (s *auditService) Record(ctx context.Context, event domain.ContactEvent) error {
	if event.ContactID == "" {
		return fmt.Errorf("record event: %w", domain.ErrMissingContactID)
	}
	if event.OccurredAt.IsZero() {
		return fmt.Errorf("record event: missing timestamp for %s", event.ContactID)
	}

	if err := s.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	s.log.Debug().
		Str("contact_id", event.ContactID).
		Str("action", string(event.Action)).
		Msg("contact event recorded")
	return nil
}
