package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/connex/contact-manager/internal/core/domain"
	"github.com/connex/contact-manager/internal/core/ports"
	"github.com/connex/contact-manager/internal/core/validation"
)

type ContactService struct {
	repo   ports.ContactRepository
	events ports.ContactEventRepository
	idem   ports.IdempotencyStore
	audit  ports.AuditPublisher
	logger zerolog.Logger
	now    func() time.Time
}

// NewContactService wires the contact use cases. idem and audit may be nil,
// in which case idempotency keys are ignored and no audit trail is written.
func NewContactService(
	repo ports.ContactRepository,
	events ports.ContactEventRepository,
	idem ports.IdempotencyStore,
	audit ports.AuditPublisher,
	logger zerolog.Logger,
) *ContactService {
	if idem == nil {
		idem = noIdempotency{}
	}
	if audit == nil {
		audit = noAudit{}
	}
	return &ContactService{
		repo:   repo,
		events: events,
		idem:   idem,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// List returns every contact together with the page count for PageSize.
// The page is validated and echoed back but not applied to the query.
func (s *ContactService) List(ctx context.Context, page int) (*ports.ListContactsResult, error) {
	if page < 1 {
		return nil, domain.ErrInvalidPage
	}

	contacts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count contacts: %w", err)
	}

	return &ports.ListContactsResult{
		Contacts:    contacts,
		TotalPages:  totalPages(total, ports.PageSize),
		CurrentPage: page,
	}, nil
}

// Create stores a new contact. A repeated idempotency key returns the
// contact created by the first request.
func (s *ContactService) Create(ctx context.Context, in ports.CreateContactInput) (*ports.CreateContactResult, error) {
	if err := validateFields(in.Fields); err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" {
		if existing := s.replay(ctx, in.IdempotencyKey); existing != nil {
			return &ports.CreateContactResult{Contact: existing, Replayed: true}, nil
		}
	}

	if err := s.ensureEmailFree(ctx, in.Fields.Email, ""); err != nil {
		return nil, err
	}

	contact, err := s.repo.Create(ctx, in.Fields)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to create contact")
		return nil, fmt.Errorf("create contact: %w", err)
	}

	if in.IdempotencyKey != "" {
		if err := s.idem.Remember(ctx, in.IdempotencyKey, contact.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to remember idempotency key")
		}
	}

	s.publish(domain.ActionCreated, contact, in.RequestID)
	s.logger.Info().Str("contact_id", contact.ID).Msg("contact created")

	return &ports.CreateContactResult{Contact: contact}, nil
}

// Get retrieves a single contact.
func (s *ContactService) Get(ctx context.Context, id string) (*domain.Contact, error) {
	if id == "" {
		return nil, domain.ErrMissingContactID
	}
	return s.repo.FindByID(ctx, id)
}

// Update replaces all six business fields of an existing contact. An email
// already owned by another contact is rejected.
func (s *ContactService) Update(ctx context.Context, in ports.UpdateContactInput) (*domain.Contact, error) {
	if in.ID == "" {
		return nil, domain.ErrMissingContactID
	}
	if err := validateFields(in.Fields); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, in.ID); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Fields.Email, in.ID); err != nil {
		return nil, err
	}

	contact, err := s.repo.Update(ctx, in.ID, in.Fields)
	if err != nil {
		if errors.Is(err, domain.ErrContactNotFound) || errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("update contact: %w", err)
	}

	s.publish(domain.ActionUpdated, contact, in.RequestID)
	s.logger.Info().Str("contact_id", contact.ID).Msg("contact updated")

	return contact, nil
}

// Delete removes a contact.
func (s *ContactService) Delete(ctx context.Context, id, requestID string) error {
	if id == "" {
		return domain.ErrMissingContactID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(domain.ActionDeleted, &domain.Contact{ID: id}, requestID)
	s.logger.Info().Str("contact_id", id).Msg("contact deleted")
	return nil
}

// History returns the audit trail of an existing contact, newest first.
func (s *ContactService) History(ctx context.Context, id string) ([]*domain.ContactEvent, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	events, err := s.events.ListByContact(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("contact history: %w", err)
	}
	return events, nil
}

// replay resolves an idempotency key to the contact it created, if any.
// Lookup failures are logged and treated as a miss.
func (s *ContactService) replay(ctx context.Context, key string) *domain.Contact {
	id, found, err := s.idem.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !found {
		return nil
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil
	}
	s.logger.Info().Str("idempotency_key", key).Str("contact_id", existing.ID).Msg("idempotent replay")
	return existing
}

// ensureEmailFree fails with ErrDuplicateEmail when email belongs to a
// contact other than ownerID.
func (s *ContactService) ensureEmailFree(ctx context.Context, email, ownerID string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrContactNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check email: %w", err)
	case existing.ID != ownerID:
		return domain.ErrDuplicateEmail
	}
	return nil
}

func (s *ContactService) publish(action domain.ContactAction, c *domain.Contact, requestID string) {
	s.audit.Publish(domain.ContactEvent{
		ContactID:  c.ID,
		Action:     action,
		Email:      c.Email,
		OccurredAt: s.now().UTC(),
		RequestID:  requestID,
	})
}

func validateFields(f domain.ContactFields) error {
	if f.MissingAny() {
		return &domain.ValidationError{Message: domain.RequiredFieldsMessage, Fields: validation.Check(f)}
	}
	if msgs := validation.Check(f); msgs != nil {
		return &domain.ValidationError{Fields: msgs}
	}
	return nil
}

func totalPages(total int64, size int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

type noIdempotency struct{}

func (noIdempotency) Lookup(context.Context, string) (string, bool, error) { return "", false, nil }
func (noIdempotency) Remember(context.Context, string, string) error       { return nil }

type noAudit struct{}

func (noAudit) Publish(domain.ContactEvent) {}
