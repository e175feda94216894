package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/connex/contact-manager/internal/core/domain"
	"github.com/connex/contact-manager/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubContactRepo struct {
	byID    map[string]*domain.Contact
	order   []string // insertion order
	seq     int
	failErr error // if set, every call returns this error
	creates int
}

func newStubContactRepo() *stubContactRepo {
	return &stubContactRepo{byID: make(map[string]*domain.Contact)}
}

func (r *stubContactRepo) Create(_ context.Context, f domain.ContactFields) (*domain.Contact, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	r.seq++
	r.creates++
	now := time.Now().UTC()
	c := &domain.Contact{ID: fmt.Sprintf("id-%d", r.seq), ContactFields: f, CreatedAt: now, UpdatedAt: now}
	r.byID[c.ID] = c
	r.order = append(r.order, c.ID)
	clone := *c
	return &clone, nil
}

func (r *stubContactRepo) FindByID(_ context.Context, id string) (*domain.Contact, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubContactRepo) FindByEmail(_ context.Context, email string) (*domain.Contact, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	for _, c := range r.byID {
		if c.Email == email {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrContactNotFound
}

// List mirrors the Mongo ordering: newest first.
func (r *stubContactRepo) List(_ context.Context) ([]*domain.Contact, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	out := make([]*domain.Contact, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		if c, ok := r.byID[r.order[i]]; ok {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubContactRepo) Count(_ context.Context) (int64, error) {
	if r.failErr != nil {
		return 0, r.failErr
	}
	return int64(len(r.byID)), nil
}

func (r *stubContactRepo) Update(_ context.Context, id string, f domain.ContactFields) (*domain.Contact, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	c.ContactFields = f
	c.UpdatedAt = time.Now().UTC()
	clone := *c
	return &clone, nil
}

func (r *stubContactRepo) Delete(_ context.Context, id string) error {
	if r.failErr != nil {
		return r.failErr
	}
	if _, ok := r.byID[id]; !ok {
		return domain.ErrContactNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubEventRepo struct {
	events []*domain.ContactEvent
}

func (r *stubEventRepo) Insert(_ context.Context, e *domain.ContactEvent) error {
	clone := *e
	r.events = append(r.events, &clone)
	return nil
}

func (r *stubEventRepo) ListByContact(_ context.Context, id string) ([]*domain.ContactEvent, error) {
	var out []*domain.ContactEvent
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].ContactID == id {
			out = append(out, r.events[i])
		}
	}
	return out, nil
}

type stubIdempotency struct {
	keys      map[string]string
	lookupErr error
}

func (s *stubIdempotency) Lookup(_ context.Context, key string) (string, bool, error) {
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	id, ok := s.keys[key]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, key, id string) error {
	s.keys[key] = id
	return nil
}

type recordingPublisher struct {
	events []domain.ContactEvent
}

func (p *recordingPublisher) Publish(e domain.ContactEvent) { p.events = append(p.events, e) }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func validFields(email string) domain.ContactFields {
	return domain.ContactFields{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     email,
		Phone:     "5550001111",
		Company:   "Navy",
		JobTitle:  "Rear Admiral",
	}
}

type fixture struct {
	repo   *stubContactRepo
	events *stubEventRepo
	idem   *stubIdempotency
	pub    *recordingPublisher
	svc    *ContactService
}

func newFixture() *fixture {
	f := &fixture{
		repo:   newStubContactRepo(),
		events: &stubEventRepo{},
		idem:   &stubIdempotency{keys: make(map[string]string)},
		pub:    &recordingPublisher{},
	}
	f.svc = NewContactService(f.repo, f.events, f.idem, f.pub, discardLogger)
	return f
}

func (f *fixture) seed(t *testing.T, email string) *domain.Contact {
	t.Helper()
	res, err := f.svc.Create(context.Background(), ports.CreateContactInput{Fields: validFields(email)})
	if err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
	return res.Contact
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestContactService_Create_Success(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Create(context.Background(), ports.CreateContactInput{Fields: validFields("grace@example.com")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Contact.ID == "" {
		t.Fatal("expected generated id")
	}
	if res.Replayed {
		t.Error("expected Replayed=false for a new contact")
	}

	got, err := f.svc.Get(context.Background(), res.Contact.ID)
	if err != nil {
		t.Fatalf("get after create: %v", err)
	}
	if got.ContactFields != validFields("grace@example.com") {
		t.Errorf("round trip mismatch: got %+v", got.ContactFields)
	}
}

func TestContactService_Create_PublishesAuditEvent(t *testing.T) {
	f := newFixture()
	c := f.seed(t, "grace@example.com")

	if len(f.pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.pub.events))
	}
	e := f.pub.events[0]
	if e.ContactID != c.ID || e.Action != domain.ActionCreated {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.OccurredAt.IsZero() {
		t.Error("event timestamp must be set")
	}
}

func TestContactService_Create_DuplicateEmail(t *testing.T) {
	f := newFixture()
	f.seed(t, "grace@example.com")

	_, err := f.svc.Create(context.Background(), ports.CreateContactInput{Fields: validFields("grace@example.com")})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if f.repo.creates != 1 {
		t.Errorf("expected 1 stored contact, got %d", f.repo.creates)
	}
}

func TestContactService_Create_MissingField(t *testing.T) {
	for _, field := range domain.FieldNames {
		t.Run(field, func(t *testing.T) {
			f := newFixture()
			fields := validFields("grace@example.com")
			fields.Set(field, "")

			_, err := f.svc.Create(context.Background(), ports.CreateContactInput{Fields: fields})

			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Message != domain.RequiredFieldsMessage {
				t.Errorf("unexpected message %q", ve.Message)
			}
			if _, ok := ve.Fields[field]; !ok {
				t.Errorf("expected %s in field errors: %v", field, ve.Fields)
			}
			if f.repo.creates != 0 {
				t.Error("no contact must be created")
			}
		})
	}
}

func TestContactService_Create_MalformedPhone(t *testing.T) {
	f := newFixture()
	fields := validFields("grace@example.com")
	fields.Phone = "12345"

	_, err := f.svc.Create(context.Background(), ports.CreateContactInput{Fields: fields})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Message != "" || ve.Fields["phone"] == "" {
		t.Errorf("expected phone field error only, got %+v", ve)
	}
}

func TestContactService_Create_IdempotentReplay(t *testing.T) {
	f := newFixture()
	in := ports.CreateContactInput{Fields: validFields("grace@example.com"), IdempotencyKey: "key-1"}

	first, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	if !second.Replayed {
		t.Error("replay must set Replayed=true")
	}
	if second.Contact.ID != first.Contact.ID {
		t.Errorf("replay returned %s, want %s", second.Contact.ID, first.Contact.ID)
	}
	if f.repo.creates != 1 {
		t.Errorf("expected 1 stored contact, got %d", f.repo.creates)
	}
}

func TestContactService_Create_IdempotencyLookupFails_StillCreates(t *testing.T) {
	f := newFixture()
	f.idem.lookupErr = errors.New("redis down")

	res, err := f.svc.Create(context.Background(), ports.CreateContactInput{
		Fields:         validFields("grace@example.com"),
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Replayed {
		t.Error("lookup failure must not be reported as replay")
	}
}

func TestContactService_Create_RepoError(t *testing.T) {
	f := newFixture()
	f.repo.failErr = errors.New("db unavailable")

	_, err := f.svc.Create(context.Background(), ports.CreateContactInput{Fields: validFields("grace@example.com")})
	if err == nil {
		t.Fatal("expected error when repo fails, got nil")
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestContactService_List_ReturnsEverythingNewestFirst(t *testing.T) {
	f := newFixture()
	for i := 0; i < 25; i++ {
		f.seed(t, fmt.Sprintf("c%d@example.com", i))
	}

	res, err := f.svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Contacts) != 25 {
		t.Errorf("expected all 25 contacts, got %d", len(res.Contacts))
	}
	if res.TotalPages != 2 {
		t.Errorf("expected 2 total pages, got %d", res.TotalPages)
	}
	if res.CurrentPage != 1 {
		t.Errorf("expected current page 1, got %d", res.CurrentPage)
	}
	if res.Contacts[0].Email != "c24@example.com" {
		t.Errorf("expected newest first, got %s", res.Contacts[0].Email)
	}
}

func TestContactService_List_EchoesPage(t *testing.T) {
	f := newFixture()
	res, err := f.svc.List(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CurrentPage != 7 || res.TotalPages != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestContactService_List_InvalidPage(t *testing.T) {
	f := newFixture()
	for _, page := range []int{0, -3} {
		if _, err := f.svc.List(context.Background(), page); !errors.Is(err, domain.ErrInvalidPage) {
			t.Errorf("page %d: expected ErrInvalidPage, got %v", page, err)
		}
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		want  int
	}{{0, 0}, {1, 1}, {20, 1}, {21, 2}, {40, 2}, {41, 3}}
	for _, tc := range cases {
		if got := totalPages(tc.total, 20); got != tc.want {
			t.Errorf("totalPages(%d) = %d, want %d", tc.total, got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Get / Update / Delete
// ---------------------------------------------------------------------------

func TestContactService_Get_MissingID(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Get(context.Background(), ""); !errors.Is(err, domain.ErrMissingContactID) {
		t.Fatalf("expected ErrMissingContactID, got %v", err)
	}
}

func TestContactService_Get_NotFound(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
}

func TestContactService_Update_ReplacesFields(t *testing.T) {
	f := newFixture()
	c := f.seed(t, "grace@example.com")

	next := domain.ContactFields{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Phone: "5559998888", Company: "Engines", JobTitle: "Analyst",
	}
	updated, err := f.svc.Update(context.Background(), ports.UpdateContactInput{ID: c.ID, Fields: next})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ContactFields != next {
		t.Errorf("fields not replaced: %+v", updated.ContactFields)
	}
	if updated.ID != c.ID {
		t.Error("id must be immutable")
	}
	if got := f.pub.events[len(f.pub.events)-1].Action; got != domain.ActionUpdated {
		t.Errorf("expected updated event, got %s", got)
	}
}

func TestContactService_Update_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Update(context.Background(), ports.UpdateContactInput{ID: "nope", Fields: validFields("x@example.com")})
	if !errors.Is(err, domain.ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
}

func TestContactService_Update_MissingField(t *testing.T) {
	f := newFixture()
	c := f.seed(t, "grace@example.com")
	fields := validFields("grace@example.com")
	fields.Company = ""

	_, err := f.svc.Update(context.Background(), ports.UpdateContactInput{ID: c.ID, Fields: fields})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestContactService_Update_KeepsOwnEmail(t *testing.T) {
	f := newFixture()
	c := f.seed(t, "grace@example.com")
	fields := validFields("grace@example.com")
	fields.JobTitle = "Commodore"

	if _, err := f.svc.Update(context.Background(), ports.UpdateContactInput{ID: c.ID, Fields: fields}); err != nil {
		t.Fatalf("updating without changing email must succeed: %v", err)
	}
}

func TestContactService_Update_EmailTakenByOther(t *testing.T) {
	f := newFixture()
	f.seed(t, "grace@example.com")
	other := f.seed(t, "ada@example.com")

	_, err := f.svc.Update(context.Background(), ports.UpdateContactInput{ID: other.ID, Fields: validFields("grace@example.com")})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestContactService_Delete(t *testing.T) {
	f := newFixture()
	c := f.seed(t, "grace@example.com")

	if err := f.svc.Delete(context.Background(), c.ID, "req-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, _ := f.svc.List(context.Background(), 1)
	if len(res.Contacts) != 0 {
		t.Errorf("deleted contact still listed: %+v", res.Contacts)
	}
	last := f.pub.events[len(f.pub.events)-1]
	if last.Action != domain.ActionDeleted || last.RequestID != "req-1" {
		t.Errorf("unexpected delete event: %+v", last)
	}
}

func TestContactService_Delete_NotFound(t *testing.T) {
	f := newFixture()
	if err := f.svc.Delete(context.Background(), "nope", ""); !errors.Is(err, domain.ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
	if len(f.pub.events) != 0 {
		t.Error("failed delete must not publish")
	}
}

func TestContactService_History(t *testing.T) {
	f := newFixture()
	c := f.seed(t, "grace@example.com")
	_ = f.events.Insert(context.Background(), &domain.ContactEvent{ContactID: c.ID, Action: domain.ActionCreated})
	_ = f.events.Insert(context.Background(), &domain.ContactEvent{ContactID: c.ID, Action: domain.ActionUpdated})
	_ = f.events.Insert(context.Background(), &domain.ContactEvent{ContactID: "other", Action: domain.ActionCreated})

	events, err := f.svc.History(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 || events[0].Action != domain.ActionUpdated {
		t.Errorf("unexpected history: %+v", events)
	}
}

func TestContactService_History_UnknownContact(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.History(context.Background(), "nope"); !errors.Is(err, domain.ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
}

func TestNewContactService_NilOptionalDeps(t *testing.T) {
	svc := NewContactService(newStubContactRepo(), &stubEventRepo{}, nil, nil, discardLogger)

	res, err := svc.Create(context.Background(), ports.CreateContactInput{
		Fields:         validFields("grace@example.com"),
		IdempotencyKey: "ignored",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Replayed {
		t.Error("expected no replay without an idempotency store")
	}
}
