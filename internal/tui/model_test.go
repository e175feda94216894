package tui

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/connex/contact-manager/internal/client"
	"github.com/connex/contact-manager/internal/core/domain"
)

// fakeAPI is an in-memory ContactAPI.
type fakeAPI struct {
	mu        sync.Mutex
	contacts  []*domain.Contact
	listErr   error
	createErr error
	deleteErr error
	lists     int
	nextID    int
}

func (f *fakeAPI) List(context.Context) (*client.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*domain.Contact, len(f.contacts))
	copy(out, f.contacts)
	return &client.ListResult{Contacts: out, TotalPages: 1, CurrentPage: 1}, nil
}

func (f *fakeAPI) Create(_ context.Context, fields domain.ContactFields) (*domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	c := &domain.Contact{ID: "new" + string(rune('0'+f.nextID)), ContactFields: fields}
	f.contacts = append([]*domain.Contact{c}, f.contacts...)
	return c, nil
}

func (f *fakeAPI) Update(_ context.Context, id string, fields domain.ContactFields) (*domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contacts {
		if c.ID == id {
			c.ContactFields = fields
			return c, nil
		}
	}
	return nil, &client.APIError{Status: http.StatusNotFound, Message: "Contact not found"}
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, c := range f.contacts {
		if c.ID == id {
			f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: http.StatusNotFound, Message: "Contact not found"}
}

func person(id, first string) *domain.Contact {
	return &domain.Contact{
		ID: id,
		ContactFields: domain.ContactFields{
			FirstName: first,
			LastName:  "Smith",
			Email:     first + "@example.com",
			Phone:     "5551234567",
			Company:   "Acme",
			JobTitle:  "Engineer",
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step applies msg and discards the returned command. Tests run the API
// commands they care about explicitly.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func loadedModel(t *testing.T, api *fakeAPI) Model {
	t.Helper()
	m := NewModel(api, Options{PageSize: 10, Timeout: time.Second})
	return step(t, m, fetchContacts(api, time.Second)())
}

func TestNewModel_StartsLoading(t *testing.T) {
	m := NewModel(&fakeAPI{}, Options{PageSize: 25})

	if !m.State().Loading {
		t.Error("new model should be loading")
	}
	if m.State().PageSize != 25 {
		t.Errorf("page size = %d, want 25", m.State().PageSize)
	}
	if m.Mode() != ModeList {
		t.Errorf("mode = %v, want list", m.Mode())
	}
}

func TestModel_LoadFailedShowsBanner(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("connection refused")}
	m := loadedModel(t, api)

	if m.State().Err == nil {
		t.Fatal("expected error in state")
	}
	if !bytes.Contains([]byte(m.View()), []byte("connection refused")) {
		t.Error("expected error banner in view")
	}
}

func TestModel_SortKeyTogglesColumn(t *testing.T) {
	m := loadedModel(t, &fakeAPI{contacts: []*domain.Contact{person("b", "bob"), person("a", "alice")}})

	m = step(t, m, runes("1"))
	if got := m.State().Visible()[0].ID; got != "a" {
		t.Fatalf("first row = %s, want a", got)
	}

	m = step(t, m, runes("1"))
	if got := m.State().Visible()[0].ID; got != "b" {
		t.Errorf("first row after toggle = %s, want b", got)
	}
}

func TestModel_SearchFiltersAsYouType(t *testing.T) {
	m := loadedModel(t, &fakeAPI{contacts: []*domain.Contact{person("1", "ann"), person("2", "ben")}})

	m = step(t, m, runes("/"))
	if m.Mode() != ModeSearch {
		t.Fatalf("mode = %v, want search", m.Mode())
	}
	for _, r := range "ben" {
		m = step(t, m, runes(string(r)))
	}
	if got := len(m.State().Visible()); got != 1 {
		t.Errorf("visible = %d, want 1", got)
	}

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Mode() != ModeList || m.State().Search != "" {
		t.Errorf("esc should clear search, got mode %v term %q", m.Mode(), m.State().Search)
	}
}

func TestModel_PagingAndPageSize(t *testing.T) {
	api := &fakeAPI{}
	for i := range 25 {
		api.contacts = append(api.contacts, person(string(rune('a'+i)), "p"))
	}
	m := loadedModel(t, api)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.State().Page != 2 || len(m.State().Visible()) != 5 {
		t.Fatalf("page %d rows %d, want page 2 with 5 rows", m.State().Page, len(m.State().Visible()))
	}

	m = step(t, m, runes("s"))
	if m.State().PageSize != 25 || m.State().Page != 0 {
		t.Errorf("page size %d page %d, want 25 and 0", m.State().PageSize, m.State().Page)
	}
}

func TestModel_CreateInvalidShowsFieldErrors(t *testing.T) {
	api := &fakeAPI{}
	m := loadedModel(t, api)

	m = step(t, m, runes("n"))
	if m.Mode() != ModeForm {
		t.Fatalf("mode = %v, want form", m.Mode())
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(m.form.form.Errors) != 6 {
		t.Errorf("errors = %v, want all six fields", m.form.form.Errors)
	}
	if m.form.form.Submitting {
		t.Error("invalid form must not submit")
	}
	if len(api.contacts) != 0 {
		t.Error("no contact should be created")
	}
}

func fillForm(t *testing.T, m Model, values ...string) Model {
	t.Helper()
	for i, v := range values {
		for _, r := range v {
			m = step(t, m, runes(string(r)))
		}
		if i < len(values)-1 {
			m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
		}
	}
	return m
}

func TestModel_CreatePrependsContact(t *testing.T) {
	api := &fakeAPI{contacts: []*domain.Contact{person("a", "alice")}}
	m := loadedModel(t, api)

	m = step(t, m, runes("n"))
	m = fillForm(t, m, "Ada", "Lovelace", "ada@example.com", "5551234567", "Analytical", "Engineer")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.form.form.Submitting {
		t.Fatal("valid form should be submitting")
	}
	m = step(t, m, createContact(api, time.Second, m.form.form.Fields)())

	if m.Mode() != ModeList {
		t.Errorf("mode = %v, want list after save", m.Mode())
	}
	if got := m.State().Contacts[0].FirstName; got != "Ada" {
		t.Errorf("first contact = %s, want Ada", got)
	}
}

func TestModel_CreateFailureKeepsFormOpen(t *testing.T) {
	dup := &client.APIError{Status: http.StatusBadRequest, Message: "Contact with this email already exists"}
	api := &fakeAPI{createErr: dup}
	m := loadedModel(t, api)

	m = step(t, m, runes("n"))
	m = fillForm(t, m, "Ada", "Lovelace", "ada@example.com", "5551234567", "Analytical", "Engineer")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, next.(Model), createContact(api, time.Second, m.form.form.Fields)())

	if m.Mode() != ModeForm {
		t.Fatalf("mode = %v, want form to stay open", m.Mode())
	}
	if m.form.form.Submitting {
		t.Error("failed submit should re-enable the form")
	}
	if !errors.Is(m.form.form.SubmitErr, dup) {
		t.Errorf("submit error = %v, want duplicate", m.form.form.SubmitErr)
	}
}

func TestModel_EditReplacesContact(t *testing.T) {
	api := &fakeAPI{contacts: []*domain.Contact{person("a", "alice")}}
	m := loadedModel(t, api)

	m = step(t, m, runes("e"))
	if m.form.form.ID != "a" {
		t.Fatalf("editing %q, want a", m.form.form.ID)
	}
	m = fillForm(t, m, "x")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	m = step(t, m, updateContact(api, time.Second, "a", m.form.form.Fields)())

	if got := m.State().Contacts[0].FirstName; got != "alicex" {
		t.Errorf("first name = %s, want alicex", got)
	}
}

func TestModel_DeleteAfterConfirm(t *testing.T) {
	api := &fakeAPI{contacts: []*domain.Contact{person("a", "alice"), person("b", "bob")}}
	m := loadedModel(t, api)

	m = step(t, m, runes("d"))
	if m.Mode() != ModeConfirm {
		t.Fatalf("mode = %v, want confirm", m.Mode())
	}
	next, cmd := m.Update(runes("y"))
	if !next.(Model).busy {
		t.Error("delete should be in flight")
	}
	m = step(t, next.(Model), cmd())

	if got := len(m.State().Contacts); got != 1 {
		t.Errorf("contacts = %d, want 1", got)
	}
	if m.busy {
		t.Error("delete should no longer be in flight")
	}
}

func TestModel_DeleteCancelled(t *testing.T) {
	api := &fakeAPI{contacts: []*domain.Contact{person("a", "alice")}}
	m := loadedModel(t, api)

	m = step(t, m, runes("d"))
	m = step(t, m, runes("n"))

	if m.Mode() != ModeList || len(m.State().Contacts) != 1 {
		t.Errorf("cancel should keep the contact, mode %v", m.Mode())
	}
}

func TestModel_DeleteNotFoundRefetches(t *testing.T) {
	api := &fakeAPI{contacts: []*domain.Contact{person("a", "alice")}}
	m := loadedModel(t, api)
	api.contacts = nil

	m = step(t, m, runes("d"))
	next, cmd := m.Update(runes("y"))
	m = next.(Model)
	next, cmd = m.Update(cmd())
	m = next.(Model)

	if !m.State().Stale || !m.State().Loading {
		t.Fatal("a 404 should mark the list stale and start a refetch")
	}
	if cmd == nil {
		t.Fatal("expected refetch command")
	}
	m = step(t, m, fetchContacts(api, time.Second)())
	if len(m.State().Contacts) != 0 || m.State().Stale {
		t.Errorf("refetch should reconcile, got %d contacts stale=%v", len(m.State().Contacts), m.State().Stale)
	}
}

func TestModel_FirstLoadSelectsTopRow(t *testing.T) {
	api := &fakeAPI{contacts: []*domain.Contact{person("a", "alice"), person("b", "bob")}}
	m := loadedModel(t, api)

	if m.selected() == nil || m.selected().ID != "a" {
		t.Fatalf("selected = %v, want a", m.selected())
	}

	m = step(t, m, runes("e"))
	if m.Mode() != ModeForm || m.form.form.ID != "a" {
		t.Errorf("mode %v editing %q, want form for a", m.Mode(), m.form.form.ID)
	}
}

// startDelete confirms a delete of the top row and returns the pending request.
func startDelete(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	m = step(t, m, runes("d"))
	next, cmd := m.Update(runes("y"))
	m = next.(Model)
	if !m.busy || cmd == nil {
		t.Fatal("delete should be in flight")
	}
	return m, cmd
}

func TestModel_DeleteFailureLeavesOpenFormAlone(t *testing.T) {
	api := &fakeAPI{contacts: []*domain.Contact{person("a", "alice")}}
	m, _ := startDelete(t, loadedModel(t, api))

	m = step(t, m, runes("n"))
	m = fillForm(t, m, "Z")
	m = step(t, m, mutationFailedMsg{op: opDelete, err: errors.New("connection refused")})

	if m.Mode() != ModeForm {
		t.Fatalf("mode = %v, want form to stay open", m.Mode())
	}
	if m.form.form.Fields.FirstName != "Z" || m.form.form.SubmitErr != nil {
		t.Errorf("form = %+v, want draft untouched", m.form.form)
	}
	if m.busy {
		t.Error("delete should no longer be in flight")
	}
	if m.State().Err == nil {
		t.Error("delete error should be recorded in the list state")
	}
}

func TestModel_DeleteFailureKeepsCreateSubmitting(t *testing.T) {
	api := &fakeAPI{contacts: []*domain.Contact{person("a", "alice")}}
	m, _ := startDelete(t, loadedModel(t, api))

	m = step(t, m, runes("n"))
	m = fillForm(t, m, "Ada", "Lovelace", "ada@example.com", "5551234567", "Analytical", "Engineer")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, m, mutationFailedMsg{op: opDelete, err: errors.New("connection refused")})

	if !m.form.form.Submitting {
		t.Error("create is still in flight and must stay submitting")
	}
	if _, ok := m.form.form.Submit(); ok {
		t.Error("a second submit must be refused while the first is in flight")
	}
}

func TestModel_CreateFailureKeepsDeleteBusy(t *testing.T) {
	dup := &client.APIError{Status: http.StatusBadRequest, Message: "Contact with this email already exists"}
	api := &fakeAPI{contacts: []*domain.Contact{person("a", "alice")}, createErr: dup}
	m, _ := startDelete(t, loadedModel(t, api))

	m = step(t, m, runes("n"))
	m = fillForm(t, m, "Ada", "Lovelace", "ada@example.com", "5551234567", "Analytical", "Engineer")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, m, createContact(api, time.Second, m.form.form.Fields)())

	if !m.busy {
		t.Error("a create failure must not clear the pending delete")
	}
	if !errors.Is(m.form.form.SubmitErr, dup) {
		t.Errorf("submit error = %v, want duplicate", m.form.form.SubmitErr)
	}
}

func TestModel_Teatest_LoadsAndQuits(t *testing.T) {
	api := &fakeAPI{contacts: []*domain.Contact{person("a", "Grace")}}
	m := NewModel(api, Options{PageSize: 10, Timeout: time.Second})

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 30))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Grace"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(runes("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final := tm.FinalModel(t).(Model)
	if final.State().Loading {
		t.Error("final model should have finished loading")
	}
	if got := len(final.State().Contacts); got != 1 {
		t.Errorf("contacts = %d, want 1", got)
	}
}
