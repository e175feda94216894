package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/connex/contact-manager/internal/client"
	"github.com/connex/contact-manager/internal/core/domain"
)

// ContactAPI is the subset of the API client the TUI drives.
type ContactAPI interface {
	List(ctx context.Context) (*client.ListResult, error)
	Create(ctx context.Context, fields domain.ContactFields) (*domain.Contact, error)
	Update(ctx context.Context, id string, fields domain.ContactFields) (*domain.Contact, error)
	Delete(ctx context.Context, id string) error
}

func fetchContacts(api ContactAPI, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		res, err := api.List(ctx)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return contactsLoadedMsg{contacts: res.Contacts}
	}
}

func createContact(api ContactAPI, timeout time.Duration, fields domain.ContactFields) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		c, err := api.Create(ctx, fields)
		if err != nil {
			return mutationFailedMsg{op: opCreate, err: err}
		}
		return contactSavedMsg{contact: c, created: true}
	}
}

func updateContact(api ContactAPI, timeout time.Duration, id string, fields domain.ContactFields) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		c, err := api.Update(ctx, id, fields)
		if err != nil {
			return mutationFailedMsg{op: opUpdate, err: err}
		}
		return contactSavedMsg{contact: c}
	}
}

func deleteContact(api ContactAPI, timeout time.Duration, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := api.Delete(ctx, id); err != nil {
			return mutationFailedMsg{op: opDelete, err: err}
		}
		return contactDeletedMsg{id: id}
	}
}
