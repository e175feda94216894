// Package tui implements the terminal contact manager: a searchable,
// sortable, paginated table with modal create/edit forms and delete
// confirmation, backed by the contacts REST API.
package tui

import (
	"github.com/connex/contact-manager/internal/core/domain"
)

// Mode is the active screen of the model.
type Mode int

const (
	ModeList    Mode = iota // Browsing the table.
	ModeSearch              // Typing a search term.
	ModeForm                // Create/edit dialog open.
	ModeConfirm             // Delete confirmation open.
)

// contactsLoadedMsg carries a fresh copy of every contact.
type contactsLoadedMsg struct {
	contacts []*domain.Contact
}

// loadFailedMsg reports a failed list fetch.
type loadFailedMsg struct {
	err error
}

// contactSavedMsg reports a successful create or update.
type contactSavedMsg struct {
	contact *domain.Contact
	created bool
}

// contactDeletedMsg reports a delete the server confirmed.
type contactDeletedMsg struct {
	id string
}

// mutationOp names the request a mutationFailedMsg belongs to.
type mutationOp string

const (
	opCreate mutationOp = "create"
	opUpdate mutationOp = "update"
	opDelete mutationOp = "delete"
)

// mutationFailedMsg reports a failed create, update or delete.
type mutationFailedMsg struct {
	op  mutationOp
	err error
}
