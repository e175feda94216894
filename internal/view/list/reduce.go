package list

import (
	"slices"

	"github.com/connex/contact-manager/internal/core/domain"
)

// Action is an event applied to State by Reduce.
type Action interface {
	isAction()
}

type (
	// Loading marks a fetch in flight.
	Loading struct{}
	// Loaded replaces the contact list with a fresh fetch.
	Loaded struct{ Contacts []*domain.Contact }
	// LoadFailed records a failed fetch.
	LoadFailed struct{ Err error }
	// Search sets the filter term.
	Search struct{ Term string }
	// ToggleSort sorts by Column, flipping direction if it is already active.
	ToggleSort struct{ Column string }
	// SetPage moves to page N (zero-based).
	SetPage struct{ N int }
	// SetPageSize changes rows per page.
	SetPageSize struct{ Size int }
	// Created adds a contact returned by the server.
	Created struct{ Contact *domain.Contact }
	// Updated replaces a contact with the server's copy.
	Updated struct{ Contact *domain.Contact }
	// Deleted removes a contact the server confirmed as deleted.
	Deleted struct{ ID string }
	// MutationFailed records a failed create, update or delete. NotFound
	// marks the local list as stale.
	MutationFailed struct {
		Err      error
		NotFound bool
	}
	// DismissError clears the error banner.
	DismissError struct{}
)

func (Loading) isAction()        {}
func (Loaded) isAction()         {}
func (LoadFailed) isAction()     {}
func (Search) isAction()         {}
func (ToggleSort) isAction()     {}
func (SetPage) isAction()        {}
func (SetPageSize) isAction()    {}
func (Created) isAction()        {}
func (Updated) isAction()        {}
func (Deleted) isAction()        {}
func (MutationFailed) isAction() {}
func (DismissError) isAction()   {}

// Reduce applies a to s and returns the new state. s is not modified.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Loading:
		s.Loading = true
	case Loaded:
		s.Contacts = slices.Clone(a.Contacts)
		s.Loading = false
		s.Err = nil
		s.Stale = false
	case LoadFailed:
		s.Loading = false
		s.Err = a.Err
	case Search:
		s.Search = a.Term
		s.Page = 0
	case ToggleSort:
		if !slices.Contains(domain.FieldNames, a.Column) {
			return s
		}
		if s.SortColumn == a.Column && s.SortDir == Asc {
			s.SortDir = Desc
		} else {
			s.SortDir = Asc
		}
		s.SortColumn = a.Column
	case SetPage:
		s.Page = a.N
	case SetPageSize:
		if !slices.Contains(PageSizes, a.Size) {
			return s
		}
		s.PageSize = a.Size
		s.Page = 0
	case Created:
		if a.Contact == nil {
			return s
		}
		if i := indexOf(s.Contacts, a.Contact.ID); i >= 0 {
			s.Contacts = replaceAt(s.Contacts, i, a.Contact)
		} else {
			s.Contacts = append([]*domain.Contact{a.Contact}, s.Contacts...)
		}
		s.Err = nil
	case Updated:
		if a.Contact == nil {
			return s
		}
		if i := indexOf(s.Contacts, a.Contact.ID); i >= 0 {
			s.Contacts = replaceAt(s.Contacts, i, a.Contact)
		}
		s.Err = nil
	case Deleted:
		if i := indexOf(s.Contacts, a.ID); i >= 0 {
			s.Contacts = slices.Delete(slices.Clone(s.Contacts), i, i+1)
		}
		s.Err = nil
	case MutationFailed:
		s.Err = a.Err
		s.Stale = s.Stale || a.NotFound
	case DismissError:
		s.Err = nil
	}
	return clampPage(s)
}

func clampPage(s State) State {
	last := s.PageCount() - 1
	s.Page = max(0, min(s.Page, last))
	return s
}

func indexOf(contacts []*domain.Contact, id string) int {
	return slices.IndexFunc(contacts, func(c *domain.Contact) bool { return c.ID == id })
}

func replaceAt(contacts []*domain.Contact, i int, c *domain.Contact) []*domain.Contact {
	out := slices.Clone(contacts)
	out[i] = c
	return out
}
