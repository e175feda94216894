// Package list holds the state of the contact table: the fetched contacts,
// the search term, the sort order, and the pagination window. State changes
// only through Reduce, so every transition is a plain value in, value out.
package list

import (
	"slices"
	"strings"

	"github.com/connex/contact-manager/internal/core/domain"
)

// PageSizes are the selectable rows-per-page options.
var PageSizes = []int{10, 25, 100}

// DefaultPageSize is used when no valid page size is configured.
const DefaultPageSize = 10

// Direction is the sort direction of the active column.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// State is the full view state of the contact table.
type State struct {
	Contacts []*domain.Contact
	Search   string
	// SortColumn is one of domain.FieldNames, or empty for server order.
	SortColumn string
	SortDir    Direction
	Page       int
	PageSize   int
	Loading    bool
	Err        error
	// Stale is set when a mutation hit a contact the server no longer has;
	// the owner should refetch.
	Stale bool
}

// New returns an empty state using pageSize when it is one of PageSizes.
func New(pageSize int) State {
	if !slices.Contains(PageSizes, pageSize) {
		pageSize = DefaultPageSize
	}
	return State{PageSize: pageSize}
}

// Filtered returns the contacts matching the search term in display order,
// before pagination.
func (s State) Filtered() []*domain.Contact {
	term := strings.ToLower(s.Search)
	out := make([]*domain.Contact, 0, len(s.Contacts))
	for _, c := range s.Contacts {
		if matches(c, term) {
			out = append(out, c)
		}
	}

	if s.SortColumn == "" {
		return out
	}
	slices.SortStableFunc(out, func(a, b *domain.Contact) int {
		cmp := strings.Compare(strings.ToLower(a.Get(s.SortColumn)), strings.ToLower(b.Get(s.SortColumn)))
		if s.SortDir == Desc {
			return -cmp
		}
		return cmp
	})
	return out
}

// Visible returns the rows of the current page.
func (s State) Visible() []*domain.Contact {
	rows := s.Filtered()
	start := s.Page * s.size()
	if start >= len(rows) {
		return nil
	}
	end := min(start+s.size(), len(rows))
	return rows[start:end]
}

// PageCount is the number of pages of the filtered list, never less than one.
func (s State) PageCount() int {
	return pageCount(len(s.Filtered()), s.size())
}

func (s State) size() int {
	if s.PageSize <= 0 {
		return DefaultPageSize
	}
	return s.PageSize
}

func pageCount(n, size int) int {
	if n == 0 {
		return 1
	}
	return (n + size - 1) / size
}

func matches(c *domain.Contact, term string) bool {
	if term == "" {
		return true
	}
	for _, name := range domain.FieldNames {
		if strings.Contains(strings.ToLower(c.Get(name)), term) {
			return true
		}
	}
	return false
}
