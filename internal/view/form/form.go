// Package form holds the state of the create/edit contact dialog.
package form

import (
	"github.com/connex/contact-manager/internal/core/domain"
	"github.com/connex/contact-manager/internal/core/validation"
)

// Mode tells whether the form creates a new contact or edits an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Form is the dialog state. Methods return updated copies.
type Form struct {
	Mode Mode
	// ID is the contact being edited; empty in create mode.
	ID         string
	Fields     domain.ContactFields
	Errors     map[string]string
	Submitting bool
	SubmitErr  error
}

// NewCreate returns an empty form for a new contact.
func NewCreate() Form {
	return Form{Mode: ModeCreate}
}

// NewEdit returns a form pre-populated from c.
func NewEdit(c *domain.Contact) Form {
	return Form{Mode: ModeEdit, ID: c.ID, Fields: c.ContactFields}
}

// Title is the dialog heading.
func (f Form) Title() string {
	if f.Mode == ModeEdit {
		return "Edit Contact"
	}
	return "Add New Contact"
}

// SetField updates one field and clears its error.
func (f Form) SetField(name, value string) Form {
	f.Fields.Set(name, value)
	if _, ok := f.Errors[name]; ok {
		errs := make(map[string]string, len(f.Errors))
		for k, v := range f.Errors {
			if k != name {
				errs[k] = v
			}
		}
		f.Errors = errs
	}
	return f
}

// Validate checks all six fields and returns the form with Errors set.
func (f Form) Validate() Form {
	f.Errors = validation.Check(f.Fields)
	return f
}

// Valid reports whether the last validation found no errors.
func (f Form) Valid() bool {
	return len(f.Errors) == 0
}

// Submit validates the form. When valid it enters the submitting state and
// returns true; the caller then sends the request. A form already
// submitting is returned unchanged with false.
func (f Form) Submit() (Form, bool) {
	if f.Submitting {
		return f, false
	}
	f = f.Validate()
	if !f.Valid() {
		return f, false
	}
	f.Submitting = true
	f.SubmitErr = nil
	return f, true
}

// Succeeded ends a submission that the server accepted.
func (f Form) Succeeded() Form {
	f.Submitting = false
	f.SubmitErr = nil
	return f
}

// Failed ends a submission the server rejected and keeps err for display.
// Per-field messages reported by the server are merged into Errors.
func (f Form) Failed(err error, fields map[string]string) Form {
	f.Submitting = false
	f.SubmitErr = err
	if len(fields) > 0 {
		errs := make(map[string]string, len(f.Errors)+len(fields))
		for k, v := range f.Errors {
			errs[k] = v
		}
		for k, v := range fields {
			errs[k] = v
		}
		f.Errors = errs
	}
	return f
}
