package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrContactNotFound  = errors.New("contact not found")
	ErrDuplicateEmail   = errors.New("contact with this email already exists")
	ErrMissingContactID = errors.New("contact id is required")
	ErrInvalidPage      = errors.New("page number must be a positive integer")
)

// Field names as they appear on the wire, in display order.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldCompany   = "company"
	FieldJobTitle  = "jobTitle"
)

// FieldNames lists the six business fields of a contact in display order.
var FieldNames = []string{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldCompany,
	FieldJobTitle,
}

// ContactFields holds the user-editable part of a contact.
type ContactFields struct {
	FirstName string `json:"firstName" bson:"firstName" validate:"required"`
	LastName  string `json:"lastName"  bson:"lastName"  validate:"required"`
	Email     string `json:"email"     bson:"email"     validate:"required,basicemail"`
	Phone     string `json:"phone"     bson:"phone"     validate:"required,len=10"`
	Company   string `json:"company"   bson:"company"   validate:"required"`
	JobTitle  string `json:"jobTitle"  bson:"jobTitle"  validate:"required"`
}

// Get returns the value of the named field, or "" for unknown names.
func (f ContactFields) Get(name string) string {
	switch name {
	case FieldFirstName:
		return f.FirstName
	case FieldLastName:
		return f.LastName
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldCompany:
		return f.Company
	case FieldJobTitle:
		return f.JobTitle
	}
	return ""
}

// Set assigns the named field. Unknown names are ignored.
func (f *ContactFields) Set(name, value string) {
	switch name {
	case FieldFirstName:
		f.FirstName = value
	case FieldLastName:
		f.LastName = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldCompany:
		f.Company = value
	case FieldJobTitle:
		f.JobTitle = value
	}
}

// MissingAny reports whether any of the six fields is empty.
func (f ContactFields) MissingAny() bool {
	for _, name := range FieldNames {
		if f.Get(name) == "" {
			return true
		}
	}
	return false
}

// Contact is a persisted record of a person's identifying and professional details.
type Contact struct {
	ID string `json:"_id"`
	ContactFields
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RequiredFieldsMessage is reported when any of the six fields is empty.
const RequiredFieldsMessage = "All fields (firstName, lastName, email, phone, company, jobTitle) are required"

// ValidationError carries one message per invalid field. Message, when set,
// summarises the failure and takes precedence in Error.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.Fields[name])
	}
	return strings.Join(msgs, "; ")
}
