package handler

import (
	"github.com/connex/contact-manager/internal/core/domain"
)

// --- Request / Response types ---

type contactRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Email     string `json:"email"     validate:"required,basicemail"`
	Phone     string `json:"phone"     validate:"required,len=10"`
	Company   string `json:"company"   validate:"required"`
	JobTitle  string `json:"jobTitle"  validate:"required"`
}

type contactResponse struct {
	Message string          `json:"message"`
	Contact *domain.Contact `json:"contact"`
}

type listContactsResponse struct {
	Message     string            `json:"message"`
	Contacts    []*domain.Contact `json:"contacts"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
}

type contactEventsResponse struct {
	Message string                 `json:"message"`
	Events  []*domain.ContactEvent `json:"events"`
}

type messageResponse struct {
	Message string `json:"message"`
}

const (
	msgAllContacts    = "All Contacts"
	msgCreated        = "Contact Created Successfully"
	msgReplayed       = "Contact Already Created"
	msgDetails        = "Contact Details"
	msgUpdated        = "Contact Updated Successfully"
	msgDeleted        = "Contact Deleted Successfully"
	msgContactHistory = "Contact History"
)
