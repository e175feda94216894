package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/connex/contact-manager/internal/api/metrics"
	"github.com/connex/contact-manager/internal/core/domain"
	"github.com/connex/contact-manager/internal/core/ports"
)

// HeaderIdempotencyKey lets a client retry a create without duplicating the contact.
const HeaderIdempotencyKey = "Idempotency-Key"

// ContactHandler handles HTTP requests for contact operations.
type ContactHandler struct {
	service ports.ContactService
}

func NewContactHandler(service ports.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// List handles GET /api/contacts.
//
// @Summary      List all contacts
// @Tags         contacts
// @Produce      json
// @Param        page  query     int  false  "Page number (default 1)"
// @Success      200   {object}  listContactsResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/contacts [get]
func (h *ContactHandler) List(c echo.Context) error {
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return h.fail("list", domain.ErrInvalidPage)
		}
		page = n
	}

	res, err := h.service.List(c.Request().Context(), page)
	if err != nil {
		return h.fail("list", err)
	}

	return c.JSON(http.StatusOK, listContactsResponse{
		Message:     msgAllContacts,
		Contacts:    nonNilContacts(res.Contacts),
		TotalPages:  res.TotalPages,
		CurrentPage: res.CurrentPage,
	})
}

// Create handles POST /api/contacts.
//
// @Summary      Create a contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string          false  "Client-generated key making retries safe"
// @Param        body             body      contactRequest  true   "Contact payload"
// @Success      201              {object}  contactResponse
// @Success      200              {object}  contactResponse  "Replay of an earlier create with the same key"
// @Failure      400              {object}  map[string]string
// @Failure      500              {object}  map[string]string
// @Router       /api/contacts [post]
func (h *ContactHandler) Create(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return h.fail("create", echo.NewHTTPError(http.StatusBadRequest, "invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return h.fail("create", err)
	}

	res, err := h.service.Create(c.Request().Context(), ports.CreateContactInput{
		Fields:         toFields(req),
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
		RequestID:      requestID(c),
	})
	if err != nil {
		return h.fail("create", err)
	}

	metrics.ContactsCreatedTotal.WithLabelValues(strconv.FormatBool(res.Replayed)).Inc()
	if res.Replayed {
		return c.JSON(http.StatusOK, contactResponse{Message: msgReplayed, Contact: res.Contact})
	}
	return c.JSON(http.StatusCreated, contactResponse{Message: msgCreated, Contact: res.Contact})
}

// Get handles GET /api/contacts/:id.
//
// @Summary      Get a contact by id
// @Tags         contacts
// @Produce      json
// @Param        id   path      string  true  "Contact id"
// @Success      200  {object}  contactResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/contacts/{id} [get]
func (h *ContactHandler) Get(c echo.Context) error {
	contact, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail("get", err)
	}
	return c.JSON(http.StatusOK, contactResponse{Message: msgDetails, Contact: contact})
}

// Update handles PATCH /api/contacts/:id.
//
// @Summary      Update a contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Contact id"
// @Param        body  body      contactRequest  true  "All six contact fields"
// @Success      200   {object}  contactResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/contacts/{id} [patch]
func (h *ContactHandler) Update(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return h.fail("update", echo.NewHTTPError(http.StatusBadRequest, "invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return h.fail("update", err)
	}

	contact, err := h.service.Update(c.Request().Context(), ports.UpdateContactInput{
		ID:        c.Param("id"),
		Fields:    toFields(req),
		RequestID: requestID(c),
	})
	if err != nil {
		return h.fail("update", err)
	}

	metrics.ContactsUpdatedTotal.Inc()
	return c.JSON(http.StatusOK, contactResponse{Message: msgUpdated, Contact: contact})
}

// Delete handles DELETE /api/contacts/:id.
//
// @Summary      Delete a contact
// @Tags         contacts
// @Produce      json
// @Param        id   path      string  true  "Contact id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/contacts/{id} [delete]
func (h *ContactHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id"), requestID(c)); err != nil {
		return h.fail("delete", err)
	}

	metrics.ContactsDeletedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msgDeleted})
}

// History handles GET /api/contacts/:id/events.
//
// @Summary      List the audit trail of a contact
// @Tags         contacts
// @Produce      json
// @Param        id   path      string  true  "Contact id"
// @Success      200  {object}  contactEventsResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/contacts/{id}/events [get]
func (h *ContactHandler) History(c echo.Context) error {
	events, err := h.service.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail("history", err)
	}
	return c.JSON(http.StatusOK, contactEventsResponse{Message: msgContactHistory, Events: nonNilEvents(events)})
}

// fail counts err and hands it to the central error handler.
func (h *ContactHandler) fail(op string, err error) error {
	metrics.ContactErrorsTotal.WithLabelValues(op, errorReason(err)).Inc()
	return err
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
