package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emailcraft/studio/internal/contacts"
	"github.com/emailcraft/studio/internal/domain"
	"github.com/emailcraft/studio/internal/pkg/httputil"
)

// GetLists returns all contact lists.
func (h *Handlers) GetLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.contacts.Lists(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if lists == nil {
		lists = []domain.ContactList{}
	}
	httputil.OK(w, lists)
}

// CreateList creates a list, optionally with initial contacts.
func (h *Handlers) CreateList(w http.ResponseWriter, r *http.Request) {
	var input contacts.CreateInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	l, err := h.contacts.CreateList(r.Context(), input)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.Created(w, l)
}

// GetList returns one list with its contacts.
func (h *Handlers) GetList(w http.ResponseWriter, r *http.Request) {
	l, err := h.contacts.GetList(r.Context(), chi.URLParam(r, "listID"))
	if err != nil {
		h.listError(w, err)
		return
	}
	httputil.OK(w, l)
}

// RenameList updates a list's name.
func (h *Handlers) RenameList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := h.contacts.RenameList(r.Context(), chi.URLParam(r, "listID"), req.Name); err != nil {
		h.listError(w, err)
		return
	}
	httputil.NoContent(w)
}

// DeleteList removes a list and its contacts.
func (h *Handlers) DeleteList(w http.ResponseWriter, r *http.Request) {
	if err := h.contacts.DeleteList(r.Context(), chi.URLParam(r, "listID")); err != nil {
		h.listError(w, err)
		return
	}
	httputil.NoContent(w)
}

// AddContact appends one contact to a list.
func (h *Handlers) AddContact(w http.ResponseWriter, r *http.Request) {
	var input contacts.ContactInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	c, err := h.contacts.AddContact(r.Context(), chi.URLParam(r, "listID"), input)
	if err != nil {
		h.listError(w, err)
		return
	}
	httputil.Created(w, c)
}

// UpdateContact replaces a contact's fields.
func (h *Handlers) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var input contacts.ContactInput
	if !httputil.Decode(w, r, &input) {
		return
	}
	c := &domain.Contact{
		ID:        chi.URLParam(r, "contactID"),
		ListID:    chi.URLParam(r, "listID"),
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Company:   input.Company,
		Position:  input.Position,
	}
	if err := h.contacts.UpdateContact(r.Context(), c); err != nil {
		h.listError(w, err)
		return
	}
	httputil.OK(w, c)
}

// DeleteContact removes one contact from a list.
func (h *Handlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	err := h.contacts.DeleteContact(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "contactID"))
	if err != nil {
		h.listError(w, err)
		return
	}
	httputil.NoContent(w)
}

// ImportContacts ingests a CSV upload into the list. Accepts either a
// multipart form with a "file" part or a raw CSV body.
func (h *Handlers) ImportContacts(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")

	body := r.Body
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		body = file
	}

	res, err := h.contacts.ImportCSV(r.Context(), listID, body)
	if err != nil {
		if errors.Is(err, contacts.ErrNoHeader) || errors.Is(err, contacts.ErrNoEmailColumn) {
			httputil.BadRequest(w, err.Error())
			return
		}
		h.listError(w, err)
		return
	}
	httputil.OK(w, res)
}

// ExportContacts streams the list as a CSV download.
func (h *Handlers) ExportContacts(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "contacts-"+listID+".csv"))
	if err := h.contacts.ExportCSV(r.Context(), listID, w); err != nil {
		// Headers may already be out; best effort.
		httputil.InternalError(w, err)
	}
}

// VerifyList runs address verification over the whole list.
func (h *Handlers) VerifyList(w http.ResponseWriter, r *http.Request) {
	res, err := h.contacts.VerifyList(r.Context(), chi.URLParam(r, "listID"))
	if err != nil {
		h.listError(w, err)
		return
	}
	httputil.OK(w, res)
}

func (h *Handlers) listError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contacts.ErrListNotFound), errors.Is(err, contacts.ErrContactNotFound):
		httputil.NotFound(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}
