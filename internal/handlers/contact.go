package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/contactkeeper/internal/apperrors"
	"github.com/avelichko/contactkeeper/internal/handlers/render"
	"github.com/avelichko/contactkeeper/internal/handlers/userctx"
	"github.com/avelichko/contactkeeper/internal/models"
	"github.com/avelichko/contactkeeper/internal/service/contact"
)

type contactService interface {
	Create(ctx context.Context, user models.User, params contact.ContactParams) (models.Contact, error)
	Get(ctx context.Context, id uuid.UUID, user models.User) (models.Contact, error)
	List(ctx context.Context, user models.User, params contact.ListParams) ([]models.Contact, error)
	Update(ctx context.Context, id uuid.UUID, user models.User, params contact.ContactParams) (models.Contact, error)
	Delete(ctx context.Context, id uuid.UUID, user models.User) (models.Contact, error)
}

type ContactHandler struct {
	contacts contactService
}

func NewContact(contacts contactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (h *ContactHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{$}", h.create)
	mux.HandleFunc("GET /{$}", h.list)
	mux.HandleFunc("GET /{id}", h.get)
	mux.HandleFunc("PUT /{id}", h.update)
	mux.HandleFunc("DELETE /{id}", h.delete)

	return mux
}

// birthdayLayout is the wire format for contact birthdays
const birthdayLayout = "2006-01-02"

type ContactRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=150"`
	Surname  string `json:"surname" validate:"required,min=2,max=150"`
	Email    string `json:"email" validate:"required,email,max=150"`
	Phone    string `json:"phone" validate:"required,min=6,max=30"`
	Birthday string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Notes    string `json:"notes" validate:"max=500"`
}

func (req ContactRequest) toParams() contact.ContactParams {
	params := contact.ContactParams{
		Name:    req.Name,
		Surname: req.Surname,
		Email:   req.Email,
		Phone:   req.Phone,
		Notes:   req.Notes,
	}

	if req.Birthday != "" {
		// Validated with the datetime tag already, parse can not fail
		day, _ := time.Parse(birthdayLayout, req.Birthday)
		params.Birthday = &day
	}

	return params
}

type ContactResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Birthday string `json:"birthday,omitempty"`
	Notes    string `json:"notes"`
}

func toContactResponse(c models.Contact) ContactResponse {
	resp := ContactResponse{
		ID:      c.ID.String(),
		Name:    c.Name,
		Surname: c.Surname,
		Email:   c.Email,
		Phone:   c.Phone,
		Notes:   c.Notes,
	}
	if c.Birthday != nil {
		resp.Birthday = c.Birthday.Format(birthdayLayout)
	}
	return resp
}

func toContactResponses(contacts []models.Contact) []ContactResponse {
	list := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		list = append(list, toContactResponse(c))
	}
	return list
}

func (h *ContactHandler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	data, err := render.BindAndValidate[ContactRequest](w, r)
	if err != nil {
		return
	}

	created, err := h.contacts.Create(r.Context(), user, data.toParams())
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrContactAlreadyExists):
			render.ServiceError(w, "Contact with this email or phone already exists", http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, toContactResponse(created), http.StatusCreated)
}

func (h *ContactHandler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	params := contact.ListParams{Query: r.URL.Query().Get("query")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			render.ServiceError(w, "limit must be a non-negative integer", http.StatusUnprocessableEntity)
			return
		}
		params.Limit = limit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			render.ServiceError(w, "offset must be a non-negative integer", http.StatusUnprocessableEntity)
			return
		}
		params.Offset = offset
	}

	contacts, err := h.contacts.List(r.Context(), user, params)
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, toContactResponses(contacts))
}

func (h *ContactHandler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Contact not found", http.StatusNotFound)
		return
	}

	found, err := h.contacts.Get(r.Context(), id, user)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrContactNotFound):
			render.ServiceError(w, "Contact not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, toContactResponse(found))
}

func (h *ContactHandler) update(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Contact not found", http.StatusNotFound)
		return
	}

	data, err := render.BindAndValidate[ContactRequest](w, r)
	if err != nil {
		return
	}

	updated, err := h.contacts.Update(r.Context(), id, user, data.toParams())
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrContactNotFound):
			render.ServiceError(w, "Contact not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrContactAlreadyExists):
			render.ServiceError(w, "Contact with this email or phone already exists", http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, toContactResponse(updated), http.StatusAccepted)
}

func (h *ContactHandler) delete(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Contact not found", http.StatusNotFound)
		return
	}

	if _, err := h.contacts.Delete(r.Context(), id, user); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrContactNotFound):
			render.ServiceError(w, "Contact not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
