package handlers

import (
	"context"
	"net/http"

	"github.com/avelichko/contactkeeper/internal/handlers/render"
	"github.com/avelichko/contactkeeper/internal/models"
)

type birthdayService interface {
	UpcomingBirthdays(ctx context.Context) ([]models.Contact, error)
}

type BirthdayHandler struct {
	contacts birthdayService
}

func NewBirthday(contacts birthdayService) *BirthdayHandler {
	return &BirthdayHandler{contacts: contacts}
}

func (h *BirthdayHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /upcoming_birthdays", h.upcoming)

	return mux
}

func (h *BirthdayHandler) upcoming(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.UpcomingBirthdays(r.Context())
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, toContactResponses(contacts))
}
