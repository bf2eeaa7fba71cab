package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/avelichko/contactkeeper/internal/handlers/render"
	"github.com/avelichko/contactkeeper/internal/handlers/userctx"
	"github.com/avelichko/contactkeeper/internal/models"
)

// maxAvatarSize caps the multipart memory buffer for avatar uploads
const maxAvatarSize = 5 << 20 // 5 MiB

type avatarService interface {
	Upload(ctx context.Context, user models.User, body io.Reader, contentType string) (models.User, error)
}

type UserHandler struct {
	avatars avatarService
}

func NewUser(avatars avatarService) *UserHandler {
	return &UserHandler{avatars: avatars}
}

func (h *UserHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.me)
	mux.HandleFunc("PUT /avatar", h.uploadAvatar)

	return mux
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	render.JSON(w, toUserResponse(user))
}

func (h *UserHandler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		render.ServiceError(w, "Malformed multipart form", http.StatusUnprocessableEntity)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		render.ServiceError(w, "file field is required", http.StatusUnprocessableEntity)
		return
	}
	defer file.Close() //nolint:errcheck

	updated, err := h.avatars.Upload(r.Context(), user, file, header.Header.Get("Content-Type"))
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, toUserResponse(updated))
}
