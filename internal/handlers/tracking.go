package handlers

import (
	"net/http"

	"github.com/avelichko/contactkeeper/internal/logger"
)

// pixelGIF is a transparent 1x1 GIF served from the confirmation mail
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type TrackingHandler struct {
	logger logger.Logger
}

func NewTracking(l logger.Logger) *TrackingHandler {
	return &TrackingHandler{logger: l}
}

func (h *TrackingHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{username}", h.opened)

	return mux
}

// opened records that the confirmation mail was rendered by the
// recipient's mail client
func (h *TrackingHandler) opened(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("confirmation mail opened", "username", r.PathValue("username"))

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(pixelGIF) //nolint:errcheck
}
