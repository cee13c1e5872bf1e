package chat

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sapulidi/sapulidi/pkg/auth"
	"github.com/sapulidi/sapulidi/pkg/handlers"
	"github.com/sapulidi/sapulidi/pkg/routes"
)

// Handler provides HTTP endpoints for the chat assistant.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "chat"),
	}
}

// Routes returns the chat route group. Every endpoint requires a user.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/chat",
		Wrap:   []routes.Wrapper{auth.RequireUser},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/messages", Handler: h.Send},
			{Method: "GET", Pattern: "/messages", Handler: h.List},
			{Method: "DELETE", Pattern: "/messages", Handler: h.Clear},
			{Method: "GET", Pattern: "/faqs", Handler: h.FAQs},
		},
	}
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var cmd SendCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidMessage)
		return
	}

	user, _ := auth.FromContext(r.Context())

	m, err := h.sys.Send(r.Context(), user.UserID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, m)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	items, err := h.sys.List(r.Context(), user.UserID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	n, err := h.sys.Clear(r.Context(), user.UserID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Cleared{Deleted: n})
}

func (h *Handler) FAQs(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.FAQs())
}
