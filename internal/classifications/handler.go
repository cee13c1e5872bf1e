package classifications

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sapulidi/sapulidi/pkg/auth"
	"github.com/sapulidi/sapulidi/pkg/handlers"
	"github.com/sapulidi/sapulidi/pkg/routes"
)

// Handler provides HTTP endpoints for classification operations.
type Handler struct {
	sys     System
	logger  *slog.Logger
	maxBody int64
}

// NewHandler creates a Handler. maxBody caps the classify request body.
func NewHandler(sys System, logger *slog.Logger, maxBody int64) *Handler {
	return &Handler{
		sys:     sys,
		logger:  logger.With("handler", "classifications"),
		maxBody: maxBody,
	}
}

// Routes returns the route group definition for classification endpoints.
// Classification is open to anonymous callers; history requires a user.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/classifications",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Classify},
		},
		Children: []routes.Group{
			{
				Prefix: "/history",
				Wrap:   []routes.Wrapper{auth.RequireUser},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.History},
					{Method: "GET", Pattern: "/{id}", Handler: h.Find},
					{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
				},
			},
		},
	}
}

// Classify analyzes the posted image. Persistence failures are reported
// in the body, not as an error status.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var cmd ClassifyCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	user, _ := auth.FromContext(r.Context())

	c, err := h.sys.Classify(r.Context(), user, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// History lists the caller's stored classifications, newest first.
// The search query parameter filters by waste name, category, or assessment.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.FromContext(r.Context())

	items, err := h.sys.History(r.Context(), user.UserID, r.URL.Query().Get("search"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// Find returns one of the caller's stored classifications.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	user, _ := auth.FromContext(r.Context())

	item, err := h.sys.Find(r.Context(), user.UserID, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, item)
}

// Delete removes one of the caller's stored classifications.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	user, _ := auth.FromContext(r.Context())

	if err := h.sys.Delete(r.Context(), user.UserID, id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
