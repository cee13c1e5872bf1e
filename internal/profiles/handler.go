package profiles

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/pkg/auth"
	"github.com/sapulidi/sapulidi/pkg/handlers"
	"github.com/sapulidi/sapulidi/pkg/pagination"
	"github.com/sapulidi/sapulidi/pkg/routes"
)

// Handler provides HTTP endpoints for accounts and profiles.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "profiles"),
		pagination: pagination,
	}
}

// Routes returns the auth and profile route groups. Sign up and sign in
// are public; /profiles/me needs a user and the rest needs an admin.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Children: []routes.Group{
			{
				Prefix: "/auth",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/signup", Handler: h.Signup},
					{Method: "POST", Pattern: "/signin", Handler: h.Signin},
					{Method: "POST", Pattern: "/admin/signin", Handler: h.AdminSignin},
				},
			},
			{
				Prefix: "/profiles",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.List, Wrap: []routes.Wrapper{auth.RequireRole(auth.RoleAdmin)}},
					{Method: "PUT", Pattern: "/{id}/role", Handler: h.SetRole, Wrap: []routes.Wrapper{auth.RequireRole(auth.RoleAdmin)}},
				},
				Children: []routes.Group{
					{
						Prefix: "/me",
						Wrap:   []routes.Wrapper{auth.RequireUser},
						Routes: []routes.Route{
							{Method: "GET", Pattern: "", Handler: h.Me},
							{Method: "PUT", Pattern: "", Handler: h.Update},
							{Method: "PUT", Pattern: "/avatar", Handler: h.UploadAvatar},
							{Method: "DELETE", Pattern: "/avatar", Handler: h.DeleteAvatar},
						},
					},
				},
			},
		},
	}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var cmd SignupCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	session, err := h.sys.Signup(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	h.signin(w, r, h.sys.Signin)
}

func (h *Handler) AdminSignin(w http.ResponseWriter, r *http.Request) {
	h.signin(w, r, h.sys.AdminSignin)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}

	p, err := h.sys.Me(r.Context(), id)
	h.respondProfile(w, p, err)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}

	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	p, err := h.sys.Update(r.Context(), id, cmd)
	h.respondProfile(w, p, err)
}

// UploadAvatar reads the avatar form file. The body is capped slightly
// above MaxAvatarSize so oversized files are reported as such.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarSize+(1<<20))
	if err := r.ParseMultipartForm(MaxAvatarSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrAvatarTooLarge)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidAvatar)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidAvatar)
		return
	}

	p, err := h.sys.UploadAvatar(r.Context(), id, AvatarCommand{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	})
	h.respondProfile(w, p, err)
}

func (h *Handler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := h.caller(w, r)
	if !ok {
		return
	}

	p, err := h.sys.DeleteAvatar(r.Context(), id)
	h.respondProfile(w, p, err)
}

// List returns a paginated list of profiles. Admin only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// SetRole assigns a role to a profile. Admin only.
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd RoleCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	p, err := h.sys.SetRole(r.Context(), id, cmd)
	h.respondProfile(w, p, err)
}

func (h *Handler) signin(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, cmd SigninCommand) (*Session, error)) {
	var cmd SigninCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	session, err := fn(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, session)
}

// caller resolves the profile id of the signed-in user. OIDC subjects
// that are not local account ids have no profile.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims, _ := auth.FromContext(r.Context())
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondProfile(w http.ResponseWriter, p *Profile, err error) {
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, p)
}
