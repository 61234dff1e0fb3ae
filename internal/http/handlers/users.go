package handlers

import (
	"net/http"

	"github.com/hongminglow/barbershop-users/internal/http/respond"
	"github.com/hongminglow/barbershop-users/internal/middleware"
	"github.com/hongminglow/barbershop-users/internal/models/dto"
	"github.com/hongminglow/barbershop-users/internal/service"
)

// UsersHandler exposes the user resource.
type UsersHandler struct {
	users   *service.UserService
	authn   *middleware.Authenticator
	respond *respond.Responder
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(users *service.UserService, authn *middleware.Authenticator, rs *respond.Responder) *UsersHandler {
	return &UsersHandler{users: users, authn: authn, respond: rs}
}

// Register attaches user routes to the mux. Registration and the barber
// listing are public.
func (h *UsersHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /users", h.handleRegister)
	mux.HandleFunc("GET /users/barbers", h.handleListBarbers)
	mux.Handle("GET /users", h.authn.Require(http.HandlerFunc(h.handleList)))
	mux.Handle("GET /users/me", h.authn.Require(http.HandlerFunc(h.handleMe)))
	mux.Handle("GET /users/{id}", h.authn.Require(http.HandlerFunc(h.handleGet)))
	mux.Handle("PUT /users/{id}", h.authn.Require(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /users/{id}", h.authn.RequireBarber(http.HandlerFunc(h.handleDelete)))
}

func (h *UsersHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	created, err := h.users.Register(r.Context(), req)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.JSON(w, r, http.StatusCreated, created)
}

func (h *UsersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r.URL.Query())
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	list, err := h.users.ListUsers(r.Context(), page)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, list)
}

func (h *UsersHandler) handleListBarbers(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r.URL.Query())
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	list, err := h.users.ListBarbers(r.Context(), page)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, list)
}

func (h *UsersHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.CurrentUser(r.Context())
	h.respond.JSON(w, r, http.StatusOK, current)
}

func (h *UsersHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, user)
}

func (h *UsersHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	var req dto.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	actor, _ := middleware.CurrentUser(r.Context())
	updated, err := h.users.UpdateUser(r.Context(), actor, id, req)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, updated)
}

func (h *UsersHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	actor, _ := middleware.CurrentUser(r.Context())
	if err := h.users.DeleteUser(r.Context(), actor, id); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.NoContent(w, http.StatusNoContent)
}
