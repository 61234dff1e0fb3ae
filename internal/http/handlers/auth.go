package handlers

import (
	"net/http"
	"strings"

	"github.com/hongminglow/barbershop-users/internal/apperr"
	"github.com/hongminglow/barbershop-users/internal/http/respond"
	"github.com/hongminglow/barbershop-users/internal/models/dto"
	"github.com/hongminglow/barbershop-users/internal/service"
)

// AuthHandler owns the login endpoints.
type AuthHandler struct {
	users   *service.UserService
	respond *respond.Responder
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users *service.UserService, rs *respond.Responder) *AuthHandler {
	return &AuthHandler{users: users, respond: rs}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/login", h.handleFormLogin)
	mux.HandleFunc("POST /auth/login/email", h.handleEmailLogin)
}

// handleFormLogin serves OAuth2 password-grant style form logins, where the
// username field carries the email address.
func (h *AuthHandler) handleFormLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.respond.Error(w, r, apperr.Validation("", "invalid form payload"))
		return
	}
	email := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if strings.TrimSpace(email) == "" || password == "" {
		h.respond.Error(w, r, apperr.Validation("", "username and password are required"))
		return
	}
	h.login(w, r, email, password)
}

func (h *AuthHandler) handleEmailLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.respond.Error(w, r, apperr.Validation("", "email and password are required"))
		return
	}
	h.login(w, r, req.Email, req.Password)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, email, password string) {
	token, err := h.users.Login(r.Context(), email, password)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.JSON(w, r, http.StatusOK, dto.NewTokenResponse(token))
}
