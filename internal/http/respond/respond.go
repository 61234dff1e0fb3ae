package respond

import (
	"encoding/json"
	"net/http"

	"github.com/hongminglow/barbershop-users/internal/apperr"
	"github.com/hongminglow/barbershop-users/internal/logging"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Code   int         `json:"code"`
	Kind   apperr.Kind `json:"kind"`
	Detail string      `json:"detail"`
	Field  string      `json:"field,omitempty"`
}

// Responder writes JSON responses and logs write failures.
type Responder struct {
	log logging.Logger
}

// New returns a Responder logging through log.
func New(log logging.Logger) *Responder {
	return &Responder{log: log}
}

// JSON writes data with the given status.
func (rs *Responder) JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.log.Error(r.Context(), "respond: encode payload failed", "error", err)
	}
}

// NoContent writes an empty response with the given status.
func (rs *Responder) NoContent(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}

// Error writes err using its apperr kind. Anything else is reported as an
// opaque internal error and logged with its cause.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	status := appErr.Status()
	if appErr.Kind == apperr.KindInternal {
		rs.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	rs.JSON(w, r, status, ErrorBody{
		Code:   status,
		Kind:   appErr.Kind,
		Detail: appErr.Detail,
		Field:  appErr.Field,
	})
}
