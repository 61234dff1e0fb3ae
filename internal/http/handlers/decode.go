package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hongminglow/barbershop-users/internal/apperr"
	"github.com/hongminglow/barbershop-users/internal/service"
	"github.com/hongminglow/barbershop-users/internal/storage"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("", "invalid JSON payload")
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, apperr.Validation("id", "user id must be an integer")
	}
	return id, nil
}

func parsePage(q url.Values) (storage.Page, error) {
	page := storage.Page{Offset: 0, Limit: service.DefaultPageLimit}
	if raw := q.Get("skip"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return storage.Page{}, apperr.Validation("skip", "skip must be an integer")
		}
		page.Offset = v
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return storage.Page{}, apperr.Validation("limit", "limit must be an integer")
		}
		page.Limit = v
	}
	return page, nil
}
