package handler

import (
	"net/http"

	"csystem-sip/internal/session"
	"csystem-sip/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/spf13/cast"
)

// currentSession reads the caller set by the auth middleware, answering 401 when absent
func currentSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
	}
	return sess, ok
}

// pathUUID parses a uuid route variable, answering 400 with message when malformed
func pathUUID(w http.ResponseWriter, r *http.Request, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, message, nil)
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads page and limit query values; malformed values fall back to zero
func pageParams(r *http.Request) (int, int) {
	q := r.URL.Query()
	return cast.ToInt(q.Get("page")), cast.ToInt(q.Get("limit"))
}

func pageMeta(page, limit int, total int64) *response.Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &response.Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
