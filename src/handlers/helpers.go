package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	db "finhealth-server/src/db/sql"
	"finhealth-server/src/middleware"
	"finhealth-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// now is swapped in tests.
var now = time.Now

var errEmptyBody = errors.New("request body is empty")

// currentUser reads the id put in the context by the auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		util.WriteError(w, http.StatusUnauthorized, "Access token required")
		return 0, false
	}
	return userID, true
}

// logger returns the request-scoped logger, falling back to the global one.
func logger(r *http.Request) *zerolog.Logger {
	l := zerolog.Ctx(r.Context())
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return l
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

// writeStoreError maps store errors: not found to 404, out of range to 400,
// everything else to 500.
func writeStoreError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		util.WriteError(w, http.StatusNotFound, notFound)
		return
	case errors.Is(err, db.ErrOutOfRange):
		util.WriteError(w, http.StatusBadRequest, "Amount out of range")
		return
	}
	util.WriteError(w, http.StatusInternalServerError, "Internal server error")
}

// parseRange reads optional from/to query parameters. to is inclusive of the
// whole day when given as a calendar date.
func parseRange(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		if from, err = util.ParseDate(s, time.Local); err != nil {
			return from, to, errors.New("invalid from date")
		}
	}
	if s := q.Get("to"); s != "" {
		if to, err = util.ParseDate(s, time.Local); err != nil {
			return from, to, errors.New("invalid to date")
		}
		if len(s) == len("2006-01-02") {
			to = to.AddDate(0, 0, 1)
		}
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return from, to, errors.New("from must be before to")
	}
	return from, to, nil
}

func invalidate(cache Cache, userID int64) {
	if cache != nil {
		cache.InvalidateUser(userID)
	}
}
