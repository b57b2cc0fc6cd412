package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// idFromPath reads a uuid URL parameter. A malformed id is reported as not found,
// the same as a well-formed id that matches nothing.
func idFromPath(r *http.Request, name string) (uuid.UUID, *AppError) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, ErrResourceNotFound
	}
	return id, nil
}

func queryUUID(r *http.Request, name string) (*uuid.UUID, *FieldError) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, &FieldError{Field: name, Message: "debe ser un identificador válido"}
	}
	return &id, nil
}

const dateLayout = "2006-01-02"

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func queryDate(r *http.Request, name string) (*time.Time, *FieldError) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	t, err := parseDate(v)
	if err != nil {
		return nil, &FieldError{Field: name, Message: "debe ser una fecha AAAA-MM-DD"}
	}
	return &t, nil
}

func queryInt(r *http.Request, name string, def, min, max int) (int, *FieldError) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min || n > max {
		return 0, &FieldError{Field: name, Message: "debe ser un número entre " + strconv.Itoa(min) + " y " + strconv.Itoa(max)}
	}
	return n, nil
}

func queryBool(r *http.Request, name string) (*bool, *FieldError) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, &FieldError{Field: name, Message: "debe ser true o false"}
	}
	return &b, nil
}

func collect(errs ...*FieldError) []FieldError {
	var out []FieldError
	for _, e := range errs {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}
