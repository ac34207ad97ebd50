package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// paramError reports a malformed path or query parameter; handlers answer it with 400.
type paramError struct {
	name string
}

func (e paramError) Error() string {
	return fmt.Sprintf("%s must be a number", e.name)
}

func (e paramError) details() map[string]string {
	return map[string]string{e.name: e.Error()}
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, paramError{name: "id"}
	}
	return id, nil
}

func int64Query(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0, paramError{name: name}
	}
	return v, nil
}

func intQuery(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0, paramError{name: name}
	}
	return v, nil
}
