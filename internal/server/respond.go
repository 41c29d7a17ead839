package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yash/laeportal/internal/query"
)

// respondJSON encodes before writing the header so an unencodable value
// becomes a 500 instead of an empty 200.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"encoding response failed"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondQueryError maps lookup misses to 404 and anything else to 500.
func respondQueryError(w http.ResponseWriter, err error) {
	if errors.Is(err, query.ErrNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}
