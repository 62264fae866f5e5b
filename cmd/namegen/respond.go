package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/CTAG07/namegen/pkg/namegen"
	"github.com/CTAG07/namegen/pkg/store"
)

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		err := json.NewEncoder(w).Encode(payload)
		if err != nil {
			fmt.Printf("ERROR: Failed to encode JSON response: %v\n", err)
		}
	}
}

// learnErrorResponse is the body sent when a sample set is rejected.
type learnErrorResponse struct {
	Error string              `json:"error"`
	Learn *namegen.LearnError `json:"learn_error"`
}

// respondWithStoreError maps errors from the registry to status codes.
func respondWithStoreError(w http.ResponseWriter, err error) {
	var lerr *namegen.LearnError
	switch {
	case errors.As(err, &lerr):
		code := http.StatusBadRequest
		if lerr.Code == namegen.PartNotFound {
			code = http.StatusNotFound
		}
		respondWithJSON(w, code, learnErrorResponse{Error: err.Error(), Learn: lerr})
	case errors.Is(err, store.ErrNameNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNameExists),
		errors.Is(err, store.ErrVersionConflict),
		errors.Is(err, namegen.ErrDuplicateFormat):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, namegen.ErrFormatNotFound), errors.Is(err, errInvalidDefinition):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
