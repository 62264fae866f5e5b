package main

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"

	"github.com/CTAG07/namegen/pkg/namegen"
)

// RegisterRoutes registers the name API routes.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/names", s.handleNames)
	mux.HandleFunc("/api/names/", s.handleName)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, currentVersion())
}

func (s *Server) handleNames(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		names, err := s.registry.List(r.Context())
		if err != nil {
			s.logger.Error("Failed to list names", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to list names")
			return
		}
		respondWithJSON(w, http.StatusOK, names)
	case http.MethodPost:
		var config namegen.NameConfig
		if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		details, err := s.registry.Create(r.Context(), config)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, details)
	default:
		w.Header().Set("Allow", "GET, POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleName serves /api/names/{id} and its sub-resources.
func (s *Server) handleName(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/names/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		respondWithError(w, http.StatusNotFound, "Name id required")
		return
	}

	switch action {
	case "":
		s.handleNameRoot(w, r, id)
	case "learn":
		s.handleLearn(w, r, id)
	case "generate":
		s.handleGenerate(w, r, id)
	case "formats":
		s.handleFormats(w, r, id)
	default:
		respondWithError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleNameRoot(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		details, err := s.registry.Describe(r.Context(), id)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, details)
	case http.MethodDelete:
		if err := s.registry.Delete(r.Context(), id); err != nil {
			respondWithStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, DELETE")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleLearn(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var set namegen.SampleSetConfig
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	details, err := s.registry.Learn(r.Context(), id, set)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	s.logger.Info("Learned samples", "name_id", id, "part", set.Part, "samples", len(set.Samples))
	respondWithJSON(w, http.StatusOK, details)
}

// GenerateResponse is the body returned by the generate endpoint.
type GenerateResponse struct {
	Names []string `json:"names"`
	Seed  uint64   `json:"seed"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	q := r.URL.Query()
	amount := s.config.Server.DefaultAmount
	if v := q.Get("amount"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > s.config.Server.MaxAmount {
			respondWithError(w, http.StatusBadRequest,
				"amount must be between 1 and "+strconv.Itoa(s.config.Server.MaxAmount))
			return
		}
		amount = n
	}
	seed := rand.Uint64()
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid seed")
			return
		}
		seed = n
	}

	names, err := s.registry.Generate(r.Context(), id, q.Get("format"), amount, seed)
	if err != nil {
		if r.Context().Err() != nil {
			s.logger.Debug("Generation cancelled", "name_id", id, "error", err)
			return
		}
		respondWithStoreError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, GenerateResponse{Names: names, Seed: seed})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		details, err := s.registry.Describe(r.Context(), id)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, details.Formats)
	case http.MethodPost:
		var format namegen.FormatInfo
		if err := json.NewDecoder(r.Body).Decode(&format); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		details, err := s.registry.AddFormat(r.Context(), id, format)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, details.Formats)
	default:
		w.Header().Set("Allow", "GET, POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
