// Package server exposes the catalogue over the sync REST API. Reads
// are open; writes require a bearer token. The request and response
// bodies are the same entity structs the local store persists.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clef-app/clef/internal/catalogue"
	"github.com/clef-app/clef/internal/logger"
	"github.com/clef-app/clef/internal/store"
)

type Handler struct {
	Catalogue *catalogue.Catalogue
	Logger    *logger.Logger
	Token     string
}

func NewHandler(cat *catalogue.Catalogue, log *logger.Logger, token string) *Handler {
	return &Handler{
		Catalogue: cat,
		Logger:    log.WithComponent("server"),
		Token:     token,
	}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/persons", h.ListPersons)
	r.Get("/persons/{id}", h.GetPerson)
	r.Get("/persons/{id}/works", h.ListWorksByComposer)
	r.Get("/instruments", h.ListInstruments)
	r.Get("/instruments/{id}", h.GetInstrument)
	r.Get("/ensembles", h.ListEnsembles)
	r.Get("/ensembles/{id}", h.GetEnsemble)
	r.Get("/works/{id}", h.GetWork)
	r.Get("/works/{id}/recordings", h.ListRecordingsByWork)
	r.Get("/recordings/{id}", h.GetRecording)

	r.Group(func(r chi.Router) {
		r.Use(h.requireToken)
		r.Post("/persons", h.PostPerson)
		r.Post("/instruments", h.PostInstrument)
		r.Post("/ensembles", h.PostEnsemble)
		r.Post("/works", h.PostWork)
		r.Post("/recordings", h.PostRecording)
	})
	return r
}

// requireToken guards write routes with a bearer token. An empty
// configured token disables writes entirely.
func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Token == "" || r.Header.Get("Authorization") != "Bearer "+h.Token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("Failed to encode response", "error", err)
	}
}

// respondError maps catalogue errors onto HTTP status codes:
// referential conflicts are 409, everything else is a 500.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var refErr *store.ReferentialError
	if errors.As(err, &refErr) {
		http.Error(w, refErr.Error(), http.StatusConflict)
		return
	}
	h.Logger.Error("Request failed", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func decode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
