// Package trainer is the HTTP service behind the blind listening trainer:
// catalog lookups, solo rounds, shared party sessions and questionnaire notes.
package trainer

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/cariocaphil/blind-aria/internal/catalog"
	"github.com/cariocaphil/blind-aria/internal/oembed"
	"github.com/cariocaphil/blind-aria/internal/solo"
)

type Server struct {
	store Store
	cat   *catalog.Catalog
	solo  *solo.Store
	meta  *oembed.Client
	rdb   *redis.Client

	// base URL of the frontend, for shareable invite links
	frontendBaseURL string

	// PRNG for "random aria" picks; the take draw itself is seeded
	// separately per (work, generation)
	rngMu sync.Mutex
	rng   *rand.Rand

	played *playedTracker
}

func NewServer(store Store, cat *catalog.Catalog, soloStore *solo.Store, meta *oembed.Client, rdb *redis.Client, frontendBaseURL string) *Server {
	return &Server{
		store:           store,
		cat:             cat,
		solo:            soloStore,
		meta:            meta,
		rdb:             rdb,
		frontendBaseURL: frontendBaseURL,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		played:          newPlayedTracker(),
	}
}

// Router builds the service routes. auth wraps everything that needs a logged
// in user; solo mode and the catalog deliberately work without login.
func (s *Server) Router(auth func(http.Handler) http.Handler, middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Get("/catalog/works", s.handleSearchWorks)
	r.Get("/catalog/works/random", s.handleRandomWork)

	r.Get("/meta/{videoId}", s.handleMetadata)

	r.Route("/solo", func(r chi.Router) {
		r.Post("/", s.handleSoloStart)
		r.Get("/{id}", s.handleSoloGet)
		r.Post("/{id}/random", s.handleSoloRandomWork)
		r.Post("/{id}/work", s.handleSoloSetWork)
		r.Post("/{id}/reshuffle", s.handleSoloReshuffle)
		r.Post("/{id}/played/{takeId}", s.handleSoloMarkPlayed)
		r.Put("/{id}/notes/{takeId}", s.handleSoloSaveNote)
		r.Get("/{id}/notes/{takeId}", s.handleSoloGetNote)
	})

	r.Group(func(r chi.Router) {
		if auth != nil {
			r.Use(auth)
		}
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Patch("/sessions/{id}/work", s.handleChangeWork)
		r.Post("/sessions/{id}/reshuffle", s.handleReshuffle)
		r.Post("/sessions/{id}/played/{takeId}", s.handleMarkPlayed)
		r.Put("/sessions/{id}/notes/{takeId}", s.handleSaveNote)
		r.Get("/sessions/{id}/notes/{takeId}", s.handleGetNote)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "blind-aria",
	})
}

// randomEligibleWork picks a random work under the server's PRNG lock.
func (s *Server) randomEligibleWork() *catalog.Work {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.cat.RandomEligible(s.rng, catalog.MinTakes)
}
