package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	novelHandler "github.com/nennneko5787/novelist-ai/internal/handler/novel"
	middlewarePkg "github.com/nennneko5787/novelist-ai/internal/middleware"
	novelservice "github.com/nennneko5787/novelist-ai/internal/service/novel"
)

// NewRouter wires HTTP routes to the novel engine.
func NewRouter(engine *novelservice.Engine) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	novels := novelHandler.New(engine)

	r.Route("/api", func(api chi.Router) {
		novels.RegisterRoutes(api)
	})

	return r
}
