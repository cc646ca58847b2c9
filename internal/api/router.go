package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corville/notekeep/internal/auth"
	"github.com/corville/notekeep/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// eventsHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(authSvc *auth.Service, svc *noteservice.Service, eventsHandler http.Handler) chi.Router {
	h := NewHandler(authSvc, svc)

	r := chi.NewRouter()

	// Public auth endpoints.
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/token/refresh", h.Refresh)

	// Everything else requires a valid access token.
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(authSvc))

		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/user", h.CurrentUser)

		r.Get("/categories", h.ListCategories)
		r.Post("/categories", h.CreateCategory)
		r.Patch("/categories/{id}", h.UpdateCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)

		r.Get("/notes", h.ListNotes)
		r.Post("/notes", h.CreateNote)
		r.Get("/notes/{id}", h.GetNote)
		r.Patch("/notes/{id}", h.UpdateNote)
		r.Delete("/notes/{id}", h.DeleteNote)

		if eventsHandler != nil {
			r.Get("/events", eventsHandler.ServeHTTP)
		}
	})

	return r
}
