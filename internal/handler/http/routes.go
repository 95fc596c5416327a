package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/user/create", h.createAccount)
		r.Post("/api/users/login", h.login)
		r.Post("/api/users/reset-password/init", h.resetPasswordInit)
		r.Post("/api/users/resend-email/init", h.resendEmailInit)
	})

	// routes requiring a valid bearer token
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/api/users/logout", h.logout)
		r.Get("/api/user/{id}", h.getAccount)
		r.Patch("/api/user/{id}", h.updateAccount)
	})

	return router
}
