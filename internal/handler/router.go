package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mmeshcher/scissors/internal/middleware"
)

func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.GzipMiddleware)

	r.Get("/ping", h.PingHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/users", h.RegisterHandler)
		r.Post("/token", h.TokenHandler)
		r.Get("/logout", h.LogoutHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.auth.RequireUser)

		r.Get("/", h.ListLinksHandler)
		r.Route("/api/links", func(r chi.Router) {
			r.Get("/", h.ListLinksHandler)
			r.Post("/", h.CreateLinkHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/{secretKey}", h.LinkDetailsHandler)
			r.Put("/activate/{secretKey}", h.ActivateHandler)
			r.Put("/deactivate/{secretKey}", h.DeactivateHandler)
		})

		r.Get("/activate/{secretKey}", h.ActivateRedirectHandler)
		r.Post("/activate/{secretKey}", h.ActivateRedirectHandler)
		r.Get("/deactivate/{secretKey}", h.DeactivateRedirectHandler)
		r.Post("/deactivate/{secretKey}", h.DeactivateRedirectHandler)
	})

	r.Get("/qrcode/{key}", h.QRCodeHandler)
	r.Get("/{key}", h.RedirectHandler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	return r
}
