package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/lists", func(r chi.Router) {
			r.Get("/", h.GetLists)
			r.Post("/", h.CreateList)
			r.Route("/{listID}", func(r chi.Router) {
				r.Get("/", h.GetList)
				r.Put("/", h.RenameList)
				r.Delete("/", h.DeleteList)
				r.Post("/contacts", h.AddContact)
				r.Put("/contacts/{contactID}", h.UpdateContact)
				r.Delete("/contacts/{contactID}", h.DeleteContact)
				r.Post("/import", h.ImportContacts)
				r.Get("/export", h.ExportContacts)
				r.Post("/verify", h.VerifyList)
			})
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", h.GetCampaigns)
			r.Post("/", h.CreateCampaign)
			r.Post("/draft", h.DraftCampaign)
			r.Route("/{campaignID}", func(r chi.Router) {
				r.Get("/", h.GetCampaign)
				r.Put("/", h.UpdateCampaign)
				r.Delete("/", h.DeleteCampaign)
				r.Post("/send", h.SendCampaign)
				r.Post("/preview", h.PreviewCampaign)
			})
		})

		r.Post("/extract", h.ExtractContacts)
		r.Post("/validate", h.ValidateEmail)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/sending", h.GetSendSettings)
			r.Put("/sending", h.SaveSendSettings)
		})
	})

	return r
}
