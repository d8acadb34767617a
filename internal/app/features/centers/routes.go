// internal/app/features/centers/routes.go
package centers

import "github.com/go-chi/chi/v5"

// Routes mounts the assistance center endpoints (typically under /centers).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// LIST / CREATE
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	// VIEW / EDIT / DELETE
	r.Get("/{id}", h.ServeView)
	r.Post("/{id}/edit", h.HandleEdit)
	r.Post("/{id}/delete", h.HandleDelete)

	// ROSTER
	r.Get("/{id}/technicians", h.ServeTechnicians)
	r.Get("/{id}/available", h.ServeAvailable)
	r.Post("/{id}/technicians/{techID}/remove", h.HandleRemoveTechnician)

	return r
}
