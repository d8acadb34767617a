// internal/app/features/technicians/routes.go
package technicians

import "github.com/go-chi/chi/v5"

// Routes mounts the technician endpoints (typically under /technicians).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Get("/{id}", h.ServeView)
	r.Post("/{id}/edit", h.HandleEdit)
	r.Post("/{id}/delete", h.HandleDelete)

	// ASSIGNMENT
	r.Post("/{id}/assign", h.HandleAssign)
	r.Post("/{id}/unassign", h.HandleUnassign)

	return r
}
