// internal/app/features/staff/routes.go
package staff

import "github.com/go-chi/chi/v5"

// Routes mounts the staff endpoints (typically under /staff).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeView)
	r.Post("/{id}/delete", h.HandleDelete)
	r.Get("/{id}/products", h.ServeProducts)

	return r
}
