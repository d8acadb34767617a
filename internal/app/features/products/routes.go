// internal/app/features/products/routes.go
package products

import "github.com/go-chi/chi/v5"

// Routes mounts the product endpoints (typically under /products).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeView)
	r.Post("/{id}/edit", h.HandleEdit)
	r.Post("/{id}/delete", h.HandleDelete)
	r.Post("/{id}/assign", h.HandleAssign)

	return r
}
