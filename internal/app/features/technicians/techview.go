// internal/app/features/technicians/techview.go
package technicians

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/urlparam"
	technicianstore "github.com/dalemusser/assistcenter/internal/app/store/technicians"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
)

// ServeView handles GET /technicians/{id}. The version in the response is
// what a later transfer confirmation must echo.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad technician id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tech, err := technicianstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	httpjson.Write(w, http.StatusOK, tech)
}
