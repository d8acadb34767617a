// internal/app/features/technicians/techdelete.go
package technicians

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/urlparam"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
)

// HandleDelete handles POST /technicians/{id}/delete. Assigned technicians
// must be unassigned first (409).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad technician id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Engine.DeleteTechnician(ctx, id); err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	httpjson.Write(w, http.StatusOK, deletedResponse{Status: "deleted", ID: id})
}
