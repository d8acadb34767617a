// internal/app/features/centers/centerdelete.go
package centers

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/urlparam"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
)

// HandleDelete handles POST /centers/{id}/delete. A center that still has
// technicians is refused with 409 and the number of technicians to move.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad center id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Engine.DeleteCenter(ctx, id); err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	httpjson.Write(w, http.StatusOK, deletedResponse{Status: "deleted", ID: id})
}
