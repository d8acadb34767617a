// internal/app/features/products/assign.go
package products

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/urlparam"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
)

// assignInput is the body of POST /products/{id}/assign. A null or absent
// staff_id clears the assignee.
type assignInput struct {
	StaffID *string `json:"staff_id"`
}

// HandleAssign handles POST /products/{id}/assign. Reassignment overwrites
// the previous assignee.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad product id.")
		return
	}

	var in assignInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		uierrors.RenderBadRequest(w, err.Error())
		return
	}
	raw := ""
	if in.StaffID != nil {
		raw = *in.StaffID
	}
	staffID, ok := urlparam.OptionalObjectID(raw)
	if !ok {
		uierrors.RenderBadRequest(w, "Staff must be a valid ID.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, err := h.Engine.AssignProduct(ctx, id, staffID)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	httpjson.Write(w, http.StatusOK, p)
}
