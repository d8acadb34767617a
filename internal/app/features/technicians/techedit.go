// internal/app/features/technicians/techedit.go
package technicians

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/urlparam"
	technicianstore "github.com/dalemusser/assistcenter/internal/app/store/technicians"
	"github.com/dalemusser/assistcenter/internal/app/system/inputval"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
)

// HandleEdit handles POST /technicians/{id}/edit. Profile fields only; the
// center is changed through /assign and /unassign.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad technician id.")
		return
	}

	var in technicianInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		uierrors.RenderBadRequest(w, err.Error())
		return
	}
	in.clean()
	if res := inputval.Validate(in); res.HasErrors() {
		uierrors.RenderValidation(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := technicianstore.New(h.DB)
	if err := store.UpdateProfile(ctx, id, in.model()); err != nil {
		if errors.Is(err, technicianstore.ErrDuplicateEmail) {
			uierrors.RenderConflict(w, err.Error())
			return
		}
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}

	tech, err := store.GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	h.Audit.TechnicianUpdated(ctx, tech.ID, tech.FullName)
	httpjson.Write(w, http.StatusOK, tech)
}
