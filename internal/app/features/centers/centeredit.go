// internal/app/features/centers/centeredit.go
package centers

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/urlparam"
	centerstore "github.com/dalemusser/assistcenter/internal/app/store/centers"
	"github.com/dalemusser/assistcenter/internal/app/system/inputval"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
)

// HandleEdit handles POST /centers/{id}/edit. The body carries the full set
// of descriptive fields; technicians are managed through the roster routes.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad center id.")
		return
	}

	var in centerInput
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

	store := centerstore.New(h.DB)
	if err := store.Update(ctx, id, in.model()); err != nil {
		if errors.Is(err, centerstore.ErrDuplicateCenter) {
			uierrors.RenderConflict(w, err.Error())
			return
		}
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}

	c, err := store.GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	h.Audit.CenterUpdated(ctx, c.ID, c.Name)
	httpjson.Write(w, http.StatusOK, c)
}
