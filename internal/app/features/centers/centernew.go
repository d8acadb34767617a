// internal/app/features/centers/centernew.go
package centers

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	centerstore "github.com/dalemusser/assistcenter/internal/app/store/centers"
	"github.com/dalemusser/assistcenter/internal/app/system/inputval"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleCreate handles POST /centers.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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

	c, err := centerstore.New(h.DB).Create(ctx, in.model())
	if err != nil {
		if errors.Is(err, centerstore.ErrDuplicateCenter) {
			uierrors.RenderConflict(w, err.Error())
			return
		}
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}

	h.Log.Info("center created", zap.String("center_id", c.ID.Hex()), zap.String("name", c.Name))
	h.Audit.CenterCreated(ctx, c.ID, c.Name)
	httpjson.Write(w, http.StatusCreated, c)
}
