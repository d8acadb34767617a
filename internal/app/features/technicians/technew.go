// internal/app/features/technicians/technew.go
package technicians

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	technicianstore "github.com/dalemusser/assistcenter/internal/app/store/technicians"
	"github.com/dalemusser/assistcenter/internal/app/system/inputval"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleCreate handles POST /technicians. New technicians start unassigned.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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

	tech, err := technicianstore.New(h.DB).Create(ctx, in.model())
	if err != nil {
		if errors.Is(err, technicianstore.ErrDuplicateEmail) {
			uierrors.RenderConflict(w, err.Error())
			return
		}
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}

	h.Log.Info("technician created", zap.String("technician_id", tech.ID.Hex()))
	h.Audit.TechnicianCreated(ctx, tech.ID, tech.FullName)
	httpjson.Write(w, http.StatusCreated, tech)
}
