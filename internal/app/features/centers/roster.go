// internal/app/features/centers/roster.go
package centers

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/urlparam"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
	"github.com/dalemusser/assistcenter/internal/domain/models"
)

// ServeTechnicians handles GET /centers/{id}/technicians.
func (h *Handler) ServeTechnicians(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad center id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	techs, err := h.Engine.CenterTechnicians(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	if techs == nil {
		techs = []models.Technician{}
	}
	httpjson.Write(w, http.StatusOK, rosterResponse{CenterID: id, Technicians: techs})
}

// ServeAvailable handles GET /centers/{id}/available: technicians who can
// be added to the center, free ones first.
func (h *Handler) ServeAvailable(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad center id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	avail, err := h.Engine.ListAvailableTechnicians(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}

	resp := availableResponse{
		CenterID:     id,
		Free:         avail.Free,
		Transferable: make([]transferableView, 0, len(avail.Transferable)),
	}
	if resp.Free == nil {
		resp.Free = []models.Technician{}
	}
	for _, tt := range avail.Transferable {
		resp.Transferable = append(resp.Transferable, transferableView{
			Technician:        tt.Technician,
			CurrentCenterID:   tt.CurrentCenterID,
			CurrentCenterName: tt.CurrentCenterName,
		})
	}
	httpjson.Write(w, http.StatusOK, resp)
}

// HandleRemoveTechnician handles POST /centers/{id}/technicians/{techID}/remove.
// 409 when the technician is not (or no longer) at this center.
func (h *Handler) HandleRemoveTechnician(w http.ResponseWriter, r *http.Request) {
	centerID, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad center id.")
		return
	}
	techID, ok := urlparam.ObjectID(r, "techID")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad technician id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	tech, err := h.Engine.RemoveTechnicianFromCenter(ctx, centerID, techID)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	httpjson.Write(w, http.StatusOK, tech)
}
