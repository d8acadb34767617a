// internal/app/features/technicians/assign.go
package technicians

import (
	"context"
	"fmt"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/urlparam"
	"github.com/dalemusser/assistcenter/internal/app/system/assignment"
	"github.com/dalemusser/assistcenter/internal/app/system/inputval"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleAssign handles POST /technicians/{id}/assign.
//
// Responses:
//   - 200 {"status":"assigned", ...} when the technician is (now) at the center
//   - 409 {"status":"transfer_required", ...} when the technician is at another
//     center and the request did not confirm; nothing was written
//   - 409 {"status":"conflict"} when a confirmation is stale
//   - 404 when the technician or center does not exist
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	techID, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad technician id.")
		return
	}

	var in assignInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		uierrors.RenderBadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		uierrors.RenderValidation(w, res)
		return
	}
	centerID, _ := primitive.ObjectIDFromHex(in.CenterID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Engine.AssignTechnician(ctx, assignment.AssignTechnicianRequest{
		TechnicianID:    techID,
		CenterID:        centerID,
		Confirm:         in.Confirm,
		ExpectedVersion: in.ExpectedVersion,
		ProposalID:      in.ProposalID,
	})
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}

	if res.Status == assignment.StatusTransferRequired {
		httpjson.Write(w, http.StatusConflict, transferResponse{
			Status: uierrors.StatusTransferRequired,
			Message: fmt.Sprintf("%s is currently assigned to %s. Confirm to move them.",
				res.Technician.FullName, res.PreviousCenterName),
			TechnicianID:      res.Technician.ID,
			TechnicianName:    res.Technician.FullName,
			CenterID:          centerID,
			CurrentCenterID:   *res.PreviousCenterID,
			CurrentCenterName: res.PreviousCenterName,
			ExpectedVersion:   res.Version,
			ProposalID:        res.ProposalID,
		})
		return
	}

	httpjson.Write(w, http.StatusOK, assignedResponse{
		Status:             string(res.Status),
		Changed:            res.Changed,
		Technician:         res.Technician,
		Version:            res.Version,
		PreviousCenterID:   res.PreviousCenterID,
		PreviousCenterName: res.PreviousCenterName,
		ProposalID:         res.ProposalID,
	})
}

// HandleUnassign handles POST /technicians/{id}/unassign. Idempotent.
func (h *Handler) HandleUnassign(w http.ResponseWriter, r *http.Request) {
	techID, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad technician id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	tech, err := h.Engine.UnassignTechnician(ctx, techID)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	httpjson.Write(w, http.StatusOK, tech)
}
