// internal/app/features/technicians/list.go
package technicians

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	technicianstore "github.com/dalemusser/assistcenter/internal/app/store/technicians"
	"github.com/dalemusser/assistcenter/internal/app/system/normalize"
	"github.com/dalemusser/assistcenter/internal/app/system/paging"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeList handles GET /technicians?q=&status=unassigned&limit=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	q := normalize.QueryParam(query.Get(r, "q"))
	unassigned := normalize.Filter(query.Get(r, "status")) == "unassigned"

	list, err := technicianstore.New(h.DB).List(ctx, q, unassigned, paging.ParseLimit(r))
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	httpjson.Write(w, http.StatusOK, listResponse{Technicians: list})
}
