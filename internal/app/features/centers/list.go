// internal/app/features/centers/list.go
package centers

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	centerstore "github.com/dalemusser/assistcenter/internal/app/store/centers"
	"github.com/dalemusser/assistcenter/internal/app/system/normalize"
	"github.com/dalemusser/assistcenter/internal/app/system/paging"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeList handles GET /centers?q=&limit=.
// q is a case- and diacritic-insensitive name prefix.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	q := normalize.QueryParam(query.Get(r, "q"))
	list, err := centerstore.New(h.DB).List(ctx, q, paging.ParseLimit(r))
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	if list == nil {
		list = []models.AssistanceCenter{}
	}
	httpjson.Write(w, http.StatusOK, listResponse{Centers: list})
}
