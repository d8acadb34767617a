// internal/app/features/centers/centerview.go
package centers

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/urlparam"
	centerstore "github.com/dalemusser/assistcenter/internal/app/store/centers"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
)

// ServeView handles GET /centers/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad center id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := centerstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	httpjson.Write(w, http.StatusOK, c)
}
