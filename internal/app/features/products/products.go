// internal/app/features/products/products.go
package products

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/urlparam"
	productstore "github.com/dalemusser/assistcenter/internal/app/store/products"
	"github.com/dalemusser/assistcenter/internal/app/system/htmlsanitize"
	"github.com/dalemusser/assistcenter/internal/app/system/inputval"
	"github.com/dalemusser/assistcenter/internal/app/system/normalize"
	"github.com/dalemusser/assistcenter/internal/app/system/paging"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type productInput struct {
	Name     string `json:"name" validate:"required,max=200" label:"Name"`
	Category string `json:"category" validate:"max=100" label:"Category"`
}

func (in *productInput) clean() {
	in.Name = normalize.Name(htmlsanitize.PlainText(in.Name))
	in.Category = normalize.Name(htmlsanitize.PlainText(in.Category))
}

type listResponse struct {
	Products []models.Product `json:"products"`
}

// ServeList handles GET /products?q=&limit=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := productstore.New(h.DB).List(ctx, normalize.QueryParam(query.Get(r, "q")), paging.ParseLimit(r))
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	httpjson.Write(w, http.StatusOK, listResponse{Products: list})
}

// HandleCreate handles POST /products. New products have no assignee.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in productInput
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

	p, err := productstore.New(h.DB).Create(ctx, models.Product{Name: in.Name, Category: in.Category})
	if err != nil {
		if errors.Is(err, productstore.ErrDuplicateProduct) {
			uierrors.RenderConflict(w, err.Error())
			return
		}
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}

	h.Log.Info("product created", zap.String("product_id", p.ID.Hex()))
	h.Audit.ProductCreated(ctx, p.ID, p.Name)
	httpjson.Write(w, http.StatusCreated, p)
}

// ServeView handles GET /products/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad product id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := productstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	httpjson.Write(w, http.StatusOK, p)
}

// HandleEdit handles POST /products/{id}/edit.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad product id.")
		return
	}

	var in productInput
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

	store := productstore.New(h.DB)
	if err := store.Update(ctx, id, models.Product{Name: in.Name, Category: in.Category}); err != nil {
		if errors.Is(err, productstore.ErrDuplicateProduct) {
			uierrors.RenderConflict(w, err.Error())
			return
		}
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	p, err := store.GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	httpjson.Write(w, http.StatusOK, p)
}

// HandleDelete handles POST /products/{id}/delete. Products carry no
// dependents, so the delete is unconditional.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad product id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := productstore.New(h.DB)
	p, err := store.GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	n, err := store.Delete(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	if n == 0 {
		uierrors.RenderNotFound(w, "Product not found.")
		return
	}

	h.Audit.ProductDeleted(ctx, p.ID, p.Name)
	httpjson.Write(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}
