// internal/app/features/staff/staff.go
package staff

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/urlparam"
	staffstore "github.com/dalemusser/assistcenter/internal/app/store/staff"
	"github.com/dalemusser/assistcenter/internal/app/system/htmlsanitize"
	"github.com/dalemusser/assistcenter/internal/app/system/inputval"
	"github.com/dalemusser/assistcenter/internal/app/system/normalize"
	"github.com/dalemusser/assistcenter/internal/app/system/paging"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type staffInput struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanumunicode" label:"Username"`
	FullName string `json:"full_name" validate:"required,max=200" label:"Full name"`
	Email    string `json:"email" validate:"omitempty,strictemail" label:"Email"`
}

type listResponse struct {
	Staff []models.StaffMember `json:"staff"`
}

type productsResponse struct {
	StaffID  primitive.ObjectID `json:"staff_id"`
	Products []models.Product   `json:"products"`
}

// ServeList handles GET /staff?q=&limit=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := staffstore.New(h.DB).List(ctx, normalize.QueryParam(query.Get(r, "q")), paging.ParseLimit(r))
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	httpjson.Write(w, http.StatusOK, listResponse{Staff: list})
}

// HandleCreate handles POST /staff.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in staffInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		uierrors.RenderBadRequest(w, err.Error())
		return
	}
	in.Username = normalize.Username(in.Username)
	in.FullName = normalize.Name(htmlsanitize.PlainText(in.FullName))
	in.Email = normalize.Email(in.Email)
	if res := inputval.Validate(in); res.HasErrors() {
		uierrors.RenderValidation(w, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := staffstore.New(h.DB).Create(ctx, models.StaffMember{
		Username: in.Username,
		FullName: in.FullName,
		Email:    in.Email,
	})
	if err != nil {
		if errors.Is(err, staffstore.ErrDuplicateUsername) {
			uierrors.RenderConflict(w, err.Error())
			return
		}
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}

	h.Log.Info("staff member created", zap.String("staff_id", m.ID.Hex()), zap.String("username", m.Username))
	h.Audit.StaffCreated(ctx, m.ID, m.Username)
	httpjson.Write(w, http.StatusCreated, m)
}

// ServeView handles GET /staff/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad staff id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := staffstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	httpjson.Write(w, http.StatusOK, m)
}

// HandleDelete handles POST /staff/{id}/delete. Refused with 409 while
// products are still assigned to the staff member.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad staff id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Engine.DeleteStaff(ctx, id); err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}

// ServeProducts handles GET /staff/{id}/products.
func (h *Handler) ServeProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := urlparam.ObjectID(r, "id")
	if !ok {
		uierrors.RenderBadRequest(w, "Bad staff id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	products, err := h.Engine.StaffProducts(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	httpjson.Write(w, http.StatusOK, productsResponse{StaffID: id, Products: products})
}
