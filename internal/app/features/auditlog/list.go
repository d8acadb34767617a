// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/shared/httpjson"
	"github.com/dalemusser/assistcenter/internal/app/store/audit"
	"github.com/dalemusser/assistcenter/internal/app/system/paging"
	"github.com/dalemusser/assistcenter/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type listResponse struct {
	Events  []audit.Event `json:"events"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	HasNext bool          `json:"has_next"`
}

// ServeList handles GET /audit, newest first.
//
// Filters: category, event_type, entity_id, center_id, start_date and
// end_date (YYYY-MM-DD, end date inclusive), page (1-based).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	q := r.URL.Query()
	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Limit:     paging.PageSize,
		Offset:    int64((page - 1) * paging.PageSize),
	}

	for name, dst := range map[string]**primitive.ObjectID{
		"entity_id": &filter.EntityID,
		"center_id": &filter.CenterID,
	} {
		s := strings.TrimSpace(q.Get(name))
		if s == "" {
			continue
		}
		oid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			uierrors.RenderBadRequest(w, "Bad "+name+".")
			return
		}
		*dst = &oid
	}

	if s := strings.TrimSpace(q.Get("start_date")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			uierrors.RenderBadRequest(w, "start_date must be YYYY-MM-DD.")
			return
		}
		filter.StartTime = &t
	}
	if s := strings.TrimSpace(q.Get("end_date")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			uierrors.RenderBadRequest(w, "end_date must be YYYY-MM-DD.")
			return
		}
		// End of day
		endOfDay := t.Add(24*time.Hour - time.Second)
		filter.EndTime = &endOfDay
	}

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		uierrors.RenderError(w, r, h.ErrLog, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	httpjson.Write(w, http.StatusOK, listResponse{
		Events:  events,
		Total:   total,
		Page:    page,
		HasNext: int64(page*paging.PageSize) < total,
	})
}
