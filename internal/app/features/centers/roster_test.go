package centers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dalemusser/assistcenter/internal/app/features/centers"
	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/store/sqlitestore"
	"github.com/dalemusser/assistcenter/internal/app/system/assignment"
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"github.com/dalemusser/assistcenter/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// newRosterHandler wires a Handler whose engine runs on SQLite. Routes that
// read the Mongo catalog directly are not exercised with it.
func newRosterHandler(t *testing.T) (*centers.Handler, *sqlitestore.Store, *assignment.Engine) {
	t.Helper()
	store, engine := testutil.SetupSQLiteEngine(t)
	logger := zap.NewNop()
	h := centers.NewHandler(nil, engine, nil, uierrors.NewErrorLogger(logger), logger)
	return h, store, engine
}

func seed(t *testing.T, s *sqlitestore.Store) (models.AssistanceCenter, models.AssistanceCenter, []models.Technician) {
	t.Helper()
	ctx := context.Background()
	x, err := s.CreateCenter(ctx, models.AssistanceCenter{Name: "Nord"})
	if err != nil {
		t.Fatalf("seed center: %v", err)
	}
	y, err := s.CreateCenter(ctx, models.AssistanceCenter{Name: "Sud"})
	if err != nil {
		t.Fatalf("seed center: %v", err)
	}
	var techs []models.Technician
	for _, name := range []string{"Anna", "Bruno", "Carla"} {
		tech, err := s.CreateTechnician(ctx, models.Technician{FullName: name})
		if err != nil {
			t.Fatalf("seed technician: %v", err)
		}
		techs = append(techs, tech)
	}
	return x, y, techs
}

func assign(t *testing.T, e *assignment.Engine, techID, centerID primitive.ObjectID) {
	t.Helper()
	if _, err := e.AssignTechnician(context.Background(), assignment.AssignTechnicianRequest{
		TechnicianID: techID,
		CenterID:     centerID,
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}
}

func TestServeAvailable(t *testing.T) {
	h, s, e := newRosterHandler(t)
	x, y, techs := seed(t, s)
	assign(t, e, techs[0].ID, x.ID) // Anna at X
	assign(t, e, techs[1].ID, y.ID) // Bruno at Y

	req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodGet, "/"+x.ID.Hex()+"/available"), "id", x.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeAvailable(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Free         []models.Technician `json:"free"`
		Transferable []struct {
			Technician        models.Technician `json:"technician"`
			CurrentCenterName string            `json:"current_center_name"`
		} `json:"transferable"`
	}
	rec.DecodeJSON(t, &body)

	if len(body.Free) != 1 || body.Free[0].ID != techs[2].ID {
		t.Errorf("free = %+v, want only Carla", body.Free)
	}
	if len(body.Transferable) != 1 || body.Transferable[0].Technician.ID != techs[1].ID {
		t.Fatalf("transferable = %+v, want only Bruno", body.Transferable)
	}
	if body.Transferable[0].CurrentCenterName != "Sud" {
		t.Errorf("current_center_name = %q, want Sud", body.Transferable[0].CurrentCenterName)
	}
}

func TestServeAvailable_EmptyListsAreArrays(t *testing.T) {
	h, s, _ := newRosterHandler(t)
	c, err := s.CreateCenter(context.Background(), models.AssistanceCenter{Name: "Solo"})
	if err != nil {
		t.Fatalf("seed center: %v", err)
	}

	req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodGet, "/"), "id", c.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeAvailable(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"free":[]`)
	rec.AssertContains(t, `"transferable":[]`)
}

func TestServeAvailable_UnknownCenter(t *testing.T) {
	h, _, _ := newRosterHandler(t)

	req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodGet, "/"), "id", primitive.NewObjectID().Hex())
	rec := testutil.NewRecorder()
	h.ServeAvailable(rec, req)

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeAvailable_BadID(t *testing.T) {
	h, _, _ := newRosterHandler(t)

	req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodGet, "/"), "id", "not-an-id")
	rec := testutil.NewRecorder()
	h.ServeAvailable(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeTechnicians(t *testing.T) {
	h, s, e := newRosterHandler(t)
	x, _, techs := seed(t, s)
	assign(t, e, techs[0].ID, x.ID)
	assign(t, e, techs[2].ID, x.ID)

	req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodGet, "/"), "id", x.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeTechnicians(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Technicians []models.Technician `json:"technicians"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Technicians) != 2 {
		t.Fatalf("expected 2 technicians, got %d", len(body.Technicians))
	}
	for _, tech := range body.Technicians {
		if !tech.AssignedTo(x.ID) {
			t.Errorf("technician %s not at center", tech.FullName)
		}
	}
}

func TestHandleRemoveTechnician(t *testing.T) {
	h, s, e := newRosterHandler(t)
	x, y, techs := seed(t, s)
	assign(t, e, techs[0].ID, x.ID)

	remove := func(centerID, techID primitive.ObjectID) *testutil.ResponseRecorder {
		req := testutil.NewRequest(http.MethodPost, "/")
		req = testutil.WithChiURLParam(req, "id", centerID.Hex())
		req = testutil.WithChiURLParam(req, "techID", techID.Hex())
		rec := testutil.NewRecorder()
		h.HandleRemoveTechnician(rec, req)
		return rec
	}

	// Wrong center is a conflict.
	remove(y.ID, techs[0].ID).AssertStatus(t, http.StatusConflict)

	rec := remove(x.ID, techs[0].ID)
	rec.AssertStatus(t, http.StatusOK)
	var tech models.Technician
	rec.DecodeJSON(t, &tech)
	if tech.CenterID != nil {
		t.Errorf("expected technician unassigned, got center %v", tech.CenterID)
	}

	// Already removed.
	remove(x.ID, techs[0].ID).AssertStatus(t, http.StatusConflict)

	remove(x.ID, primitive.NewObjectID()).AssertStatus(t, http.StatusNotFound)
}

func TestHandleDelete(t *testing.T) {
	h, s, e := newRosterHandler(t)
	x, _, techs := seed(t, s)
	assign(t, e, techs[0].ID, x.ID)

	del := func() *testutil.ResponseRecorder {
		req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodPost, "/"), "id", x.ID.Hex())
		rec := testutil.NewRecorder()
		h.HandleDelete(rec, req)
		return rec
	}

	rec := del()
	rec.AssertStatus(t, http.StatusConflict)
	var body uierrors.Body
	rec.DecodeJSON(t, &body)
	if body.Status != uierrors.StatusHasDependents || body.Count != 1 {
		t.Errorf("body = %+v, want has_dependents with count 1", body)
	}

	if _, err := e.UnassignTechnician(context.Background(), techs[0].ID); err != nil {
		t.Fatalf("unassign: %v", err)
	}

	del().AssertStatus(t, http.StatusOK)
	del().AssertStatus(t, http.StatusNotFound)
}
