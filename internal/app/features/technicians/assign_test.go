package technicians_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	uierrors "github.com/dalemusser/assistcenter/internal/app/features/errors"
	"github.com/dalemusser/assistcenter/internal/app/features/technicians"
	"github.com/dalemusser/assistcenter/internal/app/store/sqlitestore"
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"github.com/dalemusser/assistcenter/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type transferBody struct {
	Status            string             `json:"status"`
	CurrentCenterID   primitive.ObjectID `json:"current_center_id"`
	CurrentCenterName string             `json:"current_center_name"`
	ExpectedVersion   int64              `json:"expected_version"`
	ProposalID        string             `json:"proposal_id"`
}

type assignedBody struct {
	Status             string            `json:"status"`
	Changed            bool              `json:"changed"`
	Technician         models.Technician `json:"technician"`
	Version            int64             `json:"version"`
	PreviousCenterName string            `json:"previous_center_name"`
}

type env struct {
	t     *testing.T
	h     *technicians.Handler
	store *sqlitestore.Store
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, engine := testutil.SetupSQLiteEngine(t)
	logger := zap.NewNop()
	return &env{
		t:     t,
		h:     technicians.NewHandler(nil, engine, nil, uierrors.NewErrorLogger(logger), logger),
		store: store,
	}
}

func (e *env) center(name string) models.AssistanceCenter {
	e.t.Helper()
	c, err := e.store.CreateCenter(context.Background(), models.AssistanceCenter{Name: name})
	if err != nil {
		e.t.Fatalf("seed center: %v", err)
	}
	return c
}

func (e *env) technician(name string) models.Technician {
	e.t.Helper()
	tech, err := e.store.CreateTechnician(context.Background(), models.Technician{FullName: name})
	if err != nil {
		e.t.Fatalf("seed technician: %v", err)
	}
	return tech
}

func (e *env) assign(techID primitive.ObjectID, body map[string]any) *testutil.ResponseRecorder {
	e.t.Helper()
	req := testutil.NewJSONRequest(e.t, http.MethodPost, "/"+techID.Hex()+"/assign", body)
	req = testutil.WithChiURLParam(req, "id", techID.Hex())
	rec := testutil.NewRecorder()
	e.h.HandleAssign(rec, req)
	return rec
}

func (e *env) reload(id primitive.ObjectID) models.Technician {
	e.t.Helper()
	tech, err := e.store.Technician(context.Background(), id)
	if err != nil {
		e.t.Fatalf("reload technician: %v", err)
	}
	return tech
}

func TestHandleAssign_Unassigned(t *testing.T) {
	e := newEnv(t)
	x := e.center("X")
	tech := e.technician("T")

	rec := e.assign(tech.ID, map[string]any{"center_id": x.ID.Hex()})
	rec.AssertStatus(t, http.StatusOK)

	var body assignedBody
	rec.DecodeJSON(t, &body)
	if body.Status != "assigned" || !body.Changed {
		t.Errorf("body = %+v, want assigned and changed", body)
	}
	if !e.reload(tech.ID).AssignedTo(x.ID) {
		t.Error("technician not at X after assign")
	}
}

func TestHandleAssign_SameCenterIsIdempotent(t *testing.T) {
	e := newEnv(t)
	x := e.center("X")
	tech := e.technician("T")
	e.assign(tech.ID, map[string]any{"center_id": x.ID.Hex()}).AssertStatus(t, http.StatusOK)
	before := e.reload(tech.ID)

	rec := e.assign(tech.ID, map[string]any{"center_id": x.ID.Hex()})
	rec.AssertStatus(t, http.StatusOK)

	var body assignedBody
	rec.DecodeJSON(t, &body)
	if body.Changed {
		t.Error("expected changed=false for same-center assign")
	}
	if after := e.reload(tech.ID); after.Version != before.Version {
		t.Errorf("version moved from %d to %d", before.Version, after.Version)
	}
}

func TestHandleAssign_TransferFlow(t *testing.T) {
	e := newEnv(t)
	x := e.center("X")
	y := e.center("Y")
	tech := e.technician("T")
	e.assign(tech.ID, map[string]any{"center_id": y.ID.Hex()}).AssertStatus(t, http.StatusOK)

	// Unconfirmed move reports the current center and changes nothing.
	rec := e.assign(tech.ID, map[string]any{"center_id": x.ID.Hex()})
	rec.AssertStatus(t, http.StatusConflict)
	var proposal transferBody
	rec.DecodeJSON(t, &proposal)
	if proposal.Status != uierrors.StatusTransferRequired {
		t.Fatalf("status = %q, want transfer_required", proposal.Status)
	}
	if proposal.CurrentCenterID != y.ID || proposal.CurrentCenterName != "Y" {
		t.Errorf("current center = %v %q, want Y", proposal.CurrentCenterID, proposal.CurrentCenterName)
	}
	if proposal.ProposalID == "" {
		t.Error("expected a proposal id")
	}
	if !e.reload(tech.ID).AssignedTo(y.ID) {
		t.Fatal("technician moved without confirmation")
	}

	// Confirmed move carrying the proposal's version.
	rec = e.assign(tech.ID, map[string]any{
		"center_id":        x.ID.Hex(),
		"confirm":          true,
		"expected_version": proposal.ExpectedVersion,
		"proposal_id":      proposal.ProposalID,
	})
	rec.AssertStatus(t, http.StatusOK)
	var done assignedBody
	rec.DecodeJSON(t, &done)
	if !done.Changed || done.PreviousCenterName != "Y" {
		t.Errorf("body = %+v, want changed transfer from Y", done)
	}
	if !e.reload(tech.ID).AssignedTo(x.ID) {
		t.Error("technician not at X after confirmed transfer")
	}
}

func TestHandleAssign_StaleConfirmation(t *testing.T) {
	e := newEnv(t)
	x := e.center("X")
	y := e.center("Y")
	z := e.center("Z")
	tech := e.technician("T")
	e.assign(tech.ID, map[string]any{"center_id": y.ID.Hex()}).AssertStatus(t, http.StatusOK)

	var proposal transferBody
	rec := e.assign(tech.ID, map[string]any{"center_id": x.ID.Hex()})
	rec.DecodeJSON(t, &proposal)

	// Someone else moves the technician to Z in between.
	e.assign(tech.ID, map[string]any{
		"center_id":        z.ID.Hex(),
		"confirm":          true,
		"expected_version": proposal.ExpectedVersion,
	}).AssertStatus(t, http.StatusOK)

	rec = e.assign(tech.ID, map[string]any{
		"center_id":        x.ID.Hex(),
		"confirm":          true,
		"expected_version": proposal.ExpectedVersion,
	})
	rec.AssertStatus(t, http.StatusConflict)
	var body uierrors.Body
	rec.DecodeJSON(t, &body)
	if body.Status != uierrors.StatusConflict {
		t.Errorf("status = %q, want conflict", body.Status)
	}
	if !e.reload(tech.ID).AssignedTo(z.ID) {
		t.Error("stale confirmation must not move the technician")
	}
}

func TestHandleAssign_ConcurrentRequests(t *testing.T) {
	e := newEnv(t)
	x := e.center("X")
	y := e.center("Y")
	tech := e.technician("T")
	v := tech.Version

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i, c := range []models.AssistanceCenter{x, y} {
		wg.Add(1)
		go func(i int, centerID primitive.ObjectID) {
			defer wg.Done()
			req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]any{
				"center_id":        centerID.Hex(),
				"expected_version": v,
			})
			req = testutil.WithChiURLParam(req, "id", tech.ID.Hex())
			rec := testutil.NewRecorder()
			e.h.HandleAssign(rec, req)
			codes[i] = rec.Code
		}(i, c.ID)
	}
	wg.Wait()

	ok, conflict := 0, 0
	for _, c := range codes {
		switch c {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		}
	}
	if ok != 1 || conflict != 1 {
		t.Errorf("codes = %v, want one 200 and one 409", codes)
	}
}

func TestHandleAssign_NotFound(t *testing.T) {
	e := newEnv(t)
	x := e.center("X")
	tech := e.technician("T")

	e.assign(primitive.NewObjectID(), map[string]any{"center_id": x.ID.Hex()}).AssertStatus(t, http.StatusNotFound)
	e.assign(tech.ID, map[string]any{"center_id": primitive.NewObjectID().Hex()}).AssertStatus(t, http.StatusNotFound)

	if e.reload(tech.ID).Assigned() {
		t.Error("technician must stay unassigned")
	}
}

func TestHandleAssign_BadInput(t *testing.T) {
	e := newEnv(t)
	tech := e.technician("T")

	e.assign(tech.ID, map[string]any{}).AssertStatus(t, http.StatusBadRequest)
	e.assign(tech.ID, map[string]any{"center_id": "xyz"}).AssertStatus(t, http.StatusBadRequest)
	e.assign(tech.ID, map[string]any{"center_id": primitive.NewObjectID().Hex(), "bogus": true}).AssertStatus(t, http.StatusBadRequest)

	req := testutil.WithChiURLParam(testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]any{}), "id", "nope")
	rec := testutil.NewRecorder()
	e.h.HandleAssign(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleUnassign(t *testing.T) {
	e := newEnv(t)
	x := e.center("X")
	tech := e.technician("T")
	e.assign(tech.ID, map[string]any{"center_id": x.ID.Hex()}).AssertStatus(t, http.StatusOK)

	unassign := func(id primitive.ObjectID) *testutil.ResponseRecorder {
		req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodPost, "/"), "id", id.Hex())
		rec := testutil.NewRecorder()
		e.h.HandleUnassign(rec, req)
		return rec
	}

	unassign(tech.ID).AssertStatus(t, http.StatusOK)
	unassign(tech.ID).AssertStatus(t, http.StatusOK) // idempotent
	if e.reload(tech.ID).Assigned() {
		t.Error("technician still assigned")
	}
	unassign(primitive.NewObjectID()).AssertStatus(t, http.StatusNotFound)
}

func TestHandleDelete(t *testing.T) {
	e := newEnv(t)
	x := e.center("X")
	tech := e.technician("T")
	e.assign(tech.ID, map[string]any{"center_id": x.ID.Hex()}).AssertStatus(t, http.StatusOK)

	del := func() *testutil.ResponseRecorder {
		req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodPost, "/"), "id", tech.ID.Hex())
		rec := testutil.NewRecorder()
		e.h.HandleDelete(rec, req)
		return rec
	}

	del().AssertStatus(t, http.StatusConflict)

	req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodPost, "/"), "id", tech.ID.Hex())
	e.h.HandleUnassign(testutil.NewRecorder(), req)

	del().AssertStatus(t, http.StatusOK)
	del().AssertStatus(t, http.StatusNotFound)
}
