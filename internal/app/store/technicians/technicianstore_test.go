package technicianstore_test

import (
	"testing"

	technicianstore "github.com/dalemusser/assistcenter/internal/app/store/technicians"
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"github.com/dalemusser/assistcenter/internal/testutil"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create_IgnoresAssignment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := technicianstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	center := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Technician{
		FullName: "Giulia Bianchi",
		CenterID: &center,
		Version:  9,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.CenterID != nil {
		t.Error("new technicians must start unassigned")
	}
	if created.Version != 0 {
		t.Errorf("expected version 0, got %d", created.Version)
	}
	if created.FullNameCI != text.Fold("Giulia Bianchi") {
		t.Errorf("FullNameCI: got %q", created.FullNameCI)
	}
}

func TestStore_UpdateProfile_LeavesAssignment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := technicianstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCenter(ctx, "Centro")
	tech := fixtures.CreateTechnician(ctx, "Luca Verdi", &c.ID)

	if err := store.UpdateProfile(ctx, tech.ID, models.Technician{Specialization: "heat pumps"}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	got, err := store.GetByID(ctx, tech.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Specialization != "heat pumps" {
		t.Errorf("Specialization: got %q", got.Specialization)
	}
	if !got.AssignedTo(c.ID) || got.Version != tech.Version {
		t.Errorf("assignment should be untouched, got center=%v version=%d", got.CenterID, got.Version)
	}

	if err := store.UpdateProfile(ctx, primitive.NewObjectID(), models.Technician{FullName: "x"}); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_UpdateProfile_ClearsOptionalFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := technicianstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tech := fixtures.CreateTechnician(ctx, "Luca Verdi", nil)
	if err := store.UpdateProfile(ctx, tech.ID, models.Technician{
		FullName:       "Luca Verdi",
		Specialization: "boilers",
		Email:          "luca@example.com",
		Phone:          "011 1234567",
	}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	if err := store.UpdateProfile(ctx, tech.ID, models.Technician{FullName: "Luca Verdi"}); err != nil {
		t.Fatalf("UpdateProfile (clear) failed: %v", err)
	}
	got, err := store.GetByID(ctx, tech.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Specialization != "" || got.Email != "" || got.Phone != "" {
		t.Errorf("optional fields should be cleared, got %q %q %q", got.Specialization, got.Email, got.Phone)
	}
	if got.FullName != "Luca Verdi" {
		t.Errorf("FullName: got %q", got.FullName)
	}

	// A cleared email no longer occupies the unique index.
	other := fixtures.CreateTechnician(ctx, "Sara Neri", nil)
	if err := store.UpdateProfile(ctx, other.ID, models.Technician{Email: "luca@example.com"}); err != nil {
		t.Errorf("reusing a cleared email failed: %v", err)
	}
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := technicianstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fixtures.CreateCenter(ctx, "Centro")
	fixtures.CreateTechnician(ctx, "Marco", nil)
	fixtures.CreateTechnician(ctx, "Maria", &c.ID)
	fixtures.CreateTechnician(ctx, "Paolo", nil)

	got, err := store.List(ctx, "mar", false, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 || got[0].FullName != "Marco" || got[1].FullName != "Maria" {
		t.Errorf("unexpected prefix result: %+v", got)
	}

	free, err := store.List(ctx, "", true, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(free) != 2 {
		t.Errorf("expected 2 unassigned technicians, got %d", len(free))
	}
	for _, tech := range free {
		if tech.Assigned() {
			t.Errorf("%s should not be listed as unassigned", tech.FullName)
		}
	}
}
