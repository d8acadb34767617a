package staffstore_test

import (
	"testing"

	staffstore "github.com/dalemusser/assistcenter/internal/app/store/staff"
	"github.com/dalemusser/assistcenter/internal/app/system/indexes"
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"github.com/dalemusser/assistcenter/internal/testutil"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateAndLookup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := staffstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.StaffMember{Username: "MRossi", FullName: "Mario Rossi"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.UsernameCI != text.Fold("MRossi") {
		t.Errorf("UsernameCI: got %q", created.UsernameCI)
	}

	got, err := store.GetByUsername(ctx, "mrossi")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByUsername returned %s, want %s", got.ID.Hex(), created.ID.Hex())
	}

	if _, err := store.GetByUsername(ctx, "nobody"); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_Create_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := staffstore.New(db)

	if _, err := store.Create(ctx, models.StaffMember{Username: "anna"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.StaffMember{Username: "ANNA"}); err != staffstore.ErrDuplicateUsername {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := staffstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateStaff(ctx, "zeta", "Zeta Zanetti")
	fixtures.CreateStaff(ctx, "alfa", "Alfa Alberti")

	got, err := store.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 || got[0].Username != "alfa" {
		t.Errorf("expected alfa first, got %+v", got)
	}
}
