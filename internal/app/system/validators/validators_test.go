package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/assistcenter/internal/app/system/validators"
	"github.com/dalemusser/assistcenter/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}

	for _, expected := range []string{"assistance_centers", "technicians", "staff_members", "products", "audit_events"} {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func TestTechniciansValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	now := time.Now().UTC()

	tests := []struct {
		name    string
		doc     bson.M
		wantErr bool
	}{
		{
			name:    "missing required fields",
			doc:     bson.M{"email": "a@example.com"},
			wantErr: true,
		},
		{
			name: "unassigned",
			doc: bson.M{"full_name": "Ada", "full_name_ci": "ada", "center_id": nil,
				"version": int64(0), "created_at": now, "updated_at": now},
		},
		{
			name: "assigned",
			doc: bson.M{"full_name": "Bob", "full_name_ci": "bob", "center_id": primitive.NewObjectID(),
				"version": int64(3)},
		},
		{
			name: "center_id as array",
			doc: bson.M{"full_name": "Cy", "full_name_ci": "cy",
				"center_id": bson.A{primitive.NewObjectID(), primitive.NewObjectID()}, "version": int64(1)},
			wantErr: true,
		},
		{
			name:    "negative version",
			doc:     bson.M{"full_name": "Di", "full_name_ci": "di", "version": int64(-1)},
			wantErr: true,
		},
		{
			name:    "blank name",
			doc:     bson.M{"full_name": "   ", "full_name_ci": "   ", "version": int64(0)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection("technicians").InsertOne(ctx, tt.doc)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("insert failed: %v", err)
			}
		})
	}
}

func TestCentersValidator_RequiredFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := db.Collection("assistance_centers").InsertOne(ctx, bson.M{"city": "Torino"}); err == nil {
		t.Error("expected validation error when inserting center without a name")
	}
	if _, err := db.Collection("assistance_centers").InsertOne(ctx, bson.M{
		"name": "Centro Nord", "name_ci": "centro nord", "revision": int64(0),
	}); err != nil {
		t.Errorf("Insert valid center failed: %v", err)
	}
}

func TestProductsValidator_StaffRef(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := db.Collection("products").InsertOne(ctx, bson.M{
		"name": "Boiler", "name_ci": "boiler", "staff_id": "not-an-id",
	}); err == nil {
		t.Error("expected validation error for a string staff_id")
	}
	if _, err := db.Collection("products").InsertOne(ctx, bson.M{
		"name": "Boiler", "name_ci": "boiler", "staff_id": nil,
	}); err != nil {
		t.Errorf("Insert unassigned product failed: %v", err)
	}
}

func TestStaffValidator_RequiredFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := db.Collection("staff_members").InsertOne(ctx, bson.M{"full_name": "Mario"}); err == nil {
		t.Error("expected validation error when inserting staff without a username")
	}
}
