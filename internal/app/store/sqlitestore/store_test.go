package sqlitestore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/assistcenter/internal/app/store/sqlitestore"
	"github.com/dalemusser/assistcenter/internal/app/system/assignment"
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// setupTestStore opens an in-memory database with the authoritative schema.
func setupTestStore(t *testing.T) *sqlitestore.Store {
	t.Helper()
	s, err := sqlitestore.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedCenter(t *testing.T, s *sqlitestore.Store, name string) models.AssistanceCenter {
	t.Helper()
	c, err := s.CreateCenter(context.Background(), models.AssistanceCenter{Name: name, City: "Milano"})
	if err != nil {
		t.Fatalf("failed to seed center: %v", err)
	}
	return c
}

func seedTechnician(t *testing.T, s *sqlitestore.Store, name string) models.Technician {
	t.Helper()
	tech, err := s.CreateTechnician(context.Background(), models.Technician{FullName: name})
	if err != nil {
		t.Fatalf("failed to seed technician: %v", err)
	}
	return tech
}

func TestCreateCenter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c, err := s.CreateCenter(ctx, models.AssistanceCenter{Name: "Centro Nord", City: "Torino"})
	if err != nil {
		t.Fatalf("CreateCenter failed: %v", err)
	}
	if c.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}
	if c.NameCI == "" || c.CityCI == "" {
		t.Error("expected folded fields to be set")
	}

	got, err := s.Center(ctx, c.ID)
	if err != nil {
		t.Fatalf("Center failed: %v", err)
	}
	if got.Name != "Centro Nord" || got.City != "Torino" {
		t.Errorf("unexpected center: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to round-trip")
	}
}

func TestCreateCenter_DuplicateName(t *testing.T) {
	s := setupTestStore(t)
	seedCenter(t, s, "Centro Sud")

	_, err := s.CreateCenter(context.Background(), models.AssistanceCenter{Name: "CENTRO SUD"})
	if !errors.Is(err, sqlitestore.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestReaders_NotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	missing := primitive.NewObjectID()

	if _, err := s.Technician(ctx, missing); !errors.Is(err, assignment.ErrNotFound) {
		t.Errorf("Technician: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Center(ctx, missing); !errors.Is(err, assignment.ErrNotFound) {
		t.Errorf("Center: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Staff(ctx, missing); !errors.Is(err, assignment.ErrNotFound) {
		t.Errorf("Staff: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Product(ctx, missing); !errors.Is(err, assignment.ErrNotFound) {
		t.Errorf("Product: expected ErrNotFound, got %v", err)
	}
}

func TestSetTechnicianCenter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	c := seedCenter(t, s, "A")
	tech := seedTechnician(t, s, "Ada")

	v := tech.Version
	got, err := s.SetTechnicianCenter(ctx, tech.ID, &v, &c.ID)
	if err != nil {
		t.Fatalf("SetTechnicianCenter failed: %v", err)
	}
	if !got.AssignedTo(c.ID) {
		t.Errorf("expected technician at %s, got %v", c.ID.Hex(), got.CenterID)
	}
	if got.Version != tech.Version+1 {
		t.Errorf("expected version %d, got %d", tech.Version+1, got.Version)
	}

	center, _ := s.Center(ctx, c.ID)
	if center.Revision != 1 {
		t.Errorf("expected center revision 1, got %d", center.Revision)
	}
}

func TestSetTechnicianCenter_VersionMismatch(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	c := seedCenter(t, s, "A")
	tech := seedTechnician(t, s, "Ada")

	stale := tech.Version + 7
	_, err := s.SetTechnicianCenter(ctx, tech.ID, &stale, &c.ID)
	if !errors.Is(err, assignment.ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}

	got, _ := s.Technician(ctx, tech.ID)
	if got.Assigned() {
		t.Error("technician should be unchanged after a failed compare-and-set")
	}
}

func TestSetTechnicianCenter_MissingRecords(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	tech := seedTechnician(t, s, "Ada")
	c := seedCenter(t, s, "A")
	missing := primitive.NewObjectID()

	if _, err := s.SetTechnicianCenter(ctx, tech.ID, nil, &missing); !errors.Is(err, assignment.ErrNotFound) {
		t.Errorf("missing center: expected ErrNotFound, got %v", err)
	}
	v := int64(0)
	if _, err := s.SetTechnicianCenter(ctx, missing, &v, &c.ID); !errors.Is(err, assignment.ErrNotFound) {
		t.Errorf("missing technician: expected ErrNotFound, got %v", err)
	}
}

func TestTechniciansNotAt(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a := seedCenter(t, s, "A")
	b := seedCenter(t, s, "B")
	t1 := seedTechnician(t, s, "One")
	t2 := seedTechnician(t, s, "Two")
	t3 := seedTechnician(t, s, "Three")

	if _, err := s.SetTechnicianCenter(ctx, t2.ID, nil, &a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetTechnicianCenter(ctx, t3.ID, nil, &b.ID); err != nil {
		t.Fatal(err)
	}

	got, err := s.TechniciansNotAt(ctx, a.ID)
	if err != nil {
		t.Fatalf("TechniciansNotAt failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != t1.ID || got[1].ID != t3.ID {
		t.Errorf("expected [One Three], got %+v", got)
	}

	n, err := s.CountTechniciansAt(ctx, a.ID)
	if err != nil || n != 1 {
		t.Errorf("CountTechniciansAt = %d, %v; want 1", n, err)
	}

	names, err := s.CenterNames(ctx, []primitive.ObjectID{b.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("CenterNames failed: %v", err)
	}
	if len(names) != 1 || names[b.ID] != "B" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestAtomically_RollsBack(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	c := seedCenter(t, s, "A")
	tech := seedTechnician(t, s, "Ada")

	boom := errors.New("boom")
	err := s.Atomically(ctx, func(ctx context.Context) error {
		if _, err := s.SetTechnicianCenter(ctx, tech.ID, nil, &c.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := s.Technician(ctx, tech.ID)
	if got.Assigned() || got.Version != 0 {
		t.Errorf("write should have been rolled back, got %+v", got)
	}
}

func TestProducts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	m, err := s.CreateStaff(ctx, models.StaffMember{Username: "mrossi", FullName: "Mario Rossi"})
	if err != nil {
		t.Fatalf("CreateStaff failed: %v", err)
	}
	p, err := s.CreateProduct(ctx, models.Product{Name: "Boiler X"})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	got, err := s.SetProductStaff(ctx, p.ID, &m.ID)
	if err != nil {
		t.Fatalf("SetProductStaff failed: %v", err)
	}
	if got.StaffID == nil || *got.StaffID != m.ID {
		t.Errorf("expected staff %s, got %v", m.ID.Hex(), got.StaffID)
	}

	n, _ := s.CountProductsOf(ctx, m.ID)
	if n != 1 {
		t.Errorf("expected 1 product, got %d", n)
	}

	if _, err := s.SetProductStaff(ctx, p.ID, nil); err != nil {
		t.Fatalf("unassign failed: %v", err)
	}
	list, _ := s.ProductsOf(ctx, m.ID)
	if len(list) != 0 {
		t.Errorf("expected no products, got %d", len(list))
	}

	if err := s.DeleteStaff(ctx, m.ID); err != nil {
		t.Fatalf("DeleteStaff failed: %v", err)
	}
	if err := s.DeleteStaff(ctx, m.ID); !errors.Is(err, assignment.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
