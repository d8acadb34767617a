package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/assistcenter/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calling it again on the same request adds to the existing parameters.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data directly in
// MongoDB, bypassing the stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to create test %s: %v", coll, err)
	}
}

// CreateCenter creates a test assistance center with the given name.
func (f *Fixtures) CreateCenter(ctx context.Context, name string) models.AssistanceCenter {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.AssistanceCenter{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Street:     "Via Roma 1",
		City:       "Test City",
		CityCI:     text.Fold("Test City"),
		Province:   "TC",
		PostalCode: "00100",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "assistance_centers", c)
	return c
}

// CreateTechnician creates a technician, assigned to centerID when non-nil.
func (f *Fixtures) CreateTechnician(ctx context.Context, fullName string, centerID *primitive.ObjectID) models.Technician {
	f.t.Helper()

	now := time.Now().UTC()
	tech := models.Technician{
		ID:             primitive.NewObjectID(),
		FullName:       fullName,
		FullNameCI:     text.Fold(fullName),
		Specialization: "boilers",
		CenterID:       centerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if centerID != nil {
		tech.Version = 1
	}
	f.insert(ctx, "technicians", tech)
	return tech
}

// CreateStaff creates a staff member with the given username.
func (f *Fixtures) CreateStaff(ctx context.Context, username, fullName string) models.StaffMember {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.StaffMember{
		ID:         primitive.NewObjectID(),
		Username:   username,
		UsernameCI: text.Fold(username),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "staff_members", m)
	return m
}

// CreateProduct creates a product, assigned to staffID when non-nil.
func (f *Fixtures) CreateProduct(ctx context.Context, name string, staffID *primitive.ObjectID) models.Product {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Product{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Category:  "appliances",
		StaffID:   staffID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "products", p)
	return p
}
