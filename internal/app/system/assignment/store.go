package assignment

import (
	"context"

	"github.com/dalemusser/assistcenter/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the persistence port the engine runs against. The Mongo
// implementation lives in store/assignstore and the SQLite one in
// store/sqlitestore.
//
// Readers return an error matching ErrNotFound when the record is absent.
type Store interface {
	// Atomically runs fn as a single transaction when the backend supports
	// it. Every store call made with the ctx passed to fn joins that
	// transaction.
	Atomically(ctx context.Context, fn func(ctx context.Context) error) error

	Technician(ctx context.Context, id primitive.ObjectID) (models.Technician, error)
	Center(ctx context.Context, id primitive.ObjectID) (models.AssistanceCenter, error)
	Staff(ctx context.Context, id primitive.ObjectID) (models.StaffMember, error)
	Product(ctx context.Context, id primitive.ObjectID) (models.Product, error)

	// TechniciansNotAt returns every technician whose center is not
	// centerID (including unassigned ones), ordered by ID.
	TechniciansNotAt(ctx context.Context, centerID primitive.ObjectID) ([]models.Technician, error)
	// TechniciansAt returns the roster of a center ordered by ID.
	TechniciansAt(ctx context.Context, centerID primitive.ObjectID) ([]models.Technician, error)
	CountTechniciansAt(ctx context.Context, centerID primitive.ObjectID) (int64, error)
	// CenterNames resolves center names by ID. Unknown IDs are omitted.
	CenterNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)

	ProductsOf(ctx context.Context, staffID primitive.ObjectID) ([]models.Product, error)
	CountProductsOf(ctx context.Context, staffID primitive.ObjectID) (int64, error)

	// SetTechnicianCenter points the technician at centerID (nil clears it)
	// and increments its version. When expectedVersion is non-nil the write
	// only applies if the stored version still matches, otherwise it fails
	// with ErrVersionMismatch. A non-nil centerID must name an existing
	// center (ErrNotFound otherwise); implementations touch that center so
	// the write conflicts with a concurrent delete.
	SetTechnicianCenter(ctx context.Context, techID primitive.ObjectID, expectedVersion *int64, centerID *primitive.ObjectID) (models.Technician, error)
	// SetProductStaff overwrites the product's assignee (nil clears it).
	SetProductStaff(ctx context.Context, productID primitive.ObjectID, staffID *primitive.ObjectID) (models.Product, error)

	DeleteCenter(ctx context.Context, id primitive.ObjectID) error
	DeleteTechnician(ctx context.Context, id primitive.ObjectID) error
	DeleteStaff(ctx context.Context, id primitive.ObjectID) error
}
