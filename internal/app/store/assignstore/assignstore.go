// internal/app/store/assignstore/assignstore.go
package assignstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/assistcenter/internal/app/system/assignment"
	"github.com/dalemusser/assistcenter/internal/app/system/txn"
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Store implements assignment.Store on MongoDB. Assignment state lives on
// the child documents (technicians.center_id, products.staff_id); there is
// no join collection to keep in sync.
type Store struct {
	db          *mongo.Database
	technicians *mongo.Collection
	centers     *mongo.Collection
	staff       *mongo.Collection
	products    *mongo.Collection
	log         *zap.Logger
}

var _ assignment.Store = (*Store)(nil)

func New(db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:          db,
		technicians: db.Collection("technicians"),
		centers:     db.Collection("assistance_centers"),
		staff:       db.Collection("staff_members"),
		products:    db.Collection("products"),
		log:         logger,
	}
}

// Atomically runs fn in a MongoDB transaction. The ctx handed to fn is a
// session context; every call below made with it joins the transaction.
func (s *Store) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	return txn.Run(ctx, s.db, s.log, fn)
}

func findOne[T any](ctx context.Context, c *mongo.Collection, id primitive.ObjectID) (T, error) {
	var out T
	err := c.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, assignment.ErrNotFound
	}
	return out, err
}

func (s *Store) Technician(ctx context.Context, id primitive.ObjectID) (models.Technician, error) {
	return findOne[models.Technician](ctx, s.technicians, id)
}

func (s *Store) Center(ctx context.Context, id primitive.ObjectID) (models.AssistanceCenter, error) {
	return findOne[models.AssistanceCenter](ctx, s.centers, id)
}

func (s *Store) Staff(ctx context.Context, id primitive.ObjectID) (models.StaffMember, error) {
	return findOne[models.StaffMember](ctx, s.staff, id)
}

func (s *Store) Product(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	return findOne[models.Product](ctx, s.products, id)
}

func (s *Store) findTechnicians(ctx context.Context, filter bson.M) ([]models.Technician, error) {
	cur, err := s.technicians.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Technician{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TechniciansNotAt matches unassigned technicians too: $ne is true for a
// null center_id.
func (s *Store) TechniciansNotAt(ctx context.Context, centerID primitive.ObjectID) ([]models.Technician, error) {
	return s.findTechnicians(ctx, bson.M{"center_id": bson.M{"$ne": centerID}})
}

func (s *Store) TechniciansAt(ctx context.Context, centerID primitive.ObjectID) ([]models.Technician, error) {
	return s.findTechnicians(ctx, bson.M{"center_id": centerID})
}

func (s *Store) CountTechniciansAt(ctx context.Context, centerID primitive.ObjectID) (int64, error) {
	return s.technicians.CountDocuments(ctx, bson.M{"center_id": centerID})
}

func (s *Store) CenterNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.centers.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID   primitive.ObjectID `bson:"_id"`
			Name string             `bson:"name"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.Name
	}
	return out, cur.Err()
}

func (s *Store) ProductsOf(ctx context.Context, staffID primitive.ObjectID) ([]models.Product, error) {
	cur, err := s.products.Find(ctx, bson.M{"staff_id": staffID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountProductsOf(ctx context.Context, staffID primitive.ObjectID) (int64, error) {
	return s.products.CountDocuments(ctx, bson.M{"staff_id": staffID})
}

// SetTechnicianCenter bumps the target center's revision before moving the
// technician. Inside a transaction that write collides with a concurrent
// DeleteCenter on the same document, so one of the two is retried and then
// observes the other's outcome.
func (s *Store) SetTechnicianCenter(ctx context.Context, techID primitive.ObjectID, expectedVersion *int64, centerID *primitive.ObjectID) (models.Technician, error) {
	now := time.Now().UTC()

	if centerID != nil {
		res, err := s.centers.UpdateOne(ctx,
			bson.M{"_id": *centerID},
			bson.M{"$inc": bson.M{"revision": 1}, "$set": bson.M{"updated_at": now}})
		if err != nil {
			return models.Technician{}, err
		}
		if res.MatchedCount == 0 {
			return models.Technician{}, assignment.ErrNotFound
		}
	}

	filter := bson.M{"_id": techID}
	if expectedVersion != nil {
		filter["version"] = *expectedVersion
	}
	update := bson.M{
		"$set": bson.M{"center_id": centerID, "updated_at": now},
		"$inc": bson.M{"version": 1},
	}
	var out models.Technician
	err := s.technicians.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if expectedVersion == nil {
			return models.Technician{}, assignment.ErrNotFound
		}
		// Either gone or the version moved on; tell the two apart.
		n, cerr := s.technicians.CountDocuments(ctx, bson.M{"_id": techID})
		if cerr != nil {
			return models.Technician{}, cerr
		}
		if n == 0 {
			return models.Technician{}, assignment.ErrNotFound
		}
		return models.Technician{}, assignment.ErrVersionMismatch
	}
	if err != nil {
		return models.Technician{}, err
	}
	return out, nil
}

func (s *Store) SetProductStaff(ctx context.Context, productID primitive.ObjectID, staffID *primitive.ObjectID) (models.Product, error) {
	var out models.Product
	err := s.products.FindOneAndUpdate(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"staff_id": staffID, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, assignment.ErrNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	return out, nil
}

func deleteByID(ctx context.Context, c *mongo.Collection, id primitive.ObjectID) error {
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCenter(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.centers, id)
}

func (s *Store) DeleteTechnician(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.technicians, id)
}

func (s *Store) DeleteStaff(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.staff, id)
}
