// internal/app/store/technicians/technicianstore.go
package technicianstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/assistcenter/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateEmail = errors.New("a technician with this email already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("technicians")}
}

// Create inserts a new, unassigned technician. CenterID on the input is
// ignored; assignment goes through the assignment engine.
func (s *Store) Create(ctx context.Context, t models.Technician) (models.Technician, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.FullNameCI = text.Fold(t.FullName)
	t.CenterID = nil
	t.Version = 0
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Technician{}, ErrDuplicateEmail
		}
		return models.Technician{}, err
	}
	return t, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Technician, error) {
	var t models.Technician
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.Technician{}, err
	}
	return t, nil
}

// UpdateProfile changes descriptive fields only. center_id and version
// belong to the assignment engine and are never touched here. An empty
// FullName keeps the stored name; empty optional fields are cleared.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, t models.Technician) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	unset := bson.M{}
	if t.FullName != "" {
		set["full_name"] = t.FullName
		set["full_name_ci"] = text.Fold(t.FullName)
	}
	setOrUnset(set, unset, "specialization", t.Specialization)
	setOrUnset(set, unset, "email", t.Email)
	setOrUnset(set, unset, "phone", t.Phone)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List returns technicians whose folded full name starts with q, ordered
// by name. When unassignedOnly is set, technicians with a center are
// skipped.
func (s *Store) List(ctx context.Context, q string, unassignedOnly bool, limit int64) ([]models.Technician, error) {
	filter := bson.M{}
	if lo, hi := text.PrefixRange(q); lo != "" {
		filter["full_name_ci"] = bson.M{"$gte": lo, "$lt": hi}
	}
	if unassignedOnly {
		filter["center_id"] = nil
	}
	find := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		find.SetLimit(limit)
	}

	cur, err := s.c.Find(ctx, filter, find)
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

func setOrUnset(set, unset bson.M, field, v string) {
	if v == "" {
		unset[field] = ""
		return
	}
	set[field] = v
}
