// internal/app/store/staff/staffstore.go
package staffstore

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

var ErrDuplicateUsername = errors.New("a staff member with this username already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("staff_members")}
}

func (s *Store) Create(ctx context.Context, m models.StaffMember) (models.StaffMember, error) {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.UsernameCI = text.Fold(m.Username)
	m.FullNameCI = text.Fold(m.FullName)
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.StaffMember{}, ErrDuplicateUsername
		}
		return models.StaffMember{}, err
	}
	return m, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.StaffMember, error) {
	var m models.StaffMember
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return models.StaffMember{}, err
	}
	return m, nil
}

// GetByUsername looks up a staff member by case-insensitive username.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.StaffMember, error) {
	var m models.StaffMember
	if err := s.c.FindOne(ctx, bson.M{"username_ci": text.Fold(username)}).Decode(&m); err != nil {
		return models.StaffMember{}, err
	}
	return m, nil
}

// List returns staff members whose folded full name starts with q.
func (s *Store) List(ctx context.Context, q string, limit int64) ([]models.StaffMember, error) {
	filter := bson.M{}
	if lo, hi := text.PrefixRange(q); lo != "" {
		filter["full_name_ci"] = bson.M{"$gte": lo, "$lt": hi}
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

	out := []models.StaffMember{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
