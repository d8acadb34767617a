// internal/app/store/centers/centerstore.go
package centerstore

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

var ErrDuplicateCenter = errors.New("an assistance center with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assistance_centers")}
}

func (s *Store) Create(ctx context.Context, c models.AssistanceCenter) (models.AssistanceCenter, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.NameCI = text.Fold(c.Name)
	c.CityCI = text.Fold(c.City)
	c.Revision = 0
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.AssistanceCenter{}, ErrDuplicateCenter
		}
		return models.AssistanceCenter{}, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.AssistanceCenter, error) {
	var c models.AssistanceCenter
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.AssistanceCenter{}, err
	}
	return c, nil
}

// Update modifies a center's descriptive fields and refreshes UpdatedAt.
// Empty name and address fields are left unchanged; an empty phone or
// email clears the stored value. Returns mongo.ErrNoDocuments when the
// center does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, c models.AssistanceCenter) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if c.Name != "" {
		set["name"] = c.Name
		set["name_ci"] = text.Fold(c.Name)
	}
	if c.Street != "" {
		set["street"] = c.Street
	}
	if c.City != "" {
		set["city"] = c.City
		set["city_ci"] = text.Fold(c.City)
	}
	if c.Province != "" {
		set["province"] = c.Province
	}
	if c.PostalCode != "" {
		set["postal_code"] = c.PostalCode
	}
	unset := bson.M{}
	for field, v := range map[string]string{"phone": c.Phone, "email": c.Email} {
		if v == "" {
			unset[field] = ""
		} else {
			set[field] = v
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateCenter
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List returns centers whose folded name starts with q (all when q is
// empty), ordered by name.
func (s *Store) List(ctx context.Context, q string, limit int64) ([]models.AssistanceCenter, error) {
	filter := bson.M{}
	if lo, hi := text.PrefixRange(q); lo != "" {
		filter["name_ci"] = bson.M{"$gte": lo, "$lt": hi}
	}
	find := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		find.SetLimit(limit)
	}
	return s.Find(ctx, filter, find)
}

// Find returns centers matching the given filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.AssistanceCenter, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.AssistanceCenter{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of centers matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
