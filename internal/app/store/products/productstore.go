// internal/app/store/products/productstore.go
package productstore

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

var ErrDuplicateProduct = errors.New("a product with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("products")}
}

// Create inserts an unassigned product.
func (s *Store) Create(ctx context.Context, p models.Product) (models.Product, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.NameCI = text.Fold(p.Name)
	p.StaffID = nil
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Product{}, ErrDuplicateProduct
		}
		return models.Product{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Update changes name and category. An empty name keeps the stored one; an
// empty category clears it. staff_id is left to the assignment engine.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p models.Product) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if p.Name != "" {
		set["name"] = p.Name
		set["name_ci"] = text.Fold(p.Name)
	}
	update := bson.M{"$set": set}
	if p.Category != "" {
		set["category"] = p.Category
	} else {
		update["$unset"] = bson.M{"category": ""}
	}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateProduct
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a product by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// List returns products whose folded name starts with q.
func (s *Store) List(ctx context.Context, q string, limit int64) ([]models.Product, error) {
	filter := bson.M{}
	if lo, hi := text.PrefixRange(q); lo != "" {
		filter["name_ci"] = bson.M{"$gte": lo, "$lt": hi}
	}
	find := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		find.SetLimit(limit)
	}

	cur, err := s.c.Find(ctx, filter, find)
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
